// Package harness runs layout conformance scenarios.
//
// A scenario describes a layout, optional edits applied to it, and the
// compiled output expected on a given platform. Scenarios live in YAML
// files; a scenario may also have a golden keymap.c file.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	platform: mac            # generic, windows, mac, linux
//	keyboard: test_keyboard  # optional
//	preset: ortho_4x12       # or dimensions + layers
//	dimensions: { rows: 1, columns: 3 }
//	layers:
//	  - - ["Q", null, { value: "Space", span: 2 }]
//	edits:
//	  - { op: set, layer: 0, row: 0, col: 1, label: "W" }
//	expect:
//	  flat: [[KC_Q, KC_W, KC_SPC]]
//	assertions:
//	  - { type: token_at, layer: 0, row: 0, col: 0, token: KC_Q }
//	  - { type: token_count, token: KC_NO, count: 0 }
//	  - { type: lint, kind: unknown_label, count: 0 }
//	  - { type: round_trip }
//	  - { type: artifact_contains, path: config.h, text: "MATRIX_COLS 3" }
//
// A cell is a label, null for a skipped position, or an object with a
// value (possibly null) and a span. The empty string is a blank key.
//
// # Golden Files
//
// The golden file for scenarios/name.yaml is scenarios/golden/name.golden
// and holds the compiled keymap.c. Tests compare with goldie; run
//
//	go test ./internal/harness -update
//
// to regenerate.
package harness
