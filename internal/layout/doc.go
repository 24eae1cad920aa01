// Package layout provides the canonical in-memory model of a keyboard
// key-layout: layers of rows of optional key cells.
//
// This package contains the model and its invariants only. Every other
// internal package imports layout; layout imports nothing internal.
//
// Key design constraints:
//   - A nil *KeyCell is a skipped position; a KeyCell with a nil Value is
//     an explicitly unassigned key. Both compile to the no-op keycode.
//   - Edit operations never mutate their receiver. Each returns a new,
//     deep-copied Layout so earlier snapshots stay valid.
//   - Span is presentation data. Nothing in this package widens or
//     narrows rows because of it.
//   - JSON tags follow the persistence document (camelCase, matching the
//     documents written by the browser editor).
package layout
