package firmware

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/roach88/keygrid/internal/compiler"
	"github.com/roach88/keygrid/internal/keycode"
	"github.com/roach88/keygrid/internal/layout"
)

// Defaults written into generated files.
const (
	DefaultKeyboard    = "custom_keyboard"
	DefaultMCU         = "atmega32u4"
	DefaultBootloader  = "atmel-dfu"
	DefaultMaintainer  = "qmk"
	DefaultLayoutMacro = "LAYOUT"
)

// Paths of each artifact relative to the keyboard directory.
const (
	KeymapPath = "keymaps/default/keymap.c"
	ConfigPath = "config.h"
	RulesPath  = "rules.mk"
	InfoPath   = "info.json"
	ReadmePath = "readme.md"
)

// Artifact is one generated file.
type Artifact struct {
	Path string
	Data []byte
}

// ResolveKeyboard returns the keyboard identifier to use: the default for
// an empty name, otherwise the trimmed name. Absolute paths, names
// containing "..", and names that cannot appear inside a C string literal
// (double quotes, control characters) are rejected.
func ResolveKeyboard(keyboard string) (string, error) {
	keyboard = strings.TrimSpace(keyboard)
	if keyboard == "" {
		return DefaultKeyboard, nil
	}
	if strings.HasPrefix(keyboard, "/") || strings.ContainsAny(keyboard, "\\\"") || strings.IndexFunc(keyboard, unicode.IsControl) >= 0 {
		return "", &PackageError{Op: "resolve keyboard", Path: keyboard, Err: ErrInvalidKeyboard}
	}
	for _, part := range strings.Split(keyboard, "/") {
		if part == "" || part == "." || part == ".." {
			return "", &PackageError{Op: "resolve keyboard", Path: keyboard, Err: ErrInvalidKeyboard}
		}
	}
	return keyboard, nil
}

// ArchiveName returns the download file name for keyboard. Path
// separators in QMK keyboard names ("vendor/board") become underscores.
func ArchiveName(keyboard string) string {
	keyboard = strings.TrimSpace(keyboard)
	if keyboard == "" {
		keyboard = DefaultKeyboard
	}
	return strings.ReplaceAll(keyboard, "/", "_") + "_qmk_firmware.zip"
}

// Artifacts compiles l and generates every file of the keyboard
// directory, in a fixed order, with paths prefixed by the keyboard
// identifier.
func Artifacts(l *layout.Layout, keyboard string, p keycode.Platform) ([]Artifact, error) {
	keyboard, err := ResolveKeyboard(keyboard)
	if err != nil {
		return nil, err
	}

	km, err := compiler.Compile(l, keyboard, p)
	if err != nil {
		return nil, &PackageError{Op: "compile keymap", Path: KeymapPath, Err: err}
	}

	info, err := InfoJSON(l, keyboard)
	if err != nil {
		return nil, &PackageError{Op: "generate", Path: InfoPath, Err: err}
	}

	files := []Artifact{
		{Path: KeymapPath, Data: KeymapSource(km)},
		{Path: ConfigPath, Data: ConfigHeader(l, keyboard)},
		{Path: RulesPath, Data: RulesMk()},
		{Path: InfoPath, Data: info},
		{Path: ReadmePath, Data: Readme(l, keyboard)},
	}
	for i := range files {
		files[i].Path = path.Join(keyboard, files[i].Path)
	}
	return files, nil
}

// KeymapSource returns the keymap.c contents.
func KeymapSource(km *compiler.Keymap) []byte {
	return []byte(km.Source())
}

// ConfigHeader returns config.h. Matrix size comes from the layout's
// dimensions; pin assignments are example values that must be replaced.
func ConfigHeader(l *layout.Layout, keyboard string) []byte {
	return []byte(fmt.Sprintf(`#pragma once

// Matrix size
#define MATRIX_ROWS %d
#define MATRIX_COLS %d

// Matrix pins - UPDATE ME BEFORE FLASHING
#define MATRIX_ROW_PINS { B1, B3, B2, B6 } // Example pins
#define MATRIX_COL_PINS { D3, D2, D1, D0, D4, C6, D7, E6, B4, B5, F4, F5 }

// COL2ROW or ROW2COL
#define DIODE_DIRECTION COL2ROW

// Debounce
#define DEBOUNCE 5

// USB Device descriptor parameters
#define VENDOR_ID       0xFEED
#define PRODUCT_ID      0x0000
#define DEVICE_VER      0x0001
#define MANUFACTURER    "Custom"
#define PRODUCT         "%s"
`, l.Dimensions.Rows, l.Dimensions.Columns, keyboard))
}

// RulesMk returns rules.mk with the MCU placeholder and the standard
// feature flags in their default state.
func RulesMk() []byte {
	return []byte(`# MCU name - UPDATE ME BEFORE FLASHING
MCU = ` + DefaultMCU + `

# Bootloader selection
BOOTLOADER = ` + DefaultBootloader + `

# Build Options
BOOTMAGIC_ENABLE = yes      # Enable Bootmagic Lite
MOUSEKEY_ENABLE = yes       # Mouse keys
EXTRAKEY_ENABLE = yes       # Audio control and System control
CONSOLE_ENABLE = no         # Console for debug
COMMAND_ENABLE = no         # Commands for debug and configuration
NKRO_ENABLE = yes           # Enable N-Key Rollover
BACKLIGHT_ENABLE = no       # Enable keyboard backlight functionality
RGBLIGHT_ENABLE = no        # Enable keyboard RGB underglow
AUDIO_ENABLE = no           # Audio output
`)
}

// LayoutKey is one physical key position in info.json.
type LayoutKey struct {
	Label string `json:"label"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
}

// Info is the info.json document.
type Info struct {
	KeyboardName string                `json:"keyboard_name"`
	URL          string                `json:"url"`
	Maintainer   string                `json:"maintainer"`
	Layouts      map[string]InfoLayout `json:"layouts"`
}

// InfoLayout lists the key positions of one layout macro.
type InfoLayout struct {
	Layout []LayoutKey `json:"layout"`
}

// InfoJSON returns info.json: one key per (row, column) of the grid, in
// row-major order, labelled "row,col" at x=column, y=row.
func InfoJSON(l *layout.Layout, keyboard string) ([]byte, error) {
	keys := make([]LayoutKey, 0, l.Dimensions.Rows*l.Dimensions.Columns)
	for r := 0; r < l.Dimensions.Rows; r++ {
		for c := 0; c < l.Dimensions.Columns; c++ {
			keys = append(keys, LayoutKey{Label: fmt.Sprintf("%d,%d", r, c), X: c, Y: r})
		}
	}

	info := Info{
		KeyboardName: keyboard,
		URL:          "",
		Maintainer:   DefaultMaintainer,
		Layouts: map[string]InfoLayout{
			DefaultLayoutMacro: {Layout: keys},
		},
	}
	return json.MarshalIndent(info, "", "  ")
}

// Readme returns readme.md: the configuration steps still required
// before compiling, and the layout's row, column and layer counts.
func Readme(l *layout.Layout, keyboard string) []byte {
	return []byte(fmt.Sprintf(`# %[1]s

This keyboard was generated using QMK Design tool.

## Important Configuration Steps

Before compiling this firmware, you MUST:

1. **Configure the MCU type** in `+"`rules.mk`"+`
   - Common options: atmega32u4, STM32F303, RP2040, etc.

2. **Set the correct matrix pins** in `+"`config.h`"+`
   - MATRIX_ROW_PINS: The GPIO pins connected to your keyboard rows
   - MATRIX_COL_PINS: The GPIO pins connected to your keyboard columns

3. **Verify the diode direction** in `+"`config.h`"+`
   - COL2ROW: Diodes point from columns to rows
   - ROW2COL: Diodes point from rows to columns

4. **Update USB identifiers** in `+"`config.h`"+` if desired
   - VENDOR_ID, PRODUCT_ID, MANUFACTURER, PRODUCT

## Compiling

Place this folder in `+"`qmk_firmware/keyboards/%[1]s`"+` and run:

`+"```"+`
qmk compile -kb %[1]s -km default
`+"```"+`

## Layout Information

- Rows: %[2]d
- Columns: %[3]d
- Layers: %[4]d
`, keyboard, l.Dimensions.Rows, l.Dimensions.Columns, len(l.Layers)))
}
