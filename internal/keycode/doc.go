// Package keycode maps symbolic key labels to firmware keycode tokens.
//
// Mapping is a pure function of (label, platform). The platform selects
// which label vocabulary is preferred; it never changes the token a
// physical key compiles to. Labels unknown to every vocabulary map to
// NoOp rather than failing, so a partially specified layout still
// compiles.
package keycode
