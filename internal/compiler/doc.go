// Package compiler turns a layout into firmware keycodes.
//
// Compilation walks layers, then rows, then columns in declared order and
// maps each cell through the keycode package. That traversal order is the
// serialization order of every projection: the nested per-layer table
// rendered as keymap source, and the flat per-layer arrays sent to the
// remote build service.
//
// Span is presentation-only here. A wide key still occupies exactly one
// entry in its row; no columns are inserted or removed.
package compiler
