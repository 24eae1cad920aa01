// Package preset provides named starting layouts authored in CUE.
//
// The built-in catalog is embedded in the binary. Each preset declares
// its grid size and, optionally, a base layer of labels; Load turns a
// preset into a single-layer layout.Layout. User catalogs are checked
// against the same #Preset schema.
package preset
