// Package codec reads and writes the layout persistence document and the
// payloads exchanged with the remote save service.
//
// Decoding is lenient by policy. Malformed JSON, a missing layers field,
// an absent or unrecognised version tag, or a document whose grid is not
// rectangular all yield layout.Default() instead of an error. The reason
// is reported in a Result so callers can log it.
//
// Input is run through a JSONC pass before decoding, so hand-edited
// documents may carry comments and trailing commas.
package codec
