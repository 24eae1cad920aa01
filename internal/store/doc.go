// Package store provides SQLite-backed local storage of layout revisions.
//
// Every save appends a revision under a layout name. Revisions carry a
// per-name sequence number, a UUIDv7 ID and the BLAKE3 fingerprint of
// the layout's canonical JSON. Saving content identical to a name's
// latest revision is a no-op that returns the existing revision.
//
// Documents are stored in the persistence format written by package
// codec and read back through its lenient decoder.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// All listings order by name or seq with COLLATE BINARY so results are
// identical across runs.
package store
