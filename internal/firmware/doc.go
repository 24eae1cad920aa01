// Package firmware assembles the downloadable QMK keyboard directory for a
// layout.
//
// Every artifact is generated as an independent byte buffer by its own
// function (KeymapSource, ConfigHeader, RulesMk, InfoJSON, Readme) so each
// can be tested without packaging. Artifacts collects them under the
// fixed directory skeleton and WriteArchive packs them into a zip.
//
// The hardware descriptor is span-unaware: info.json lists one entry per
// grid position. Matrix pins and the MCU are placeholders the user must
// edit before flashing; the builder never infers them.
package firmware
