package layout

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// fingerprintKey is the 32-byte BLAKE3 key for layout fingerprints: the
// ASCII domain name zero-padded. Changing it invalidates every stored
// fingerprint.
var fingerprintKey = [32]byte{
	'k', 'e', 'y', 'g', 'r', 'i', 'd', '.', 'l', 'a', 'y', 'o', 'u', 't', '.', 'v',
	'1', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Fingerprint returns the hex-encoded keyed BLAKE3 hash of the layout's
// canonical JSON. Equal layouts share a fingerprint.
func (l *Layout) Fingerprint() (string, error) {
	canonical, err := l.MarshalCanonical()
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	h, err := blake3.NewKeyed(fingerprintKey[:])
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when inputs are known to be valid.
func (l *Layout) MustFingerprint() string {
	fp, err := l.Fingerprint()
	if err != nil {
		panic(err)
	}
	return fp
}
