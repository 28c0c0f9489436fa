package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a short hex digest of a payload, used to correlate
// webhook deliveries in logs without logging request bodies.
func Fingerprint(payload []byte) string {
	h := sha256.Sum256(payload)
	return hex.EncodeToString(h[:8])
}
