package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
)

// ShortHash returns the first 16 hex characters of the SHA-256 of data.
func ShortHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}
