package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// APIKeyLookup returns the SHA256 hex digest stored alongside the bcrypt hash
// so an actor can be found without scanning every row.
func APIKeyLookup(apiKey string) string {
	h := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(h[:])
}
