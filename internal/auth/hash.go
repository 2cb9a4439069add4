package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashKey digests a raw api key for registry lookup. The encoding (SHA-256,
// lowercase hex) is shared with the control plane and must stay stable
// across processes.
func HashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
