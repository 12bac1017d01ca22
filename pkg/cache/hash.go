package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey derives a namespaced cache key of the form "prefix:<digest>".
// Parts are JSON-encoded before hashing so option structs can participate
// in key derivation directly; the full 256-bit digest keeps distinct
// inputs from colliding.
func hashKey(prefix string, parts ...any) string {
	encoded, _ := json.Marshal(parts)
	return prefix + ":" + Hash(encoded)
}

// Hash returns the hex-encoded SHA-256 digest of data. The pipeline uses
// it to content-hash raw graph exports; the Keyer uses it through hashKey.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
