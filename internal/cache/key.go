package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Key derives a deterministic cache key from an operation and its parameters.
// Parts are trimmed; the operation is lower-cased. Order of params matters.
func Key(operation string, params ...string) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(operation))))
	for _, p := range params {
		// NUL separators keep ("ab","c") and ("a","bc") apart.
		h.Write([]byte{0})
		h.Write([]byte(strings.TrimSpace(p)))
	}
	return hex.EncodeToString(h.Sum(nil))
}
