package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashStrings digests the parts with newline separators so adjacent fields
// cannot collide, and returns the hex form.
func HashStrings(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
