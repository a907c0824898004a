package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Key returns the deterministic fingerprint for a query and its ordered
// bind parameters: SHA-256 over the normalized query text and the
// JSON-encoded parameter list, truncated to 128 bits.
//
// Parameter order matters; callers wanting order-insensitive keys must
// canonicalize before calling.
func Key(text string, params []any) string {
	h := sha256.New()
	h.Write([]byte(Normalize(text)))
	h.Write([]byte{0})
	if len(params) > 0 {
		encoded, err := json.Marshal(params)
		if err != nil {
			// Non-serializable parameters still need a stable key.
			encoded = fmt.Appendf(nil, "%v", params)
		}
		h.Write(encoded)
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16]) // use first 128 bits
}
