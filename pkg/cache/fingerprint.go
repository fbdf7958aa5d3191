package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Fingerprint computes the deterministic cache key for an action invocation
// and returns it together with the canonical input payload. encoding/json
// writes object keys in sorted order, so equal inputs always produce equal
// fingerprints regardless of map iteration order; array order is preserved.
func Fingerprint(actionID string, input map[string]any) (string, []byte, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return "", nil, fmt.Errorf("failed to canonicalize input: %w", err)
	}

	digest := sha256.New()
	digest.Write([]byte(actionID))
	digest.Write([]byte{0})
	digest.Write(payload)

	return hex.EncodeToString(digest.Sum(nil)), payload, nil
}
