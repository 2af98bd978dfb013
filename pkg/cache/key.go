package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Key derives a stable cache key from the given components, typically the
// server URL plus the filter, grouping, compose, and field-mapping
// configuration. Components are JSON-encoded, which serializes map keys in
// sorted order, so logically equal configurations always hash to the same
// key. The result is hex-encoded and safe to use as a file name.
func Key(components ...interface{}) (string, error) {
	payload, err := json.Marshal(components)
	if err != nil {
		return "", fmt.Errorf("encode cache key components: %w", err)
	}

	sum := sha256.Sum256(payload)

	return hex.EncodeToString(sum[:]), nil
}
