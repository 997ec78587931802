package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// KeyForSource returns the cache key for a dataset location. Surrounding whitespace and
// the case of the scheme and host do not change the key.
func KeyForSource(source string) string {
	normalized := strings.TrimSpace(source)
	if scheme, rest, ok := strings.Cut(normalized, "://"); ok {
		host, path, _ := strings.Cut(rest, "/")
		normalized = strings.ToLower(scheme) + "://" + strings.ToLower(host) + "/" + path
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
