package util

import (
	"strings"
)

// maxKeyLength is the longest document key ArangoDB accepts
const maxKeyLength = 254

// IsValidKey reports whether key is a well-formed ArangoDB document key.
// Callers treat a malformed key the same as a missing document.
func IsValidKey(key string) bool {
	if key == "" || len(key) > maxKeyLength {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("_-:.@()+,=;$!*'%", r):
		default:
			return false
		}
	}
	return true
}
