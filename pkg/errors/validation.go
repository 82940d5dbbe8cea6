package errors

import (
	"strings"
	"unicode"
)

// maxKeyLength bounds snapshot keys. Keys become file names and Redis keys.
const maxKeyLength = 128

// ValidateKey validates a snapshot key for safety.
// Keys are used as file names by the directory store, so the rules are
// conservative:
//   - No empty keys
//   - Maximum length of 128 characters
//   - No control characters or whitespace
//   - No path separators or traversal sequences
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "key cannot be empty")
	}

	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidKey, "key too long (max %d characters)", maxKeyLength)
	}

	for _, r := range key {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidKey, "key contains invalid characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(key, pattern) {
			return New(ErrCodeInvalidKey, "key contains invalid characters: %q", pattern)
		}
	}

	if strings.HasPrefix(key, ".") {
		return New(ErrCodeInvalidKey, "key cannot start with a dot")
	}

	return nil
}
