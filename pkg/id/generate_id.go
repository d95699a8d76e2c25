package id

import (
	"strings"

	"github.com/google/uuid"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewSecret returns a random token suitable for one-time credentials.
func NewSecret() string {
	return NewID32()[:16]
}
