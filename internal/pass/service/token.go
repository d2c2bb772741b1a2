package service

import (
	"crypto/rand"

	dErrors "chefpass/pkg/domain-errors"
)

// Tokens double as public URLs: lowercase alphanumerics keep them short,
// case-insensitive, and safe in a path segment.
const tokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Default token lengths. A fresh mint uses TokenLength; the single collision
// retry uses RetryTokenLength and is accepted without a further check, since
// collision probability at that length is treated as negligible.
const (
	TokenLength      = 8
	RetryTokenLength = 10
)

func newToken(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate pass token")
	}
	for i, b := range buf {
		buf[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(buf), nil
}
