package security

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

const (
	temporaryPasswordAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	minTemporaryPasswordLength  = 8
	maxTemporaryPasswordRetries = 64
)

var (
	errNegativeLength         = errors.New("length must be non-negative")
	errEmptyAlphabet          = errors.New("alphabet must not be empty")
	errTemporaryPasswordRetry = errors.New("could not generate a mixed-class temporary password")
)

// RandomString returns a cryptographically secure, unbiased string of the requested length.
func RandomString(length int, alphabet string) (string, error) {
	switch {
	case length < 0:
		return "", errNegativeLength
	case length == 0:
		return "", nil
	case alphabet == "":
		return "", errEmptyAlphabet
	}

	limit := big.NewInt(int64(len(alphabet)))
	var builder strings.Builder
	builder.Grow(length)
	for builder.Len() < length {
		position, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[position.Int64()])
	}
	return builder.String(), nil
}

// TemporaryPassword generates an admin-issued password that contains upper
// case, lower case and digits, so it passes the regular strength rules.
// Ambiguous glyphs (0, O, 1, l, I) are excluded.
func TemporaryPassword(length int) (string, error) {
	if length < minTemporaryPasswordLength {
		length = minTemporaryPasswordLength
	}

	for attempt := 0; attempt < maxTemporaryPasswordRetries; attempt++ {
		candidate, err := RandomString(length, temporaryPasswordAlphabet)
		if err != nil {
			return "", err
		}
		if hasMixedClasses(candidate) {
			return candidate, nil
		}
	}
	return "", errTemporaryPasswordRetry
}

func hasMixedClasses(value string) bool {
	var upper, lower, digit bool
	for _, char := range value {
		switch {
		case char >= 'A' && char <= 'Z':
			upper = true
		case char >= 'a' && char <= 'z':
			lower = true
		case char >= '0' && char <= '9':
			digit = true
		}
	}
	return upper && lower && digit
}
