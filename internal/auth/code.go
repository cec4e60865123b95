package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	// OneTimeCodeLength is the number of digits in verification and reset codes.
	OneTimeCodeLength = 6

	codeModulus    = 1_000_000
	codeRandomSpan = 100_000
)

// GenerateOneTimeCode returns a 6-digit numeric code built from the current
// millisecond timestamp plus a random offset, reduced to its last six digits.
// Codes are not globally unique; callers that look accounts up by code must
// guard against collisions.
func GenerateOneTimeCode() string {
	return oneTimeCodeAt(time.Now())
}

func oneTimeCodeAt(now time.Time) string {
	var offset int64
	if n, err := rand.Int(rand.Reader, big.NewInt(codeRandomSpan)); err == nil {
		offset = n.Int64()
	} else {
		offset = now.UnixNano() % codeRandomSpan
	}
	combined := now.UnixMilli() + offset
	return fmt.Sprintf("%0*d", OneTimeCodeLength, combined%codeModulus)
}

// IsOneTimeCode reports whether s has the shape of a one-time code.
func IsOneTimeCode(s string) bool {
	if len(s) != OneTimeCodeLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
