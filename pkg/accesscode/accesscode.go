// Package accesscode generates the short codes students type to join a market.
package accesscode

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generator returns a new access code. Uniqueness is not guaranteed.
type Generator func() string

// New returns a generator of codes shaped like prefix + length characters of [A-Z0-9],
// e.g. "KM-7QX2".
func New(prefix string, length int) Generator {
	return func() string {
		var b strings.Builder
		b.Grow(len(prefix) + length)
		b.WriteString(prefix)
		max := big.NewInt(int64(len(alphabet)))
		for i := 0; i < length; i++ {
			n, err := rand.Int(rand.Reader, max)
			if err != nil {
				// crypto/rand does not fail on supported platforms
				panic(err)
			}
			b.WriteByte(alphabet[n.Int64()])
		}
		return b.String()
	}
}

// Static always returns code. Useful for tests and demos.
func Static(code string) Generator {
	return func() string { return code }
}

// Equal compares a typed code with the issued one, ignoring case and surrounding spaces.
func Equal(typed, issued string) bool {
	return issued != "" && strings.EqualFold(strings.TrimSpace(typed), issued)
}
