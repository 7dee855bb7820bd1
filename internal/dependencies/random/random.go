package random

import (
	"crypto/rand"
	"math/big"
)

// Random provides randomness behind an interface so token generation
// is controllable in tests
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// String generates a random string of the given length drawn from
	// the given alphabet
	String(length int, alphabet string) string
}

// CryptoRandom draws from crypto/rand. Session tokens are bearer
// credentials, so anything weaker is not acceptable here.
type CryptoRandom struct{}

// New creates a CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a cryptographically random int in [0, n)
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	bound := big.NewInt(int64(n))
	result, err := rand.Int(rand.Reader, bound)
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		return 0
	}
	return int(result.Int64())
}

// String generates a random string of the given length drawn from the
// given alphabet
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	out := make([]byte, length)
	for i := range out {
		out[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(out)
}
