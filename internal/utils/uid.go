package utils

import (
	"crypto/rand"
	"math/big"
)

// Alphabet of unreserved URL-safe characters per RFC 3986 section 2.3.
// Transaction identifiers travel in query strings and form fields, so they
// must never require percent-encoding.
const uidAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"

// UID generates a random identifier of length n drawn from the unreserved
// URL-safe alphabet. Uniqueness is probabilistic, which is sufficient for
// identifiers scoped to a single session's transaction map.
func UID(n int) (string, error) {
	max := big.NewInt(int64(len(uidAlphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = uidAlphabet[idx.Int64()]
	}
	return string(out), nil
}
