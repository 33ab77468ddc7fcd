// Package utils holds small helpers shared across layers.
package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes the plaintext with bcrypt at the given cost.  Costs
// outside bcrypt's valid range fall back to the library default rather than
// erroring, so a misconfigured BCRYPT_COST degrades instead of breaking
// registration.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether the plaintext matches the stored hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
