// Package secrets wraps the one-way hashing used for credentials and card
// data. Nothing in this package can recover an input from its stored form.
package secrets

import "golang.org/x/crypto/bcrypt"

// Hasher hashes a secret and verifies candidates against a stored hash.
// Implementations must be one-way.
type Hasher interface {
	Hash(secret string) (string, error)
	Compare(secret, hashed string) bool
}

// BcryptHasher is the production Hasher. Cost is the bcrypt cost factor and is
// the only performance-sensitive knob in the application; it comes from config.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher clamps cost into bcrypt's supported range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(secret string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (h *BcryptHasher) Compare(secret, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(secret)) == nil
}
