package hasher

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyInput is returned by Hash when given an empty plaintext.
var ErrEmptyInput = errors.New("password must not be empty")

// Bcrypt hashes and verifies passwords with a configurable cost.
// The zero value is not usable; use New.
type Bcrypt struct {
	cost int
}

// New returns a Bcrypt hasher. Costs outside bcrypt's valid range fall
// back to bcrypt.DefaultCost.
func New(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Hash returns a salted bcrypt hash of plain.
func (b *Bcrypt) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyInput
	}
	out, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify reports whether plain matches hash. Any failure, including a
// malformed stored hash, yields false rather than an error so that
// callers cannot distinguish the cause.
func (b *Bcrypt) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
