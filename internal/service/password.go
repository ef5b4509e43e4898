package service

import "golang.org/x/crypto/bcrypt"

const (
	DefaultBcryptCost = 12
	MinBcryptCost     = 10
)

// PasswordHasher abstrae el hash lento de contraseñas.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, digest string) bool
}

type BcryptHasher struct {
	cost int
}

// NewBcryptHasher usa DefaultBcryptCost si cost queda fuera de [MinBcryptCost, bcrypt.MaxCost].
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < MinBcryptCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *BcryptHasher) Compare(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
