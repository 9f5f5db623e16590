package security

import "golang.org/x/crypto/bcrypt"

// Hasher is the one-way password primitive used by the user handlers.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// BcryptHasher implements Hasher with bcrypt at a fixed cost.
type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

// ErrPasswordTooLong is returned for passwords bcrypt cannot represent.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
