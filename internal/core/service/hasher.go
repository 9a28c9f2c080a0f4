package service

import "golang.org/x/crypto/bcrypt"

// CredentialHasher provides one-way hashing and verification of passwords.
type CredentialHasher interface {
	Hash(password string) (string, error)
	// Compare reports whether password matches hash. A mismatch is not an
	// error, just false.
	Compare(password, hash string) bool
}

// BcryptHasher implements CredentialHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (h *BcryptHasher) Compare(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
