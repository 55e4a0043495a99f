package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultCredentialLength is how many leading characters of a contact number
// form the initial credential of a registered user.
const DefaultCredentialLength = 8

// MaxPasswordBytes is the longest password bcrypt accepts
const MaxPasswordBytes = 72

// PasswordHasher hashes and verifies credentials with bcrypt
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher; cost outside bcrypt's range falls back to the default
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt hash of password
func (h *PasswordHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Check reports whether password matches hashedPassword
func (h *PasswordHasher) Check(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// DefaultCredential derives the initial credential from a contact number
func DefaultCredential(contactNumber string) string {
	r := []rune(contactNumber)
	if len(r) > DefaultCredentialLength {
		r = r[:DefaultCredentialLength]
	}
	return string(r)
}
