// ABOUTME: Validator for a fixed user with a bcrypt password hash
// ABOUTME: Always runs the bcrypt comparison so timing does not reveal which field failed

package credentials

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hashed validates against a fixed user and a bcrypt password hash.
type Hashed struct {
	user string
	hash []byte
}

// NewHashed creates a validator from a user and a bcrypt hash.
func NewHashed(user, passwordHash string) (*Hashed, error) {
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("%w: password_hash is not a bcrypt hash: %v", ErrInvalidReference, err)
	}
	return &Hashed{user: user, hash: []byte(passwordHash)}, nil
}

// HashPassword returns a bcrypt hash of password at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Validate implements Validator.
func (h *Hashed) Validate(_ context.Context, user, password string) bool {
	userOK := equal(user, h.user)
	passwordOK := 0
	if bcrypt.CompareHashAndPassword(h.hash, []byte(password)) == nil {
		passwordOK = 1
	}
	return userOK&passwordOK == 1
}

var _ Validator = (*Hashed)(nil)
