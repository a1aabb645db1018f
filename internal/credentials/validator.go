// ABOUTME: Validator capability and the shared reference credential document
// ABOUTME: Provides constant-time comparison and the Static fixed-pair validator

package credentials

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidReference is returned when a reference document cannot be decoded.
var ErrInvalidReference = errors.New("invalid reference credentials")

// Validator compares supplied credentials against a reference.
// Implementations must be safe for concurrent use and must not panic for any input.
type Validator interface {
	Validate(ctx context.Context, user, password string) bool
}

// Checker is implemented by validators whose reference lives in an external system.
type Checker interface {
	Check(ctx context.Context) error
}

// Reference is the reference credential pair.
type Reference struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

// ParseReference decodes a {"user": ..., "password": ...} document.
// Both fields must be present; empty strings are allowed.
func ParseReference(data []byte) (Reference, error) {
	var raw struct {
		User     *string `json:"user"`
		Password *string `json:"password"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Reference{}, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	if raw.User == nil {
		return Reference{}, fmt.Errorf("%w: missing user", ErrInvalidReference)
	}
	if raw.Password == nil {
		return Reference{}, fmt.Errorf("%w: missing password", ErrInvalidReference)
	}
	return Reference{User: *raw.User, Password: *raw.Password}, nil
}

// Matches reports whether user and password both equal the reference.
// Both fields are always compared.
func (r Reference) Matches(user, password string) bool {
	userOK := equal(user, r.User)
	passwordOK := equal(password, r.Password)
	return userOK&passwordOK == 1
}

// Marshal encodes the reference as stored in a secrets backend.
func (r Reference) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// equal compares digests so the comparison time does not depend on where
// or whether the lengths differ. Returns 1 when equal, 0 otherwise.
func equal(a, b string) int {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:])
}

// Static validates against a fixed reference pair.
type Static struct {
	ref Reference
}

// NewStatic creates a validator for the given user and password.
func NewStatic(user, password string) *Static {
	return &Static{ref: Reference{User: user, Password: password}}
}

// Validate implements Validator.
func (s *Static) Validate(_ context.Context, user, password string) bool {
	return s.ref.Matches(user, password)
}

var _ Validator = (*Static)(nil)
