// ABOUTME: Keyed BLAKE2b-256 signer for stateless expiry:signature session tokens
// ABOUTME: Generates tokens with an absolute expiry and verifies signature and expiry independently

package session

import (
	"crypto/hmac"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// DefaultValidity is the validity window applied when none is configured.
const DefaultValidity = 30 * time.Minute

// Token errors
var (
	ErrMalformedToken   = errors.New("malformed session token")
	ErrInvalidSignature = errors.New("invalid session signature")
	ErrExpiredToken     = errors.New("session token expired")
	ErrInvalidKey       = errors.New("invalid signing key")
)

// separator splits the expiry and signature fields.
const separator = ":"

// Signer issues and verifies session tokens with a fixed key.
// It holds no mutable state and is safe for concurrent use.
type Signer struct {
	key []byte
}

// NewSigner creates a signer for the given key. The key must be between
// 1 and 64 bytes (the BLAKE2b key limit).
func NewSigner(key []byte) (*Signer, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: key is empty", ErrInvalidKey)
	}
	if len(key) > blake2b.Size {
		return nil, fmt.Errorf("%w: key is %d bytes, max %d", ErrInvalidKey, len(key), blake2b.Size)
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Signer{key: k}, nil
}

// Generate returns a token that expires at now+validity, truncated to whole seconds.
func (s *Signer) Generate(now time.Time, validity time.Duration) string {
	expiry := strconv.FormatInt(now.Add(validity).Unix(), 10)
	return expiry + separator + s.sign(expiry)
}

// Validate reports whether token carries a correct signature and has not
// expired at now. It never panics and returns false for any malformed input.
func (s *Signer) Validate(token string, now time.Time) bool {
	return s.Verify(token, now) == nil
}

// Verify performs the same checks as Validate and classifies the failure.
// The expiry is checked even when the signature does not match.
func (s *Signer) Verify(token string, now time.Time) error {
	expiryStr, sig, expiry, err := parseToken(token)
	if err != nil {
		return err
	}

	signatureOK := hmac.Equal([]byte(sig), []byte(s.sign(expiryStr)))
	expired := now.Unix() > expiry

	switch {
	case !signatureOK:
		return ErrInvalidSignature
	case expired:
		return ErrExpiredToken
	}
	return nil
}

// Expiry returns the expiry instant embedded in token without checking its signature.
func Expiry(token string) (time.Time, error) {
	_, _, expiry, err := parseToken(token)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(expiry, 0), nil
}

// sign returns the lowercase hex keyed digest of data.
func (s *Signer) sign(data string) string {
	// Key length is checked in NewSigner, so New256 cannot fail here.
	h, _ := blake2b.New256(s.key)
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// parseToken splits a token into its fields. The expiry must be the
// canonical decimal form so that only one string encodes each instant.
func parseToken(token string) (expiryStr, sig string, expiry int64, err error) {
	parts := strings.Split(token, separator)
	if len(parts) != 2 {
		return "", "", 0, fmt.Errorf("%w: expected 2 fields, got %d", ErrMalformedToken, len(parts))
	}
	expiryStr, sig = parts[0], parts[1]

	expiry, err = strconv.ParseInt(expiryStr, 10, 64)
	if err != nil || strconv.FormatInt(expiry, 10) != expiryStr {
		return "", "", 0, fmt.Errorf("%w: non-numeric expiry", ErrMalformedToken)
	}
	if sig == "" {
		return "", "", 0, fmt.Errorf("%w: empty signature", ErrMalformedToken)
	}
	return expiryStr, sig, expiry, nil
}
