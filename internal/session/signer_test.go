// ABOUTME: Unit tests for session token generation and verification
// ABOUTME: Covers round trips, expiry boundaries, tampering, and malformed tokens

package session

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"
)

var testKey = []byte("session-signer-test-key")

// fixedNow is deliberately not on a whole second to exercise truncation.
var fixedNow = time.Unix(1_700_000_000, 500_000_000)

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	signer, err := NewSigner(testKey)
	if err != nil {
		t.Fatalf("NewSigner() error = %v", err)
	}
	return signer
}

func TestNewSigner_KeyLength(t *testing.T) {
	tests := []struct {
		name    string
		key     []byte
		wantErr bool
	}{
		{name: "empty key", key: nil, wantErr: true},
		{name: "one byte", key: []byte("k"), wantErr: false},
		{name: "64 bytes", key: []byte(strings.Repeat("k", 64)), wantErr: false},
		{name: "65 bytes", key: []byte(strings.Repeat("k", 65)), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSigner(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSigner() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidKey) {
				t.Errorf("NewSigner() error = %v, want ErrInvalidKey", err)
			}
		})
	}
}

func TestGenerate_Format(t *testing.T) {
	signer := newTestSigner(t)

	token := signer.Generate(fixedNow, 30*time.Minute)

	parts := strings.Split(token, ":")
	if len(parts) != 2 {
		t.Fatalf("token %q has %d fields, want 2", token, len(parts))
	}
	wantExpiry := strconv.FormatInt(fixedNow.Unix()+1800, 10)
	if parts[0] != wantExpiry {
		t.Errorf("expiry field = %q, want %q", parts[0], wantExpiry)
	}
	if len(parts[1]) != 64 {
		t.Errorf("signature length = %d, want 64 hex chars", len(parts[1]))
	}
	if parts[1] != strings.ToLower(parts[1]) {
		t.Errorf("signature %q is not lowercase", parts[1])
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	signer := newTestSigner(t)
	other := newTestSigner(t)

	a := signer.Generate(fixedNow, time.Hour)
	b := other.Generate(fixedNow, time.Hour)
	if a != b {
		t.Errorf("same key and instant produced %q and %q", a, b)
	}
}

func TestValidate_RoundTrip(t *testing.T) {
	signer := newTestSigner(t)
	validity := 30 * time.Minute
	token := signer.Generate(fixedNow, validity)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "at issuance", at: fixedNow, want: true},
		{name: "before issuance", at: fixedNow.Add(-time.Hour), want: true},
		{name: "one minute before expiry", at: fixedNow.Add(validity - time.Minute), want: true},
		{name: "exactly at expiry", at: fixedNow.Add(validity), want: true},
		{name: "one second after expiry", at: fixedNow.Add(validity + time.Second), want: false},
		{name: "three hours later", at: fixedNow.Add(3 * time.Hour), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := signer.Validate(token, tt.at); got != tt.want {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate_ExpiredSession(t *testing.T) {
	signer := newTestSigner(t)

	token := signer.Generate(fixedNow.Add(-3*time.Hour), 30*time.Minute)

	if signer.Validate(token, fixedNow) {
		t.Error("Validate() = true for a token issued three hours ago")
	}
	if err := signer.Verify(token, fixedNow); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Verify() error = %v, want ErrExpiredToken", err)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	signer := newTestSigner(t)
	token := signer.Generate(fixedNow, time.Hour)

	first := signer.Validate(token, fixedNow)
	second := signer.Validate(token, fixedNow)
	if !first || !second {
		t.Errorf("Validate() = %v then %v, want true both times", first, second)
	}
}

func TestValidate_TamperedToken(t *testing.T) {
	signer := newTestSigner(t)
	token := signer.Generate(fixedNow, time.Hour)

	for i := range token {
		if token[i] == ':' {
			continue
		}
		flipped := []byte(token)
		if flipped[i] == '0' {
			flipped[i] = '1'
		} else {
			flipped[i] = '0'
		}

		if signer.Validate(string(flipped), fixedNow) {
			t.Errorf("Validate() = true after flipping position %d: %q", i, flipped)
		}
	}
}

func TestValidate_AppendedGarbage(t *testing.T) {
	signer := newTestSigner(t)
	token := signer.Generate(fixedNow, time.Hour)

	if signer.Validate(token+"invalid", fixedNow) {
		t.Error("Validate() = true for token with appended data")
	}
}

func TestValidate_WrongKey(t *testing.T) {
	signer := newTestSigner(t)
	other, err := NewSigner([]byte("a-different-signing-key"))
	if err != nil {
		t.Fatalf("NewSigner() error = %v", err)
	}

	token := other.Generate(fixedNow, time.Hour)
	if err := signer.Verify(token, fixedNow); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("Verify() error = %v, want ErrInvalidSignature", err)
	}
}

func TestValidate_MalformedTokens(t *testing.T) {
	signer := newTestSigner(t)
	valid := signer.Generate(fixedNow, time.Hour)
	sig := valid[strings.Index(valid, ":")+1:]
	expiry := valid[:strings.Index(valid, ":")]

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "no separator", token: expiry + sig},
		{name: "three fields", token: valid + ":extra"},
		{name: "non-numeric expiry", token: "soon:" + sig},
		{name: "fractional expiry", token: expiry + ".5:" + sig},
		{name: "leading zero expiry", token: "0" + expiry + ":" + sig},
		{name: "plus-signed expiry", token: "+" + expiry + ":" + sig},
		{name: "empty signature", token: expiry + ":"},
		{name: "empty expiry", token: ":" + sig},
		{name: "uppercase signature", token: expiry + ":" + strings.ToUpper(sig)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if signer.Validate(tt.token, fixedNow) {
				t.Errorf("Validate(%q) = true, want false", tt.token)
			}
		})
	}
}

func TestVerify_ClassifiesMalformed(t *testing.T) {
	signer := newTestSigner(t)

	if err := signer.Verify("not-a-token", fixedNow); !errors.Is(err, ErrMalformedToken) {
		t.Errorf("Verify() error = %v, want ErrMalformedToken", err)
	}
}

func TestVerify_ExpiredAndForged(t *testing.T) {
	signer := newTestSigner(t)
	token := signer.Generate(fixedNow.Add(-3*time.Hour), time.Minute)
	forged := token[:len(token)-1] + "0"
	if forged == token {
		forged = token[:len(token)-1] + "1"
	}

	// A bad signature is reported even if the token is also expired.
	if err := signer.Verify(forged, fixedNow); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("Verify() error = %v, want ErrInvalidSignature", err)
	}
}

func TestExpiry(t *testing.T) {
	signer := newTestSigner(t)
	token := signer.Generate(fixedNow, 30*time.Minute)

	got, err := Expiry(token)
	if err != nil {
		t.Fatalf("Expiry() error = %v", err)
	}
	want := time.Unix(fixedNow.Unix()+1800, 0)
	if !got.Equal(want) {
		t.Errorf("Expiry() = %v, want %v", got, want)
	}

	if _, err := Expiry("garbage"); !errors.Is(err, ErrMalformedToken) {
		t.Errorf("Expiry(garbage) error = %v, want ErrMalformedToken", err)
	}
}
