// ABOUTME: Validator backed by a reference document in the SQLite secrets store
// ABOUTME: Store errors, including a missing key, are reported as a failed validation

package credentials

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/2389/cfauth/internal/store"
)

// DefaultSecretKey is the store key used when none is configured.
const DefaultSecretKey = "cfauth/basic"

// Stored validates against a reference document kept in a SecretsStore.
type Stored struct {
	secrets store.SecretsStore
	key     string
	logger  *slog.Logger
}

// NewStored creates a validator reading key from secrets.
func NewStored(secrets store.SecretsStore, key string, logger *slog.Logger) *Stored {
	if key == "" {
		key = DefaultSecretKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Stored{
		secrets: secrets,
		key:     key,
		logger:  logger.With("component", "stored-credentials"),
	}
}

// Validate implements Validator.
func (v *Stored) Validate(ctx context.Context, user, password string) bool {
	ref, err := v.fetch(ctx)
	if err != nil {
		v.logger.Warn("reference credentials unavailable", "key", v.key, "error", err)
		return false
	}
	return ref.Matches(user, password)
}

// Check implements Checker.
func (v *Stored) Check(ctx context.Context) error {
	_, err := v.fetch(ctx)
	return err
}

// Put stores ref under the validator's key, replacing any previous value.
func (v *Stored) Put(ctx context.Context, ref Reference, createdBy string) error {
	secret, err := v.secret(ref, createdBy)
	if err != nil {
		return err
	}
	return v.secrets.PutSecret(ctx, secret)
}

// Create stores ref under the validator's key. It fails with
// store.ErrDuplicateSecret when the key already holds credentials.
func (v *Stored) Create(ctx context.Context, ref Reference, createdBy string) error {
	secret, err := v.secret(ref, createdBy)
	if err != nil {
		return err
	}
	return v.secrets.CreateSecret(ctx, secret)
}

func (v *Stored) fetch(ctx context.Context) (Reference, error) {
	secret, err := v.secrets.GetSecretByKey(ctx, v.key)
	if err != nil {
		return Reference{}, fmt.Errorf("reading secret %q: %w", v.key, err)
	}
	return ParseReference([]byte(secret.Value))
}

func (v *Stored) secret(ref Reference, createdBy string) (*store.Secret, error) {
	data, err := ref.Marshal()
	if err != nil {
		return nil, fmt.Errorf("encoding reference: %w", err)
	}
	secret := &store.Secret{Key: v.key, Value: string(data)}
	if createdBy != "" {
		secret.CreatedBy = &createdBy
	}
	return secret, nil
}

var (
	_ Validator = (*Stored)(nil)
	_ Checker   = (*Stored)(nil)
)
