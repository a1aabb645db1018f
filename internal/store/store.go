// ABOUTME: Store interface and data types for cfauth persistence
// ABOUTME: Defines the Secret record and the SecretsStore interface for credential documents

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateSecret is returned when a secret with the same key already exists
var ErrDuplicateSecret = errors.New("secret already exists")

// Secret is a named credential document. Value is opaque to the store;
// the credentials package stores a JSON {"user","password"} object in it.
type Secret struct {
	ID        string
	Key       string
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy *string
}

// SecretsStore defines methods for managing secrets.
type SecretsStore interface {
	CreateSecret(ctx context.Context, secret *Secret) error
	GetSecretByKey(ctx context.Context, key string) (*Secret, error)
	PutSecret(ctx context.Context, secret *Secret) error
	DeleteSecret(ctx context.Context, key string) error
	ListAllSecrets(ctx context.Context) ([]*Secret, error)
	Close() error
}
