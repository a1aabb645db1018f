// ABOUTME: Mock SecretsStore implementation for testing
// ABOUTME: Allows tests to run without SQLite and to inject lookup failures

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockStore is an in-memory SecretsStore implementation for testing.
type MockStore struct {
	mu      sync.RWMutex
	secrets map[string]*Secret // keyed by secret key

	// Err, when set, is returned by every read and write.
	Err error
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		secrets: make(map[string]*Secret),
	}
}

// CreateSecret stores a new secret.
func (m *MockStore) CreateSecret(ctx context.Context, secret *Secret) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if _, exists := m.secrets[secret.Key]; exists {
		return fmt.Errorf("%w: key %q", ErrDuplicateSecret, secret.Key)
	}
	m.insert(secret)
	return nil
}

// GetSecretByKey retrieves a secret by key.
func (m *MockStore) GetSecretByKey(ctx context.Context, key string) (*Secret, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	s, ok := m.secrets[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

// PutSecret creates or replaces a secret by key.
func (m *MockStore) PutSecret(ctx context.Context, secret *Secret) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if existing, ok := m.secrets[secret.Key]; ok {
		existing.Value = secret.Value
		existing.UpdatedAt = time.Now().UTC()
		secret.ID = existing.ID
		secret.CreatedAt = existing.CreatedAt
		secret.UpdatedAt = existing.UpdatedAt
		return nil
	}
	m.insert(secret)
	return nil
}

// DeleteSecret removes a secret by key.
func (m *MockStore) DeleteSecret(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.secrets[key]; !ok {
		return ErrNotFound
	}
	delete(m.secrets, key)
	return nil
}

// ListAllSecrets returns all secrets ordered by key.
func (m *MockStore) ListAllSecrets(ctx context.Context) ([]*Secret, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]*Secret, 0, len(m.secrets))
	for _, s := range m.secrets {
		cp := *s
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result, nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}

// insert stores a copy of secret, filling ID and timestamps. Caller holds mu.
func (m *MockStore) insert(secret *Secret) {
	if secret.ID == "" {
		secret.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if secret.CreatedAt.IsZero() {
		secret.CreatedAt = now
	}
	if secret.UpdatedAt.IsZero() {
		secret.UpdatedAt = now
	}
	cp := *secret
	m.secrets[secret.Key] = &cp
}

// Ensure MockStore implements SecretsStore.
var _ SecretsStore = (*MockStore)(nil)
