// ABOUTME: Tests for secrets store functionality
// ABOUTME: Covers create-only inserts, keyed lookup, upserts, deletes, and listing

package store

import (
	"context"
	"errors"
	"testing"
)

func TestCreateSecret(t *testing.T) {
	store := setupTestStore(t)

	ctx := context.Background()

	secret := &Secret{
		Key:   "cfauth/basic",
		Value: `{"user":"alice","password":"s3cret"}`,
	}
	if err := store.CreateSecret(ctx, secret); err != nil {
		t.Fatalf("CreateSecret failed: %v", err)
	}
	if secret.ID == "" {
		t.Error("expected ID to be set")
	}

	// Duplicate key fails
	duplicate := &Secret{
		Key:   "cfauth/basic",
		Value: "another",
	}
	err := store.CreateSecret(ctx, duplicate)
	if !errors.Is(err, ErrDuplicateSecret) {
		t.Errorf("expected ErrDuplicateSecret, got %v", err)
	}

	// A different key succeeds
	other := &Secret{
		Key:   "cfauth/staging",
		Value: `{"user":"bob","password":"pw"}`,
	}
	if err := store.CreateSecret(ctx, other); err != nil {
		t.Fatalf("CreateSecret (other key) should succeed: %v", err)
	}
}

func TestGetSecretByKey(t *testing.T) {
	store := setupTestStore(t)

	ctx := context.Background()

	secret := &Secret{Key: "cfauth/basic", Value: "v"}
	if err := store.CreateSecret(ctx, secret); err != nil {
		t.Fatalf("CreateSecret failed: %v", err)
	}

	retrieved, err := store.GetSecretByKey(ctx, "cfauth/basic")
	if err != nil {
		t.Fatalf("GetSecretByKey failed: %v", err)
	}
	if retrieved.ID != secret.ID {
		t.Errorf("expected ID %q, got %q", secret.ID, retrieved.ID)
	}
	if retrieved.CreatedBy != nil {
		t.Errorf("expected nil created_by, got %q", *retrieved.CreatedBy)
	}

	_, err = store.GetSecretByKey(ctx, "missing")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPutSecret(t *testing.T) {
	store := setupTestStore(t)

	ctx := context.Background()

	first := &Secret{Key: "cfauth/basic", Value: "v1"}
	if err := store.PutSecret(ctx, first); err != nil {
		t.Fatalf("PutSecret (insert) failed: %v", err)
	}

	second := &Secret{Key: "cfauth/basic", Value: "v2"}
	if err := store.PutSecret(ctx, second); err != nil {
		t.Fatalf("PutSecret (update) failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected upsert to keep ID %q, got %q", first.ID, second.ID)
	}

	retrieved, err := store.GetSecretByKey(ctx, "cfauth/basic")
	if err != nil {
		t.Fatalf("GetSecretByKey failed: %v", err)
	}
	if retrieved.Value != "v2" {
		t.Errorf("expected value %q, got %q", "v2", retrieved.Value)
	}

	all, err := store.ListAllSecrets(ctx)
	if err != nil {
		t.Fatalf("ListAllSecrets failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 secret after upsert, got %d", len(all))
	}
}

func TestDeleteSecret(t *testing.T) {
	store := setupTestStore(t)

	ctx := context.Background()

	secret := &Secret{Key: "cfauth/basic", Value: "v"}
	if err := store.CreateSecret(ctx, secret); err != nil {
		t.Fatalf("CreateSecret failed: %v", err)
	}

	if err := store.DeleteSecret(ctx, "cfauth/basic"); err != nil {
		t.Fatalf("DeleteSecret failed: %v", err)
	}

	if _, err := store.GetSecretByKey(ctx, "cfauth/basic"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if err := store.DeleteSecret(ctx, "cfauth/basic"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for second delete, got %v", err)
	}
}

func TestListAllSecrets(t *testing.T) {
	store := setupTestStore(t)

	ctx := context.Background()

	for _, key := range []string{"zeta", "alpha", "mu"} {
		if err := store.CreateSecret(ctx, &Secret{Key: key, Value: key + "-value"}); err != nil {
			t.Fatalf("CreateSecret(%q) failed: %v", key, err)
		}
	}

	secrets, err := store.ListAllSecrets(ctx)
	if err != nil {
		t.Fatalf("ListAllSecrets failed: %v", err)
	}
	if len(secrets) != 3 {
		t.Fatalf("expected 3 secrets, got %d", len(secrets))
	}

	want := []string{"alpha", "mu", "zeta"}
	for i, s := range secrets {
		if s.Key != want[i] {
			t.Errorf("secrets[%d].Key = %q, want %q", i, s.Key, want[i])
		}
	}
}
