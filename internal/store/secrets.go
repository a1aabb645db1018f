// ABOUTME: Secrets store implementation for managing reference credential documents
// ABOUTME: Supports keyed lookup, create-only insert, upsert, and listing for the sqlite credential source

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const secretColumns = `id, key, value, created_at, updated_at, created_by`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// CreateSecret creates a new secret in the database.
// Returns ErrDuplicateSecret if a secret with the same key already exists.
func (s *SQLiteStore) CreateSecret(ctx context.Context, secret *Secret) error {
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

	query := `
		INSERT INTO secrets (id, key, value, created_at, updated_at, created_by)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		secret.ID,
		secret.Key,
		secret.Value,
		secret.CreatedAt.Format(time.RFC3339),
		secret.UpdatedAt.Format(time.RFC3339),
		nullString(ptrToString(secret.CreatedBy)),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: key %q", ErrDuplicateSecret, secret.Key)
		}
		return fmt.Errorf("inserting secret: %w", err)
	}

	s.logger.Debug("created secret", "id", secret.ID, "key", secret.Key)
	return nil
}

// GetSecretByKey retrieves a secret by its key.
// Returns ErrNotFound if the secret doesn't exist.
func (s *SQLiteStore) GetSecretByKey(ctx context.Context, key string) (*Secret, error) {
	query := `SELECT ` + secretColumns + ` FROM secrets WHERE key = ?`
	return s.querySecret(ctx, query, key)
}

// PutSecret creates the secret or replaces the value of the secret with the same key.
// On return secret.ID holds the ID of the stored row.
func (s *SQLiteStore) PutSecret(ctx context.Context, secret *Secret) error {
	if secret.ID == "" {
		secret.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	secret.UpdatedAt = now
	if secret.CreatedAt.IsZero() {
		secret.CreatedAt = now
	}

	query := `
		INSERT INTO secrets (id, key, value, created_at, updated_at, created_by)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		secret.ID,
		secret.Key,
		secret.Value,
		secret.CreatedAt.Format(time.RFC3339),
		secret.UpdatedAt.Format(time.RFC3339),
		nullString(ptrToString(secret.CreatedBy)),
	)
	if err != nil {
		return fmt.Errorf("upserting secret: %w", err)
	}

	stored, err := s.GetSecretByKey(ctx, secret.Key)
	if err != nil {
		return fmt.Errorf("reading upserted secret: %w", err)
	}
	secret.ID = stored.ID
	secret.CreatedAt = stored.CreatedAt

	s.logger.Debug("stored secret", "id", secret.ID, "key", secret.Key)
	return nil
}

// DeleteSecret removes a secret by key.
// Returns ErrNotFound if the secret doesn't exist.
func (s *SQLiteStore) DeleteSecret(ctx context.Context, key string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM secrets WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("deleting secret: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted secret", "key", key)
	return nil
}

// ListAllSecrets returns all secrets ordered by key.
func (s *SQLiteStore) ListAllSecrets(ctx context.Context) ([]*Secret, error) {
	query := `SELECT ` + secretColumns + ` FROM secrets ORDER BY key`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying secrets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var secrets []*Secret
	for rows.Next() {
		secret, err := scanSecret(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning secret row: %w", err)
		}
		secrets = append(secrets, secret)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating secret rows: %w", err)
	}

	return secrets, nil
}

func (s *SQLiteStore) querySecret(ctx context.Context, query string, arg string) (*Secret, error) {
	secret, err := scanSecret(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying secret: %w", err)
	}
	return secret, nil
}

// scanSecret reads one secrets row. Unparseable timestamps are logged and left zero.
func scanSecret(row rowScanner) (*Secret, error) {
	var secret Secret
	var createdBy sql.NullString
	var createdAt, updatedAt string

	if err := row.Scan(
		&secret.ID,
		&secret.Key,
		&secret.Value,
		&createdAt,
		&updatedAt,
		&createdBy,
	); err != nil {
		return nil, err
	}

	if parsed, err := time.Parse(time.RFC3339, createdAt); err != nil {
		slog.Warn("failed to parse secret created_at", "id", secret.ID, "error", err)
	} else {
		secret.CreatedAt = parsed
	}
	if parsed, err := time.Parse(time.RFC3339, updatedAt); err != nil {
		slog.Warn("failed to parse secret updated_at", "id", secret.ID, "error", err)
	} else {
		secret.UpdatedAt = parsed
	}
	if createdBy.Valid {
		secret.CreatedBy = &createdBy.String
	}

	return &secret, nil
}

// ptrToString returns the dereferenced string or empty string if nil.
func ptrToString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Ensure SQLiteStore implements SecretsStore.
var _ SecretsStore = (*SQLiteStore)(nil)
