// ABOUTME: Builds the configured reference credential validator
// ABOUTME: Opens the SQLite store or AWS client the selected source needs

package credentials

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/2389/cfauth/internal/config"
	"github.com/2389/cfauth/internal/store"
)

// FromConfig builds the validator selected by cfg.Credentials.Source. The
// returned close function releases resources held by the validator and is
// never nil.
func FromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Validator, func() error, error) {
	noop := func() error { return nil }
	creds := cfg.Credentials

	switch creds.Source {
	case config.SourceStatic:
		return NewStatic(creds.User, creds.Password), noop, nil

	case config.SourceBcrypt:
		v, err := NewHashed(creds.User, creds.PasswordHash)
		if err != nil {
			return nil, noop, err
		}
		return v, noop, nil

	case config.SourceSecretsManager:
		client, err := NewSecretsManagerClient(ctx, AWSConfig{
			Region:    creds.Region,
			Endpoint:  creds.Endpoint,
			AccessKey: creds.AccessKeyID,
			SecretKey: creds.SecretAccessKey,
		})
		if err != nil {
			return nil, noop, err
		}
		return NewSecretsManager(client, creds.SecretID, creds.Timeout, logger), noop, nil

	case config.SourceSQLite:
		s, err := store.NewSQLiteStore(cfg.Database.Path)
		if err != nil {
			return nil, noop, fmt.Errorf("opening secrets store: %w", err)
		}
		return NewStored(s, creds.SecretID, logger), s.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown credential source %q", creds.Source)
	}
}
