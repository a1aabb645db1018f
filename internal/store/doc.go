// Package store provides persistent storage for reference credentials using SQLite.
//
// # Architecture
//
// SecretsStore is the only interface. SQLiteStore implements it against a
// single secrets table; MockStore implements it in memory for tests.
//
// Secrets are keyed documents. cfauth stores the Basic-auth reference pair
// as a JSON object under a key such as "cfauth/basic", mirroring the layout
// used in AWS Secrets Manager so both credential sources share one format.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode:
//
//	PRAGMA journal_mode=WAL;
//
// Database file locations:
//
//   - Production: /var/lib/cfauth/secrets.db
//   - Development: ~/.local/share/cfauth/secrets.db
//   - Testing: a file under t.TempDir()
//
// # Error Handling
//
//   - ErrNotFound: requested secret does not exist
//   - ErrDuplicateSecret: CreateSecret with an existing key
//
// All methods accept context.Context for cancellation support.
package store
