// Package credentials checks Basic-auth credentials against a reference pair.
//
// Every source implements Validator, a single method that answers yes or
// no. Validate never returns an error: a reference that cannot be loaded
// (secret missing, access denied, network failure, bad JSON) is reported
// exactly like a wrong password, so callers cannot tell operational
// failures apart from bad credentials.
//
// # Sources
//
//   - Static: a fixed user and password from configuration.
//   - Hashed: a fixed user and a bcrypt password hash.
//   - SecretsManager: a JSON document {"user": ..., "password": ...} read
//     from AWS Secrets Manager on every check.
//   - Stored: the same JSON document read from the local SQLite secrets store.
//
// Sources that depend on an external system also implement Checker so the
// HTTP gate can report readiness.
package credentials
