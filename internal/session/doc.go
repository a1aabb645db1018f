// Package session issues and verifies stateless session tokens.
//
// # Token Format
//
// A token is two colon-separated fields:
//
//	<expiry>:<signature>
//
// expiry is the absolute expiry instant in decimal Unix seconds (not the
// issuance time). signature is the lowercase hex keyed BLAKE2b-256 digest
// of the expiry string, keyed with the process signing key.
//
// # Usage
//
//	signer, err := session.NewSigner(key)
//	token := signer.Generate(time.Now(), 30*time.Minute)
//	ok := signer.Validate(token, time.Now())
//
// Nothing is stored server side. A token stops being accepted once its
// expiry second has passed, and every token becomes invalid when the key
// changes. There is no revocation.
package session
