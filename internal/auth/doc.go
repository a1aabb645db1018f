// Package auth decides whether an edge request may reach its destination.
//
// # Decision Flow
//
// Gateway.Decide evaluates each request on its own, in this order:
//
//  1. Look up the session cookie (CFAUTH by default) in the Cookie header.
//  2. If the cookie holds a token that verifies and has not expired, the
//     decision is Passthrough and the original request is returned as is.
//  3. Otherwise parse "Authorization: Basic <base64(user:password)>".
//  4. If the credentials validate, the decision is IssueSession: a new token
//     valid for 30 minutes and a redirect back to the same URI, so the client
//     repeats the request carrying the cookie instead of its password.
//  5. Otherwise the decision is Reject with a Basic challenge.
//
// Malformed headers at any step are treated as absent; Decide never fails.
//
// # Surfaces
//
// The engine is transport neutral. Two adapters feed it:
//
//	Middleware(gw)          // net/http, used by "cfauth serve"
//	edge.NewHandler(gw, l)  // CloudFront Lambda@Edge events, used by "cfauth lambda"
//
// # Observability
//
// An optional Observer receives decision, session rejection, and credential
// check outcomes. Credentials and tokens are never logged.
package auth
