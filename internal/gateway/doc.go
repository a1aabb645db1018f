// Package gateway runs cfauth as an HTTP gate in front of an upstream origin.
//
// # Overview
//
// The Gateway owns the HTTP server, the optional Tailscale node, and the
// credential source's resources. Every request that is not a health or
// metrics probe goes through auth.Middleware; admitted requests are
// forwarded unchanged to upstream.url by a reverse proxy.
//
// # Routes
//
//   - GET /health - Liveness check, always 200
//   - GET /health/ready - 200 when the credential source answers, 503 otherwise
//   - GET <metrics.path> - Prometheus exposition when metrics are enabled
//   - /* - Gated reverse proxy
//
// # Listeners
//
// Without Tailscale the server listens on server.http_addr. With
// tailscale.enabled a tsnet node is started and the gate listens on:
//
//   - :80 plain HTTP inside the tailnet (default)
//   - :443 with tailnet certificates (tailscale.https)
//   - :443 public via Funnel (tailscale.funnel)
//
// # Shutdown
//
// Run returns after ctx is canceled and in-flight requests drain, bounded
// by a 5 second timeout.
package gateway
