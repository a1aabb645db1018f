// ABOUTME: Request admission state machine combining session cookies and Basic credentials
// ABOUTME: Valid cookie passes through, valid credentials mint a session, anything else is rejected

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/2389/cfauth/internal/credentials"
	"github.com/2389/cfauth/internal/session"
)

// Observer receives a notification for each step outcome. Implementations
// must be safe for concurrent use.
type Observer interface {
	ObserveDecision(kind Kind)
	ObserveSessionRejected(reason string)
	ObserveCredentialCheck(valid bool)
}

type nopObserver struct{}

func (nopObserver) ObserveDecision(Kind)          {}
func (nopObserver) ObserveSessionRejected(string) {}
func (nopObserver) ObserveCredentialCheck(bool)   {}

// Gateway decides, per request, whether to pass it through, issue a session,
// or reject it. It keeps no state between requests.
type Gateway struct {
	signer     *session.Signer
	validator  credentials.Validator
	cookieName string
	validity   time.Duration
	now        func() time.Time
	logger     *slog.Logger
	observer   Observer
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) Option {
	return func(g *Gateway) {
		if name != "" {
			g.cookieName = name
		}
	}
}

// WithValidity overrides the session validity window.
func WithValidity(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.validity = d
		}
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		if now != nil {
			g.now = now
		}
	}
}

// WithLogger sets the logger. Only debug-level events are logged.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithObserver sets the observer notified of decisions.
func WithObserver(o Observer) Option {
	return func(g *Gateway) {
		if o != nil {
			g.observer = o
		}
	}
}

// NewGateway creates a gateway with the default cookie name and validity window.
func NewGateway(signer *session.Signer, validator credentials.Validator, opts ...Option) *Gateway {
	g := &Gateway{
		signer:     signer,
		validator:  validator,
		cookieName: DefaultCookieName,
		validity:   session.DefaultValidity,
		now:        time.Now,
		logger:     slog.Default(),
		observer:   nopObserver{},
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "auth")
	return g
}

// CookieName returns the configured session cookie name.
func (g *Gateway) CookieName() string {
	return g.cookieName
}

// Validity returns the configured session validity window.
func (g *Gateway) Validity() time.Duration {
	return g.validity
}

// Decide evaluates one request. It always returns exactly one decision.
func (g *Gateway) Decide(ctx context.Context, req RequestView) Decision {
	d := g.decide(ctx, req)
	g.observer.ObserveDecision(d.Kind)
	return d
}

func (g *Gateway) decide(ctx context.Context, req RequestView) Decision {
	now := g.now()

	if token, ok := req.cookieValue(g.cookieName); ok {
		err := g.signer.Verify(token, now)
		if err == nil {
			return Decision{Kind: Passthrough, Original: req.Original}
		}
		reason := rejectionReason(err)
		g.observer.ObserveSessionRejected(reason)
		g.logger.Debug("session cookie not accepted", "reason", reason)
	}

	creds, ok := req.credentials()
	if !ok {
		return g.reject()
	}

	valid := g.validator.Validate(ctx, creds.User, creds.Password)
	g.observer.ObserveCredentialCheck(valid)
	if !valid {
		g.logger.Debug("basic credentials rejected")
		return g.reject()
	}

	token := g.signer.Generate(now, g.validity)
	expires, _ := session.Expiry(token)
	return Decision{
		Kind:        IssueSession,
		Token:       token,
		CookieName:  g.cookieName,
		RedirectURI: req.URI,
		Expires:     expires,
	}
}

func (g *Gateway) reject() Decision {
	return Decision{Kind: Reject, Challenge: Challenge}
}

// rejectionReason maps a verification error to a metric label.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, session.ErrExpiredToken):
		return "expired"
	case errors.Is(err, session.ErrInvalidSignature):
		return "signature"
	default:
		return "malformed"
	}
}
