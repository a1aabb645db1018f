// ABOUTME: Prometheus counters for gate decisions, credential checks, and session rejections
// ABOUTME: Registered on a private registry and served through promhttp

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/2389/cfauth/internal/auth"
)

// Metrics provides observability for the auth gateway.
type Metrics struct {
	registry *prometheus.Registry

	// Decisions by kind: passthrough, issue_session, reject
	Decisions *prometheus.CounterVec

	// Credential checks by result: valid, invalid
	CredentialChecks *prometheus.CounterVec

	// Session cookies not accepted, by reason: expired, signature, malformed
	SessionRejections *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry, including the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cfauth_decisions_total",
			Help: "Total gate decisions by kind",
		}, []string{"decision"}),

		CredentialChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cfauth_credential_checks_total",
			Help: "Total Basic credential checks by result",
		}, []string{"result"}),

		SessionRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cfauth_session_rejections_total",
			Help: "Total session cookies not accepted, by reason",
		}, []string{"reason"}),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveDecision implements auth.Observer.
func (m *Metrics) ObserveDecision(kind auth.Kind) {
	if m != nil {
		m.Decisions.WithLabelValues(kind.String()).Inc()
	}
}

// ObserveSessionRejected implements auth.Observer.
func (m *Metrics) ObserveSessionRejected(reason string) {
	if m != nil {
		m.SessionRejections.WithLabelValues(reason).Inc()
	}
}

// ObserveCredentialCheck implements auth.Observer.
func (m *Metrics) ObserveCredentialCheck(valid bool) {
	if m == nil {
		return
	}
	result := "invalid"
	if valid {
		result = "valid"
	}
	m.CredentialChecks.WithLabelValues(result).Inc()
}

var _ auth.Observer = (*Metrics)(nil)
