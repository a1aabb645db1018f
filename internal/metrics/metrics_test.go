// ABOUTME: Tests for the Prometheus observer and its HTTP exposition
// ABOUTME: Reads counter values with testutil and scrapes the handler with httptest

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/cfauth/internal/auth"
)

func TestObserveDecision(t *testing.T) {
	m := New()

	m.ObserveDecision(auth.Reject)
	m.ObserveDecision(auth.Reject)
	m.ObserveDecision(auth.IssueSession)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Decisions.WithLabelValues("reject")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Decisions.WithLabelValues("issue_session")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Decisions.WithLabelValues("passthrough")))
}

func TestObserveCredentialCheck(t *testing.T) {
	m := New()

	m.ObserveCredentialCheck(true)
	m.ObserveCredentialCheck(false)
	m.ObserveCredentialCheck(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CredentialChecks.WithLabelValues("valid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CredentialChecks.WithLabelValues("invalid")))
}

func TestObserveSessionRejected(t *testing.T) {
	m := New()

	m.ObserveSessionRejected("expired")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionRejections.WithLabelValues("expired")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveDecision(auth.Passthrough)
		m.ObserveCredentialCheck(true)
		m.ObserveSessionRejected("malformed")
	})
}

func TestIndependentRegistries(t *testing.T) {
	a, b := New(), New()

	a.ObserveDecision(auth.Reject)

	assert.Equal(t, 0.0, testutil.ToFloat64(b.Decisions.WithLabelValues("reject")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveDecision(auth.Passthrough)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `cfauth_decisions_total{decision="passthrough"} 1`)
	assert.Contains(t, body, "go_goroutines")
}
