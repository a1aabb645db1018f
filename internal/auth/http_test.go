// ABOUTME: Tests for the HTTP middleware applying gateway decisions
// ABOUTME: Drives the middleware with httptest recorders against a stub upstream

package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upstreamHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = io.WriteString(w, "upstream:"+r.URL.RequestURI())
	})
}

func TestViewFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/a/b?c=d", nil)
	req.Header.Add("Cookie", "CFAUTH=first")
	req.Header.Add("Cookie", "CFAUTH=second")
	req.Header.Set("Authorization", "Basic abc")

	view := ViewFromRequest(req)

	assert.Equal(t, "/a/b?c=d", view.URI)
	require.NotNil(t, view.Cookie)
	assert.Equal(t, "CFAUTH=first", *view.Cookie)
	require.NotNil(t, view.Authorization)
	assert.Equal(t, "Basic abc", *view.Authorization)
	assert.Same(t, req, view.Original)
}

func TestViewFromRequest_NoHeaders(t *testing.T) {
	view := ViewFromRequest(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Nil(t, view.Cookie)
	assert.Nil(t, view.Authorization)
}

func TestMiddleware_RejectsWithoutCredentials(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	handler := Middleware(gw)(upstreamHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/secret", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, Challenge, rec.Header().Get("WWW-Authenticate"))
	assert.NotContains(t, rec.Body.String(), "upstream")
}

func TestMiddleware_IssuesSessionAndRedirects(t *testing.T) {
	gw, signer, _ := newTestGateway(t)
	handler := Middleware(gw)(upstreamHandler())

	req := httptest.NewRequest(http.MethodGet, "/docs/index.html?x=1", nil)
	req.SetBasicAuth(testUser, testPassword)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/docs/index.html?x=1", rec.Header().Get("Location"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "CFAUTH", c.Name)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure, "plain HTTP request must not get a Secure cookie")
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.True(t, signer.Validate(c.Value, testNow))
	assert.Equal(t, testNow.Add(30*time.Minute).Unix(), c.Expires.Unix())
}

func TestMiddleware_SecureCookieOverTLS(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	handler := Middleware(gw)(upstreamHandler())

	req := httptest.NewRequest(http.MethodGet, "https://example.com/", nil)
	req.SetBasicAuth(testUser, testPassword)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].Secure)
}

func TestMiddleware_PassesThroughWithSession(t *testing.T) {
	gw, signer, validator := newTestGateway(t)
	handler := Middleware(gw)(upstreamHandler())

	req := httptest.NewRequest(http.MethodGet, "/page?q=1", nil)
	req.AddCookie(&http.Cookie{Name: "CFAUTH", Value: signer.Generate(testNow, time.Minute)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "upstream:/page?q=1", rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
	assert.Zero(t, validator.calls)
}

func TestMiddleware_PassthroughDropsAuthorization(t *testing.T) {
	gw, signer, _ := newTestGateway(t)

	var seen http.Header
	handler := Middleware(gw)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "CFAUTH", Value: signer.Generate(testNow, time.Minute)})
	req.Header.Set("Authorization", basicHeader(testUser, testPassword))
	req.Header.Set("X-Trace", "abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, seen.Get("Authorization"))
	assert.Equal(t, "abc", seen.Get("X-Trace"))
	assert.NotEmpty(t, seen.Get("Cookie"))
	assert.NotEmpty(t, req.Header.Get("Authorization"), "caller's request must not be mutated")
}
