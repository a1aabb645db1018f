// ABOUTME: HTTP middleware applying gateway decisions in front of an upstream handler
// ABOUTME: Builds a RequestView from the first Cookie and Authorization values of a request

package auth

import (
	"net/http"
)

// ViewFromRequest builds a RequestView from r. Only the first value of the
// Cookie and Authorization headers is consulted; Original is r itself.
func ViewFromRequest(r *http.Request) RequestView {
	view := RequestView{
		URI:      r.URL.RequestURI(),
		Original: r,
	}
	if values := r.Header.Values("Cookie"); len(values) > 0 {
		view.Cookie = &values[0]
	}
	if values := r.Header.Values("Authorization"); len(values) > 0 {
		view.Authorization = &values[0]
	}
	return view
}

// sessionCookie builds the Set-Cookie for an IssueSession decision.
func sessionCookie(d Decision, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     d.CookieName,
		Value:    d.Token,
		Path:     "/",
		Expires:  d.Expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// withoutCredentials returns r, or a clone of r with the Authorization
// header removed when the browser replays saved Basic credentials.
func withoutCredentials(r *http.Request) *http.Request {
	if r.Header.Get("Authorization") == "" {
		return r
	}
	clone := r.Clone(r.Context())
	clone.Header.Del("Authorization")
	return clone
}

// Middleware creates an HTTP middleware that gates next behind the gateway.
// Passthrough calls next without the Authorization header. IssueSession
// answers 302 to the request URI with the session cookie; Reject answers 401.
func Middleware(gw *Gateway) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := gw.Decide(r.Context(), ViewFromRequest(r))

			switch d.Kind {
			case Passthrough:
				next.ServeHTTP(w, withoutCredentials(r))
			case IssueSession:
				http.SetCookie(w, sessionCookie(d, r.TLS != nil))
				w.Header().Set("Location", d.RedirectURI)
				w.Header().Set("Cache-Control", "no-store")
				w.WriteHeader(http.StatusFound)
			default:
				w.Header().Set("WWW-Authenticate", d.Challenge)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			}
		})
	}
}
