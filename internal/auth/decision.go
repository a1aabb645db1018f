// ABOUTME: Decision result produced once per request by the gateway
// ABOUTME: Exactly one of Passthrough, IssueSession, or Reject

package auth

import "time"

// DefaultCookieName is the session cookie name.
const DefaultCookieName = "CFAUTH"

// Challenge is the WWW-Authenticate value sent with a Reject.
const Challenge = `Basic realm="Basic Auth", charset="UTF-8"`

// Kind identifies which decision was taken.
type Kind int

const (
	// Passthrough forwards the original request unchanged.
	Passthrough Kind = iota
	// IssueSession redirects to the original URI with a fresh session cookie.
	IssueSession
	// Reject answers with a 401 Basic challenge.
	Reject
)

func (k Kind) String() string {
	switch k {
	case Passthrough:
		return "passthrough"
	case IssueSession:
		return "issue_session"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

// Decision is the outcome for one request. Only the fields for Kind are set.
type Decision struct {
	Kind Kind

	// Passthrough
	Original any

	// IssueSession
	Token       string
	CookieName  string
	RedirectURI string
	Expires     time.Time

	// Reject
	Challenge string
}

// SetCookie returns the minimal Set-Cookie value "<name>=<token>" for an IssueSession.
func (d Decision) SetCookie() string {
	return d.CookieName + "=" + d.Token
}
