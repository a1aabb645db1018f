// ABOUTME: Normalized request view and the header parsers the decision engine depends on
// ABOUTME: Cookie and Basic-auth parsing report failure as "not present", never as an error

package auth

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"
)

// RequestView is the minimal shape of an incoming request. Adapters build it
// from a platform event or an *http.Request; nil header pointers mean absent.
type RequestView struct {
	Cookie        *string
	Authorization *string
	URI           string

	// Original is returned untouched on Passthrough.
	Original any
}

// Credentials is a user/password pair extracted from one request.
type Credentials struct {
	User     string
	Password string
}

// ParseCookies parses a Cookie header of semicolon-separated name=value pairs.
// Names and values are trimmed; the first occurrence of a name wins. Pairs
// without "=" or with an empty name are skipped, so a header holding nothing
// else yields an empty map.
func ParseCookies(header string) map[string]string {
	cookies := make(map[string]string)
	for _, pair := range strings.Split(header, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		if _, seen := cookies[name]; !seen {
			cookies[name] = strings.TrimSpace(value)
		}
	}
	return cookies
}

// ParseBasicAuth extracts credentials from an Authorization header value.
// The header must be exactly "Basic <base64>", the payload must decode to
// valid UTF-8 containing a colon, and only the first colon separates user
// from password.
func ParseBasicAuth(header string) (Credentials, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Basic") {
		return Credentials{}, false
	}

	decoded, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return Credentials{}, false
	}
	if !utf8.Valid(decoded) {
		return Credentials{}, false
	}

	user, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return Credentials{}, false
	}
	return Credentials{User: user, Password: password}, true
}

// cookieValue returns the named cookie from the view, if any.
func (r RequestView) cookieValue(name string) (string, bool) {
	if r.Cookie == nil {
		return "", false
	}
	value, ok := ParseCookies(*r.Cookie)[name]
	return value, ok
}

// credentials returns the Basic credentials carried by the view, if any.
func (r RequestView) credentials() (Credentials, bool) {
	if r.Authorization == nil {
		return Credentials{}, false
	}
	return ParseBasicAuth(*r.Authorization)
}
