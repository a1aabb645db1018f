// ABOUTME: CloudFront Lambda@Edge event and response wire types
// ABOUTME: Request bodies stay raw so unchanged requests round-trip exactly

package edge

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/2389/cfauth/internal/auth"
)

// ErrNoRecords is returned when an event carries no records.
var ErrNoRecords = errors.New("event has no records")

// ErrNoRequest is returned when the first record has no request object.
var ErrNoRequest = errors.New("event record has no request")

// Event is a CloudFront Lambda@Edge event.
type Event struct {
	Records []Record `json:"Records"`
}

// Record is one entry of Event.Records.
type Record struct {
	CF CF `json:"cf"`
}

// CF holds the distribution config and the viewer request.
type CF struct {
	Config  json.RawMessage `json:"config,omitempty"`
	Request json.RawMessage `json:"request"`
}

// HeaderValue is one value of a CloudFront header list.
type HeaderValue struct {
	Key   string `json:"key,omitempty"`
	Value string `json:"value"`
}

// Headers maps lowercase header names to their values.
type Headers map[string][]HeaderValue

// first returns the first value of name, if any.
func (h Headers) first(name string) *string {
	values := h[name]
	if len(values) == 0 {
		return nil
	}
	v := values[0].Value
	return &v
}

// Request is the subset of a CloudFront request the gateway reads.
type Request struct {
	URI     string  `json:"uri"`
	Headers Headers `json:"headers"`
}

// Response is a generated CloudFront response.
type Response struct {
	Status            string  `json:"status"`
	StatusDescription string  `json:"statusDescription"`
	Headers           Headers `json:"headers"`
}

// requestFromEvent extracts the raw request object of the first record.
func requestFromEvent(raw []byte) (json.RawMessage, error) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("decoding event: %w", err)
	}
	if len(ev.Records) == 0 {
		return nil, ErrNoRecords
	}
	req := ev.Records[0].CF.Request
	if len(req) == 0 || string(req) == "null" {
		return nil, ErrNoRequest
	}
	return req, nil
}

// ViewFromEvent decodes a CloudFront event into a RequestView. Only the first
// cookie and authorization header values are consulted. Original holds the
// raw request JSON.
func ViewFromEvent(raw []byte) (auth.RequestView, error) {
	rawReq, err := requestFromEvent(raw)
	if err != nil {
		return auth.RequestView{}, err
	}

	var req Request
	if err := json.Unmarshal(rawReq, &req); err != nil {
		return auth.RequestView{}, fmt.Errorf("decoding request: %w", err)
	}

	return auth.RequestView{
		Cookie:        req.Headers.first("cookie"),
		Authorization: req.Headers.first("authorization"),
		URI:           req.URI,
		Original:      rawReq,
	}, nil
}

// redirectResponse builds the 302 response for an IssueSession decision.
func redirectResponse(d auth.Decision) Response {
	return Response{
		Status:            "302",
		StatusDescription: "Found",
		Headers: Headers{
			"location":   {{Key: "Location", Value: d.RedirectURI}},
			"set-cookie": {{Key: "Set-Cookie", Value: d.SetCookie()}},
		},
	}
}

// unauthorizedResponse builds the 401 challenge response.
func unauthorizedResponse(challenge string) Response {
	return Response{
		Status:            "401",
		StatusDescription: "Unauthorized",
		Headers: Headers{
			"www-authenticate": {{Key: "WWW-Authenticate", Value: challenge}},
		},
	}
}
