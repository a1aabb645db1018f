// ABOUTME: Lambda@Edge viewer-request handler driving the auth gateway
// ABOUTME: Undecodable events are answered with a challenge rather than an error

package edge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/2389/cfauth/internal/auth"
)

// Handler answers CloudFront viewer-request events.
type Handler struct {
	gateway *auth.Gateway
	logger  *slog.Logger
}

// NewHandler creates a Handler deciding through gw.
func NewHandler(gw *auth.Gateway, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		gateway: gw,
		logger:  logger.With("component", "edge"),
	}
}

// Handle decides one event and returns either the original request or a
// generated response. The error return is reserved for encoding failures.
func (h *Handler) Handle(ctx context.Context, event json.RawMessage) (json.RawMessage, error) {
	view, err := ViewFromEvent(event)
	if err != nil {
		h.logger.Warn("rejecting undecodable event", "error", err)
		return encode(unauthorizedResponse(auth.Challenge))
	}

	d := h.gateway.Decide(ctx, view)
	switch d.Kind {
	case auth.Passthrough:
		return view.Original.(json.RawMessage), nil
	case auth.IssueSession:
		return encode(redirectResponse(d))
	default:
		return encode(unauthorizedResponse(d.Challenge))
	}
}

func encode(resp Response) (json.RawMessage, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encoding response: %w", err)
	}
	return data, nil
}
