// ABOUTME: Offline decision of a single CloudFront event
// ABOUTME: Prints the handler's JSON response; logs go to stderr

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/2389/cfauth/internal/edge"
)

func runDecide(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("usage: decide [file]")
	}

	in := io.Reader(os.Stdin)
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening event: %w", err)
		}
		defer f.Close()
		in = f
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Logging, os.Stderr)

	gate, _, closeFn, err := buildGate(ctx, cfg, nil, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	return decideEvent(ctx, edge.NewHandler(gate, logger), in, os.Stdout)
}

// decideEvent runs one event from in through h and writes the indented response to out.
func decideEvent(ctx context.Context, h *edge.Handler, in io.Reader, out io.Writer) error {
	event, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading event: %w", err)
	}

	resp, err := h.Handle(ctx, event)
	if err != nil {
		return err
	}

	var pretty any
	if err := json.Unmarshal(resp, &pretty); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(pretty)
}
