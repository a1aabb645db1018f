// ABOUTME: Session token subcommands for minting and inspecting CFAUTH cookies
// ABOUTME: Uses the signing key from the loaded config

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/2389/cfauth/internal/session"
)

func runToken(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: token <generate|inspect> [args]")
	}

	switch args[0] {
	case "generate", "gen":
		return runTokenGenerate(args[1:])
	case "inspect", "show":
		return runTokenInspect(args[1:])
	default:
		return fmt.Errorf("unknown token subcommand: %s (use generate, inspect)", args[0])
	}
}

// parseValidityFlag reads --validity from args, supporting "--validity 1h" and "--validity=1h".
func parseValidityFlag(args []string, fallback time.Duration) (time.Duration, error) {
	validity := fallback
	for i := 0; i < len(args); i++ {
		arg := args[i]
		var raw string
		switch {
		case arg == "--validity" || arg == "-v":
			if i+1 >= len(args) {
				return 0, fmt.Errorf("--validity requires a value")
			}
			raw = args[i+1]
			i++
		case strings.HasPrefix(arg, "--validity="):
			raw = strings.TrimPrefix(arg, "--validity=")
		default:
			return 0, fmt.Errorf("unexpected argument: %s", arg)
		}

		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("parsing --validity %q: %w", raw, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("--validity must be positive")
		}
		validity = d
	}
	return validity, nil
}

func runTokenGenerate(args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	validity, err := parseValidityFlag(args, cfg.Session.Validity)
	if err != nil {
		return err
	}

	signer, err := session.NewSigner([]byte(cfg.Session.SigningKey))
	if err != nil {
		return fmt.Errorf("creating session signer: %w", err)
	}

	token := signer.Generate(time.Now(), validity)
	if fi, err := os.Stdout.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		// Piped: token only
		fmt.Println(token)
		return nil
	}

	expires, _ := session.Expiry(token)
	green := color.New(color.FgGreen)
	gray := color.New(color.FgHiBlack)
	fmt.Println()
	green.Println("  Session token")
	fmt.Printf("  %s\n", token)
	fmt.Println()
	gray.Printf("  Cookie:  %s=%s\n", cfg.Session.CookieName, token)
	gray.Printf("  Expires: %s\n", expires.Local().Format(time.RFC1123))
	fmt.Println()
	return nil
}

func runTokenInspect(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: token inspect <token>")
	}
	token := strings.TrimSpace(args[0])

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	signer, err := session.NewSigner([]byte(cfg.Session.SigningKey))
	if err != nil {
		return fmt.Errorf("creating session signer: %w", err)
	}

	expires, err := session.Expiry(token)
	if err != nil {
		return err
	}

	now := time.Now()
	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Session token")
	cyan.Println("  -------------")
	fmt.Printf("  Expires:   %s (%s)\n", expires.Local().Format(time.RFC1123), describeRemaining(expires.Sub(now)))

	fmt.Print("  Status:    ")
	switch err := signer.Verify(token, now); {
	case err == nil:
		color.Green("valid")
	case errors.Is(err, session.ErrExpiredToken):
		color.Yellow("expired")
	case errors.Is(err, session.ErrInvalidSignature):
		color.Red("bad signature")
	default:
		color.Red("invalid: %v", err)
	}
	fmt.Println()
	return nil
}

func describeRemaining(d time.Duration) string {
	d = d.Round(time.Second)
	if d < 0 {
		return fmt.Sprintf("%s ago", -d)
	}
	return fmt.Sprintf("in %s", d)
}
