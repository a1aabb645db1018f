// ABOUTME: Entry point for cfauth, a Basic auth and session cookie gate
// ABOUTME: Runs as an HTTP reverse proxy gate or as a CloudFront Lambda@Edge handler

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/fatih/color"

	"github.com/2389/cfauth/internal/auth"
	"github.com/2389/cfauth/internal/config"
	"github.com/2389/cfauth/internal/credentials"
	"github.com/2389/cfauth/internal/edge"
	"github.com/2389/cfauth/internal/gateway"
	"github.com/2389/cfauth/internal/metrics"
	"github.com/2389/cfauth/internal/session"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
        __              _   _
   ___ / _| __ _ _   _| |_| |__
  / __| |_ / _' | | | | __| '_ \
 | (__|  _| (_| | |_| | |_| | | |
  \___|_|  \__,_|\__,_|\__|_| |_|
`

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: cfauth <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  serve                        Start the HTTP gate in front of upstream.url")
	fmt.Println("  lambda                       Run as a CloudFront viewer-request handler")
	fmt.Println("  decide [file]                Decide one CloudFront event from file or stdin")
	fmt.Println("  init                         Create a new config file interactively")
	fmt.Println("  token generate [--validity]  Mint a session token")
	fmt.Println("  token inspect <token>        Show a token's expiry and signature status")
	fmt.Println("  secret set <key> <user>      Store reference credentials in the SQLite store")
	fmt.Println("                               (--no-overwrite refuses to replace an existing key)")
	fmt.Println("  secret list                  List stored credentials (passwords hidden)")
	fmt.Println("  secret delete <key>          Remove stored credentials")
	fmt.Println("  hash-password                Print a bcrypt hash for the bcrypt source")
	fmt.Println("  health                       Check gate health")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  CFAUTH_CONFIG                Config file path")
	fmt.Println("  CFAUTH_PASSWORD              Password for secret set and hash-password")
	fmt.Println()
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	args := os.Args[2:]

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "lambda":
		err = runLambda(ctx)
	case "decide":
		err = runDecide(ctx, args)
	case "init":
		err = runInit()
	case "token":
		err = runToken(args)
	case "secret":
		err = runSecret(ctx, args)
	case "hash-password":
		err = runHashPassword()
	case "health":
		err = runHealth(ctx)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, string, error) {
	configPath := config.DefaultPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, configPath, fmt.Errorf("loading config: %w", err)
	}
	return cfg, configPath, nil
}

// buildGate assembles the signer, the credential source, and the gateway.
// The returned close function releases the credential source.
func buildGate(ctx context.Context, cfg *config.Config, observer auth.Observer, logger *slog.Logger) (*auth.Gateway, credentials.Validator, func() error, error) {
	signer, err := session.NewSigner([]byte(cfg.Session.SigningKey))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating session signer: %w", err)
	}

	validator, closeFn, err := credentials.FromConfig(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating credential source: %w", err)
	}

	opts := []auth.Option{
		auth.WithCookieName(cfg.Session.CookieName),
		auth.WithValidity(cfg.Session.Validity),
		auth.WithLogger(logger),
	}
	if observer != nil {
		opts = append(opts, auth.WithObserver(observer))
	}

	return auth.NewGateway(signer, validator, opts...), validator, closeFn, nil
}

func runServe(ctx context.Context) error {
	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	// Version info
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, configPath, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	logger := setupLogger(cfg.Logging, os.Stdout)

	// Startup info
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:      %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Upstream:    %s\n", cfg.Upstream.URL)
	green.Print("    ▶ ")
	fmt.Printf("Credentials: %s\n", cfg.Credentials.Source)
	if !cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("HTTP:        %s\n", cfg.Server.HTTPAddr)
	}

	// Tailscale status
	if cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Tailscale:   ")
		cyan.Print(cfg.Tailscale.Hostname)
		if cfg.Tailscale.Funnel {
			yellow.Print(" [funnel]")
		} else if cfg.Tailscale.HTTPS {
			yellow.Print(" [https]")
		}
		if cfg.Tailscale.Ephemeral {
			gray.Print(" (ephemeral)")
		}
		fmt.Println()
	}

	fmt.Println()

	var m *metrics.Metrics
	var observer auth.Observer
	if cfg.Metrics.Enabled {
		m = metrics.New()
		observer = m
	}

	gate, validator, closeFn, err := buildGate(ctx, cfg, observer, logger)
	if err != nil {
		return err
	}

	logger.Info("starting cfauth",
		"config", configPath,
		"upstream", cfg.Upstream.URL,
		"credentials", cfg.Credentials.Source,
	)

	gw, err := gateway.New(cfg, gateway.Deps{
		Gate:      gate,
		Validator: validator,
		Metrics:   m,
		Close:     closeFn,
	}, logger)
	if err != nil {
		_ = closeFn()
		return fmt.Errorf("creating gateway: %w", err)
	}

	return gw.Run(ctx)
}

func runLambda(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	// Lambda captures stdout into CloudWatch, so the JSON handler is used there
	logCfg := cfg.Logging
	logCfg.Format = "json"
	logger := setupLogger(logCfg, os.Stdout)

	gate, _, closeFn, err := buildGate(ctx, cfg, nil, logger)
	if err != nil {
		return err
	}

	handler := edge.NewHandler(gate, logger)
	logger.Info("starting lambda handler", "credentials", cfg.Credentials.Source)
	// StartWithOptions never returns; resources are released on container spindown.
	lambda.StartWithOptions(handler.Handle,
		lambda.WithContext(ctx),
		lambda.WithEnableSIGTERM(shutdownHook(closeFn, logger)),
	)
	return nil
}

// shutdownHook wraps closeFn as a SIGTERM callback, logging a failed close.
func shutdownHook(closeFn func() error, logger *slog.Logger) func() {
	return func() {
		if err := closeFn(); err != nil {
			logger.Warn("closing credential source", "error", err)
			return
		}
		logger.Info("credential source closed")
	}
}

func runHealth(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	// Make HTTP request to health endpoint with context
	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}
