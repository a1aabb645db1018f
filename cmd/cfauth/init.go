// ABOUTME: Interactive config file creation for cfauth
// ABOUTME: Generates a random signing key and prompts for the credential source

package main

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/2389/cfauth/internal/config"
)

// getDataPath returns the path to the cfauth data directory.
// Priority: XDG_DATA_HOME/cfauth > ~/.local/share/cfauth
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "cfauth")
}

// defaultConfigPath returns where init writes when no config exists yet.
func defaultConfigPath() string {
	if p := os.Getenv("CFAUTH_CONFIG"); p != "" {
		return p
	}
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "cfauth.yaml"
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "cfauth", "config.yaml")
}

func generateSigningKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating signing key: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func isYes(s string) bool {
	s = strings.ToLower(s)
	return s == "yes" || s == "y"
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("cfauth configuration setup")
	fmt.Println("==========================")
	fmt.Println()

	outputFile := prompt(reader, "Config file path", defaultConfigPath())

	if _, err := os.Stat(outputFile); err == nil {
		if !isYes(prompt(reader, "File exists. Overwrite?", "no")) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	signingKey, err := generateSigningKey()
	if err != nil {
		return err
	}

	fmt.Println("\n--- Gate Configuration ---")
	httpAddr := prompt(reader, "HTTP address", "localhost:8080")
	upstreamURL := prompt(reader, "Upstream URL", "http://127.0.0.1:3000")
	validity := prompt(reader, "Session validity", config.DefaultValidity.String())

	fmt.Println("\n--- Credentials ---")
	source := prompt(reader, "Source (static/bcrypt/secretsmanager/sqlite)", config.SourceSecretsManager)

	var creds strings.Builder
	creds.WriteString("credentials:\n")
	creds.WriteString(fmt.Sprintf("  source: %q\n", source))
	var dbPath string
	switch source {
	case config.SourceStatic:
		creds.WriteString(fmt.Sprintf("  user: %q\n", prompt(reader, "User", "")))
		creds.WriteString("  password: \"${CFAUTH_BASIC_PASSWORD}\"\n")
	case config.SourceBcrypt:
		creds.WriteString(fmt.Sprintf("  user: %q\n", prompt(reader, "User", "")))
		creds.WriteString(fmt.Sprintf("  password_hash: %q\n", prompt(reader, "bcrypt hash (from cfauth hash-password)", "")))
	case config.SourceSecretsManager:
		creds.WriteString(fmt.Sprintf("  secret_id: %q\n", prompt(reader, "Secret ID", config.DefaultSecretKey)))
		creds.WriteString(fmt.Sprintf("  region: %q\n", prompt(reader, "AWS region", config.DefaultRegion)))
	case config.SourceSQLite:
		dbPath = prompt(reader, "SQLite database path", filepath.Join(getDataPath(), "secrets.db"))
		creds.WriteString(fmt.Sprintf("  secret_id: %q\n", prompt(reader, "Store key", config.DefaultSecretKey)))
	default:
		return fmt.Errorf("unknown credential source %q", source)
	}

	fmt.Println("\n--- Tailscale Configuration ---")
	tailscaleEnabled := isYes(prompt(reader, "Enable Tailscale?", "no"))
	var tsHostname, tsAuthKey string
	var tsEphemeral, tsHTTPS, tsFunnel bool
	if tailscaleEnabled {
		tsHostname = prompt(reader, "Tailscale hostname", "cfauth")
		tsAuthKey = prompt(reader, "Tailscale auth key (leave empty to use TS_AUTHKEY)", "")
		tsEphemeral = isYes(prompt(reader, "Ephemeral node?", "no"))
		tsFunnel = isYes(prompt(reader, "Enable Funnel (public HTTPS)?", "no"))
		if !tsFunnel {
			tsHTTPS = isYes(prompt(reader, "Serve HTTPS with tailnet certs?", "yes"))
		}
	}

	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	var cfg strings.Builder
	cfg.WriteString("# cfauth configuration\n")
	cfg.WriteString("# Generated by cfauth init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: %q\n\n", httpAddr))

	cfg.WriteString("upstream:\n")
	cfg.WriteString(fmt.Sprintf("  url: %q\n\n", upstreamURL))

	cfg.WriteString("session:\n")
	cfg.WriteString(fmt.Sprintf("  signing_key: %q\n", signingKey))
	cfg.WriteString(fmt.Sprintf("  validity: %q\n", validity))
	cfg.WriteString(fmt.Sprintf("  cookie_name: %q\n\n", config.DefaultCookieName))

	cfg.WriteString(creds.String())
	cfg.WriteString("\n")

	if dbPath != "" {
		cfg.WriteString("database:\n")
		cfg.WriteString(fmt.Sprintf("  path: %q\n\n", dbPath))
	}

	cfg.WriteString("tailscale:\n")
	cfg.WriteString(fmt.Sprintf("  enabled: %t\n", tailscaleEnabled))
	if tailscaleEnabled {
		cfg.WriteString(fmt.Sprintf("  hostname: %q\n", tsHostname))
		if tsAuthKey != "" {
			cfg.WriteString(fmt.Sprintf("  auth_key: %q\n", tsAuthKey))
		}
		cfg.WriteString(fmt.Sprintf("  ephemeral: %t\n", tsEphemeral))
		cfg.WriteString(fmt.Sprintf("  https: %t\n", tsHTTPS))
		cfg.WriteString(fmt.Sprintf("  funnel: %t\n", tsFunnel))
	}
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: %q\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: %q\n\n", logFormat))

	cfg.WriteString("metrics:\n")
	cfg.WriteString("  enabled: false\n")
	cfg.WriteString(fmt.Sprintf("  path: %q\n", config.DefaultMetricsPath))

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// The file holds the signing key
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	if source == config.SourceSQLite {
		fmt.Println("\nStore the reference credentials:")
		fmt.Printf("  cfauth secret set <key> <user>\n")
	}
	fmt.Println("\nTo start the gate:")
	fmt.Printf("  cfauth serve\n")

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
