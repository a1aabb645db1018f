// Package config handles configuration loading for cfauth.
//
// # Overview
//
// Configuration is loaded from YAML files, or TOML files when the name ends
// in .toml, with environment variable expansion. Defaults are applied before
// validation.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from CFAUTH_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/cfauth/config.yaml (or ~/.config/cfauth/config.yaml)
//  3. ./cfauth.yaml (bundled next to a Lambda binary)
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	session:
//	  signing_key: "${CFAUTH_SIGNING_KEY}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string.
//
// # Configuration Sections
//
// Session cookie:
//
//	session:
//	  signing_key: "${CFAUTH_SIGNING_KEY}"  # 1 to 64 bytes, required
//	  validity: "30m"
//	  cookie_name: "CFAUTH"
//
// Reference credentials:
//
//	credentials:
//	  source: "secretsmanager"  # static, bcrypt, secretsmanager, sqlite
//	  secret_id: "cfauth/basic"
//	  region: "us-east-1"
//	  timeout: "5s"
//
// HTTP gate (serve only):
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//	upstream:
//	  url: "http://127.0.0.1:3000"
//
// Tailscale:
//
//	tailscale:
//	  enabled: false
//	  hostname: "cfauth"
//	  auth_key: "${TS_AUTHKEY}"
//	  https: true
//	  funnel: false
//
// Logging and metrics:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//	metrics:
//	  enabled: true
//	  path: "/metrics"
//
// # Usage
//
//	cfg, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
