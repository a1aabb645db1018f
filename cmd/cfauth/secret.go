// ABOUTME: Credential management subcommands for the SQLite secrets store
// ABOUTME: Passwords come from CFAUTH_PASSWORD, a terminal prompt, or stdin

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/2389/cfauth/internal/credentials"
	"github.com/2389/cfauth/internal/store"
)

func runSecret(ctx context.Context, args []string) error {
	// Default to list
	subcmd := "list"
	if len(args) > 0 {
		subcmd = args[0]
		args = args[1:]
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.Path == "" {
		return fmt.Errorf("database.path is not configured")
	}

	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	switch subcmd {
	case "set", "put":
		return runSecretSet(ctx, s, args)
	case "list", "ls":
		return runSecretList(ctx, s)
	case "delete", "rm", "remove":
		return runSecretDelete(ctx, s, args)
	default:
		return fmt.Errorf("unknown secret subcommand: %s (use set, list, delete)", subcmd)
	}
}

func runSecretSet(ctx context.Context, s store.SecretsStore, args []string) error {
	overwrite := true
	var positional []string
	for _, arg := range args {
		if arg == "--no-overwrite" {
			overwrite = false
			continue
		}
		positional = append(positional, arg)
	}
	if len(positional) != 2 {
		return fmt.Errorf("usage: secret set [--no-overwrite] <key> <user>")
	}
	key, username := positional[0], positional[1]

	password, err := readPassword("Password for " + username)
	if err != nil {
		return err
	}

	createdBy := ""
	if u, err := user.Current(); err == nil {
		createdBy = u.Username
	}

	ref := credentials.Reference{User: username, Password: password}
	if err := storeCredentials(ctx, s, key, ref, createdBy, overwrite); err != nil {
		return err
	}

	color.Green("  ✓ Stored credentials for %s under %s\n", username, key)
	return nil
}

// storeCredentials writes ref under key. Without overwrite an existing key is
// left untouched and reported as an error.
func storeCredentials(ctx context.Context, s store.SecretsStore, key string, ref credentials.Reference, createdBy string, overwrite bool) error {
	stored := credentials.NewStored(s, key, nil)
	if overwrite {
		if err := stored.Put(ctx, ref, createdBy); err != nil {
			return fmt.Errorf("storing credentials: %w", err)
		}
		return nil
	}

	err := stored.Create(ctx, ref, createdBy)
	if errors.Is(err, store.ErrDuplicateSecret) {
		return fmt.Errorf("credentials already stored under %s (drop --no-overwrite to replace them)", key)
	}
	if err != nil {
		return fmt.Errorf("storing credentials: %w", err)
	}
	return nil
}

func runSecretList(ctx context.Context, s store.SecretsStore) error {
	secrets, err := s.ListAllSecrets(ctx)
	if err != nil {
		return fmt.Errorf("listing secrets: %w", err)
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Stored Credentials")
	cyan.Println("  ------------------")

	if len(secrets) == 0 {
		fmt.Println("  (no credentials)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  KEY\tUSER\tUPDATED\tBY")
	fmt.Fprintln(w, "  ---\t----\t-------\t--")
	for _, sec := range secrets {
		username := "(invalid)"
		if ref, err := credentials.ParseReference([]byte(sec.Value)); err == nil {
			username = ref.User
		}
		by := ""
		if sec.CreatedBy != nil {
			by = *sec.CreatedBy
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", sec.Key, username, sec.UpdatedAt.Local().Format("Jan 02 15:04"), by)
	}
	w.Flush()
	fmt.Println()
	return nil
}

func runSecretDelete(ctx context.Context, s store.SecretsStore, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: secret delete <key>")
	}
	if err := s.DeleteSecret(ctx, args[0]); err != nil {
		return fmt.Errorf("deleting secret %q: %w", args[0], err)
	}
	color.Green("  ✓ Deleted %s\n", args[0])
	return nil
}

func runHashPassword() error {
	password, err := readPassword("Password")
	if err != nil {
		return err
	}
	hash, err := credentials.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	fmt.Println(hash)
	return nil
}

// readPassword returns CFAUTH_PASSWORD if set, prompts without echo on a
// terminal, and otherwise reads one line from stdin.
func readPassword(label string) (string, error) {
	if p := os.Getenv("CFAUTH_PASSWORD"); p != "" {
		return p, nil
	}

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprintf(os.Stderr, "%s: ", label)
		data, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		if len(data) == 0 {
			return "", fmt.Errorf("password cannot be empty")
		}
		return string(data), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password from stdin: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return line, nil
}
