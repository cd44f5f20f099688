// SPDX-License-Identifier: Apache-2.0
package passphrase

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

// Source indicates where the key passphrase is read from
type Source int

const (
	// SourceAuto tries the flag, ENV, piped stdin, the OS keyring cache, then the TUI
	SourceAuto Source = iota
	// SourceEnv reads the passphrase from the environment only
	SourceEnv
	// SourceStdin reads the passphrase from stdin
	SourceStdin
	// SourceTUI uses an interactive prompt
	SourceTUI
)

// EnvPassphrase is the environment variable holding the key passphrase
const EnvPassphrase = "KEEP_PASSPHRASE"

// ErrNoPassphrase is returned when no source produced a passphrase
var ErrNoPassphrase = errors.New("no passphrase available")

// PromptFunc asks the user for a passphrase, twice when confirm is set
type PromptFunc func(title string, confirm bool) (string, error)

// Resolver locates the passphrase for a keyring. The store never prompts;
// commands resolve the passphrase here and pass it down.
type Resolver struct {
	Source      Source
	Flag        string // value of --passphrase, wins over every source
	Interactive bool   // allow the TUI prompt
	Cache       Cache  // nil disables the OS keyring cache

	stdin  io.Reader
	piped  func() bool
	prompt PromptFunc
}

// NewResolver returns a resolver reading os.Stdin and prompting through prompt
func NewResolver(source Source, flag string, interactive bool, cache Cache, prompt PromptFunc) *Resolver {
	return &Resolver{
		Source:      source,
		Flag:        flag,
		Interactive: interactive,
		Cache:       cache,
		stdin:       os.Stdin,
		piped:       func() bool { return !term.IsTerminal(int(os.Stdin.Fd())) },
		prompt:      prompt,
	}
}

// Get returns the passphrase for account (a keyring directory)
func (r *Resolver) Get(account, title string) (string, error) {
	if r.Flag != "" {
		return r.Flag, nil
	}

	switch r.Source {
	case SourceEnv:
		return fromEnv()
	case SourceStdin:
		return r.fromStdin()
	case SourceTUI:
		return r.fromTUI(title, false)
	case SourceAuto:
		if passphrase, err := fromEnv(); err == nil {
			return passphrase, nil
		}

		if r.piped() {
			passphrase, err := r.fromStdin()
			if err == nil {
				return passphrase, nil
			}
			log.Debugf("No passphrase on stdin: %v", err)
		}

		if r.Cache != nil {
			passphrase, err := r.Cache.Get(account)
			if err == nil {
				log.Debugf("Using cached passphrase for %s", account)
				return passphrase, nil
			}
			if !errors.Is(err, ErrNotCached) {
				log.Warnf("Failed to read passphrase cache: %v", err)
			}
		}

		if r.Interactive {
			return r.fromTUI(title, false)
		}
		return "", ErrNoPassphrase
	default:
		return "", fmt.Errorf("invalid passphrase source: %d", r.Source)
	}
}

// New returns a passphrase for a key being created. Interactive entry is
// confirmed; an empty result means the key stays unprotected.
func (r *Resolver) New(title string) (string, error) {
	if r.Flag != "" {
		return r.Flag, nil
	}
	if passphrase, err := fromEnv(); err == nil {
		return passphrase, nil
	}
	if r.piped() {
		return r.fromStdin()
	}
	if r.Interactive {
		passphrase, err := r.prompt(title, true)
		if err != nil {
			return "", fmt.Errorf("failed to get passphrase from TUI: %w", err)
		}
		return passphrase, nil
	}
	return "", nil
}

// Remember caches a passphrase that just worked
func (r *Resolver) Remember(account, passphrase string) {
	if r.Cache == nil || passphrase == "" || passphrase == r.Flag {
		return
	}
	if err := r.Cache.Set(account, passphrase); err != nil {
		log.Warnf("Failed to cache passphrase: %v", err)
	}
}

// Forget drops a cached passphrase that was rejected
func (r *Resolver) Forget(account string) {
	if r.Cache == nil {
		return
	}
	if err := r.Cache.Delete(account); err != nil {
		log.Warnf("Failed to clear cached passphrase: %v", err)
	}
}

func fromEnv() (string, error) {
	passphrase := os.Getenv(EnvPassphrase)
	if passphrase == "" {
		return "", fmt.Errorf("environment variable %s not set", EnvPassphrase)
	}
	return passphrase, nil
}

// fromStdin reads a single line and trims surrounding whitespace
func (r *Resolver) fromStdin() (string, error) {
	scanner := bufio.NewScanner(r.stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return "", fmt.Errorf("no input from stdin")
	}

	passphrase := strings.TrimSpace(scanner.Text())
	if passphrase == "" {
		return "", fmt.Errorf("empty passphrase from stdin")
	}
	return passphrase, nil
}

func (r *Resolver) fromTUI(title string, confirm bool) (string, error) {
	if r.prompt == nil {
		return "", ErrNoPassphrase
	}
	passphrase, err := r.prompt(title, confirm)
	if err != nil {
		return "", fmt.Errorf("failed to get passphrase from TUI: %w", err)
	}
	if passphrase == "" {
		return "", fmt.Errorf("empty passphrase")
	}
	return passphrase, nil
}

// ParseSource parses a string into a Source
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return SourceAuto, nil
	case "env":
		return SourceEnv, nil
	case "stdin":
		return SourceStdin, nil
	case "tui":
		return SourceTUI, nil
	default:
		return SourceAuto, fmt.Errorf("invalid passphrase source: %s (valid: auto, env, stdin, tui)", s)
	}
}
