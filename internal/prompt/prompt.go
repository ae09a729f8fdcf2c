// Package prompt handles interactive confirmation at the terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Config holds configuration for prompting.
type Config struct {
	// NonInteractive answers every confirmation with yes. Set by --yes and
	// by callers running unattended.
	NonInteractive bool
	// In and Out default to stdin and stdout.
	In  io.Reader
	Out io.Writer
}

func (cfg Config) in() io.Reader {
	if cfg.In != nil {
		return cfg.In
	}
	return os.Stdin
}

func (cfg Config) out() io.Writer {
	if cfg.Out != nil {
		return cfg.Out
	}
	return os.Stdout
}

// Confirm asks the user to confirm an action. A read failure counts as a
// refusal.
func Confirm(prompt string, cfg Config) bool {
	if cfg.NonInteractive {
		return true
	}

	fmt.Fprintf(cfg.out(), "%s (y/n): ", prompt)
	response, err := bufio.NewReader(cfg.in()).ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
