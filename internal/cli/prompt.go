package cli

import (
	"f1timing/internal/global"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Password from the environment, otherwise asked for on the terminal without echo
func resolvePassword(username, configured string) (password string, err error) {
	password = configured
	if password == "" {
		password = os.Getenv(global.PasswordEnvVar)
	}
	if password != "" {
		return
	}

	stdin := int(os.Stdin.Fd())
	if !term.IsTerminal(stdin) {
		err = fmt.Errorf("no password for %s: set %s or run from a terminal", username, global.PasswordEnvVar)
		return
	}

	fmt.Fprintf(os.Stderr, "Password for %s: ", username)
	raw, err := term.ReadPassword(stdin)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		err = fmt.Errorf("failed to read password: %w", err)
		return
	}

	password = strings.TrimRight(string(raw), "\r\n")
	if password == "" {
		err = fmt.Errorf("empty password")
	}
	return
}
