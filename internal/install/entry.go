// Installs the distribution server as a systemd service and writes template configuration
package install

import (
	"bufio"
	"embed"
	"errors"
	"f1timing/internal/global"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

//go:embed static-files/*
var installationFiles embed.FS

type step struct {
	name string
	run  func() error
}

// Installs or upgrades the binary, template config and service. Safe to repeat.
func Run() (err error) {
	if os.Geteuid() != 0 {
		err = errors.New("installation must be run as root")
		return
	}

	steps := []step{
		{"binary", installBinary},
		{"template config", installConfig},
		{"systemd service", installService},
	}
	for _, s := range steps {
		err = s.run()
		if err != nil {
			err = fmt.Errorf("%s: %w", s.name, err)
			return
		}
	}

	fmt.Printf("f1timing server installed, start it with 'systemctl start f1timing'\n")
	return
}

// Removes the service, binary and config. Cached seeds are left in place when keepState is set.
// Every step is attempted, failures are reported together.
func Remove(keepState bool) (err error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		question := "Remove the f1timing server and its configuration?"
		if !keepState {
			question = fmt.Sprintf("Remove the f1timing server, its configuration and the cached seeds in '%s'?", global.DefaultStateDir)
		}
		if !confirm(os.Stdin, os.Stdout, question) {
			fmt.Printf("Aborting uninstall\n")
			return
		}
	}

	if os.Geteuid() != 0 {
		err = errors.New("uninstall must be run as root")
		return
	}

	steps := []step{
		{"systemd service", uninstallService},
		{"binary", uninstallBinary},
		{"template config", uninstallConfig},
	}
	if !keepState {
		steps = append(steps, step{"state directory", uninstallState})
	}

	var failures []error
	for _, s := range steps {
		stepErr := s.run()
		if stepErr != nil {
			failures = append(failures, fmt.Errorf("%s: %w", s.name, stepErr))
		}
	}
	err = errors.Join(failures...)
	return
}

func uninstallState() (err error) {
	err = os.RemoveAll(global.DefaultStateDir)
	if err != nil {
		return
	}
	fmt.Printf("Removed '%s'\n", global.DefaultStateDir)
	return
}

// Asks a yes/no question, only an explicit yes counts
func confirm(in io.Reader, out io.Writer, question string) (yes bool) {
	fmt.Fprintf(out, "%s (yes/no): ", question)
	input, _ := bufio.NewReader(in).ReadString('\n')
	yes = strings.EqualFold(strings.TrimSpace(input), "yes")
	return
}
