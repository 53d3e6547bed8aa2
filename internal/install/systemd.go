package install

import (
	"f1timing/internal/global"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Embedded unit with this install's paths filled in
func renderUnit() (unitFile []byte, err error) {
	unitFile, err = installationFiles.ReadFile("static-files/f1timing.service")
	if err != nil {
		err = fmt.Errorf("unable to retrieve unit file from embedded filesystem: %w", err)
		return
	}

	replacer := strings.NewReplacer(
		"$executableFilePath", global.DefaultBinaryPath,
		"$configFilePath", global.DefaultConfigPath,
	)
	unitFile = []byte(replacer.Replace(string(unitFile)))
	return
}

// Runs systemctl, returning its trimmed output. Exit codes listed in tolerated are not errors
// (is-enabled and is-active report state through the exit code).
func systemctl(tolerated []string, args ...string) (output string, err error) {
	raw, err := exec.Command("systemctl", args...).CombinedOutput()
	output = strings.TrimSpace(string(raw))
	if err == nil {
		return
	}
	for _, state := range tolerated {
		if strings.Contains(output, state) {
			err = nil
			return
		}
	}
	err = fmt.Errorf("systemctl %s failed: %w: %s", strings.Join(args, " "), err, output)
	return
}

func installService() (err error) {
	unitName := filepath.Base(global.DefaultUnitPath)

	unitFile, err := renderUnit()
	if err != nil {
		return
	}
	err = os.WriteFile(global.DefaultUnitPath, unitFile, 0644)
	if err != nil {
		return
	}

	_, err = systemctl(nil, "daemon-reload")
	if err != nil {
		return
	}

	enabled, err := systemctl([]string{"disabled"}, "is-enabled", unitName)
	if err != nil {
		return
	}
	if enabled != "enabled" {
		_, err = systemctl(nil, "enable", unitName)
		if err != nil {
			return
		}
	}

	fmt.Printf("Successfully installed Systemd service\n")
	fmt.Printf("  IMPORTANT: modify the configuration to your needs and start the service with 'systemctl start %s'\n", unitName)
	return
}

func uninstallService() (err error) {
	unitName := filepath.Base(global.DefaultUnitPath)

	enabled, err := systemctl([]string{"disabled", "not-found"}, "is-enabled", unitName)
	if err != nil {
		return
	}
	if enabled == "enabled" {
		_, err = systemctl(nil, "disable", unitName)
		if err != nil {
			return
		}
	}

	active, err := systemctl([]string{"inactive", "failed", "unknown"}, "is-active", unitName)
	if err != nil {
		return
	}
	if active == "active" || active == "reloading" {
		_, err = systemctl(nil, "stop", unitName)
		if err != nil {
			return
		}
	}

	err = os.Remove(global.DefaultUnitPath)
	if err != nil && !os.IsNotExist(err) {
		return
	}

	_, err = systemctl(nil, "daemon-reload")
	if err != nil {
		return
	}

	fmt.Printf("Successfully uninstalled systemd service\n")
	return
}
