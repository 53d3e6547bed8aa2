package cli

import (
	"context"
	"f1timing/internal/install"
	"flag"
	"os"
)

// Setup/installation options
func SetupMode(ctx context.Context, commandname string, args []string) {
	var installServer bool
	var uninstallServer bool
	var newConf bool
	var templateConfPath string
	var keepState bool

	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	commandFlags.BoolVar(&installServer, "install", false, "Install/Upgrade the distribution server as a systemd service")
	commandFlags.BoolVar(&uninstallServer, "uninstall", false, "Remove the distribution server")
	commandFlags.BoolVar(&keepState, "keep-state", false, "Keep cached decryption seeds when uninstalling")
	commandFlags.BoolVar(&newConf, "config-template", false, "Create new template config for the server (using config argument)")
	commandFlags.StringVar(&templateConfPath, "c", "", "Path to template config file")
	commandFlags.StringVar(&templateConfPath, "config", "", "Path to template config file")
	parseCommand(ctx, commandFlags, commandname, args, 1)

	switch {
	case newConf:
		exitOnError("Error", install.CreateTemplateConfig(templateConfPath))
	case installServer:
		exitOnError("Installation failed", install.Run())
	case uninstallServer:
		exitOnError("Uninstall incomplete", install.Remove(keepState))
	default:
		commandFlags.Usage()
		os.Exit(1)
	}
}
