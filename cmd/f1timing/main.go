package main

import (
	"context"
	"f1timing/internal/cli"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"flag"
	"fmt"
	"os"
	"runtime"
)

func main() {
	global.CmdOpts = cli.DefineOptions()

	args := os.Args
	commandFlags := flag.NewFlagSet(args[0], flag.ExitOnError)
	cli.SetGlobalArguments(commandFlags)

	commandFlags.Usage = func() {
		cli.PrintHelpMenu(commandFlags, cli.RootCLICommand, global.CmdOpts)
	}
	if len(args) < 2 {
		cli.PrintHelpMenu(commandFlags, cli.RootCLICommand, global.CmdOpts)
		os.Exit(1)
	}
	commandFlags.Parse(args[1:])
	if commandFlags.NArg() == 0 {
		cli.PrintHelpMenu(commandFlags, cli.RootCLICommand, global.CmdOpts)
		os.Exit(1)
	}

	// Retrieve command and args
	command := commandFlags.Arg(0)
	args = commandFlags.Args()[1:]

	// Setting global logging
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := logctx.NewLogger("global", global.Verbosity, ctx.Done()) // New logger tied to global
	ctx = logctx.WithLogger(ctx, logger)                                // Add logger to global ctx
	logctx.StartWatcher(logger, os.Stderr)                              // Stdout belongs to command output

	// Process commands
	switch command {
	case "server":
		cli.ServerMode(ctx, command, args)
	case "record":
		cli.RecordMode(ctx, command, args)
	case "play":
		cli.PlayMode(ctx, command, args)
	case "dump":
		cli.DumpMode(ctx, command, args)
	case "fixup":
		cli.FixupMode(ctx, command, args)
	case "stats":
		cli.StatsMode(ctx, command, args)
	case "configure":
		cli.SetupMode(ctx, command, args)
	case "version":
		if global.Verbosity > 1 || (len(args) > 0 && (args[0] == "--verbosity" || args[0] == "-v")) {
			fmt.Printf("f1timing %s\n", global.ProgVersion)
			fmt.Printf("Built using %s(%s) for %s on %s\n", runtime.Version(), runtime.Compiler, runtime.GOOS, runtime.GOARCH)
		} else {
			fmt.Println(global.ProgVersion)
		}
	default:
		cli.PrintHelpMenu(commandFlags, cli.RootCLICommand, global.CmdOpts)
		os.Exit(1)
	}

	// Finish up any log writes for global logger
	cancel()
	logger.Wake()
	logger.Wait()
}
