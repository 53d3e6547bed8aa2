package cli

import (
	"context"
	"errors"
	"f1timing/internal/global"
	"f1timing/internal/lifecycle"
	"f1timing/internal/logctx"
	"f1timing/internal/server"
	"flag"
)

func ServerMode(ctx context.Context, commandname string, args []string) {
	var configPath string
	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	SetCommon(commandFlags, &configPath)
	parseCommand(ctx, commandFlags, commandname, args, 0)

	ctx = logctx.AppendCtxTag(ctx, global.NSCLI)

	jsonCfg, err := server.LoadConfig(configPath)
	exitOnError("Error", err)

	cfg, err := jsonCfg.NewServerConf()
	exitOnError("Error", err)

	if cfg.PlaybackPath == "" {
		cfg.Password, err = resolvePassword(cfg.Username, cfg.Password)
		exitOnError("Error", err)
	}

	srv := server.New(cfg, server.NewUpstreamOpener(cfg))
	err = srv.Start(ctx)
	exitOnError("Error starting distribution server", err)

	// Tell whoever launched us the port is being served
	err = lifecycle.ReadinessSender()
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Failed to signal readiness to parent: %v\n", err)
	}
	err = lifecycle.NotifyReady(ctx)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify ready failed: %v\n", err)
	}
	go func() {
		replaced, err := lifecycle.WaitForParentExit()
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "%v\n", err)
			return
		}
		if replaced {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Previous process exited, taking over as main process\n")
			err = lifecycle.NotifyMainPID(ctx)
			if err != nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify main PID failed: %v\n", err)
			}
		}
	}()

	signalCtx, stopSignals := context.WithCancel(ctx)
	go lifecycle.SignalHandler(signalCtx, srv)

	err = srv.Wait()
	stopSignals()
	if errors.Is(err, server.ErrUpstreamEnded) {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Upstream ended, server stopped\n")
		err = nil
	}
	exitOnError("Distribution server failed", err)
}
