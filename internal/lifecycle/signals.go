package lifecycle

import (
	"context"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"os"
	"os/signal"
	"syscall"
)

type Stopper interface {
	Stop()
}

// Handles all incoming signals from external sources until the daemon is stopped or ctx ends.
// SIGHUP hands the listening port to a freshly executed copy of this program before stopping.
func SignalHandler(ctx context.Context, daemon Stopper) {
	// Channel for handling interrupt signals
	sigChan := make(chan os.Signal, 10)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	handleSignals(ctx, daemon, sigChan, updateSelf)
}

func handleSignals(ctx context.Context, daemon Stopper, sigChan <-chan os.Signal, replace func(context.Context) error) {
	for {
		var sig os.Signal
		select {
		case <-ctx.Done():
			return
		case sig = <-sigChan:
		}
		logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Received signal: %v\n", sig)

		if sig == syscall.SIGHUP {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Beginning reload...\n")
			err := NotifyReload(ctx)
			if err != nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify reload failed: %v\n", err)
			}

			err = replace(ctx)
			if err != nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Reload Error: %v\n", err)

				err = NotifyStatus(ctx, "Reload failed due to internal error. Check daemon logs.")
				if err != nil {
					logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify status failed: %v\n", err)
				}
				err = NotifyReady(ctx)
				if err != nil {
					logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify ready failed: %v\n", err)
				}
				continue
			}
			// Cleared to hand over to the replacement
		} else {
			err := NotifyStopping(ctx)
			if err != nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify stopping failed: %v\n", err)
			}
		}

		// Initiate daemon shutdown
		daemon.Stop()
		return
	}
}
