package cli

import (
	"context"
	"f1timing/internal/feed"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"f1timing/internal/reader"
	"f1timing/internal/recorder"
	"flag"
	"fmt"
	"time"
)

func RecordMode(ctx context.Context, commandname string, args []string) {
	var username string
	var proxyAddress string
	var outputDir string
	var seedStorePath string
	var connectTimeout time.Duration
	var retries uint64
	var maxDelay time.Duration

	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	commandFlags.StringVar(&username, "u", "", "Live timing account to log in with")
	commandFlags.StringVar(&username, "user", "", "Live timing account to log in with")
	commandFlags.StringVar(&proxyAddress, "p", "", "Record from a distribution server (host[:port]) instead of the live feed")
	commandFlags.StringVar(&proxyAddress, "proxy", "", "Record from a distribution server (host[:port]) instead of the live feed")
	commandFlags.StringVar(&outputDir, "d", ".", "Directory holding the dated recordings")
	commandFlags.StringVar(&outputDir, "dir", ".", "Directory holding the dated recordings")
	commandFlags.StringVar(&seedStorePath, "seed-store", "", "Path to the decryption seed cache database")
	commandFlags.DurationVar(&connectTimeout, "connect-timeout", global.DefaultConnectTimeout, "Timeout for each connection attempt")
	commandFlags.Uint64Var(&retries, "retries", global.DefaultRecordRetries, "Connection attempts after the first failure")
	commandFlags.DurationVar(&maxDelay, "max-delay", global.DefaultRecordMaxDelay, "Longest wait between connection attempts")
	parseCommand(ctx, commandFlags, commandname, args, 1)

	if commandFlags.NArg() != 1 {
		commandFlags.Usage()
		exitOnError("Error", fmt.Errorf("expected exactly one session name"))
	}
	if proxyAddress == "" && username == "" {
		exitOnError("Error", fmt.Errorf("specify --user for the live feed or --proxy for a distribution server"))
	}

	ctx = logctx.AppendCtxTag(ctx, global.NSCLI)
	ctx, cancel := interruptible(ctx)
	defer cancel()

	path, err := recorder.RecordPath(outputDir, commandFlags.Arg(0), time.Now())
	exitOnError("Error", err)

	var source recorder.Source
	if proxyAddress != "" {
		source = proxySource(proxyAddress, connectTimeout)
	} else {
		var password string
		password, err = resolvePassword(username, "")
		exitOnError("Error", err)

		source = func(ctx context.Context) (upstream reader.Reader, err error) {
			live, err := feed.OpenLive(ctx, feed.LiveOptions{
				Username:       username,
				Password:       password,
				SeedStorePath:  seedStorePath,
				ConnectTimeout: connectTimeout,
			})
			if err != nil {
				return
			}
			upstream = live
			return
		}
	}

	recorded, err := recorder.Record(ctx, source, path, recorder.Options{
		Retries:  retries,
		MaxDelay: maxDelay,
	})
	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Recorded %d messages to %s\n", recorded, path)
	if ctx.Err() != nil {
		// Interrupted recordings are still complete files
		return
	}
	exitOnError("Recording failed", err)
}

// Proxy reader for host[:port], the default port filled in when missing
func proxySource(address string, connectTimeout time.Duration) recorder.Source {
	return func(ctx context.Context) (upstream reader.Reader, err error) {
		proxy := newProxy(address)
		proxy.ConnectTimeout = connectTimeout
		upstream = proxy
		return
	}
}
