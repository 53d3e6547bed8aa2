package cli

import (
	"context"
	"errors"
	"f1timing/internal/externalio/beats"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"f1timing/internal/reader"
	"f1timing/pkg/codec"
	"f1timing/pkg/message"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
)

func PlayMode(ctx context.Context, commandname string, args []string) {
	var speed float64
	var beatsAddress string

	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	commandFlags.Float64Var(&speed, "s", 1.0, "Playback speed multiplier")
	commandFlags.Float64Var(&speed, "speed", 1.0, "Playback speed multiplier")
	commandFlags.StringVar(&beatsAddress, "b", "", "Forward messages to a beats server (host:port) instead of printing them")
	commandFlags.StringVar(&beatsAddress, "beats", "", "Forward messages to a beats server (host:port) instead of printing them")
	parseCommand(ctx, commandFlags, commandname, args, 1)

	if commandFlags.NArg() != 1 {
		commandFlags.Usage()
		os.Exit(1)
	}
	path := commandFlags.Arg(0)

	ctx = logctx.AppendCtxTag(ctx, global.NSPlay)
	ctx, cancel := interruptible(ctx)
	defer cancel()

	playback, err := reader.OpenPlayback(path)
	exitOnError("Error", err)
	defer playback.Close()

	err = playback.SetSpeed(speed)
	exitOnError("Error", err)

	output := func(msg message.Message) (err error) {
		_, err = fmt.Println(message.Describe(msg))
		return
	}
	if beatsAddress != "" {
		var module *beats.OutModule
		module, err = beats.NewOutput(beatsAddress, filepath.Base(path))
		exitOnError("Error connecting to beats server", err)
		defer module.Shutdown()

		output = func(msg message.Message) (err error) {
			_, err = module.Write(ctx, msg)
			return
		}
	}

	err = reader.Drain(ctx, playback, output)
	if errors.Is(err, context.Canceled) {
		return
	}
	exitOnError("Playback failed", err)
}

func DumpMode(ctx context.Context, commandname string, args []string) {
	var proxyAddress string
	var showOffsets bool

	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	commandFlags.StringVar(&proxyAddress, "p", "", "Read from a distribution server (host[:port]) instead of a file")
	commandFlags.StringVar(&proxyAddress, "proxy", "", "Read from a distribution server (host[:port]) instead of a file")
	commandFlags.BoolVar(&showOffsets, "offsets", false, "Prefix each message with its byte offset in the file")
	parseCommand(ctx, commandFlags, commandname, args, 1)

	ctx, cancel := interruptible(ctx)
	defer cancel()

	var err error
	if proxyAddress != "" {
		proxy := newProxy(proxyAddress)
		defer proxy.Close()
		err = reader.Drain(ctx, proxy, func(msg message.Message) (err error) {
			_, err = fmt.Println(message.Describe(msg))
			return
		})
	} else {
		if commandFlags.NArg() != 1 {
			commandFlags.Usage()
			os.Exit(1)
		}
		err = dumpFile(ctx, os.Stdout, commandFlags.Arg(0), showOffsets)
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	exitOnError("Dump failed", err)
}

// Prints every message in a recording, delays included, without waiting on them
func dumpFile(ctx context.Context, out io.Writer, path string, showOffsets bool) (err error) {
	file, err := os.Open(path)
	if err != nil {
		err = fmt.Errorf("failed to open recording: %w", err)
		return
	}
	defer file.Close()

	decoder := codec.NewReader(file)
	for {
		if ctx.Err() != nil {
			err = ctx.Err()
			return
		}

		offset := decoder.Offset()
		var msg message.Message
		msg, err = decoder.Read()
		if errors.Is(err, io.EOF) {
			err = nil
			return
		}
		if err != nil {
			return
		}

		if showOffsets {
			_, err = fmt.Fprintf(out, "%08d  %s\n", offset, message.Describe(msg))
		} else {
			_, err = fmt.Fprintln(out, message.Describe(msg))
		}
		if err != nil {
			return
		}
	}
}

// Proxy reader for host or host:port
func newProxy(address string) (proxy *reader.Proxy) {
	if _, _, err := net.SplitHostPort(address); err != nil {
		proxy = reader.NewProxy(address)
		return
	}
	proxy = reader.NewProxyAddress(address)
	return
}
