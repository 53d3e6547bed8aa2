package server

import (
	"context"
	"errors"
	"f1timing/internal/externalio/beats"
	"f1timing/internal/feed"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"f1timing/internal/reader"
	"f1timing/pkg/message"
	"fmt"
)

// Builds the upstream described by the configuration: a recorded file when a playback path is set,
// otherwise the live feed. Optionally recorded and forwarded to beats on the way through.
func NewUpstreamOpener(cfg Config) (open Opener) {
	open = func(ctx context.Context) (upstream reader.Reader, err error) {
		ctx = logctx.AppendCtxTag(ctx, global.NSUpstream)

		if cfg.PlaybackPath != "" {
			var playback *reader.Playback
			playback, err = reader.OpenPlayback(cfg.PlaybackPath)
			if err != nil {
				return
			}
			if cfg.PlaybackSpeed > 0 {
				err = playback.SetSpeed(cfg.PlaybackSpeed)
				if err != nil {
					_ = playback.Close()
					return
				}
			}
			logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
				"Relaying recording %s at %vx speed\n", cfg.PlaybackPath, playback.Speed())
			upstream = playback
		} else {
			var live *feed.LiveSession
			live, err = feed.OpenLive(ctx, feed.LiveOptions{
				Username:       cfg.Username,
				Password:       cfg.Password,
				SeedStorePath:  cfg.SeedStorePath,
				ConnectTimeout: cfg.ConnectTimeout,
			})
			if err != nil {
				err = fmt.Errorf("failed to open the live feed: %w", err)
				return
			}
			upstream = live
		}

		if cfg.RecordPath != "" {
			var recording *reader.Recording
			recording, err = reader.CreateRecording(upstream, cfg.RecordPath)
			if err != nil {
				_ = upstream.Close()
				return
			}
			logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Recording upstream to %s\n", cfg.RecordPath)
			upstream = recording
		}

		if cfg.BeatsEndpoint != "" {
			source := cfg.PlaybackPath
			if source == "" {
				source = "live"
			}
			var output *beats.OutModule
			output, err = beats.NewOutput(cfg.BeatsEndpoint, source)
			if err != nil {
				_ = upstream.Close()
				return
			}
			upstream = &forwarder{Reader: upstream, output: output}
		}
		return
	}
	return
}

// Passes messages through while copying them to a beats server.
// Forwarding failures are logged, the stream carries on.
type forwarder struct {
	reader.Reader
	output *beats.OutModule
}

func (f *forwarder) Read(ctx context.Context) (msg message.Message, err error) {
	msg, err = f.Reader.Read(ctx)
	if err != nil {
		return
	}

	_, fwdErr := f.output.Write(ctx, msg)
	if fwdErr != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Failed forwarding to beats server: %v\n", fwdErr)
	}
	return
}

func (f *forwarder) Close() (err error) {
	err = errors.Join(f.Reader.Close(), f.output.Shutdown())
	return
}
