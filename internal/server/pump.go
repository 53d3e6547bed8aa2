package server

import (
	"context"
	"errors"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"f1timing/pkg/codec"
	"f1timing/pkg/message"
	"fmt"
	"io"
)

// Upstream reached its end marker, the server has nothing more to relay
var ErrUpstreamEnded = errors.New("upstream stream ended")

// Reads the upstream and fans each message out to all sessions.
// Returns nil only when stopped, any upstream failure ends the server.
func (srv *Server) pump(ctx context.Context) (err error) {
	ctx = logctx.AppendCtxTag(ctx, global.NSUpstream)

	if srv.cfg.LazyUpstream {
		logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "Waiting for the first client before connecting upstream\n")
		select {
		case <-ctx.Done():
			return
		case <-srv.upstreamWanted:
		}
	}

	upstream, err := srv.open(ctx)
	if err != nil {
		if ctx.Err() != nil {
			err = nil
			return
		}
		err = fmt.Errorf("failed to open upstream: %w", err)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "%v\n", err)
		return
	}
	srv.upstreamMutex.Lock()
	srv.upstream = upstream
	srv.upstreamMutex.Unlock()

	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Upstream open, relaying messages\n")

	for {
		var msg message.Message
		msg, err = upstream.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				err = nil
				return
			}
			if errors.Is(err, io.EOF) {
				err = ErrUpstreamEnded
				logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Upstream ended, disconnecting clients\n")
				return
			}
			err = fmt.Errorf("failed reading upstream: %w", err)
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "%v\n", err)
			return
		}

		var frame []byte
		frame, err = codec.Marshal(msg)
		if err != nil {
			err = fmt.Errorf("failed encoding upstream message %s: %w", message.Describe(msg), err)
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "%v\n", err)
			return
		}

		delivered, refused := srv.hub.publish(frame)
		srv.Metrics.MessagesPublished.Add(1)
		srv.Metrics.FramesDropped.Add(uint64(refused))

		logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
			"Relayed %s to %d clients\n", message.Describe(msg), delivered)
	}
}
