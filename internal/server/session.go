package server

import (
	"context"
	"errors"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"f1timing/pkg/codec"
	"io"
	"net"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
)

// Written to every client on its way out
var endFrame = codec.MarshalEnd()

func newSession(ctx context.Context, conn net.Conn, bufferSize int) (sess *session) {
	sess = &session{
		id:     uuid.New(),
		conn:   conn,
		remote: conn.RemoteAddr().String(),
		outbox: make(chan []byte, bufferSize),
	}
	sess.ctx, sess.cancel = context.WithCancel(ctx)
	return
}

// Queues the frame unless the buffer is full, in which case the session is told to disconnect.
// Only the pump calls this.
func (sess *session) offer(frame []byte) (accepted bool) {
	select {
	case sess.outbox <- frame:
		accepted = true
	default:
		if sess.overflowed.CompareAndSwap(false, true) {
			sess.cancel()
		}
	}
	return
}

// Delivers queued frames to the client until the session is cancelled or the client goes away
func (srv *Server) runSession(sess *session) {
	ctx := logctx.AppendCtxTag(sess.ctx, global.NSSession)

	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in session %s: %v\n%s", sess.id, fatalError, stack)
			sess.cancel()
			_ = sess.conn.Close()
			srv.hub.remove(sess.id)
		}
	}()

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"Session %s connected from %s\n", sess.id, sess.remote)

	// Clients never send anything, reading only notices them leaving
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		_, err := io.Copy(io.Discard, sess.conn)
		if err == nil || !errors.Is(err, net.ErrClosed) {
			sess.peerClosed.Store(true)
		}
		sess.cancel()
	}()

	var writeErr error
sendLoop:
	for {
		select {
		case <-sess.ctx.Done():
			break sendLoop
		case frame := <-sess.outbox:
			writeErr = srv.write(sess, frame)
			if writeErr != nil {
				break sendLoop
			}
		}
	}

	// No more frames arrive once removed
	srv.hub.remove(sess.id)

	writable := writeErr == nil && !sess.peerClosed.Load()
	if writable && !sess.overflowed.Load() {
		// Frames published before the cancellation still belong to this client
	drainLoop:
		for {
			select {
			case frame := <-sess.outbox:
				writeErr = srv.write(sess, frame)
				if writeErr != nil {
					writable = false
					break drainLoop
				}
			default:
				break drainLoop
			}
		}
	}
	if writable {
		writeErr = srv.write(sess, endFrame)
	}

	sess.cancel()
	_ = sess.conn.Close()
	<-readerDone

	switch {
	case sess.overflowed.Load():
		srv.Metrics.ForcedDisconnects.Add(1)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Session %s (%s) disconnected: client fell %d messages behind\n", sess.id, sess.remote, cap(sess.outbox))
	case sess.peerClosed.Load():
		logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
			"Session %s (%s) closed by client\n", sess.id, sess.remote)
	case writeErr != nil:
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Session %s (%s) dropped: %v\n", sess.id, sess.remote, writeErr)
	default:
		logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
			"Session %s (%s) ended\n", sess.id, sess.remote)
	}
}

func (srv *Server) write(sess *session, frame []byte) (err error) {
	err = sess.conn.SetWriteDeadline(time.Now().Add(srv.cfg.SessionWriteTimeout))
	if err != nil {
		return
	}
	n, err := sess.conn.Write(frame)
	srv.Metrics.BytesSent.Add(uint64(n))
	return
}
