// Proxy distribution server: relays one upstream message stream to any number of TCP clients
package server

import (
	"context"
	"errors"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"f1timing/internal/metrics"
	"f1timing/internal/network"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	metricsrv "f1timing/internal/externalio/server"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Create new server instance. Zero session settings fall back to their defaults.
func New(cfg Config, open Opener) (srv *Server) {
	if cfg.SessionBufferSize < global.MinSessionBufferSize {
		cfg.SessionBufferSize = global.MinSessionBufferSize
	}
	if cfg.SessionWriteTimeout == 0 {
		cfg.SessionWriteTimeout = global.DefaultSessionWriteTimeout
	}
	if cfg.MetricCollectionInterval == 0 {
		cfg.MetricCollectionInterval = global.DefaultMetricInterval
	}
	if cfg.MetricMaxAge == 0 {
		cfg.MetricMaxAge = global.DefaultMetricRetention
	}

	srv = &Server{
		cfg:  cfg,
		open: open,
	}
	srv.metricsCollector = NewGatherer(srv.CollectMetrics, cfg.MetricCollectionInterval, cfg.MetricMaxAge)
	return
}

func (srv *Server) State() State {
	return State(srv.state.Load())
}

func (state State) String() string {
	switch state {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	}
	return "unknown(" + strconv.Itoa(int(state)) + ")"
}

// Bound listener address, nil before Start
func (srv *Server) Addr() (addr net.Addr) {
	srv.mutex.Lock()
	defer srv.mutex.Unlock()
	if srv.listener != nil {
		addr = srv.listener.Addr()
	}
	return
}

// Metric registry filled while the server runs
func (srv *Server) Registry() *metrics.Registry {
	return srv.metricsCollector.Registry
}

// Binds the listener and starts the accept loop, the upstream pump and metric collection.
// Cancelling ctx stops the server like Stop.
func (srv *Server) Start(ctx context.Context) (err error) {
	srv.mutex.Lock()
	started := srv.state.CompareAndSwap(int32(Stopped), int32(Starting))
	if started {
		// Previous run is over, Stop must not wait on it
		srv.cancel = nil
	}
	srv.mutex.Unlock()
	if !started {
		err = fmt.Errorf("server is already %s", srv.State())
		return
	}
	err = srv.start(ctx)
	return
}

// Brings a server in the Starting state up to Running
func (srv *Server) start(ctx context.Context) (err error) {
	ctx = logctx.AppendCtxTag(ctx, global.NSProxy)
	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Starting...\n")

	err = network.ValidateBindAddress(srv.cfg.ListenIP)
	if err != nil {
		srv.abortStart()
		err = fmt.Errorf("failed to validate listen address: %w", err)
		return
	}

	addr := net.JoinHostPort(srv.cfg.ListenIP, strconv.Itoa(srv.cfg.ListenPort))
	listener, err := network.ListenReusable(ctx, addr)
	if err != nil {
		srv.abortStart()
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(runCtx)

	srv.mutex.Lock()
	srv.cancel = cancel
	srv.done = make(chan struct{})
	srv.err = nil
	srv.listener = listener
	srv.limiter = nil
	if srv.cfg.AcceptRate > 0 {
		srv.limiter = rate.NewLimiter(rate.Limit(srv.cfg.AcceptRate), max(srv.cfg.AcceptBurst, 1))
	}
	srv.upstreamWanted = make(chan struct{})
	srv.wantOnce = new(sync.Once)
	srv.hub = newHub()
	srv.mutex.Unlock()

	// Unblocks Accept
	stopListening := context.AfterFunc(groupCtx, func() {
		_ = listener.Close()
	})

	group.Go(func() error {
		return srv.acceptLoop(groupCtx, listener)
	})
	group.Go(func() error {
		return srv.pump(groupCtx)
	})
	group.Go(func() error {
		srv.metricsCollector.Run(groupCtx)
		return nil
	})

	// Metric Server
	if srv.cfg.MetricQueryServerEnabled {
		serverCtx := logctx.AppendCtxTag(runCtx, global.NSMetric)
		serverCtx = logctx.AppendCtxTag(serverCtx, global.NSMetricSrv)

		srv.MetricServer = metricsrv.SetupListener(serverCtx, srv.cfg.MetricQueryServerPort, srv.Registry())
		group.Go(func() error {
			metricsrv.Start(serverCtx, srv.MetricServer)
			return nil
		})
		context.AfterFunc(groupCtx, func() {
			shutdownCtx, cancelShutdown := context.WithTimeout(context.WithoutCancel(serverCtx), global.ServerShutdownTimeout)
			defer cancelShutdown()
			err := srv.MetricServer.Shutdown(shutdownCtx)
			if err != nil && err != http.ErrServerClosed {
				logctx.LogEvent(serverCtx, global.VerbosityStandard, global.WarnLog,
					"metric HTTP server did not shutdown gracefully: %v\n", err)
			}
		})
	}

	go srv.supervise(ctx, group, stopListening)

	srv.mutex.Lock()
	// Supervisor may already be tearing down after an early worker failure
	srv.state.CompareAndSwap(int32(Starting), int32(Running))
	stopRequested := srv.stopPending
	srv.stopPending = false
	srv.mutex.Unlock()

	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
		"Listening on %s (backlog %d, session buffer %d)\n", listener.Addr(), srv.cfg.Backlog, srv.cfg.SessionBufferSize)

	if stopRequested {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Stop requested during startup, shutting down\n")
		cancel()
	}
	return
}

func (srv *Server) abortStart() {
	srv.mutex.Lock()
	srv.stopPending = false
	srv.state.Store(int32(Stopped))
	srv.mutex.Unlock()
}

// Tears the run down once any worker fails or the server is stopped
func (srv *Server) supervise(ctx context.Context, group *errgroup.Group, stopListening func() bool) {
	err := group.Wait()
	stopListening()
	srv.state.Store(int32(Stopping))

	srv.mutex.Lock()
	_ = srv.listener.Close()
	cancel := srv.cancel
	srv.mutex.Unlock()
	cancel()

	// Sessions write the end marker before going
	srv.hub.disconnectAll()
	srv.sessionsWG.Wait()

	srv.upstreamMutex.Lock()
	if srv.upstream != nil {
		closeErr := srv.upstream.Close()
		if closeErr != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Failed to close upstream: %v\n", closeErr)
		}
		srv.upstream = nil
	}
	srv.upstreamMutex.Unlock()

	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Server stopped: %v\n", err)
	} else {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Server stopped\n")
	}

	srv.mutex.Lock()
	srv.err = err
	done := srv.done
	srv.mutex.Unlock()

	srv.state.Store(int32(Stopped))
	close(done)
}

// Stops the server and waits for it to wind down. Safe to call more than once and from any goroutine.
// A stop arriving while the server is starting is carried out as soon as it is running.
func (srv *Server) Stop() {
	srv.mutex.Lock()
	cancel, done := srv.cancel, srv.done
	if cancel == nil && srv.State() == Starting {
		srv.stopPending = true
	}
	srv.mutex.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Blocks until the server has stopped, returning what stopped it.
// A server stopped by Stop or its context returns nil.
func (srv *Server) Wait() (err error) {
	srv.mutex.Lock()
	done := srv.done
	srv.mutex.Unlock()

	if done == nil {
		return
	}
	<-done

	srv.mutex.Lock()
	err = srv.err
	srv.mutex.Unlock()
	return
}

func (srv *Server) acceptLoop(runCtx context.Context, listener net.Listener) (err error) {
	ctx := logctx.AppendCtxTag(runCtx, global.NSAccept)

	srv.mutex.Lock()
	limiter := srv.limiter
	srv.mutex.Unlock()

	var retryDelay time.Duration
	for {
		if limiter != nil {
			if limiter.Wait(ctx) != nil {
				return
			}
		}

		conn, acceptErr := listener.Accept()
		if acceptErr != nil {
			if ctx.Err() != nil || errors.Is(acceptErr, net.ErrClosed) {
				return
			}

			// Transient failures like fd exhaustion, back off and keep accepting
			retryDelay = min(max(2*retryDelay, 5*time.Millisecond), time.Second)
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"Accept failed, retrying in %v: %v\n", retryDelay, acceptErr)
			select {
			case <-ctx.Done():
				return
			case <-time.After(retryDelay):
			}
			continue
		}
		retryDelay = 0

		sess := newSession(runCtx, conn, srv.cfg.SessionBufferSize)
		srv.hub.add(sess)
		srv.Metrics.SessionsAccepted.Add(1)

		srv.sessionsWG.Add(1)
		go func() {
			defer srv.sessionsWG.Done()
			srv.runSession(sess)
		}()

		srv.wantOnce.Do(func() { close(srv.upstreamWanted) })
	}
}
