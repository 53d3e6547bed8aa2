package server

import (
	"context"
	"errors"
	"f1timing/internal/global"
	"f1timing/internal/reader"
	"f1timing/pkg/codec"
	"f1timing/pkg/message"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

// Upstream serving a fixed list of messages, then end of stream
type sliceReader struct {
	reader.Base
	msgs   []message.Message
	closed atomic.Bool
}

func (s *sliceReader) Read(ctx context.Context) (message.Message, error) {
	return s.Guard(ctx, func(ctx context.Context) (msg message.Message, err error) {
		if len(s.msgs) == 0 {
			err = io.EOF
			return
		}
		msg, s.msgs = s.msgs[0], s.msgs[1:]
		return
	})
}

func (s *sliceReader) Close() error {
	s.closed.Store(true)
	return nil
}

// Upstream that never produces anything until cancelled
type idleReader struct {
	reader.Base
	closed atomic.Bool
}

func (r *idleReader) Read(ctx context.Context) (message.Message, error) {
	return r.Guard(ctx, func(ctx context.Context) (message.Message, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
}

func (r *idleReader) Close() error {
	r.closed.Store(true)
	return nil
}

type failingReader struct {
	reader.Base
}

func (r *failingReader) Read(ctx context.Context) (message.Message, error) {
	return r.Guard(ctx, func(ctx context.Context) (message.Message, error) {
		return nil, &reader.TransportError{Op: "feed read", Err: io.ErrUnexpectedEOF}
	})
}

func (r *failingReader) Close() error { return nil }

func testConfig() Config {
	return Config{
		ListenIP:            "127.0.0.1",
		ListenPort:          0,
		SessionBufferSize:   global.MinSessionBufferSize,
		SessionWriteTimeout: 2 * time.Second,
	}
}

func startServer(t *testing.T, cfg Config, open Opener) (srv *Server) {
	t.Helper()
	srv = New(cfg, open)
	err := srv.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func testSession(bufferSize int) (sess *session) {
	sess = &session{
		id:     uuid.New(),
		outbox: make(chan []byte, bufferSize),
	}
	sess.ctx, sess.cancel = context.WithCancel(context.Background())
	return
}

func TestHubFanOutIsolation(t *testing.T) {
	const k = 20
	h := newHub()

	good := testSession(4)
	blocked := testSession(4)
	h.add(good)
	h.add(blocked)

	var received [][]byte
	for i := 0; i < k; i++ {
		frame := []byte(fmt.Sprintf("frame %d", i))
		h.publish(frame)

		// Good consumer keeps up
		select {
		case got := <-good.outbox:
			received = append(received, got)
		case <-time.After(time.Second):
			t.Fatalf("good session missing frame %d", i)
		}
	}

	if len(received) != k {
		t.Fatalf("good session received %d frames, want %d", len(received), k)
	}
	for i, frame := range received {
		if string(frame) != fmt.Sprintf("frame %d", i) {
			t.Errorf("frame %d = %q, out of order", i, frame)
		}
	}
	if good.overflowed.Load() || good.ctx.Err() != nil {
		t.Error("good session was disconnected")
	}
	if !blocked.overflowed.Load() {
		t.Error("blocked session did not overflow")
	}
	if blocked.ctx.Err() == nil {
		t.Error("blocked session was not cancelled")
	}
	if len(blocked.outbox) != cap(blocked.outbox) {
		t.Errorf("blocked session holds %d frames, want a full buffer of %d", len(blocked.outbox), cap(blocked.outbox))
	}
}

func TestHubRegistry(t *testing.T) {
	h := newHub()
	a, b := testSession(1), testSession(1)
	h.add(a)
	h.add(b)
	if h.count() != 2 {
		t.Fatalf("count = %d, want 2", h.count())
	}

	h.remove(a.id)
	delivered, refused := h.publish([]byte("x"))
	if delivered != 1 || refused != 0 {
		t.Errorf("publish = %d delivered, %d refused, want 1, 0", delivered, refused)
	}
	if len(a.outbox) != 0 {
		t.Error("removed session still received a frame")
	}
	if depths := h.backlogs(); len(depths) != 1 || depths[0] != 1 {
		t.Errorf("backlogs = %v, want [1]", depths)
	}

	h.disconnectAll()
	if b.ctx.Err() == nil {
		t.Error("disconnectAll left a session running")
	}
}

// Upstream that waits for the gate, then serves count large messages with a pause between them
type pacedReader struct {
	reader.Base
	gate  chan struct{}
	count int
	size  int
	pause time.Duration
	sent  int
}

func (p *pacedReader) Read(ctx context.Context) (message.Message, error) {
	return p.Guard(ctx, func(ctx context.Context) (msg message.Message, err error) {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		case <-p.gate:
		}
		if p.sent == p.count {
			err = io.EOF
			return
		}
		if p.sent > 0 {
			time.Sleep(p.pause)
		}
		p.sent++
		msg = &message.AddCommentary{Commentary: fmt.Sprintf("%06d", p.sent) + strings.Repeat("x", p.size-6)}
		return
	})
}

func (p *pacedReader) Close() error { return nil }

func TestServerStalledClientDoesNotBlockOthers(t *testing.T) {
	upstream := &pacedReader{gate: make(chan struct{}), count: 400, size: 64 << 10, pause: time.Millisecond}
	srv := startServer(t, testConfig(), func(ctx context.Context) (reader.Reader, error) {
		return upstream, nil
	})

	// Connects and never reads
	stalled, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer stalled.Close()

	client := reader.NewProxyAddress(srv.Addr().String())
	defer client.Close()

	type result struct {
		received int
		inOrder  bool
		err      error
	}
	done := make(chan result, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		res := result{inOrder: true}
		for {
			msg, err := client.Read(ctx)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				res.err = err
				break
			}
			res.received++
			commentary, ok := msg.(*message.AddCommentary)
			if !ok || !strings.HasPrefix(commentary.Commentary, fmt.Sprintf("%06d", res.received)) {
				res.inOrder = false
			}
		}
		done <- res
	}()

	waitFor(t, "both sessions", func() bool { return srv.hub.count() == 2 })
	close(upstream.gate)

	var res result
	select {
	case res = <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("reading client never finished")
	}
	if res.err != nil {
		t.Fatalf("reading client: %v", res.err)
	}
	if res.received != upstream.count || !res.inOrder {
		t.Errorf("reading client got %d messages (in order %v), want all %d", res.received, res.inOrder, upstream.count)
	}

	if err := srv.Wait(); !errors.Is(err, ErrUpstreamEnded) {
		t.Errorf("Wait = %v, want ErrUpstreamEnded", err)
	}
	waitFor(t, "stalled client disconnect", func() bool { return srv.Metrics.ForcedDisconnects.Load() == 1 })
}

func TestServerRelaysUntilUpstreamEnds(t *testing.T) {
	upstream := &sliceReader{msgs: []message.Message{
		&message.SetWindSpeed{Speed: 5},
		message.Combine(&message.SetHumidity{Humidity: 40}, &message.SetCopyright{Copyright: "c"}),
		&message.AddCommentary{Commentary: "Lights out"},
	}}

	cfg := testConfig()
	cfg.LazyUpstream = true
	srv := startServer(t, cfg, func(ctx context.Context) (reader.Reader, error) {
		return upstream, nil
	})
	if srv.State() != Running {
		t.Fatalf("state = %s, want running", srv.State())
	}

	client := reader.NewProxyAddress(srv.Addr().String())
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []string
	for {
		msg, err := client.Read(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				t.Fatalf("client read: %v", err)
			}
			break
		}
		got = append(got, message.NameOf(msg))
	}

	want := []string{"SetWindSpeed", "Composite", "AddCommentary"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("client received %v, want %v", got, want)
	}

	err := srv.Wait()
	if !errors.Is(err, ErrUpstreamEnded) {
		t.Errorf("Wait = %v, want ErrUpstreamEnded", err)
	}
	if srv.State() != Stopped {
		t.Errorf("state after upstream end = %s, want stopped", srv.State())
	}
	if !upstream.closed.Load() {
		t.Error("upstream was not closed")
	}
	if published := srv.Metrics.MessagesPublished.Load(); published != 3 {
		t.Errorf("messages published = %d, want 3", published)
	}
	if accepted := srv.Metrics.SessionsAccepted.Load(); accepted != 1 {
		t.Errorf("sessions accepted = %d, want 1", accepted)
	}
}

func TestServerStopDuringStartup(t *testing.T) {
	srv := New(testConfig(), func(ctx context.Context) (reader.Reader, error) {
		return &idleReader{}, nil
	})

	// Stop lands after Start claimed the server but before the run exists
	srv.state.Store(int32(Starting))
	srv.Stop()

	if err := srv.start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	stopped := make(chan error, 1)
	go func() { stopped <- srv.Wait() }()
	select {
	case err := <-stopped:
		if err != nil {
			t.Errorf("Wait = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		srv.Stop()
		t.Fatal("stop requested during startup was lost")
	}
	if srv.State() != Stopped {
		t.Errorf("state = %s, want stopped", srv.State())
	}

	// The request is spent, a later run stays up
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	defer srv.Stop()
	time.Sleep(50 * time.Millisecond)
	if srv.State() != Running {
		t.Errorf("state after restart = %s, want running", srv.State())
	}
}

func TestServerStopWritesEndMarker(t *testing.T) {
	upstream := &idleReader{}
	srv := startServer(t, testConfig(), func(ctx context.Context) (reader.Reader, error) {
		return upstream, nil
	})

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	waitFor(t, "session registration", func() bool { return srv.hub.count() == 1 })

	srv.Stop()
	srv.Stop()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, err = codec.NewReader(conn).Read()
	if !errors.Is(err, io.EOF) {
		t.Fatalf("client read after Stop = %v, want io.EOF from the end marker", err)
	}

	if err := srv.Wait(); err != nil {
		t.Errorf("Wait after Stop = %v, want nil", err)
	}
	if !upstream.closed.Load() {
		t.Error("upstream was not closed")
	}
	if srv.State() != Stopped {
		t.Errorf("state = %s, want stopped", srv.State())
	}
}

func TestServerUpstreamFailure(t *testing.T) {
	tests := []struct {
		name  string
		open  Opener
		check func(error) bool
	}{
		{
			name: "open fails",
			open: func(ctx context.Context) (reader.Reader, error) {
				return nil, &reader.ConnectError{Address: "feed:4321", Err: errors.New("refused")}
			},
			check: func(err error) bool {
				var connectErr *reader.ConnectError
				return errors.As(err, &connectErr)
			},
		},
		{
			name: "read fails",
			open: func(ctx context.Context) (reader.Reader, error) {
				return &failingReader{}, nil
			},
			check: func(err error) bool {
				var transportErr *reader.TransportError
				return errors.As(err, &transportErr) && errors.Is(err, io.ErrUnexpectedEOF)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			srv := startServer(t, testConfig(), test.open)

			done := make(chan error, 1)
			go func() { done <- srv.Wait() }()

			select {
			case err := <-done:
				if !test.check(err) {
					t.Errorf("Wait = %v", err)
				}
			case <-time.After(5 * time.Second):
				t.Fatal("server kept running after upstream failure")
			}
		})
	}
}

func TestServerStartTwice(t *testing.T) {
	srv := startServer(t, testConfig(), func(ctx context.Context) (reader.Reader, error) {
		return &idleReader{}, nil
	})
	if err := srv.Start(context.Background()); err == nil {
		t.Fatal("second Start succeeded")
	}
}

func TestServerRejectsForeignBindAddress(t *testing.T) {
	cfg := testConfig()
	cfg.ListenIP = "203.0.113.7"
	srv := New(cfg, nil)
	if err := srv.Start(context.Background()); err == nil {
		srv.Stop()
		t.Fatal("Start bound an address that is not local")
	}
	if srv.State() != Stopped {
		t.Errorf("state = %s, want stopped", srv.State())
	}
}

func TestCollectMetrics(t *testing.T) {
	srv := New(testConfig(), nil)
	srv.Metrics.SessionsAccepted.Add(3)
	srv.Metrics.MessagesPublished.Add(50)
	srv.Metrics.BytesSent.Add(1000)

	collection := srv.CollectMetrics(10 * time.Second)
	values := make(map[string]any)
	for _, metric := range collection {
		values[metric.Name] = metric.Value.Raw
	}

	if values["sessions_accepted"] != uint64(3) {
		t.Errorf("sessions_accepted = %v", values["sessions_accepted"])
	}
	if values["messages_published"] != uint64(50) {
		t.Errorf("messages_published = %v", values["messages_published"])
	}
	if values["messages_per_second"] != 5.0 {
		t.Errorf("messages_per_second = %v", values["messages_per_second"])
	}
	if values["sessions_active"] != 0 {
		t.Errorf("sessions_active = %v", values["sessions_active"])
	}

	if values["session_backlog"] != uint64(0) || values["session_backlog_max"] != uint64(0) {
		t.Errorf("backlog without sessions = %v / %v", values["session_backlog"], values["session_backlog_max"])
	}

	// Counters reset on collection
	again := srv.CollectMetrics(10 * time.Second)
	for _, metric := range again {
		if metric.Name == "bytes_sent" && metric.Value.Raw != uint64(0) {
			t.Errorf("bytes_sent after collection = %v, want 0", metric.Value.Raw)
		}
	}
}

func TestNewServerConf(t *testing.T) {
	t.Setenv(global.PasswordEnvVar, "from-env")

	tests := []struct {
		name    string
		json    string
		wantErr bool
		check   func(t *testing.T, cfg Config)
	}{
		{
			name: "defaults",
			json: `{"upstream": {"username": "fan@example.com"}}`,
			check: func(t *testing.T, cfg Config) {
				if cfg.ListenPort != global.DefaultProxyPort || cfg.ListenIP != global.DefaultProxyAddress {
					t.Errorf("listen = %s:%d", cfg.ListenIP, cfg.ListenPort)
				}
				if cfg.Password != "from-env" {
					t.Errorf("password = %q, want the environment value", cfg.Password)
				}
				if cfg.SessionBufferSize < global.MinSessionBufferSize || cfg.SessionBufferSize > global.DefaultSessionBufferSize {
					t.Errorf("session buffer = %d", cfg.SessionBufferSize)
				}
				if cfg.SessionWriteTimeout != global.DefaultSessionWriteTimeout {
					t.Errorf("write timeout = %v", cfg.SessionWriteTimeout)
				}
				if cfg.PlaybackSpeed != 1.0 {
					t.Errorf("playback speed = %v", cfg.PlaybackSpeed)
				}
			},
		},
		{
			name: "explicit values",
			json: `{
				"network": {"address": "127.0.0.1", "port": 6000, "acceptRate": 5},
				"upstream": {"playbackPath": "/tmp/race.tms", "playbackSpeed": 2, "connectTimeout": "3s"},
				"sessions": {"bufferSize": 10, "writeTimeout": "250ms"},
				"metrics": {"collectionInterval": "5s", "maximumRetention": "30m"}
			}`,
			check: func(t *testing.T, cfg Config) {
				if cfg.ListenPort != 6000 || cfg.AcceptBurst != global.DefaultAcceptBurst {
					t.Errorf("port %d burst %d", cfg.ListenPort, cfg.AcceptBurst)
				}
				if cfg.SessionBufferSize != global.MinSessionBufferSize {
					t.Errorf("session buffer = %d, want raised to %d", cfg.SessionBufferSize, global.MinSessionBufferSize)
				}
				if cfg.SessionWriteTimeout != 250*time.Millisecond || cfg.ConnectTimeout != 3*time.Second {
					t.Errorf("timeouts %v %v", cfg.SessionWriteTimeout, cfg.ConnectTimeout)
				}
				if cfg.MetricCollectionInterval != 5*time.Second || cfg.MetricMaxAge != 30*time.Minute {
					t.Errorf("metrics %v %v", cfg.MetricCollectionInterval, cfg.MetricMaxAge)
				}
			},
		},
		{
			name:    "bad duration",
			json:    `{"upstream": {"username": "u"}, "sessions": {"writeTimeout": "soon"}}`,
			wantErr: true,
		},
		{
			name:    "no upstream",
			json:    `{}`,
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(test.json), 0600); err != nil {
				t.Fatal(err)
			}
			jsonCfg, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			cfg, err := jsonCfg.NewServerConf()
			if test.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewServerConf: %v", err)
			}
			test.check(t, cfg)
		})
	}
}

func TestPlaybackUpstream(t *testing.T) {
	path := filepath.Join(t.TempDir(), "race.tms")
	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	writer := codec.NewWriter(file)
	for _, msg := range []message.Message{&message.SetWindSpeed{Speed: 5}, &message.SetHumidity{Humidity: 40}} {
		if err := writer.Write(msg); err != nil {
			t.Fatal(err)
		}
	}
	if err := writer.WriteEnd(); err != nil {
		t.Fatal(err)
	}
	if err := writer.Flush(); err != nil {
		t.Fatal(err)
	}
	file.Close()

	recordPath := filepath.Join(t.TempDir(), "copy.tms")
	open := NewUpstreamOpener(Config{PlaybackPath: path, PlaybackSpeed: 4, RecordPath: recordPath})
	upstream, err := open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	var count int
	err = reader.Drain(context.Background(), upstream, func(message.Message) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if err := upstream.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if count != 2 {
		t.Errorf("read %d messages, want 2", count)
	}

	original, _ := os.ReadFile(path)
	copied, _ := os.ReadFile(recordPath)
	if string(original) != string(copied) {
		t.Error("recorded upstream differs from the played file")
	}
}
