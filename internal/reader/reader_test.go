package reader

import (
	"bytes"
	"context"
	"errors"
	"f1timing/pkg/codec"
	"f1timing/pkg/message"
	"io"
	"net"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

type nopWriteCloser struct {
	io.Writer
	closed bool
}

func (w *nopWriteCloser) Close() error {
	w.closed = true
	return nil
}

// Reader over a fixed list, then io.EOF or err
type sliceReader struct {
	Base
	msgs   []message.Message
	err    error
	closed int
}

func (s *sliceReader) Read(ctx context.Context) (message.Message, error) {
	return s.Guard(ctx, func(context.Context) (msg message.Message, err error) {
		if len(s.msgs) == 0 {
			err = s.err
			if err == nil {
				err = io.EOF
			}
			return
		}
		msg = s.msgs[0]
		s.msgs = s.msgs[1:]
		return
	})
}

func (s *sliceReader) Close() error {
	return s.CloseOnce(func() error {
		s.closed++
		return nil
	})
}

func encodeStream(t *testing.T, msgs ...message.Message) []byte {
	t.Helper()
	var buf bytes.Buffer
	writer := codec.NewWriter(&buf)
	for _, msg := range msgs {
		if err := writer.Write(msg); err != nil {
			t.Fatalf("failed to encode %T: %v", msg, err)
		}
	}
	if err := writer.WriteEnd(); err != nil {
		t.Fatalf("failed to end stream: %v", err)
	}
	return buf.Bytes()
}

func readAll(t *testing.T, r Reader) (msgs []message.Message) {
	t.Helper()
	err := Drain(context.Background(), r, func(msg message.Message) error {
		msgs = append(msgs, msg)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	return
}

func TestPlaybackEndToEnd(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "session.tms")
	data := encodeStream(t, &message.SetWindSpeed{Speed: 5}, &message.SetHumidity{Humidity: 40})
	if err := os.WriteFile(original, data, 0644); err != nil {
		t.Fatal(err)
	}

	playback, err := OpenPlayback(original)
	if err != nil {
		t.Fatalf("failed to open playback: %v", err)
	}

	copyPath := filepath.Join(dir, "copy", "session.tms")
	recording, err := CreateRecording(playback, copyPath)
	if err != nil {
		t.Fatalf("failed to create recording: %v", err)
	}
	fixed := time.Unix(1238310000, 0)
	recording.now = func() time.Time { return fixed }

	msgs := readAll(t, recording)
	expected := []message.Message{&message.SetWindSpeed{Speed: 5}, &message.SetHumidity{Humidity: 40}}
	if !reflect.DeepEqual(msgs, expected) {
		t.Fatalf("expected %v, got %v", expected, msgs)
	}

	for i := 0; i < 3; i++ {
		if _, err := recording.Read(context.Background()); !errors.Is(err, io.EOF) {
			t.Fatalf("read %d after end: expected io.EOF, got %v", i, err)
		}
	}
	if err := recording.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	copied, err := os.ReadFile(copyPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(copied, data) {
		t.Errorf("re-recorded file differs:\n  original: %x\n  copy:     %x", data, copied)
	}
}

func TestPlaybackPacing(t *testing.T) {
	tests := []struct {
		name     string
		speed    float64
		delay    time.Duration
		expected time.Duration
	}{
		{"normal speed", 1, 500 * time.Millisecond, 500 * time.Millisecond},
		{"double speed", 2, 500 * time.Millisecond, 250 * time.Millisecond},
		{"half speed", 0.5, 100 * time.Millisecond, 200 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encodeStream(t,
				&message.SetWindSpeed{Speed: 1},
				&message.SetNextMessageDelay{Delay: tt.delay},
				&message.SetWindSpeed{Speed: 2},
			)
			playback := NewPlayback(io.NopCloser(bytes.NewReader(data)))
			if err := playback.SetSpeed(tt.speed); err != nil {
				t.Fatal(err)
			}

			var slept []time.Duration
			playback.sleep = func(ctx context.Context, d time.Duration) error {
				slept = append(slept, d)
				return nil
			}

			msgs := readAll(t, playback)
			if len(msgs) != 2 {
				t.Fatalf("expected delay to be consumed leaving 2 messages, got %d", len(msgs))
			}
			if len(slept) != 1 || slept[0] != tt.expected {
				t.Errorf("expected one sleep of %v, got %v", tt.expected, slept)
			}
		})
	}
}

func TestPlaybackWallClock(t *testing.T) {
	data := encodeStream(t,
		&message.SetNextMessageDelay{Delay: 500 * time.Millisecond},
		&message.SetWindSpeed{Speed: 2},
	)
	playback := NewPlayback(io.NopCloser(bytes.NewReader(data)))
	if err := playback.SetSpeed(2); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	if _, err := playback.Read(context.Background()); err != nil {
		t.Fatal(err)
	}
	elapsed := time.Since(start)
	if elapsed < 240*time.Millisecond || elapsed > 450*time.Millisecond {
		t.Errorf("expected roughly 250ms of delay, took %v", elapsed)
	}
}

func TestPlaybackCancelledDuringDelay(t *testing.T) {
	data := encodeStream(t,
		&message.SetNextMessageDelay{Delay: time.Hour},
		&message.SetWindSpeed{Speed: 2},
	)
	playback := NewPlayback(io.NopCloser(bytes.NewReader(data)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := playback.Read(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestPlaybackSetSpeed(t *testing.T) {
	playback := NewPlayback(io.NopCloser(bytes.NewReader(nil)))
	if playback.Speed() != DefaultPlaybackSpeed {
		t.Errorf("expected default speed %v, got %v", DefaultPlaybackSpeed, playback.Speed())
	}

	for _, speed := range []float64{0, -1} {
		err := playback.SetSpeed(speed)
		var rangeErr *message.ArgumentOutOfRangeError
		if !errors.As(err, &rangeErr) {
			t.Errorf("speed %v: expected ArgumentOutOfRangeError, got %v", speed, err)
		}
	}
	if playback.Speed() != DefaultPlaybackSpeed {
		t.Errorf("rejected speed changed the playback speed to %v", playback.Speed())
	}
}

func TestPlaybackStickyErrors(t *testing.T) {
	data := encodeStream(t, &message.SetWindSpeed{Speed: 1})
	truncated := data[:len(data)-1] // drop the sentinel

	playback := NewPlayback(io.NopCloser(bytes.NewReader(truncated)))
	if _, err := playback.Read(context.Background()); err != nil {
		t.Fatalf("first read failed: %v", err)
	}

	var first error
	for i := 0; i < 3; i++ {
		_, err := playback.Read(context.Background())
		var truncErr *codec.TruncatedStreamError
		if !errors.As(err, &truncErr) {
			t.Fatalf("read %d: expected TruncatedStreamError, got %v", i, err)
		}
		if first == nil {
			first = err
		} else if err != first {
			t.Errorf("read %d: expected the same sticky error value", i)
		}
	}

	if err := playback.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := playback.Read(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after close, got %v", err)
	}
}

func TestRecordingDelays(t *testing.T) {
	inner := &sliceReader{msgs: []message.Message{
		&message.SetWindSpeed{Speed: 1},
		&message.SetWindSpeed{Speed: 2},
		message.Combine(&message.SetHumidity{Humidity: 1}, &message.SetIsWet{IsWet: true}),
	}}

	var out bytes.Buffer
	output := &nopWriteCloser{Writer: &out}
	recording := NewRecording(inner, output)

	// first message starts the clock, then 2ms (too short) and 750ms
	clock := time.Unix(0, 0)
	steps := []time.Duration{0, 2 * time.Millisecond, 750 * time.Millisecond}
	step := 0
	recording.now = func() time.Time {
		clock = clock.Add(steps[step])
		step++
		return clock
	}

	passed := readAll(t, recording)
	if len(passed) != 3 {
		t.Fatalf("expected 3 messages passed through, got %d", len(passed))
	}
	if _, isComposite := passed[2].(*message.Composite); !isComposite {
		t.Errorf("expected composite to pass through unchanged, got %T", passed[2])
	}
	if err := recording.Close(); err != nil {
		t.Fatal(err)
	}
	if !output.closed || inner.closed != 1 {
		t.Errorf("expected output and inner reader closed once, got output=%v inner=%d", output.closed, inner.closed)
	}

	// Decode directly, playback would consume the delays
	decoder := codec.NewReader(bytes.NewReader(out.Bytes()))
	var got []message.Message
	for {
		msg, err := decoder.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, msg)
	}
	expected := []message.Message{
		&message.SetWindSpeed{Speed: 1},
		&message.SetWindSpeed{Speed: 2},
		&message.SetNextMessageDelay{Delay: 750 * time.Millisecond},
		message.Combine(&message.SetHumidity{Humidity: 1}, &message.SetIsWet{IsWet: true}),
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("recorded stream mismatch:\n  expected %v\n  got      %v", expected, got)
	}
}

func TestRecordingReplaysAsDelivered(t *testing.T) {
	delivered := []message.Message{
		message.Combine(&message.SetWindSpeed{Speed: 5}, &message.SetHumidity{Humidity: 40}),
		&message.SetIsWet{IsWet: true},
	}
	inner := &sliceReader{msgs: append([]message.Message(nil), delivered...)}

	var out bytes.Buffer
	recording := NewRecording(inner, &nopWriteCloser{Writer: &out})
	fixed := time.Unix(1238310000, 0)
	recording.now = func() time.Time { return fixed }

	passed := readAll(t, recording)
	if err := recording.Close(); err != nil {
		t.Fatal(err)
	}

	replayed := readAll(t, NewPlayback(io.NopCloser(bytes.NewReader(out.Bytes()))))
	if len(replayed) != len(passed) {
		t.Fatalf("recording delivered %d messages, replay returned %d", len(passed), len(replayed))
	}
	if !reflect.DeepEqual(replayed, delivered) {
		t.Errorf("replay mismatch:\n  expected %v\n  got      %v", delivered, replayed)
	}
	if !bytes.Equal(out.Bytes(), encodeStream(t, delivered...)) {
		t.Error("recording is not a byte copy of the delivered messages")
	}
}

func TestRecordingInnerError(t *testing.T) {
	failure := errors.New("link down")
	inner := &sliceReader{msgs: []message.Message{&message.SetWindSpeed{Speed: 1}}, err: failure}

	var out bytes.Buffer
	recording := NewRecording(inner, &nopWriteCloser{Writer: &out})
	recording.now = func() time.Time { return time.Unix(0, 0) }

	if _, err := recording.Read(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := recording.Read(context.Background()); !errors.Is(err, failure) {
		t.Fatalf("expected inner failure, got %v", err)
	}

	// Already read message is kept, no sentinel
	decoder := codec.NewReader(bytes.NewReader(out.Bytes()))
	if _, err := decoder.Read(); err != nil {
		t.Fatalf("expected the first message to be flushed: %v", err)
	}
	var truncErr *codec.TruncatedStreamError
	if _, err := decoder.Read(); !errors.As(err, &truncErr) {
		t.Errorf("expected recording without sentinel, got %v", err)
	}
}

func TestRecordingFinishAfterFailure(t *testing.T) {
	inner := &sliceReader{msgs: []message.Message{&message.SetWindSpeed{Speed: 1}}, err: errors.New("link down")}

	var out bytes.Buffer
	recording := NewRecording(inner, &nopWriteCloser{Writer: &out})
	_, _ = recording.Read(context.Background())
	_, _ = recording.Read(context.Background())

	if err := recording.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if err := recording.Finish(); err != nil {
		t.Fatalf("second Finish: %v", err)
	}

	decoder := codec.NewReader(bytes.NewReader(out.Bytes()))
	if _, err := decoder.Read(); err != nil {
		t.Fatal(err)
	}
	if _, err := decoder.Read(); !errors.Is(err, io.EOF) {
		t.Errorf("expected the end marker after Finish, got %v", err)
	}
	if decoder.Offset() != int64(out.Len()) {
		t.Errorf("%d trailing bytes after the end marker", int64(out.Len())-decoder.Offset())
	}
}

func TestProxyReader(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer listener.Close()

	data := encodeStream(t, &message.SetWindSpeed{Speed: 5}, &message.SetHumidity{Humidity: 40})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = conn.Write(data)
	}()

	proxy := NewProxyAddress(listener.Addr().String())
	msgs := readAll(t, proxy)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}

	raw, err := proxy.conn.(*net.TCPConn).SyscallConn()
	if err != nil {
		t.Fatal(err)
	}
	noDelay := 0
	_ = raw.Control(func(fd uintptr) {
		noDelay, err = unix.GetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY)
	})
	if err != nil || noDelay == 0 {
		t.Errorf("proxy connection without TCP_NODELAY: %v", err)
	}
	if _, err := proxy.Read(context.Background()); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF after sentinel, got %v", err)
	}
	if err := proxy.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
	wg.Wait()
}

func TestProxyConnectError(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	address := listener.Addr().String()
	listener.Close()

	proxy := NewProxyAddress(address)
	_, err = proxy.Read(context.Background())

	var connectErr *ConnectError
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected ConnectError, got %v", err)
	}
	var netErr net.Error
	if !errors.As(err, &netErr) {
		t.Errorf("expected wrapped net.Error, got %T", connectErr.Err)
	}
	if connectErr.Address != address {
		t.Errorf("expected address %s, got %s", address, connectErr.Address)
	}
}

func TestProxyReadCancelled(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer listener.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := listener.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	proxy := NewProxyAddress(listener.Addr().String())
	defer proxy.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = proxy.Read(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}

	select {
	case conn := <-accepted:
		conn.Close()
	case <-time.After(time.Second):
	}
}
