package feed

import (
	"context"
	"errors"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"io"
	"net"
	"os"
	"sync"
	"time"
)

const (
	streamBufferSize = 256
	pingByte         = 0x10
	MaxPingInterval  = 250 * time.Millisecond
)

// Raw feed byte source
type Stream interface {
	// Fills buf entirely. Returns io.EOF when the stream ended before the first byte
	// and io.ErrUnexpectedEOF when it ended part way.
	ReadFull(ctx context.Context, buf []byte) error
	// Interval between keep-alive pings while the stream is idle, 0 disables pings
	SetPingInterval(interval time.Duration)
	Close() error
}

// Live feed socket. Pings the server whenever no data arrives within the ping interval.
type SocketStream struct {
	conn     net.Conn
	buf      [streamBufferSize]byte
	length   int
	position int

	mutex sync.Mutex // guards ping against SetPingInterval from another goroutine
	ping  time.Duration
}

func NewSocketStream(conn net.Conn) (stream *SocketStream) {
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}
	stream = &SocketStream{conn: conn}
	return
}

func (s *SocketStream) SetPingInterval(interval time.Duration) {
	if interval < 0 {
		interval = 0
	}
	s.mutex.Lock()
	s.ping = interval
	s.mutex.Unlock()
}

func (s *SocketStream) pingInterval() time.Duration {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.ping
}

func (s *SocketStream) ReadFull(ctx context.Context, buf []byte) (err error) {
	copied := 0
	for copied < len(buf) {
		if s.position < s.length {
			n := copy(buf[copied:], s.buf[s.position:s.length])
			s.position += n
			copied += n
			continue
		}

		err = s.fill(ctx)
		if err == io.EOF && copied > 0 {
			err = io.ErrUnexpectedEOF
		}
		if err != nil {
			return
		}
	}
	return
}

// Reads the next chunk, pinging on every idle interval
func (s *SocketStream) fill(ctx context.Context) (err error) {
	stop := context.AfterFunc(ctx, func() {
		_ = s.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		interval := s.pingInterval()
		if interval > 0 {
			err = s.conn.SetReadDeadline(time.Now().Add(interval))
		} else {
			err = s.conn.SetReadDeadline(time.Time{})
		}
		if err != nil {
			return
		}

		// Checked after the deadline is set so a cancellation cannot be overwritten
		err = ctx.Err()
		if err != nil {
			return
		}

		var n int
		n, err = s.conn.Read(s.buf[:])
		if n > 0 {
			s.position = 0
			s.length = n
			err = nil
			return
		}

		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			if ctx.Err() != nil {
				err = ctx.Err()
				return
			}
			err = s.sendPing(ctx)
			if err != nil {
				return
			}
			continue
		}
		if err == nil {
			continue
		}
		return
	}
}

func (s *SocketStream) sendPing(ctx context.Context) (err error) {
	logctx.LogEvent(ctx, global.VerbosityDebug, global.InfoLog, "Pinging idle feed\n")
	_ = s.conn.SetWriteDeadline(time.Now().Add(global.DefaultSessionWriteTimeout))
	_, err = s.conn.Write([]byte{pingByte})
	return
}

func (s *SocketStream) Close() error {
	return s.conn.Close()
}

// Stream over a file or HTTP body, pings are meaningless and ignored
type ByteStream struct {
	input io.ReadCloser
}

func NewByteStream(input io.ReadCloser) (stream *ByteStream) {
	stream = &ByteStream{input: input}
	return
}

func OpenFileStream(path string) (stream *ByteStream, err error) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	stream = NewByteStream(file)
	return
}

func (s *ByteStream) ReadFull(ctx context.Context, buf []byte) (err error) {
	err = ctx.Err()
	if err != nil {
		return
	}
	_, err = io.ReadFull(s.input, buf)
	return
}

func (s *ByteStream) SetPingInterval(time.Duration) {}

func (s *ByteStream) Close() error {
	return s.input.Close()
}
