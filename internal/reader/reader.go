// Sequential message sources: recorded file playback, recording tee and proxy client
package reader

import (
	"context"
	"errors"
	"f1timing/pkg/codec"
	"f1timing/pkg/message"
	"io"
	"sync"
	"sync/atomic"
)

// Forward-only message source.
// Read returns io.EOF at the end of the stream. Not safe for concurrent Read.
type Reader interface {
	Read(ctx context.Context) (message.Message, error)
	Close() error
}

// Read after Close
var ErrClosed = errors.New("reader is closed")

// Sticky error and end of stream bookkeeping shared by reader implementations.
// Once a read fails every later read returns the same error.
type Base struct {
	err       error
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Runs one read through the guard
func (b *Base) Guard(ctx context.Context, read func(ctx context.Context) (message.Message, error)) (msg message.Message, err error) {
	if b.closed.Load() {
		err = ErrClosed
		return
	}
	if b.err != nil {
		err = b.err
		return
	}
	err = ctx.Err()
	if err != nil {
		return
	}

	msg, err = read(ctx)
	if err != nil {
		b.err = err
		msg = nil
	}
	return
}

// Runs release exactly once, later calls return the first result
func (b *Base) CloseOnce(release func() error) (err error) {
	b.closeOnce.Do(func() {
		b.closed.Store(true)
		if release != nil {
			b.closeErr = release()
		}
	})
	err = b.closeErr
	return
}

// Reports whether the error terminates a stream normally
func IsEndOfStream(err error) bool {
	return errors.Is(err, io.EOF)
}

// Drains a reader, handing each message to fn until end of stream
func Drain(ctx context.Context, r Reader, fn func(message.Message) error) (err error) {
	for {
		var msg message.Message
		msg, err = r.Read(ctx)
		if IsEndOfStream(err) {
			err = nil
			return
		}
		if err != nil {
			return
		}
		err = fn(msg)
		if err != nil {
			return
		}
	}
}

// Codec and context errors pass through, anything else is a transport failure
func wrapTransport(op string, err error) error {
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var truncated *codec.TruncatedStreamError
	var unknown *codec.UnknownTypeError
	var malformed *codec.MalformedMessageError
	if errors.As(err, &truncated) || errors.As(err, &unknown) || errors.As(err, &malformed) {
		return err
	}
	var transport *TransportError
	if errors.As(err, &transport) {
		return err
	}
	return &TransportError{Op: op, Err: err}
}
