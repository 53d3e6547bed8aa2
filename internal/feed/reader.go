package feed

import (
	"context"
	"errors"
	"f1timing/internal/crypto/keystream"
	"f1timing/internal/crypto/seed"
	"f1timing/internal/feed/livedata"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"f1timing/internal/reader"
	"f1timing/internal/translate"
	"f1timing/pkg/message"
	"fmt"
	"io"
	"sync"
	"time"
)

type readerState int

const (
	stateInitial readerState = iota
	stateReading
	stateClosed
)

type queued struct {
	msg        message.Message
	translated bool // produced by the translator, never translated again
}

// Live feed reader. Decodes and decrypts the provider feed, replays the current keyframe
// on the first read and appends the translator's canonical messages after the raw ones.
type Reader struct {
	reader.Base

	endpoint   Endpoint
	seeds      *seed.Factory
	translator *translate.Translator
	decrypter  *keystream.Decrypter
	now        func() time.Time

	mutex  sync.Mutex // guards stream against Close from another goroutine
	stream Stream

	buf          [streamBufferSize]byte
	queue        []queued
	sessionType  message.SessionType
	pingInterval time.Duration
	state        readerState
}

func NewReader(endpoint Endpoint, seeds *seed.Factory) (r *Reader) {
	if seeds == nil {
		seeds = seed.NewFactory(nil)
	}
	r = &Reader{
		endpoint:   endpoint,
		seeds:      seeds,
		translator: translate.New(),
		now:        time.Now,
	}
	return
}

func (r *Reader) Read(ctx context.Context) (msg message.Message, err error) {
	msg, err = r.Guard(ctx, r.next)
	return
}

func (r *Reader) Close() error {
	return r.CloseOnce(r.closeStream)
}

func (r *Reader) next(ctx context.Context) (msg message.Message, err error) {
	ctx = logctx.AppendCtxTag(ctx, global.NSFeed)

	defer func() {
		if err != nil && !(err == io.EOF && r.state == stateClosed) {
			_ = r.closeStream()
			err = feedError(err)
		}
	}()

	if r.state == stateInitial {
		err = r.initialise(ctx)
		if err != nil {
			return
		}
	}

	for {
		if r.state == stateClosed {
			err = io.EOF
			return
		}

		var entry queued
		if len(r.queue) > 0 {
			entry = r.queue[0]
			r.queue[0] = queued{}
			r.queue = r.queue[1:]
		} else {
			entry.msg, err = r.readMessage(ctx)
			if err != nil {
				return
			}
		}
		if entry.msg == nil {
			continue
		}

		err = r.postProcess(ctx, entry.msg, !entry.translated)
		if err != nil {
			return
		}
		msg = entry.msg
		return
	}
}

func (r *Reader) initialise(ctx context.Context) (err error) {
	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "Initialising on first read\n")

	r.decrypter = r.seeds.Default()
	stream, err := r.endpoint.Open(ctx)
	if err != nil {
		return
	}
	r.setStream(stream)

	msg, err := r.readMessage(ctx)
	if err != nil {
		return
	}
	marker, ok := msg.(*message.SetKeyframe)
	if !ok {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
			"Unexpected first message %s, expected a keyframe marker\n", message.Describe(msg))
		err = fmt.Errorf("%w: read %s", ErrUnexpectedFirstMessage, message.Describe(msg))
		return
	}

	err = r.loadKeyframe(ctx, marker.Keyframe)
	if err != nil {
		return
	}
	r.state = stateReading
	return
}

// Queues the contents of a keyframe, following the chain while the keyframe
// announces a newer one than was requested
func (r *Reader) loadKeyframe(ctx context.Context, keyframe int) (err error) {
	ctx = logctx.AppendCtxTag(ctx, global.NSKeyframe)

	for {
		logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "Queueing messages from keyframe %d\n", keyframe)

		var marker *message.SetKeyframe
		marker, err = r.readKeyframe(ctx, keyframe)
		if err != nil {
			return
		}
		if marker.Keyframe <= keyframe {
			break
		}

		logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
			"Keyframe %d announced newer keyframe %d, reloading\n", keyframe, marker.Keyframe)
		clear(r.queue)
		r.queue = r.queue[:0]
		r.translator.Reset()
		keyframe = marker.Keyframe
	}

	r.decrypter.Reset()
	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "Queued %d messages from keyframe %d\n", len(r.queue), keyframe)
	return
}

// Reads one keyframe stream up to and including its keyframe marker
func (r *Reader) readKeyframe(ctx context.Context, keyframe int) (marker *message.SetKeyframe, err error) {
	live := r.currentStream()
	defer r.setStream(live)

	r.decrypter.Reset()
	stream, err := r.endpoint.OpenKeyframe(ctx, keyframe)
	if err != nil {
		return
	}
	r.setStream(stream)
	defer stream.Close()

	r.queue = append(r.queue, queued{msg: &message.SetStreamTimestamp{Timestamp: r.now().UnixNano()}})

	for marker == nil {
		var msg message.Message
		msg, err = r.readMessage(ctx)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			err = fmt.Errorf("keyframe %d ended before its keyframe marker: %w", keyframe, io.ErrUnexpectedEOF)
			return
		}
		if err != nil {
			return
		}
		if msg == nil {
			continue
		}

		r.queue = append(r.queue, queued{msg: msg})
		err = r.postProcess(ctx, msg, false)
		if err != nil {
			return
		}
		marker, _ = msg.(*message.SetKeyframe)
	}
	return
}

// Runs the reader state engine over msg and queues its translation
func (r *Reader) postProcess(ctx context.Context, msg message.Message, translate bool) (err error) {
	for _, leaf := range message.Flatten(msg) {
		err = r.apply(ctx, leaf)
		if err != nil {
			return
		}
	}
	if !translate {
		return
	}
	translated := r.translator.Translate(ctx, msg)
	if translated != nil {
		r.queue = append(r.queue, queued{msg: translated, translated: true})
	}
	return
}

func (r *Reader) apply(ctx context.Context, msg message.Message) (err error) {
	switch m := msg.(type) {
	case *message.SetPingInterval:
		r.pingInterval = min(m.PingInterval, MaxPingInterval)
		if stream := r.currentStream(); stream != nil {
			stream.SetPingInterval(r.pingInterval)
		}
	case *message.EndOfSession:
		logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Feed session ended\n")
		err = r.closeStream()
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog, "Failed to close feed stream: %v\n", err)
			err = nil
		}
		r.state = stateClosed
	case *message.SetSessionType:
		r.sessionType = m.SessionType
		if m.SessionID == "" {
			r.decrypter = r.seeds.Default()
			return
		}
		r.decrypter, err = r.seeds.Create(ctx, m.SessionID)
	case *message.SetKeyframe:
		r.decrypter.Reset()
	}
	return
}

func (r *Reader) currentStream() Stream {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.stream
}

func (r *Reader) setStream(stream Stream) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.stream = stream
	if stream != nil {
		stream.SetPingInterval(r.pingInterval)
	}
}

func (r *Reader) closeStream() (err error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.stream != nil {
		err = r.stream.Close()
		r.stream = nil
	}
	return
}

// The feed never ends cleanly mid session, so every end of stream is a transport failure.
// Decode and context errors pass through.
func feedError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &reader.TransportError{Op: "feed read", Err: io.ErrUnexpectedEOF}
	}

	var unsupported *UnsupportedPacketError
	var parse *livedata.ParseError
	var resolution *seed.ResolutionError
	var transport *reader.TransportError
	if errors.Is(err, ErrUnexpectedFirstMessage) || errors.As(err, &unsupported) ||
		errors.As(err, &parse) || errors.As(err, &resolution) || errors.As(err, &transport) {
		return err
	}
	return &reader.TransportError{Op: "feed read", Err: err}
}
