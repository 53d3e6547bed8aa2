package reader

import (
	"context"
	"errors"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"f1timing/pkg/codec"
	"f1timing/pkg/message"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Gaps shorter than this are not recorded
const MinMessageDelay = 5 * time.Millisecond

// Passes messages through from an inner reader while writing them to a recording.
// Every message is recorded as delivered, so a replay returns the same messages.
type Recording struct {
	Base
	inner   Reader
	output  io.WriteCloser
	writer  *codec.Writer
	started bool
	ended   bool // end marker written
	last    time.Time
	now     func() time.Time
}

// Records the inner reader to a new file at path, creating parent directories
func CreateRecording(inner Reader, path string) (recording *Recording, err error) {
	err = os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		err = fmt.Errorf("failed to create recording directory: %w", err)
		return
	}
	file, err := os.Create(path)
	if err != nil {
		err = fmt.Errorf("failed to create recording: %w", err)
		return
	}
	recording = NewRecording(inner, file)
	return
}

// Records to output. Output and inner are closed with the recording.
func NewRecording(inner Reader, output io.WriteCloser) (recording *Recording) {
	recording = &Recording{
		inner:  inner,
		output: output,
		writer: codec.NewWriter(output),
		now:    time.Now,
	}
	return
}

func (r *Recording) Read(ctx context.Context) (msg message.Message, err error) {
	msg, err = r.Guard(ctx, r.next)
	return
}

func (r *Recording) next(ctx context.Context) (msg message.Message, err error) {
	msg, err = r.inner.Read(ctx)
	if IsEndOfStream(err) {
		writeErr := r.writer.WriteEnd()
		r.ended = writeErr == nil
		if writeErr != nil {
			err = wrapTransport("recording write", writeErr)
		}
		return
	}
	if err != nil {
		// Keep whatever was recorded before the failure
		flushErr := r.writer.Flush()
		if flushErr != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"Failed to flush recording after read error: %v\n", flushErr)
		}
		return
	}

	now := r.now()
	if r.started {
		delay := now.Sub(r.last)
		if delay >= MinMessageDelay {
			err = r.writer.Write(&message.SetNextMessageDelay{Delay: delay})
			if err != nil {
				err = wrapTransport("recording write", err)
				return
			}
		}
	}
	r.started = true
	r.last = now

	err = r.writer.Write(msg)
	if err != nil {
		err = wrapTransport("recording write", err)
	}
	return
}

// Terminates a recording whose stream was cut short so it stays replayable.
// Does nothing when the end marker is already written.
func (r *Recording) Finish() (err error) {
	if !r.ended {
		err = r.writer.WriteEnd()
		if err != nil {
			err = wrapTransport("recording write", err)
			return
		}
		r.ended = true
	}
	err = r.writer.Flush()
	return
}

// Flushes buffered output so the recording can be inspected while it grows
func (r *Recording) Flush() error {
	return r.writer.Flush()
}

func (r *Recording) Close() error {
	return r.CloseOnce(func() error {
		err := errors.Join(r.writer.Flush(), r.output.Close(), r.inner.Close())
		return err
	})
}
