// Records a timing session to a dated .tms file, retrying the initial connection
package recorder

import (
	"context"
	"errors"
	"f1timing/internal/crypto/seed"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"f1timing/internal/reader"
	"f1timing/pkg/message"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const FileExt = ".tms"

// Opens the stream to record, called again for every connection attempt
type Source func(ctx context.Context) (reader.Reader, error)

type Options struct {
	Retries      uint64        // further attempts after the first failed connection
	InitialDelay time.Duration // before the first retry, doubling after each
	MaxDelay     time.Duration
}

// Path for a session recording: <dir>/<year>/<yyyy-mm-dd>-<session>.tms.
// Session names that already carry a directory or the extension are kept as given.
func RecordPath(dir, session string, now time.Time) (path string, err error) {
	session = strings.TrimSpace(session)
	if session == "" {
		err = fmt.Errorf("session name is empty")
		return
	}
	if !strings.EqualFold(filepath.Ext(session), FileExt) {
		session += FileExt
	}

	if filepath.Dir(session) != "." {
		path = session
	} else {
		year := now.Format("2006")
		path = filepath.Join(dir, year, now.Format("2006-01-02")+"-"+session)
	}

	if !filepath.IsAbs(path) {
		var cwd string
		cwd, err = os.Getwd()
		if err != nil {
			err = fmt.Errorf("failed to resolve working directory: %w", err)
			return
		}
		path = filepath.Join(cwd, path)
	}
	return
}

// Connection failures worth another attempt
func retryable(err error) bool {
	if errors.Is(err, seed.ErrCredentialsRejected) {
		return false
	}
	var connectErr *reader.ConnectError
	var transportErr *reader.TransportError
	var netErr net.Error
	return errors.As(err, &connectErr) || errors.As(err, &transportErr) || errors.As(err, &netErr)
}

// Connects to the source (retrying transport failures with exponential backoff) and records
// everything it produces to path until end of stream. Returns the number of messages recorded.
func Record(ctx context.Context, open Source, path string, opts Options) (recorded int, err error) {
	ctx = logctx.AppendCtxTag(ctx, global.NSRecord)

	if opts.InitialDelay == 0 {
		opts.InitialDelay = 5 * time.Second
	}
	if opts.MaxDelay == 0 {
		opts.MaxDelay = global.DefaultRecordMaxDelay
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = opts.InitialDelay
	exp.MaxInterval = opts.MaxDelay
	exp.Multiplier = 2.0
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0

	var b backoff.BackOff = exp
	b = backoff.WithMaxRetries(b, opts.Retries)
	b = backoff.WithContext(b, ctx)

	// The first message proves the connection works
	var upstream reader.Reader
	var first message.Message
	attempt := 0
	operation := func() (opErr error) {
		attempt++
		logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Connecting (attempt %d/%d)...\n", attempt, opts.Retries+1)

		candidate, opErr := open(ctx)
		if opErr != nil {
			if !retryable(opErr) {
				opErr = backoff.Permanent(opErr)
			}
			return
		}

		first, opErr = candidate.Read(ctx)
		if opErr != nil {
			_ = candidate.Close()
			if reader.IsEndOfStream(opErr) {
				opErr = backoff.Permanent(fmt.Errorf("stream ended before any message arrived: %w", opErr))
			} else if !retryable(opErr) {
				opErr = backoff.Permanent(opErr)
			}
			return
		}
		upstream = candidate
		return
	}
	notify := func(opErr error, delay time.Duration) {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Connection failed, backing off for %v: %v\n", delay, opErr)
	}

	err = backoff.RetryNotify(operation, b, notify)
	if err != nil {
		err = fmt.Errorf("failed to connect after %d attempts: %w", attempt, err)
		return
	}

	recording, err := reader.CreateRecording(&primed{Reader: upstream, first: first}, path)
	if err != nil {
		_ = upstream.Close()
		return
	}
	defer func() {
		closeErr := recording.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("failed to finish recording: %w", closeErr)
		}
	}()

	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Recording to %s\n", path)

	err = reader.Drain(ctx, recording, func(msg message.Message) error {
		recorded++
		logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog, "%s\n", message.Describe(msg))
		return nil
	})
	if err != nil {
		// Cut short, still leave a replayable file
		finishErr := recording.Finish()
		if finishErr != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Failed to terminate recording: %v\n", finishErr)
		}
		err = fmt.Errorf("recording stopped after %d messages: %w", recorded, err)
		return
	}

	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Recorded %d messages to %s\n", recorded, path)
	return
}

// Hands back an already read message before continuing with the reader
type primed struct {
	reader.Reader
	first message.Message
}

func (p *primed) Read(ctx context.Context) (msg message.Message, err error) {
	if p.first != nil {
		msg, p.first = p.first, nil
		return
	}
	msg, err = p.Reader.Read(ctx)
	return
}
