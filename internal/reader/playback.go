package reader

import (
	"context"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"f1timing/pkg/codec"
	"f1timing/pkg/message"
	"fmt"
	"io"
	"math"
	"os"
	"sync/atomic"
	"time"
)

const DefaultPlaybackSpeed = 1.0

// Replays a recorded session, honouring recorded delays scaled by the playback speed
type Playback struct {
	Base
	input   io.ReadCloser
	decoder *codec.Reader
	speed   atomic.Uint64 // float64 bits, adjustable while playing
	sleep   func(ctx context.Context, d time.Duration) error
}

// Opens a recorded session file
func OpenPlayback(path string) (playback *Playback, err error) {
	file, err := os.Open(path)
	if err != nil {
		err = fmt.Errorf("failed to open recorded session: %w", err)
		return
	}
	playback = NewPlayback(file)
	return
}

// Plays back an already open recording. The input is closed with the reader.
func NewPlayback(input io.ReadCloser) (playback *Playback) {
	playback = &Playback{
		input:   input,
		decoder: codec.NewReader(input),
		sleep:   sleepContext,
	}
	playback.speed.Store(floatBits(DefaultPlaybackSpeed))
	return
}

// Playback speed multiplier, 2.0 plays twice as fast
func (p *Playback) SetSpeed(speed float64) (err error) {
	if !(speed > 0) {
		err = &message.ArgumentOutOfRangeError{Param: "speed", Value: speed}
		return
	}
	p.speed.Store(floatBits(speed))
	return
}

func (p *Playback) Speed() float64 {
	return floatFromBits(p.speed.Load())
}

func (p *Playback) Read(ctx context.Context) (msg message.Message, err error) {
	msg, err = p.Guard(ctx, p.next)
	return
}

func (p *Playback) next(ctx context.Context) (msg message.Message, err error) {
	for {
		msg, err = p.decoder.Read()
		if err != nil {
			err = wrapTransport("playback read", err)
			return
		}

		delay, isDelay := msg.(*message.SetNextMessageDelay)
		if !isDelay {
			return
		}

		scaled := time.Duration(float64(delay.Delay) / p.Speed())
		if scaled > 0 {
			logctx.LogEvent(ctx, global.VerbosityDebug, global.InfoLog, "Delaying next message by %v\n", scaled)
			err = p.sleep(ctx, scaled)
			if err != nil {
				return
			}
		}
	}
}

func (p *Playback) Close() error {
	return p.CloseOnce(p.input.Close)
}

// Sleeps for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) (err error) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		err = ctx.Err()
	case <-timer.C:
	}
	return
}

func floatBits(f float64) uint64 { return math.Float64bits(f) }

func floatFromBits(b uint64) float64 { return math.Float64frombits(b) }
