package logctx

import (
	"bytes"
	"context"
	"f1timing/internal/global"
	"strings"
	"testing"
	"time"
)

func TestWatcher_WaitWakeAndDedup(t *testing.T) {
	done := make(chan struct{})

	logger := NewLogger(global.NSTest, 5, done)
	ctx := WithLogger(context.Background(), logger)

	var output bytes.Buffer
	StartWatcher(logger, &output)

	// Explicit wake while idle should not write anything
	logger.Wake()

	const repeats = 11
	msg := "duplicate-message\n"
	for i := 0; i < repeats; i++ {
		LogEvent(ctx, 1, global.InfoLog, "%s", msg)
	}
	LogEvent(ctx, 1, global.InfoLog, "final\n")

	close(done)
	logger.Wake()
	logger.Wait()

	out := output.String()
	if strings.Count(out, "duplicate-message") < 2 {
		t.Fatalf("expected original and suppression lines, got:\n%s", out)
	}
	if !strings.Contains(out, "Suppressed 10 repeated messages") {
		t.Fatalf("expected suppression message, got:\n%s", out)
	}
	if !strings.Contains(out, "final") {
		t.Fatalf("queue was not drained before exit, got:\n%s", out)
	}
}

func TestEventFormat(t *testing.T) {
	ts := time.Date(2009, 3, 29, 7, 0, 0, 5, time.UTC)

	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name:  "all parts",
			event: Event{Timestamp: ts, Tags: []string{"Proxy", "Session"}, Severity: global.WarnLog, Message: "slow\n"},
			want:  "[2009-03-29T07:00:00.000000005Z] [Proxy/Session] [Warn] slow\n",
		},
		{
			name:  "message only",
			event: Event{Message: "plain"},
			want:  "plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Format(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
