// Strips translator output from recordings and derives it again with the current translator
package fixup

import (
	"context"
	"errors"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"f1timing/internal/translate"
	"f1timing/pkg/codec"
	"f1timing/pkg/message"
	"fmt"
	"io"
	"os"
)

const tempSuffix = ".tmp"

type Statistics struct {
	Read          int // messages in the original
	Written       int // messages in the rewrite
	OrgTranslated int // translator output dropped from the original
	NewTranslated int // translator output added by the rewrite
}

// Written minus read, negative when the rewrite is smaller
func (s Statistics) Difference() int {
	return s.Written - s.Read
}

func (s Statistics) String() string {
	diff := s.Difference()
	change := "added"
	if diff < 0 {
		change = "removed"
		diff = -diff
	}
	return fmt.Sprintf("read=%d, org-translated=%d, new-translated=%d, written=%d, %s=%d",
		s.Read, s.OrgTranslated, s.NewTranslated, s.Written, change, diff)
}

// Rewrites the recording at path in place. The rewrite goes to a temporary file
// that replaces the original only once it is complete.
func Run(ctx context.Context, path string) (stats Statistics, err error) {
	ctx = logctx.AppendCtxTag(ctx, global.NSFixup)

	input, err := os.Open(path)
	if err != nil {
		err = fmt.Errorf("failed to open recording: %w", err)
		return
	}
	defer input.Close()

	info, err := input.Stat()
	if err != nil {
		err = fmt.Errorf("failed to stat recording: %w", err)
		return
	}

	tempPath := path + tempSuffix
	output, err := os.OpenFile(tempPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		err = fmt.Errorf("failed to create temporary file: %w", err)
		return
	}

	stats, err = Rewrite(ctx, input, output)
	closeErr := output.Close()
	if err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close temporary file: %w", closeErr)
	}
	if err != nil {
		removeErr := os.Remove(tempPath)
		if removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"Failed to remove temporary file %s: %v\n", tempPath, removeErr)
		}
		return
	}

	err = os.Rename(tempPath, path)
	if err != nil {
		err = fmt.Errorf("failed to replace recording: %w", err)
		return
	}

	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Fixed up %s: %s\n", path, stats)
	return
}

// Copies the recording from input to output, dropping translator output and translating
// the remaining messages again. The output always ends with the end marker.
func Rewrite(ctx context.Context, input io.Reader, output io.Writer) (stats Statistics, err error) {
	decoder := codec.NewReader(input)
	writer := codec.NewWriter(output)
	translator := translate.New()

	for {
		var msg message.Message
		msg, err = decoder.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			err = fmt.Errorf("failed reading message %d at offset %d: %w", stats.Read+1, decoder.Offset(), err)
			return
		}
		stats.Read++

		if translate.IsTranslated(msg) {
			stats.OrgTranslated++
			logctx.LogEvent(ctx, global.VerbosityFullData, global.InfoLog, "Dropped %s\n", message.Describe(msg))
			continue
		}

		err = writer.Write(msg)
		if err != nil {
			err = fmt.Errorf("failed writing message: %w", err)
			return
		}
		stats.Written++

		for _, leaf := range message.Flatten(translator.Translate(ctx, msg)) {
			err = writer.Write(leaf)
			if err != nil {
				err = fmt.Errorf("failed writing translated message: %w", err)
				return
			}
			stats.Written++
			stats.NewTranslated++
		}
	}

	err = writer.WriteEnd()
	if err != nil {
		err = fmt.Errorf("failed writing end marker: %w", err)
		return
	}
	err = writer.Flush()
	if err != nil {
		err = fmt.Errorf("failed flushing output: %w", err)
		return
	}
	return
}
