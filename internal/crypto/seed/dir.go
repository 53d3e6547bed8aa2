package seed

import (
	"context"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"fmt"
	"os"
	"path/filepath"
)

const seedFileExt = ".seed"

// Reads seeds saved alongside recorded raw feed captures as <dir>/<session id>.seed
type DirResolver struct {
	Dir string
}

func (r *DirResolver) Resolve(ctx context.Context, sessionID string) (seed uint32, err error) {
	seedPath := r.Path(sessionID)
	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "Opening seed file %s\n", seedPath)

	data, err := os.ReadFile(seedPath)
	if err != nil {
		err = fmt.Errorf("failed to read seed file: %w", err)
		return
	}
	seed, err = ParseHex(string(data))
	return
}

func (r *DirResolver) Path(sessionID string) string {
	return filepath.Join(r.Dir, filepath.Base(sessionID)+seedFileExt)
}

// Saves a seed so a raw capture can be decoded later
func (r *DirResolver) Save(sessionID string, seed uint32) (err error) {
	err = os.MkdirAll(r.Dir, 0755)
	if err != nil {
		err = fmt.Errorf("failed to create seed directory: %w", err)
		return
	}
	err = os.WriteFile(r.Path(sessionID), []byte(fmt.Sprintf("%x", seed)), 0644)
	if err != nil {
		err = fmt.Errorf("failed to write seed file: %w", err)
	}
	return
}
