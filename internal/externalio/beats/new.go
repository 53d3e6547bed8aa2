package beats

import (
	"fmt"
	"os"
	"time"

	lumberjack "github.com/elastic/go-lumber/client/v2"
)

// Creates new beats (lumberjack) output module. Returns nil nil if no endpoint.
func NewOutput(endpoint, source string) (module *OutModule, err error) {
	if endpoint == "" {
		return
	}

	compression := lumberjack.CompressionLevel(0)
	timeout := lumberjack.Timeout(3 * time.Second)

	ljClient, err := lumberjack.SyncDial(endpoint, compression, timeout)
	if err != nil {
		err = fmt.Errorf("failed connection to beats server: %w", err)
		return
	}

	hostname, _ := os.Hostname()
	module = &OutModule{
		sink:     ljClient,
		hostname: hostname,
		source:   source,
	}
	return
}

// Closes the connection. Safe on a nil module.
func (mod *OutModule) Shutdown() (err error) {
	if mod == nil || mod.sink == nil {
		return
	}
	err = mod.sink.Close()
	return
}
