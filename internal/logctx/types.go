package logctx

import (
	"sync"
	"time"
)

// Log Event Structure
type Event struct {
	Timestamp time.Time
	Severity  string
	Tags      []string
	Message   string
}

// Queued logger carried through context. A single watcher drains the queue.
type Logger struct {
	ID         string
	CreatedAt  time.Time
	queue      []Event         // event buffer
	mutex      sync.Mutex      // protects buffer and print level
	cond       *sync.Cond      // signals new events to watcher
	Done       <-chan struct{} // closed when the program is exiting
	PrintLevel int             // Highest event level that is recorded
	wg         *sync.WaitGroup // Holds main execution threads until log watchers are done handling events
}

type dedupState struct {
	lastMsg          string
	repeatCount      int
	lastSuppressTime time.Time
}
