package beats

import (
	lumberjack "github.com/elastic/go-lumber/client/v2"
)

// Forwards timing messages as events to a beats (lumberjack v2) server
type OutModule struct {
	sink     *lumberjack.SyncClient
	hostname string
	source   string // e.g. live, proxy host or recording path
}
