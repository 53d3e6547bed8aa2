package lifecycle

import "time"

const (
	DefaultMaxWaitForUpdate time.Duration = 10 * time.Second // Max allowed child startup time
	DefaultChildStopTimeout time.Duration = 5 * time.Second
	ReadyMessage            string        = "READY"
	EnvNameReadinessFD      string        = "F1TIMING_READY_FD"
	EnvNameAlivenessFD      string        = "F1TIMING_PARENT_FD"
)
