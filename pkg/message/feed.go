package message

import "time"

// Wall clock position of the stream, in unix nanoseconds (0 when unknown)
type SetStreamTimestamp struct {
	Timestamp int64
}

func (m *SetStreamTimestamp) Validate() error { return nil }

type SetCopyright struct {
	Copyright string
}

func (m *SetCopyright) Validate() error { return nil }

type SetKeyframe struct {
	Keyframe int
}

func (m *SetKeyframe) Validate() error { return checkNonNegative("Keyframe", m.Keyframe) }

type SetStreamValidity struct {
	IsValid bool
}

func (m *SetStreamValidity) Validate() error { return nil }

// Feed poll interval. Zero or very long intervals signal the end of the session.
type SetPingInterval struct {
	PingInterval time.Duration
}

func (m *SetPingInterval) Validate() error {
	return checkNonNegative("PingInterval", m.PingInterval)
}

type SetSystemMessage struct {
	Message string
}

func (m *SetSystemMessage) Validate() error { return nil }

// Recorded pause before the next message is delivered
type SetNextMessageDelay struct {
	Delay time.Duration
}

func (m *SetNextMessageDelay) Validate() error { return checkNonNegative("Delay", m.Delay) }
