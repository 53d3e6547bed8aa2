package message

import "time"

type AddCommentary struct {
	Commentary string
}

func (m *AddCommentary) Validate() error { return nil }

// Announces the session type and the identifier used to resolve its decryption seed
type SetSessionType struct {
	SessionType SessionType
	SessionID   string
}

func (m *SetSessionType) Validate() error { return checkEnum("SessionType", m.SessionType) }

type SetSessionStatus struct {
	SessionStatus SessionStatus
}

func (m *SetSessionStatus) Validate() error { return checkEnum("SessionStatus", m.SessionStatus) }

type SetRaceLapNumber struct {
	LapNumber int
}

func (m *SetRaceLapNumber) Validate() error { return checkNonNegative("LapNumber", m.LapNumber) }

// Speed trap readings keyed by driver name
type SpeedCapture struct {
	Location SpeedCaptureLocation
	Speeds   []*SpeedEntry
}

func (m *SpeedCapture) Validate() (err error) {
	err = checkEnum("Location", m.Location)
	if err != nil {
		return
	}
	for _, entry := range m.Speeds {
		err = checkNotNil("Speeds", entry != nil)
		if err != nil {
			return
		}
		err = entry.Validate()
		if err != nil {
			return
		}
	}
	return
}

// Speed trap line as received, before it is split into entries
type RawSpeedCapture struct {
	Location SpeedCaptureLocation
	Speeds   string
}

func (m *RawSpeedCapture) Validate() error { return checkEnum("Location", m.Location) }

type SetRemainingSessionTime struct {
	Remaining time.Duration
}

func (m *SetRemainingSessionTime) Validate() error {
	return checkNonNegative("Remaining", m.Remaining)
}

type SetElapsedSessionTime struct {
	Elapsed time.Duration
}

func (m *SetElapsedSessionTime) Validate() error { return checkNonNegative("Elapsed", m.Elapsed) }

type StartSessionTimeCountdown struct{}

func (m *StartSessionTimeCountdown) Validate() error { return nil }

type StopSessionTimeCountdown struct{}

func (m *StopSessionTimeCountdown) Validate() error { return nil }

type SetMinRequiredQuallyTime struct {
	Time time.Duration
}

func (m *SetMinRequiredQuallyTime) Validate() error { return checkNonNegative("Time", m.Time) }
