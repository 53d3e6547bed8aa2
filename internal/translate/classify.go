package translate

import "f1timing/pkg/message"

// Reports whether msg is output the translator synthesises rather than a raw feed message.
// A composite is translated when every component is.
func IsTranslated(msg message.Message) bool {
	switch m := msg.(type) {
	case *message.Composite:
		if len(m.Messages) == 0 {
			return false
		}
		for _, component := range m.Messages {
			if !IsTranslated(component) {
				return false
			}
		}
		return true
	case *message.SetSessionStatus:
		return m.SessionStatus == message.StatusFinished
	case *message.ReplaceDriverLapTime,
		*message.ReplaceDriverSectorTime,
		*message.SetDriverCarNumber,
		*message.SetDriverLapNumber,
		*message.SetDriverGap,
		*message.SetDriverInterval,
		*message.SetDriverLapTime,
		*message.SetDriverName,
		*message.SetDriverPitCount,
		*message.SetDriverQuallyTime,
		*message.SetDriverSectorTime,
		*message.SetDriverStatus,
		*message.SetRaceLapNumber,
		*message.EndOfSession,
		*message.SetDriverPitTime,
		*message.SetDriverSpeed:
		return true
	}
	return false
}
