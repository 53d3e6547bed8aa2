package translate

import (
	"context"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"f1timing/pkg/message"
)

// Updates translator state from a message. Run over both the input and the output of a translation.
func (t *Translator) process(ctx context.Context, msg message.Message) {
	switch m := msg.(type) {
	case *message.Composite:
		for _, component := range m.Messages {
			t.process(ctx, component)
		}
	case *message.SetSessionType:
		if t.sessionType != m.SessionType {
			logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
				"Session type changing to %s, resetting driver state\n", m.SessionType)
			t.Reset()
			t.sessionType = m.SessionType
		}
	case *message.SetRaceLapNumber:
		t.raceLapNumber = m.LapNumber
	case *message.SetGridColumnValue:
		t.driver(m.DriverID).SetColumnHasValue(m.Column, !m.IsClear())
	case *message.SetDriverStatus:
		t.driver(m.DriverID).ChangeStatus(m.DriverStatus)
	case *message.SetDriverPosition:
		t.driver(m.DriverID).Position = m.Position
	case *message.SetDriverCarNumber:
		t.driver(m.DriverID).CarNumber = m.CarNumber
	case *message.SetDriverName:
		t.driver(m.DriverID).Name = m.DriverName
	case *message.SetDriverLapNumber:
		t.driver(m.DriverID).LapNumber = m.LapNumber
	case *message.SetDriverSectorTime:
		driver := t.driver(m.DriverID)
		driver.SetLastSector(m.SectorNumber, m.SectorTime)
		driver.CurrentSector = m.SectorNumber%3 + 1
	case *message.ReplaceDriverSectorTime:
		t.driver(m.DriverID).SetLastSector(m.SectorNumber, m.Replacement)
	case *message.SetDriverLapTime:
		t.driver(m.DriverID).LastLapTime = m.LapTime
	case *message.ReplaceDriverLapTime:
		t.driver(m.DriverID).LastLapTime = m.Replacement
	case *message.SetDriverPitCount:
		driver := t.driver(m.DriverID)
		// Pit stop durations follow in the sector columns
		driver.IsExpectingPitTimes = t.sessionType == message.SessionTypeRace && driver.Status == message.DriverInPits
	case *message.SetDriverPitTime:
		t.driver(m.DriverID).IsExpectingPitTimes = false
	case *message.SetDriverGap:
		t.driver(m.DriverID).LastGap = m
	case *message.SetDriverInterval:
		t.driver(m.DriverID).LastInterval = m
	}
}
