// Normalises raw feed messages into the canonical message set
package translate

import (
	"context"
	"f1timing/internal/feed/livedata"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"f1timing/pkg/message"
	"strings"
	"time"
)

// Ping intervals at or above this signal the end of the session
const MaxPingInterval = 30 * time.Second

// Stateful translator for one feed. Not safe for concurrent use.
type Translator struct {
	drivers       map[int]*liveDriver
	sessionType   message.SessionType
	raceLapNumber int
}

func New() (translator *Translator) {
	translator = &Translator{drivers: make(map[int]*liveDriver, 25)}
	return
}

// Clears session and driver state, keeping known driver ids
func (t *Translator) Reset() {
	t.raceLapNumber = 0
	t.sessionType = message.SessionTypeNone
	for _, driver := range t.drivers {
		driver.Reset()
	}
}

func (t *Translator) SessionType() message.SessionType { return t.sessionType }

func (t *Translator) RaceLapNumber() int { return t.raceLapNumber }

// Lap and sector times only count once a session is running (race: from lap one)
func (t *Translator) HasSessionStarted() bool {
	if t.sessionType == message.SessionTypeNone {
		return false
	}
	return t.sessionType != message.SessionTypeRace || t.raceLapNumber > 0
}

// Returns the canonical messages derived from msg, or nil when there is nothing to add.
// Values that fail to parse are logged and produce nil.
func (t *Translator) Translate(ctx context.Context, msg message.Message) (translated message.Message) {
	if msg == nil {
		return
	}

	// Components are translated in order so each sees the state left by the previous one
	if composite, ok := msg.(*message.Composite); ok {
		var parts []message.Message
		for _, component := range composite.Messages {
			parts = append(parts, t.Translate(ctx, component))
		}
		translated = message.Combine(parts...)
		return
	}

	translated = t.validated(ctx, t.translate(ctx, msg))

	t.process(ctx, msg)
	if translated != nil {
		t.process(ctx, translated)
		if global.Verbosity >= global.VerbosityFullData {
			logctx.LogEvent(ctx, global.VerbosityFullData, global.InfoLog,
				"Translated %s into %s\n", message.Describe(msg), message.Describe(translated))
		}
	}
	return
}

func (t *Translator) translate(ctx context.Context, msg message.Message) (translated message.Message) {
	var err error
	switch m := msg.(type) {
	case *message.SetPingInterval:
		translated = translatePingInterval(ctx, m)
	case *message.SpeedCapture:
		translated = t.translateSpeedCapture(ctx, m)
	case *message.SetGridColumnValue:
		translated, err = t.translateColumnValue(ctx, m)
	case *message.SetGridColumnColour:
		translated, err = t.translateColumnColour(ctx, m)
	}
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Failed to translate %s: %v\n", message.Describe(msg), err)
		translated = nil
	}
	return
}

// Drops any output that would not survive encoding
func (t *Translator) validated(ctx context.Context, msg message.Message) message.Message {
	if msg == nil {
		return nil
	}
	var kept []message.Message
	for _, leaf := range message.Flatten(msg) {
		err := leaf.Validate()
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"Dropping invalid translation %s: %v\n", message.Describe(leaf), err)
			continue
		}
		kept = append(kept, leaf)
	}
	if len(kept) == len(message.Flatten(msg)) {
		return msg
	}
	return message.Combine(kept...)
}

func (t *Translator) driver(id int) *liveDriver {
	driver, found := t.drivers[id]
	if !found {
		driver = newLiveDriver(id)
		t.drivers[id] = driver
	}
	return driver
}

// Unique driver whose name matches, nil when none or several do
func (t *Translator) driverByName(ctx context.Context, name string) (found *liveDriver) {
	for _, driver := range t.drivers {
		if !driver.MatchesName(name) {
			continue
		}
		if found != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Found multiple drivers matching name %q\n", name)
			return nil
		}
		found = driver
	}
	if found == nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "No driver matches name %q\n", name)
	}
	return
}

func translatePingInterval(ctx context.Context, m *message.SetPingInterval) message.Message {
	if m.PingInterval != 0 && m.PingInterval < MaxPingInterval {
		return nil
	}
	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "Read terminal ping interval %v\n", m.PingInterval)
	return message.Combine(&message.SetSessionStatus{SessionStatus: message.StatusFinished}, &message.EndOfSession{})
}

func (t *Translator) translateSpeedCapture(ctx context.Context, m *message.SpeedCapture) message.Message {
	var speeds []message.Message
	for _, entry := range m.Speeds {
		if entry == nil {
			continue
		}
		driver := t.driverByName(ctx, entry.DriverName)
		if driver == nil {
			continue
		}
		speeds = append(speeds, &message.SetDriverSpeed{DriverID: driver.ID, Location: m.Location, Speed: entry.Speed})
	}
	if len(speeds) == 0 {
		return nil
	}
	// Always a composite, even for a single reading
	return &message.Composite{Messages: speeds}
}

func (t *Translator) translateColumnValue(ctx context.Context, m *message.SetGridColumnValue) (translated message.Message, err error) {
	if m.IsClear() {
		if m.Column == message.ColumnS2 {
			translated = t.translateS2Clear(m)
		}
		return
	}

	switch m.Column {
	case message.ColumnCarNumber:
		translated, err = t.translateCarNumberValue(m)
	case message.ColumnDriverName:
		translated = &message.SetDriverName{DriverID: m.DriverID, DriverName: m.Value}
	case message.ColumnLapTime:
		translated, err = t.translateLapTimeValue(m)
	case message.ColumnGap:
		translated, err = translateGapValue(m)
	case message.ColumnInterval:
		translated, err = t.translateIntervalValue(m)
	case message.ColumnS1, message.ColumnS2, message.ColumnS3:
		translated, err = t.translateSectorValue(ctx, m, m.Column.SectorNumber())
	case message.ColumnLaps:
		var laps int
		laps, err = livedata.ParseInt(m.Value)
		translated = &message.SetDriverLapNumber{DriverID: m.DriverID, LapNumber: laps}
	case message.ColumnQ1, message.ColumnQ2, message.ColumnQ3:
		translated, err = t.translateQuallyValue(m, m.Column.QuallyNumber())
	case message.ColumnPitCount:
		var count int
		count, err = livedata.ParseInt(m.Value)
		translated = &message.SetDriverPitCount{DriverID: m.DriverID, PitCount: count}
	}
	return
}

func (t *Translator) translateColumnColour(ctx context.Context, m *message.SetGridColumnColour) (translated message.Message, err error) {
	// Yellow marks a column as stale while the next one updates, and the feed
	// colours columns that hold no value
	if m.Colour == message.ColourYellow || !t.driver(m.DriverID).ColumnHasValue(m.Column) {
		return
	}

	switch m.Column {
	case message.ColumnCarNumber:
		var status message.DriverStatus
		status, err = livedata.ToDriverStatus(m.Colour)
		if err == nil {
			translated = statusIfChanged(t.driver(m.DriverID), status)
		}
	case message.ColumnLapTime:
		translated, err = t.translateLapTimeColour(m)
	case message.ColumnGap:
		if m.Colour == message.ColourWhite {
			if last := t.driver(m.DriverID).LastGap; last != nil {
				translated = last
			}
		}
	case message.ColumnInterval:
		if m.Colour == message.ColourWhite {
			if last := t.driver(m.DriverID).LastInterval; last != nil {
				translated = last
			}
		}
	case message.ColumnS1, message.ColumnS2, message.ColumnS3:
		translated, err = t.translateSectorColour(ctx, m, m.Column.SectorNumber())
	}
	return
}

func (t *Translator) translateCarNumberValue(m *message.SetGridColumnValue) (translated message.Message, err error) {
	driver := t.driver(m.DriverID)
	carNumber, err := livedata.ParseInt(m.Value)
	if err != nil {
		return
	}
	status, err := livedata.ToDriverStatus(m.Colour)
	if err != nil {
		return
	}

	var parts []message.Message
	if driver.CarNumber != carNumber {
		parts = append(parts, &message.SetDriverCarNumber{DriverID: driver.ID, CarNumber: carNumber})
	}
	parts = append(parts, statusIfChanged(driver, status))
	translated = message.Combine(parts...)
	return
}

func (t *Translator) translateLapTimeValue(m *message.SetGridColumnValue) (translated message.Message, err error) {
	driver := t.driver(m.DriverID)
	switch m.Value {
	case "OUT":
		translated = statusIfChanged(driver, message.DriverOnTrack)
		return
	case "IN PIT":
		translated = statusIfChanged(driver, message.DriverInPits)
		return
	case "RETIRED":
		translated = statusIfChanged(driver, message.DriverRetired)
		return
	}
	if !driver.IsOnTrack() || !t.HasSessionStarted() {
		return
	}

	lapTime, err := livedata.ParseTime(m.Value)
	if err != nil {
		return
	}
	timeType, err := livedata.ToPostedTimeType(m.Colour)
	if err != nil {
		return
	}
	translated = &message.SetDriverLapTime{
		DriverID: driver.ID,
		LapTime:  &message.PostedTime{Time: lapTime, Type: timeType, LapNumber: driver.LapNumber},
	}
	return
}

func (t *Translator) translateLapTimeColour(m *message.SetGridColumnColour) (translated message.Message, err error) {
	driver := t.driver(m.DriverID)
	last := driver.LastLapTime
	if !driver.IsOnTrack() || last == nil {
		return
	}

	switch m.Colour {
	case message.ColourWhite:
		translated = &message.SetDriverLapTime{
			DriverID: driver.ID,
			LapTime:  &message.PostedTime{Time: last.Time, Type: message.TimeNormal, LapNumber: driver.LapNumber},
		}
	case message.ColourGreen, message.ColourMagenta:
		// Colour change on the previous lap marks it as a personal or session best
		var timeType message.PostedTimeType
		timeType, err = livedata.ToPostedTimeType(m.Colour)
		translated = &message.ReplaceDriverLapTime{
			DriverID:    driver.ID,
			Replacement: &message.PostedTime{Time: last.Time, Type: timeType, LapNumber: last.LapNumber},
		}
	}
	return
}

func translateGapValue(m *message.SetGridColumnValue) (translated message.Message, err error) {
	// Leader shows LAP
	if m.Value == "LAP" {
		translated = &message.SetDriverGap{DriverID: m.DriverID, Gap: &message.TimeGap{}}
		return
	}
	gap, err := parseGap(m.Value)
	if err != nil {
		return
	}
	translated = &message.SetDriverGap{DriverID: m.DriverID, Gap: gap}
	return
}

func (t *Translator) translateIntervalValue(m *message.SetGridColumnValue) (translated message.Message, err error) {
	// Leader's interval column shows the race lap
	if t.driver(m.DriverID).IsRaceLeader() {
		var lap int
		lap, err = livedata.ParseInt(m.Value)
		if err != nil {
			return
		}
		translated = message.Combine(
			&message.SetRaceLapNumber{LapNumber: lap},
			&message.SetDriverInterval{DriverID: m.DriverID, Interval: &message.TimeGap{}},
		)
		return
	}
	interval, err := parseGap(m.Value)
	if err != nil {
		return
	}
	translated = &message.SetDriverInterval{DriverID: m.DriverID, Interval: interval}
	return
}

// "4L" is a lap gap, anything else a time
func parseGap(value string) (gap message.Gap, err error) {
	if laps, isLaps := strings.CutSuffix(value, "L"); isLaps {
		var n int
		n, err = livedata.ParseInt(laps)
		gap = &message.LapGap{Laps: n}
		return
	}
	d, err := livedata.ParseTime(value)
	gap = &message.TimeGap{Time: d}
	return
}

func (t *Translator) translateSectorValue(ctx context.Context, m *message.SetGridColumnValue, sector int) (translated message.Message, err error) {
	driver := t.driver(m.DriverID)
	switch m.Value {
	case "OUT":
		translated = statusIfChanged(driver, message.DriverOut)
		return
	case "STOP":
		translated = statusIfChanged(driver, message.DriverStopped)
		return
	}
	if driver.IsExpectingPitTimes {
		translated, err = translatePitTimeValue(driver, m, sector)
		return
	}
	if !driver.IsOnTrack() {
		return
	}

	sectorTime, err := livedata.ParseTime(m.Value)
	if err != nil {
		return
	}
	timeType, err := livedata.ToPostedTimeType(m.Colour)
	if err != nil {
		return
	}

	// The feed rewrites the previously completed sector with a different time
	if driver.IsPreviousSector(sector) {
		last := driver.LastSector(sector)
		if last == nil {
			logctx.LogEvent(ctx, global.VerbosityData, global.WarnLog,
				"Update to previous S%d for driver %d with no earlier sector time, ignoring\n", sector, driver.ID)
			return
		}
		translated = &message.ReplaceDriverSectorTime{
			DriverID:     driver.ID,
			SectorNumber: sector,
			Replacement:  &message.PostedTime{Time: sectorTime, Type: timeType, LapNumber: last.LapNumber},
		}
		return
	}

	translated = t.withRaceLap(&message.SetDriverSectorTime{
		DriverID:     driver.ID,
		SectorNumber: sector,
		SectorTime:   &message.PostedTime{Time: sectorTime, Type: timeType, LapNumber: driver.LapNumber},
	})
	return
}

func (t *Translator) translateSectorColour(ctx context.Context, m *message.SetGridColumnColour, sector int) (translated message.Message, err error) {
	driver := t.driver(m.DriverID)
	if !driver.IsOnTrack() || driver.IsExpectingPitTimes {
		return
	}
	last := driver.LastSector(sector)
	if last == nil {
		return
	}
	timeType, err := livedata.ToPostedTimeType(m.Colour)
	if err != nil {
		return
	}

	switch {
	case driver.IsCurrentSector(sector):
		translated = t.withRaceLap(&message.SetDriverSectorTime{
			DriverID:     driver.ID,
			SectorNumber: sector,
			SectorTime:   &message.PostedTime{Time: last.Time, Type: timeType, LapNumber: driver.LapNumber},
		})
	case driver.IsPreviousSector(sector):
		translated = &message.ReplaceDriverSectorTime{
			DriverID:     driver.ID,
			SectorNumber: sector,
			Replacement:  &message.PostedTime{Time: last.Time, Type: timeType, LapNumber: last.LapNumber},
		}
	default:
		logctx.LogEvent(ctx, global.VerbosityFullData, global.InfoLog,
			"Out of order S%d colour for driver %d while in S%d, ignoring\n", sector, driver.ID, driver.CurrentSector)
	}
	return
}

// S1 is only resent when it changes, an S2 clear while S1 is expected reposts the last S1
func (t *Translator) translateS2Clear(m *message.SetGridColumnValue) message.Message {
	driver := t.driver(m.DriverID)
	last := driver.LastSector(1)
	if !driver.IsOnTrack() || !driver.IsCurrentSector(1) || !driver.ColumnHasValue(message.ColumnS1) || last == nil {
		return nil
	}
	return t.withRaceLap(&message.SetDriverSectorTime{
		DriverID:     driver.ID,
		SectorNumber: 1,
		SectorTime:   &message.PostedTime{Time: last.Time, Type: last.Type, LapNumber: driver.LapNumber},
	})
}

// Race feeds carry no lap column, the lap is derived from the race lap and the gap at S3
func (t *Translator) withRaceLap(sectorTime *message.SetDriverSectorTime) message.Message {
	if t.sessionType != message.SessionTypeRace || sectorTime.SectorNumber != 3 {
		return sectorTime
	}
	lap := t.driver(sectorTime.DriverID).ComputeLapNumber(t.raceLapNumber)
	return message.Combine(sectorTime, &message.SetDriverLapNumber{DriverID: sectorTime.DriverID, LapNumber: lap})
}

// After a stop the S3 column shows the stop duration for the lap before
func translatePitTimeValue(driver *liveDriver, m *message.SetGridColumnValue, sector int) (translated message.Message, err error) {
	if sector != 3 {
		return
	}
	pitTime, err := livedata.ParseTime(m.Value)
	if err != nil {
		return
	}
	translated = &message.SetDriverPitTime{
		DriverID: driver.ID,
		PitTime:  &message.PostedTime{Time: pitTime, Type: message.TimeNormal, LapNumber: max(driver.LapNumber-1, 0)},
	}
	return
}

// Qualifying feeds carry no lap times, each improved qualifying time doubles as a personal best lap
func (t *Translator) translateQuallyValue(m *message.SetGridColumnValue, period int) (translated message.Message, err error) {
	driver := t.driver(m.DriverID)
	if t.sessionType != message.SessionTypeQually || !driver.IsOnTrack() {
		return
	}
	quallyTime, err := livedata.ParseTime(m.Value)
	if err != nil {
		return
	}
	translated = message.Combine(
		&message.SetDriverQuallyTime{DriverID: driver.ID, QuallyTime: quallyTime, QuallyNumber: period},
		&message.SetDriverLapTime{
			DriverID: driver.ID,
			LapTime:  &message.PostedTime{Time: quallyTime, Type: message.TimePersonalBest, LapNumber: driver.LapNumber},
		},
	)
	return
}

func statusIfChanged(driver *liveDriver, status message.DriverStatus) message.Message {
	if driver.Status == status {
		return nil
	}
	return &message.SetDriverStatus{DriverID: driver.ID, DriverStatus: status}
}
