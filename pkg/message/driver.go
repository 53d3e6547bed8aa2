package message

import "time"

type SetDriverName struct {
	DriverID   int
	DriverName string
}

func (m *SetDriverName) Validate() (err error) {
	if err = checkDriver(m.DriverID); err != nil {
		return
	}
	if m.DriverName == "" {
		err = &ArgumentError{Param: "DriverName", Reason: "name is empty"}
	}
	return
}

type SetDriverCarNumber struct {
	DriverID  int
	CarNumber int
}

func (m *SetDriverCarNumber) Validate() (err error) {
	if err = checkDriver(m.DriverID); err != nil {
		return
	}
	err = checkPositive("CarNumber", m.CarNumber)
	return
}

type SetDriverPosition struct {
	DriverID int
	Position int
}

func (m *SetDriverPosition) Validate() (err error) {
	if err = checkDriver(m.DriverID); err != nil {
		return
	}
	err = checkPositive("Position", m.Position)
	return
}

type SetDriverStatus struct {
	DriverID     int
	DriverStatus DriverStatus
}

func (m *SetDriverStatus) Validate() (err error) {
	if err = checkDriver(m.DriverID); err != nil {
		return
	}
	err = checkEnum("DriverStatus", m.DriverStatus)
	return
}

type SetDriverLapTime struct {
	DriverID int
	LapTime  *PostedTime
}

func (m *SetDriverLapTime) Validate() (err error) {
	if err = checkDriver(m.DriverID); err != nil {
		return
	}
	err = validatePosted("LapTime", m.LapTime)
	return
}

// Reclassifies (or corrects) the most recent lap time
type ReplaceDriverLapTime struct {
	DriverID    int
	Replacement *PostedTime
}

func (m *ReplaceDriverLapTime) Validate() (err error) {
	if err = checkDriver(m.DriverID); err != nil {
		return
	}
	err = validatePosted("Replacement", m.Replacement)
	return
}

type SetDriverSectorTime struct {
	DriverID     int
	SectorNumber int
	SectorTime   *PostedTime
}

func (m *SetDriverSectorTime) Validate() (err error) {
	if err = checkDriver(m.DriverID); err != nil {
		return
	}
	if err = checkSector("SectorNumber", m.SectorNumber); err != nil {
		return
	}
	err = validatePosted("SectorTime", m.SectorTime)
	return
}

// Reclassifies (or corrects) the most recent time posted in a sector
type ReplaceDriverSectorTime struct {
	DriverID     int
	SectorNumber int
	Replacement  *PostedTime
}

func (m *ReplaceDriverSectorTime) Validate() (err error) {
	if err = checkDriver(m.DriverID); err != nil {
		return
	}
	if err = checkSector("SectorNumber", m.SectorNumber); err != nil {
		return
	}
	err = validatePosted("Replacement", m.Replacement)
	return
}

type SetDriverQuallyTime struct {
	DriverID     int
	QuallyTime   time.Duration
	QuallyNumber int
}

func (m *SetDriverQuallyTime) Validate() (err error) {
	if err = checkDriver(m.DriverID); err != nil {
		return
	}
	if err = checkPositive("QuallyTime", m.QuallyTime); err != nil {
		return
	}
	err = checkSector("QuallyNumber", m.QuallyNumber)
	return
}

type SetDriverSpeed struct {
	DriverID int
	Location SpeedCaptureLocation
	Speed    int
}

func (m *SetDriverSpeed) Validate() (err error) {
	if err = checkDriver(m.DriverID); err != nil {
		return
	}
	if err = checkEnum("Location", m.Location); err != nil {
		return
	}
	err = checkNonNegative("Speed", m.Speed)
	return
}

type SetDriverGap struct {
	DriverID int
	Gap      Gap
}

func (m *SetDriverGap) Validate() (err error) {
	if err = checkDriver(m.DriverID); err != nil {
		return
	}
	err = validateGap("Gap", m.Gap)
	return
}

type SetDriverInterval struct {
	DriverID int
	Interval Gap
}

func (m *SetDriverInterval) Validate() (err error) {
	if err = checkDriver(m.DriverID); err != nil {
		return
	}
	err = validateGap("Interval", m.Interval)
	return
}

type SetDriverLapNumber struct {
	DriverID  int
	LapNumber int
}

func (m *SetDriverLapNumber) Validate() (err error) {
	if err = checkDriver(m.DriverID); err != nil {
		return
	}
	err = checkNonNegative("LapNumber", m.LapNumber)
	return
}

type SetDriverPitCount struct {
	DriverID int
	PitCount int
}

func (m *SetDriverPitCount) Validate() (err error) {
	if err = checkDriver(m.DriverID); err != nil {
		return
	}
	err = checkNonNegative("PitCount", m.PitCount)
	return
}

type SetDriverPitTime struct {
	DriverID int
	PitTime  *PostedTime
}

func (m *SetDriverPitTime) Validate() (err error) {
	if err = checkDriver(m.DriverID); err != nil {
		return
	}
	err = validatePosted("PitTime", m.PitTime)
	return
}

// Raw timing screen cell update. An empty value clears the cell.
type SetGridColumnValue struct {
	DriverID int
	Column   GridColumn
	Colour   GridColumnColour
	Value    string
}

func (m *SetGridColumnValue) Validate() (err error) {
	if err = checkDriver(m.DriverID); err != nil {
		return
	}
	if err = checkEnum("Column", m.Column); err != nil {
		return
	}
	err = checkEnum("Colour", m.Colour)
	return
}

// Reports whether the cell is being cleared
func (m *SetGridColumnValue) IsClear() bool { return m.Value == "" }

// Raw timing screen cell colour change
type SetGridColumnColour struct {
	DriverID int
	Column   GridColumn
	Colour   GridColumnColour
}

func (m *SetGridColumnColour) Validate() (err error) {
	if err = checkDriver(m.DriverID); err != nil {
		return
	}
	if err = checkEnum("Column", m.Column); err != nil {
		return
	}
	err = checkEnum("Colour", m.Colour)
	return
}

type ClearGridRow struct {
	DriverID int
}

func (m *ClearGridRow) Validate() error { return checkDriver(m.DriverID) }

func validatePosted(param string, posted *PostedTime) (err error) {
	if err = checkNotNil(param, posted != nil); err != nil {
		return
	}
	err = posted.Validate()
	return
}

func validateGap(param string, gap Gap) (err error) {
	if err = checkNotNil(param, gap != nil); err != nil {
		return
	}
	err = gap.Validate()
	return
}
