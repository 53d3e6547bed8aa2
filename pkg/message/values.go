package message

import "time"

// Lap or sector time posted by a driver
type PostedTime struct {
	Time      time.Duration
	Type      PostedTimeType
	LapNumber int
}

func (v *PostedTime) Validate() (err error) {
	err = checkNonNegative("Time", v.Time)
	if err != nil {
		return
	}
	err = checkNonNegative("LapNumber", v.LapNumber)
	if err != nil {
		return
	}
	err = checkEnum("Type", v.Type)
	return
}

// Distance to the car ahead, either a time or a whole number of laps
type Gap interface {
	Object
	Validate() error
	isGap()
}

type TimeGap struct {
	Time time.Duration
}

func (v *TimeGap) Validate() error { return checkNonNegative("Time", v.Time) }

type LapGap struct {
	Laps int
}

func (v *LapGap) Validate() error { return checkNonNegative("Laps", v.Laps) }

func (*TimeGap) isGap() {}
func (*LapGap) isGap()  {}

// One speed trap reading
type SpeedEntry struct {
	DriverName string
	Speed      int
}

func (v *SpeedEntry) Validate() (err error) {
	if v.DriverName == "" {
		err = &ArgumentError{Param: "DriverName", Reason: "name is empty"}
		return
	}
	err = checkNonNegative("Speed", v.Speed)
	return
}
