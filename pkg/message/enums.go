package message

import "strconv"

type SessionType int

const (
	SessionTypeNone SessionType = iota
	SessionTypePractice
	SessionTypeQually
	SessionTypeRace
)

var sessionTypeNames = [...]string{"None", "Practice", "Qually", "Race"}

func (v SessionType) IsValid() bool { return v >= 0 && int(v) < len(sessionTypeNames) }

func (v SessionType) String() string { return enumName(sessionTypeNames[:], int(v)) }

type SessionStatus int

const (
	StatusGreen SessionStatus = iota
	StatusYellow
	StatusSafetyCarStandby
	StatusSafetyCarDeployed
	StatusRed
	StatusFinished
)

var sessionStatusNames = [...]string{"Green", "Yellow", "SafetyCarStandby", "SafetyCarDeployed", "Red", "Finished"}

func (v SessionStatus) IsValid() bool { return v >= 0 && int(v) < len(sessionStatusNames) }

func (v SessionStatus) String() string { return enumName(sessionStatusNames[:], int(v)) }

type SpeedCaptureLocation int

const (
	LocationS1 SpeedCaptureLocation = iota
	LocationS2
	LocationS3
	LocationFinishLine
)

var locationNames = [...]string{"S1", "S2", "S3", "FinishLine"}

func (v SpeedCaptureLocation) IsValid() bool { return v >= 0 && int(v) < len(locationNames) }

func (v SpeedCaptureLocation) String() string { return enumName(locationNames[:], int(v)) }

type PostedTimeType int

const (
	TimeNormal PostedTimeType = iota
	TimePersonalBest
	TimeSessionBest
)

var postedTimeTypeNames = [...]string{"Normal", "PersonalBest", "SessionBest"}

func (v PostedTimeType) IsValid() bool { return v >= 0 && int(v) < len(postedTimeTypeNames) }

func (v PostedTimeType) String() string { return enumName(postedTimeTypeNames[:], int(v)) }

type DriverStatus int

const (
	DriverOnTrack DriverStatus = iota
	DriverInPits
	DriverOut
	DriverStopped
	DriverRetired
)

var driverStatusNames = [...]string{"OnTrack", "InPits", "Out", "Stopped", "Retired"}

func (v DriverStatus) IsValid() bool { return v >= 0 && int(v) < len(driverStatusNames) }

func (v DriverStatus) String() string { return enumName(driverStatusNames[:], int(v)) }

type GridColumn int

const (
	ColumnPosition GridColumn = iota
	ColumnCarNumber
	ColumnDriverName
	ColumnLapTime
	ColumnGap
	ColumnS1
	ColumnS2
	ColumnS3
	ColumnLaps
	ColumnInterval
	ColumnQ1
	ColumnQ2
	ColumnQ3
	ColumnPitCount
	ColumnPitLap1
	ColumnPitLap2
	ColumnPitLap3
	ColumnUnknown
)

var gridColumnNames = [...]string{
	"Position", "CarNumber", "DriverName", "LapTime", "Gap", "S1", "S2", "S3", "Laps",
	"Interval", "Q1", "Q2", "Q3", "PitCount", "PitLap1", "PitLap2", "PitLap3", "Unknown",
}

func (v GridColumn) IsValid() bool { return v >= 0 && int(v) < len(gridColumnNames) }

func (v GridColumn) String() string { return enumName(gridColumnNames[:], int(v)) }

// Sector number (1-3) for the sector columns, otherwise 0
func (v GridColumn) SectorNumber() (sector int) {
	switch v {
	case ColumnS1:
		sector = 1
	case ColumnS2:
		sector = 2
	case ColumnS3:
		sector = 3
	}
	return
}

// Qualifying period (1-3) for the qualifying columns, otherwise 0
func (v GridColumn) QuallyNumber() (period int) {
	switch v {
	case ColumnQ1:
		period = 1
	case ColumnQ2:
		period = 2
	case ColumnQ3:
		period = 3
	}
	return
}

type GridColumnColour int

const (
	ColourBlack GridColumnColour = iota
	ColourWhite
	ColourRed
	ColourGreen
	ColourMagenta
	ColourBlue
	ColourYellow
	ColourGrey
)

var colourNames = [...]string{"Black", "White", "Red", "Green", "Magenta", "Blue", "Yellow", "Grey"}

func (v GridColumnColour) IsValid() bool { return v >= 0 && int(v) < len(colourNames) }

func (v GridColumnColour) String() string { return enumName(colourNames[:], int(v)) }

func enumName(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return "Invalid(" + strconv.Itoa(v) + ")"
	}
	return names[v]
}
