package translate

import (
	"f1timing/pkg/message"
	"strings"
	"unicode"
)

// Per driver state tracked while translating
type liveDriver struct {
	ID                  int
	Name                string
	CarNumber           int
	Position            int
	Status              message.DriverStatus
	LapNumber           int
	CurrentSector       int // 0 until the first sector is known
	IsExpectingPitTimes bool
	LastLapTime         *message.PostedTime
	LastSectors         [3]*message.PostedTime
	LastGap             *message.SetDriverGap
	LastInterval        *message.SetDriverInterval
	columnsWithValue    uint32
}

func newLiveDriver(id int) (driver *liveDriver) {
	driver = &liveDriver{ID: id}
	driver.Reset()
	return
}

func (d *liveDriver) Reset() {
	*d = liveDriver{ID: d.ID, Status: message.DriverInPits}
}

func (d *liveDriver) ChangeStatus(status message.DriverStatus) {
	d.Status = status
	if status == message.DriverInPits {
		d.CurrentSector = 1
	}
}

func (d *liveDriver) IsOnTrack() bool { return d.Status == message.DriverOnTrack }

func (d *liveDriver) IsRaceLeader() bool { return d.Position == 1 }

func (d *liveDriver) ColumnHasValue(column message.GridColumn) bool {
	if !column.IsValid() {
		return false
	}
	return d.columnsWithValue&(1<<uint(column)) != 0
}

func (d *liveDriver) SetColumnHasValue(column message.GridColumn, hasValue bool) {
	if !column.IsValid() {
		return
	}
	if hasValue {
		d.columnsWithValue |= 1 << uint(column)
	} else {
		d.columnsWithValue &^= 1 << uint(column)
	}
}

func (d *liveDriver) IsCurrentSector(sector int) bool {
	return validSector(sector) && sector == d.CurrentSector
}

func (d *liveDriver) IsPreviousSector(sector int) bool {
	return validSector(sector) && d.CurrentSector != 0 && sector == d.PreviousSector()
}

// Sector completed before the current one, 0 when unknown
func (d *liveDriver) PreviousSector() int {
	if d.CurrentSector == 0 {
		return 0
	}
	if d.CurrentSector == 1 {
		return 3
	}
	return d.CurrentSector - 1
}

func (d *liveDriver) LastSector(sector int) *message.PostedTime {
	if !validSector(sector) {
		return nil
	}
	return d.LastSectors[sector-1]
}

func (d *liveDriver) SetLastSector(sector int, posted *message.PostedTime) {
	if !validSector(sector) || posted == nil {
		return
	}
	d.LastSectors[sector-1] = posted
}

// Lap the driver is on given the leader's lap, accounting for lapped cars
func (d *liveDriver) ComputeLapNumber(raceLap int) int {
	if d.LastGap != nil {
		if gap, ok := d.LastGap.Gap.(*message.LapGap); ok {
			return max(raceLap-gap.Laps, 0)
		}
	}
	return raceLap
}

// Matches the full grid name ("J. BUTTON") or the speed trap abbreviations
// of it ("BUT" surname prefix, "JBU" initial plus surname prefix)
func (d *liveDriver) MatchesName(name string) bool {
	if name == d.Name {
		return true
	}
	if d.Name == "" || len(name) != 3 {
		return false
	}

	initial, surname, found := strings.Cut(d.Name, ".")
	if !found {
		surname = initial
		initial = ""
	}
	surname = lettersOnly(surname)
	initial = lettersOnly(initial)
	if len(surname) < 2 {
		return false
	}
	if len(surname) >= 3 && name == surname[:3] {
		return true
	}
	return initial != "" && name == initial[:1]+surname[:2]
}

func lettersOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToUpper(r)
		}
		return -1
	}, s)
}

func validSector(sector int) bool {
	return sector >= 1 && sector <= 3
}
