// Parsing rules for the text values carried by the live timing feed
package livedata

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"f1timing/pkg/message"
)

// Value that could not be converted from its feed representation
type ParseError struct {
	Kind  string
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to parse %s from %q", e.Kind, e.Value)
}

// Timing screen columns by feed column index (1-based), per session type
var gridColumns = map[message.SessionType][]message.GridColumn{
	message.SessionTypePractice: {
		message.ColumnPosition, message.ColumnCarNumber, message.ColumnDriverName,
		message.ColumnLapTime, message.ColumnGap, message.ColumnS1, message.ColumnS2,
		message.ColumnS3, message.ColumnLaps, message.ColumnUnknown,
	},
	message.SessionTypeQually: {
		message.ColumnPosition, message.ColumnCarNumber, message.ColumnDriverName,
		message.ColumnQ1, message.ColumnQ2, message.ColumnQ3, message.ColumnS1,
		message.ColumnS2, message.ColumnS3, message.ColumnLaps,
	},
	message.SessionTypeRace: {
		message.ColumnPosition, message.ColumnCarNumber, message.ColumnDriverName,
		message.ColumnGap, message.ColumnInterval, message.ColumnLapTime, message.ColumnS1,
		message.ColumnPitLap1, message.ColumnS2, message.ColumnPitLap2, message.ColumnS3,
		message.ColumnPitLap3, message.ColumnPitCount,
	},
}

// Parses sector, lap, gap and session times.
// Accepts [[h:]m:]s[.fraction]; plain seconds may exceed 60 (e.g. "73.7").
func ParseTime(text string) (value time.Duration, err error) {
	trimmed := strings.TrimSpace(text)
	parts := strings.Split(trimmed, ":")
	if len(parts) > 3 || trimmed == "" {
		err = &ParseError{Kind: "time", Value: text}
		return
	}

	if len(parts) == 1 {
		var seconds float64
		seconds, err = strconv.ParseFloat(trimmed, 64)
		if err != nil || seconds < 0 || math.IsInf(seconds, 0) || math.IsNaN(seconds) {
			err = &ParseError{Kind: "time", Value: text}
			return
		}
		value = time.Duration(math.Round(seconds * float64(time.Second)))
		return
	}

	secondsPart := parts[len(parts)-1]
	var fraction time.Duration
	if whole, frac, found := strings.Cut(secondsPart, "."); found {
		fraction, err = parseFraction(frac)
		if err != nil {
			err = &ParseError{Kind: "time", Value: text}
			return
		}
		secondsPart = whole
	}

	limits := []int{24, 60, 60}[3-len(parts):]
	units := []time.Duration{time.Hour, time.Minute, time.Second}[3-len(parts):]
	fields := append(parts[:len(parts)-1:len(parts)-1], secondsPart)
	for i, field := range fields {
		n, convErr := parseDigits(field)
		if convErr != nil || n >= limits[i] {
			err = &ParseError{Kind: "time", Value: text}
			value = 0
			return
		}
		value += time.Duration(n) * units[i]
	}
	value += fraction
	return
}

func parseDigits(field string) (n int, err error) {
	if len(field) == 0 || len(field) > 2 {
		err = fmt.Errorf("invalid field %q", field)
		return
	}
	for _, c := range field {
		if c < '0' || c > '9' {
			err = fmt.Errorf("invalid field %q", field)
			return
		}
	}
	n, err = strconv.Atoi(field)
	return
}

func parseFraction(frac string) (value time.Duration, err error) {
	if len(frac) == 0 || len(frac) > 9 {
		err = fmt.Errorf("invalid fraction %q", frac)
		return
	}
	scale := time.Second
	for _, c := range frac {
		if c < '0' || c > '9' {
			err = fmt.Errorf("invalid fraction %q", frac)
			return
		}
		scale /= 10
		value += time.Duration(c-'0') * scale
	}
	return
}

func ParseInt(text string) (value int, err error) {
	n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 32)
	if err != nil {
		err = &ParseError{Kind: "integer", Value: text}
		return
	}
	value = int(n)
	return
}

func ParseFloat(text string) (value float64, err error) {
	value, err = strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		err = &ParseError{Kind: "number", Value: text}
		value = 0
	}
	return
}

func ToPostedTimeType(colour message.GridColumnColour) (timeType message.PostedTimeType, err error) {
	switch colour {
	case message.ColourGreen:
		timeType = message.TimePersonalBest
	case message.ColourMagenta:
		timeType = message.TimeSessionBest
	case message.ColourYellow, message.ColourWhite:
		timeType = message.TimeNormal
	default:
		err = &ParseError{Kind: "posted time type", Value: colour.String()}
	}
	return
}

func ToDriverStatus(colour message.GridColumnColour) (status message.DriverStatus, err error) {
	switch colour {
	case message.ColourWhite, message.ColourMagenta, message.ColourYellow:
		status = message.DriverOnTrack
	case message.ColourRed:
		status = message.DriverInPits
	default:
		err = &ParseError{Kind: "driver status", Value: colour.String()}
	}
	return
}

func ToSessionType(value int) (sessionType message.SessionType, err error) {
	switch value {
	case 0:
		sessionType = message.SessionTypeNone
	case 1:
		sessionType = message.SessionTypeRace
	case 2:
		sessionType = message.SessionTypePractice
	case 3, 4, 5:
		sessionType = message.SessionTypeQually
	default:
		err = &ParseError{Kind: "session type", Value: strconv.Itoa(value)}
	}
	return
}

func ToSessionStatus(text string) (status message.SessionStatus, err error) {
	switch text {
	case "1":
		status = message.StatusGreen
	case "2":
		status = message.StatusYellow
	case "3":
		status = message.StatusSafetyCarStandby
	case "4":
		status = message.StatusSafetyCarDeployed
	case "5":
		status = message.StatusRed
	default:
		err = &ParseError{Kind: "session status", Value: text}
	}
	return
}

// Maps a feed column index (1-based) to its column in the current session
func ToGridColumn(column int, sessionType message.SessionType) (gridColumn message.GridColumn, err error) {
	columns, ok := gridColumns[sessionType]
	if !ok || column < 1 || column > len(columns) {
		err = &ParseError{Kind: "grid column", Value: fmt.Sprintf("%d in %s session", column, sessionType)}
		return
	}
	gridColumn = columns[column-1]
	return
}

func ToGridColumnColour(colour int) (gridColour message.GridColumnColour, err error) {
	gridColour = message.GridColumnColour(colour)
	if !gridColour.IsValid() {
		err = &ParseError{Kind: "grid column colour", Value: strconv.Itoa(colour)}
		gridColour = message.ColourBlack
	}
	return
}
