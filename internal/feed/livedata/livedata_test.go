package livedata

import (
	"errors"
	"testing"
	"time"

	"f1timing/pkg/message"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{input: "23.4", want: 23400 * time.Millisecond},
		{input: "1:28.123", want: time.Minute + 28123*time.Millisecond},
		{input: "12:01.002", want: 12*time.Minute + 1002*time.Millisecond},
		{input: "0.456", want: 456 * time.Millisecond},
		{input: "1:02:03.004", want: time.Hour + 2*time.Minute + 3004*time.Millisecond},
		{input: "1:59:00", want: time.Hour + 59*time.Minute},
		{input: "59:12", want: 59*time.Minute + 12*time.Second},
		{input: "5:00", want: 5 * time.Minute},
		{input: "73.7", want: 73700 * time.Millisecond},
		{input: " 9 ", want: 9 * time.Second},
		{input: "", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "1:60", wantErr: true},
		{input: "1:2:3:4", wantErr: true},
		{input: "-1.5", wantErr: true},
		{input: "1:28.", wantErr: true},
		{input: "NaN", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTime(tt.input)
			if tt.wantErr {
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Fatalf("expected ParseError, got %v (%v)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseNumbers(t *testing.T) {
	if n, err := ParseInt(" 58 "); err != nil || n != 58 {
		t.Fatalf("ParseInt: got %d, %v", n, err)
	}
	if _, err := ParseInt("1L"); err == nil {
		t.Fatal("ParseInt: expected error for 1L")
	}
	if _, err := ParseInt("99999999999"); err == nil {
		t.Fatal("ParseInt: expected overflow error")
	}
	if f, err := ParseFloat("1013.2"); err != nil || f != 1013.2 {
		t.Fatalf("ParseFloat: got %v, %v", f, err)
	}
	if _, err := ParseFloat("Inf"); err == nil {
		t.Fatal("ParseFloat: expected error for Inf")
	}
}

func TestColourConversions(t *testing.T) {
	tests := []struct {
		colour    message.GridColumnColour
		timeType  message.PostedTimeType
		timeErr   bool
		status    message.DriverStatus
		statusErr bool
	}{
		{colour: message.ColourGreen, timeType: message.TimePersonalBest, statusErr: true},
		{colour: message.ColourMagenta, timeType: message.TimeSessionBest, status: message.DriverOnTrack},
		{colour: message.ColourYellow, timeType: message.TimeNormal, status: message.DriverOnTrack},
		{colour: message.ColourWhite, timeType: message.TimeNormal, status: message.DriverOnTrack},
		{colour: message.ColourRed, timeErr: true, status: message.DriverInPits},
		{colour: message.ColourGrey, timeErr: true, statusErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.colour.String(), func(t *testing.T) {
			timeType, err := ToPostedTimeType(tt.colour)
			if (err != nil) != tt.timeErr || (!tt.timeErr && timeType != tt.timeType) {
				t.Errorf("ToPostedTimeType: got %v, %v", timeType, err)
			}
			status, err := ToDriverStatus(tt.colour)
			if (err != nil) != tt.statusErr || (!tt.statusErr && status != tt.status) {
				t.Errorf("ToDriverStatus: got %v, %v", status, err)
			}
		})
	}
}

func TestGridColumns(t *testing.T) {
	tests := []struct {
		column      int
		sessionType message.SessionType
		want        message.GridColumn
		wantErr     bool
	}{
		{column: 4, sessionType: message.SessionTypePractice, want: message.ColumnLapTime},
		{column: 4, sessionType: message.SessionTypeQually, want: message.ColumnQ1},
		{column: 4, sessionType: message.SessionTypeRace, want: message.ColumnGap},
		{column: 13, sessionType: message.SessionTypeRace, want: message.ColumnPitCount},
		{column: 13, sessionType: message.SessionTypePractice, wantErr: true},
		{column: 1, sessionType: message.SessionTypeNone, wantErr: true},
		{column: 0, sessionType: message.SessionTypeRace, wantErr: true},
	}

	for _, tt := range tests {
		got, err := ToGridColumn(tt.column, tt.sessionType)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("column %d in %s: got %v, %v", tt.column, tt.sessionType, got, err)
		}
	}

	if _, err := ToGridColumnColour(8); err == nil {
		t.Error("expected error for colour 8")
	}
	if colour, err := ToGridColumnColour(6); err != nil || colour != message.ColourYellow {
		t.Errorf("colour 6: got %v, %v", colour, err)
	}
}

func TestSessionConversions(t *testing.T) {
	for value, want := range map[int]message.SessionType{0: message.SessionTypeNone, 1: message.SessionTypeRace, 2: message.SessionTypePractice, 5: message.SessionTypeQually} {
		if got, err := ToSessionType(value); err != nil || got != want {
			t.Errorf("ToSessionType(%d): got %v, %v", value, got, err)
		}
	}
	if _, err := ToSessionType(6); err == nil {
		t.Error("expected error for session type 6")
	}
	if got, err := ToSessionStatus("4"); err != nil || got != message.StatusSafetyCarDeployed {
		t.Errorf("ToSessionStatus: got %v, %v", got, err)
	}
	if _, err := ToSessionStatus("6"); err == nil {
		t.Error("expected error for status 6")
	}
}
