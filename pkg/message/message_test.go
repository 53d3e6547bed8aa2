package message

import (
	"errors"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		msg       Message
		wantRange bool
		wantArg   bool
	}{
		{name: "valid wind speed", msg: &SetWindSpeed{Speed: 5}},
		{name: "negative wind speed", msg: &SetWindSpeed{Speed: -1}, wantRange: true},
		{name: "humidity upper bound", msg: &SetHumidity{Humidity: 100}, wantRange: true},
		{name: "humidity just below bound", msg: &SetHumidity{Humidity: 99.9}},
		{name: "zero pressure", msg: &SetAtmosphericPressure{Pressure: 0}, wantRange: true},
		{name: "wind angle 360", msg: &SetWindAngle{Angle: 360}},
		{name: "wind angle 361", msg: &SetWindAngle{Angle: 361}, wantRange: true},
		{name: "driver id zero", msg: &SetDriverName{DriverID: 0, DriverName: "A"}, wantRange: true},
		{name: "empty driver name", msg: &SetDriverName{DriverID: 1}, wantArg: true},
		{name: "car number zero", msg: &SetDriverCarNumber{DriverID: 1, CarNumber: 0}, wantRange: true},
		{name: "sector out of range", msg: &SetDriverSectorTime{DriverID: 1, SectorNumber: 4, SectorTime: &PostedTime{}}, wantRange: true},
		{name: "missing sector time", msg: &SetDriverSectorTime{DriverID: 1, SectorNumber: 1}, wantArg: true},
		{name: "negative posted time", msg: &SetDriverLapTime{DriverID: 1, LapTime: &PostedTime{Time: -time.Second}}, wantRange: true},
		{name: "lap gap", msg: &SetDriverGap{DriverID: 2, Gap: &LapGap{Laps: 1}}},
		{name: "missing interval", msg: &SetDriverInterval{DriverID: 2}, wantArg: true},
		{name: "invalid enum", msg: &SetDriverStatus{DriverID: 2, DriverStatus: DriverStatus(9)}, wantRange: true},
		{name: "empty composite", msg: &Composite{}, wantArg: true},
		{name: "composite with invalid child", msg: &Composite{Messages: []Message{&SetWindSpeed{Speed: -1}}}, wantRange: true},
		{name: "speed capture with empty name", msg: &SpeedCapture{Speeds: []*SpeedEntry{{Speed: 300}}}, wantArg: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()

			var rangeErr *ArgumentOutOfRangeError
			var argErr *ArgumentError
			switch {
			case tt.wantRange:
				if !errors.As(err, &rangeErr) {
					t.Fatalf("expected ArgumentOutOfRangeError, got %v", err)
				}
			case tt.wantArg:
				if !errors.As(err, &argErr) {
					t.Fatalf("expected ArgumentError, got %v", err)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestCombineAndFlatten(t *testing.T) {
	a := &SetWindSpeed{Speed: 1}
	b := &SetIsWet{IsWet: true}
	c := &EndOfSession{}

	if Combine() != nil || Combine(nil, nil) != nil {
		t.Fatal("expected nil for no messages")
	}
	if Combine(nil, a) != Message(a) {
		t.Fatal("expected single message to be returned as-is")
	}

	nested := Combine(a, Combine(b, c))
	leaves := Flatten(nested)
	if len(leaves) != 3 || leaves[0] != Message(a) || leaves[1] != Message(b) || leaves[2] != Message(c) {
		t.Fatalf("unexpected flatten result %v", leaves)
	}
	if Flatten(nil) != nil {
		t.Fatal("expected no leaves for nil")
	}
}

func TestTypeTable(t *testing.T) {
	all := Shapes()
	if len(all) == 0 {
		t.Fatal("no shapes registered")
	}

	for _, shape := range all {
		t.Run(shape.Name, func(t *testing.T) {
			obj := shape.New()
			if obj.TypeID() != shape.TypeID {
				t.Fatalf("constructor returned type id %d, shape is %d", obj.TypeID(), shape.TypeID)
			}
			for i := 1; i < len(shape.Fields); i++ {
				if shape.Fields[i].ID <= shape.Fields[i-1].ID {
					t.Fatalf("fields not in ascending id order")
				}
			}
			for _, field := range shape.Fields {
				got, found := shape.Field(field.ID)
				if !found || got.Name != field.Name {
					t.Fatalf("field %d lookup failed", field.ID)
				}
			}
		})
	}

	if _, found := Lookup(123456789); found {
		t.Fatal("unexpected shape for unregistered id")
	}
}

func TestFieldKindChecks(t *testing.T) {
	shape, _ := Lookup(TypeSetDriverSectorTime)
	msg := shape.New()

	sector, _ := shape.Field(1)
	if err := sector.Set(msg, "two"); err == nil {
		t.Fatal("expected kind error for string into int field")
	}
	if err := sector.Set(msg, int64(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	posted, _ := shape.Field(2)
	if err := posted.Set(msg, Object(&TimeGap{})); err == nil {
		t.Fatal("expected kind error for wrong nested object")
	}
	if posted.Get(msg) != nil {
		t.Fatal("expected absent nested object")
	}

	if got := msg.(*SetDriverSectorTime).SectorNumber; got != 2 {
		t.Fatalf("expected sector 2, got %d", got)
	}
}

func TestDescribe(t *testing.T) {
	msg := &SetDriverLapTime{DriverID: 3, LapTime: &PostedTime{Time: 90 * time.Second, Type: TimePersonalBest, LapNumber: 4}}
	want := "SetDriverLapTime{DriverID: 3, LapTime: PostedTime{LapNumber: 4, Time: 1m30s, Type: 1}}"
	if got := Describe(msg); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
