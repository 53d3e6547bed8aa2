package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"f1timing/pkg/message"
	"io"
	"reflect"
	"testing"
	"time"
)

func sampleMessages() []message.Message {
	posted := func(d time.Duration, typ message.PostedTimeType, lap int) *message.PostedTime {
		return &message.PostedTime{Time: d, Type: typ, LapNumber: lap}
	}
	return []message.Message{
		&message.Composite{Messages: []message.Message{&message.SetWindSpeed{Speed: 1.5}, &message.EndOfSession{}}},
		&message.EndOfSession{},
		&message.AddCommentary{Commentary: "Räikkönen pits from P3"},
		&message.SetSessionType{SessionType: message.SessionTypeRace, SessionID: "_7066"},
		&message.SetSessionStatus{SessionStatus: message.StatusSafetyCarDeployed},
		&message.SetRaceLapNumber{LapNumber: 58},
		&message.SpeedCapture{Location: message.LocationFinishLine, Speeds: []*message.SpeedEntry{{DriverName: "HAMILTON", Speed: 312}, {DriverName: "MASSA", Speed: 309}}},
		&message.RawSpeedCapture{Location: message.LocationS2, Speeds: "HAMILTON\r312"},
		&message.SetRemainingSessionTime{Remaining: 59*time.Minute + 12*time.Second},
		&message.SetElapsedSessionTime{Elapsed: 3 * time.Hour},
		&message.StartSessionTimeCountdown{},
		&message.StopSessionTimeCountdown{},
		&message.SetMinRequiredQuallyTime{Time: 84 * time.Second},
		&message.SetWindSpeed{Speed: 5},
		&message.SetAirTemperature{Temperature: -2.5},
		&message.SetTrackTemperature{Temperature: 41.2},
		&message.SetHumidity{Humidity: 40},
		&message.SetAtmosphericPressure{Pressure: 1013.25},
		&message.SetIsWet{IsWet: true},
		&message.SetWindAngle{Angle: 270},
		&message.SetStreamTimestamp{Timestamp: 1238310000000000000},
		&message.SetCopyright{Copyright: "(c) Formula One Administration"},
		&message.SetKeyframe{Keyframe: 70000},
		&message.SetStreamValidity{IsValid: true},
		&message.SetPingInterval{PingInterval: 10 * time.Second},
		&message.SetSystemMessage{Message: "welcome"},
		&message.SetNextMessageDelay{Delay: 500 * time.Millisecond},
		&message.SetDriverName{DriverID: 1, DriverName: "BUTTON"},
		&message.SetDriverCarNumber{DriverID: 1, CarNumber: 22},
		&message.SetDriverPosition{DriverID: 1, Position: 1},
		&message.SetDriverStatus{DriverID: 4, DriverStatus: message.DriverRetired},
		&message.SetDriverLapTime{DriverID: 2, LapTime: posted(88123*time.Millisecond, message.TimeSessionBest, 12)},
		&message.ReplaceDriverLapTime{DriverID: 2, Replacement: posted(88123*time.Millisecond, message.TimePersonalBest, 12)},
		&message.SetDriverSectorTime{DriverID: 3, SectorNumber: 2, SectorTime: posted(31*time.Second, message.TimeNormal, 5)},
		&message.ReplaceDriverSectorTime{DriverID: 3, SectorNumber: 3, Replacement: posted(28*time.Second, message.TimeSessionBest, 5)},
		&message.SetDriverQuallyTime{DriverID: 5, QuallyTime: 85 * time.Second, QuallyNumber: 2},
		&message.SetDriverSpeed{DriverID: 6, Location: message.LocationS1, Speed: 299},
		&message.SetDriverGap{DriverID: 7, Gap: &message.TimeGap{Time: 12300 * time.Millisecond}},
		&message.SetDriverInterval{DriverID: 7, Interval: &message.LapGap{Laps: 2}},
		&message.SetDriverLapNumber{DriverID: 8, LapNumber: 0},
		&message.SetDriverPitCount{DriverID: 8, PitCount: 3},
		&message.SetDriverPitTime{DriverID: 9, PitTime: posted(24*time.Second, message.TimeNormal, 30)},
		&message.SetGridColumnValue{DriverID: 10, Column: message.ColumnGap, Colour: message.ColourYellow, Value: "1L"},
		&message.SetGridColumnColour{DriverID: 10, Column: message.ColumnS3, Colour: message.ColourMagenta},
		&message.ClearGridRow{DriverID: 11},
	}
}

func TestRoundTripEveryMessage(t *testing.T) {
	covered := make(map[int32]bool)

	for _, msg := range sampleMessages() {
		covered[msg.TypeID()] = true
		t.Run(message.NameOf(msg), func(t *testing.T) {
			var buf bytes.Buffer
			writer := NewWriter(&buf)
			if err := writer.Write(msg); err != nil {
				t.Fatalf("write failed: %v", err)
			}
			if err := writer.WriteEnd(); err != nil {
				t.Fatalf("write end failed: %v", err)
			}

			reader := NewReader(&buf)
			got, err := reader.Read()
			if err != nil {
				t.Fatalf("read failed: %v", err)
			}
			if !reflect.DeepEqual(got, msg) {
				t.Fatalf("round trip mismatch:\n got  %s\n want %s", message.Describe(got), message.Describe(msg))
			}
			if _, err := reader.Read(); err != io.EOF {
				t.Fatalf("expected io.EOF after sentinel, got %v", err)
			}
		})
	}

	for _, shape := range message.Shapes() {
		if _, isMessage := shape.New().(message.Message); isMessage && !covered[shape.TypeID] {
			t.Errorf("no round trip sample for %s", shape.Name)
		}
	}
}

func TestSentinel(t *testing.T) {
	msgs := sampleMessages()

	var buf bytes.Buffer
	writer := NewWriter(&buf)
	for _, msg := range msgs {
		if err := writer.Write(msg); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
	if err := writer.WriteEnd(); err != nil {
		t.Fatalf("write end failed: %v", err)
	}
	if writer.Written() != int64(buf.Len()) {
		t.Fatalf("written count %d does not match buffer %d", writer.Written(), buf.Len())
	}

	reader := NewReader(&buf)
	for i := range msgs {
		if _, err := reader.Read(); err != nil {
			t.Fatalf("read %d failed: %v", i, err)
		}
	}
	for i := 0; i < 3; i++ {
		if msg, err := reader.Read(); err != io.EOF || msg != nil {
			t.Fatalf("expected repeated io.EOF, got %v, %v", msg, err)
		}
	}
}

func TestTruncatedStream(t *testing.T) {
	frame, err := Marshal(&message.SetDriverName{DriverID: 1, DriverName: "BUTTON"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "empty stream", input: nil},
		{name: "message boundary without sentinel", input: frame},
		{name: "mid object header", input: frame[:3]},
		{name: "mid string", input: frame[:len(frame)-2]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewReader(bytes.NewReader(tt.input))
			var err error
			for err == nil {
				_, err = reader.Read()
			}

			var truncErr *TruncatedStreamError
			if !errors.As(err, &truncErr) {
				t.Fatalf("expected TruncatedStreamError, got %v", err)
			}
			if !errors.Is(err, io.ErrUnexpectedEOF) {
				t.Fatalf("expected wrapped io.ErrUnexpectedEOF, got %v", err)
			}
		})
	}
}

// Hand-built object: type id, then (field id, value) pairs already encoded
func rawObject(typeID int32, fields ...[]byte) []byte {
	buf := []byte{codeObject}
	buf = binary.BigEndian.AppendUint32(buf, uint32(typeID))
	buf = append(buf, uint8(len(fields)))
	for _, field := range fields {
		buf = append(buf, field...)
	}
	return buf
}

func TestUnknownTypeKeepsAlignment(t *testing.T) {
	var stream []byte
	stream = append(stream, rawObject(777, []byte{0, codeString, 3, 'a', 'b', 'c'}, []byte{1, codeInt8, 9})...)
	good, _ := Marshal(&message.SetIsWet{IsWet: true})
	stream = append(stream, good...)
	stream = append(stream, sentinel...)

	reader := NewReader(bytes.NewReader(stream))

	_, err := reader.Read()
	var unknownErr *UnknownTypeError
	if !errors.As(err, &unknownErr) || unknownErr.TypeID != 777 {
		t.Fatalf("expected UnknownTypeError for 777, got %v", err)
	}

	msg, err := reader.Read()
	if err != nil {
		t.Fatalf("expected next message after unknown type, got %v", err)
	}
	if wet, ok := msg.(*message.SetIsWet); !ok || !wet.IsWet {
		t.Fatalf("unexpected message %s", message.Describe(msg))
	}
	if _, err := reader.Read(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestUnknownFieldSkipped(t *testing.T) {
	stream := rawObject(message.TypeSetWindAngle,
		[]byte{0, codeInt16, 0x01, 0x0E}, // 270
		[]byte{42, codeString, 2, 'x', 'y'},
	)
	stream = append(stream, sentinel...)

	msg, err := NewReader(bytes.NewReader(stream)).Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if angle := msg.(*message.SetWindAngle).Angle; angle != 270 {
		t.Fatalf("expected angle 270, got %d", angle)
	}
}

func TestMissingFieldDefaults(t *testing.T) {
	stream := rawObject(message.TypeSetIsWet)

	msg, err := Unmarshal(stream)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.(*message.SetIsWet).IsWet {
		t.Fatal("expected default false")
	}
}

func TestMalformedMessages(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{
			name:  "validation failure",
			input: rawObject(message.TypeSetWindAngle, []byte{0, codeInt16, 0x01, 0x90}), // 400
		},
		{
			name:  "wrong value kind",
			input: rawObject(message.TypeSetWindSpeed, []byte{0, codeString, 1, '5'}),
		},
		{
			name:  "root value not an object",
			input: []byte{codeInt8, 1},
		},
		{
			name:  "nested object at root",
			input: rawObject(message.TypeTimeGap),
		},
		{
			name:  "unsupported value code",
			input: rawObject(message.TypeSetWindSpeed, []byte{0, 99}),
		},
		{
			name:  "oversized string",
			input: rawObject(message.TypeSetCopyright, append([]byte{0, codeString}, binary.AppendUvarint(nil, maxStringLen+1)...)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal(tt.input)
			var malformed *MalformedMessageError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedMessageError, got %v", err)
			}
		})
	}
}

func TestMarshalRefusesInvalid(t *testing.T) {
	_, err := Marshal(&message.SetHumidity{Humidity: 120})
	var malformed *MalformedMessageError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedMessageError, got %v", err)
	}
	var rangeErr *message.ArgumentOutOfRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected wrapped ArgumentOutOfRangeError, got %v", err)
	}

	if _, err := Marshal(nil); err == nil {
		t.Fatal("expected error for nil message")
	}
}

func TestIntegerCompaction(t *testing.T) {
	tests := []struct {
		value    int64
		wantCode uint8
		wantLen  int
	}{
		{value: 0, wantCode: codeInt8, wantLen: 2},
		{value: -128, wantCode: codeInt8, wantLen: 2},
		{value: 128, wantCode: codeInt16, wantLen: 3},
		{value: -40000, wantCode: codeInt32, wantLen: 5},
		{value: 1 << 40, wantCode: codeInt64, wantLen: 9},
	}

	for _, tt := range tests {
		encoded := appendInt(nil, tt.value)
		if encoded[0] != tt.wantCode || len(encoded) != tt.wantLen {
			t.Errorf("value %d: got code %d len %d", tt.value, encoded[0], len(encoded))
		}
	}
}

func TestFieldOrderDeterministic(t *testing.T) {
	msg := &message.SetGridColumnValue{DriverID: 3, Column: message.ColumnS1, Colour: message.ColourWhite, Value: "31.2"}
	a, _ := Marshal(msg)
	b, _ := Marshal(msg)
	if !bytes.Equal(a, b) {
		t.Fatal("encoding is not deterministic")
	}

	// object code, 4 byte type id, field count, then field 0
	if a[5] != 4 || a[6] != 0 {
		t.Fatalf("unexpected header bytes % x", a[:7])
	}
}
