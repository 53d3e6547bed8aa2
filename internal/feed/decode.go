package feed

import (
	"context"
	"errors"
	"f1timing/internal/feed/livedata"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"f1timing/pkg/message"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
)

const (
	countdownStartLength = 15 // system type 9 packets this long start the countdown
	delayTextLength      = 16
)

// Driver name and speed pairs, each terminated by a carriage return
var speedCapturePattern = regexp.MustCompile(`([^\r]+)\r([^\r]+)\r?`)

// Reads and decodes one packet. A nil message means the packet carried nothing of use.
func (r *Reader) readMessage(ctx context.Context) (msg message.Message, err error) {
	err = r.readBytes(ctx, 2)
	if err != nil {
		return
	}
	header := ParseHeader(r.buf[0], r.buf[1])
	logctx.LogEvent(ctx, global.VerbosityDebug, global.InfoLog, "Read packet %s\n", header)

	if header.IsSystem() {
		msg, err = r.readSystem(ctx, header)
	} else {
		msg, err = r.readDriver(ctx, header)
	}
	if err == io.EOF {
		// Stream ended inside a packet
		err = io.ErrUnexpectedEOF
	}
	return
}

func (r *Reader) readSystem(ctx context.Context, header Header) (msg message.Message, err error) {
	switch header.Type {
	case 0:
		msg, err = r.readNextMessageDelay(ctx)
	case 1:
		msg, err = r.readSessionType(ctx, header)
	case 2:
		msg, err = r.readKeyframeMarker(ctx, header)
	case 3:
		msg = &message.SetStreamValidity{IsValid: header.Colour != 0}
	case 4:
		err = r.readAndDecrypt(ctx, header.Value)
		if err != nil {
			return
		}
		if header.Value < 2 {
			msg = &message.AddCommentary{}
			return
		}
		msg = &message.AddCommentary{Commentary: string(r.buf[2:header.Value])}
	case 5:
		msg = &message.SetPingInterval{PingInterval: time.Duration(header.Value) * time.Second}
	case 6:
		err = r.readAndDecrypt(ctx, header.Value)
		if err != nil {
			return
		}
		msg = &message.SetSystemMessage{Message: string(r.buf[:header.Value])}
	case 7:
		err = r.readAndDecrypt(ctx, 2)
		if err != nil {
			return
		}
		seconds := int(r.buf[1])<<8 | int(r.buf[0]) | header.Value<<16
		msg = &message.SetElapsedSessionTime{Elapsed: time.Duration(seconds) * time.Second}
	case 9:
		msg, err = r.readSessionTimeOrWeather(ctx, header)
	case 10:
		msg, err = r.readSpeedCapture(ctx, header)
	case 11:
		msg, err = r.readSessionStatus(ctx, header)
	case 12:
		err = r.readBytes(ctx, header.Value)
		if err != nil {
			return
		}
		msg = &message.SetCopyright{Copyright: string(r.buf[:header.Value])}
	default:
		err = &UnsupportedPacketError{Header: header, Reason: "unknown system packet type"}
	}
	return
}

// Delay markers only appear in feeds captured with their timing
func (r *Reader) readNextMessageDelay(ctx context.Context) (msg message.Message, err error) {
	err = r.readBytes(ctx, delayTextLength)
	if err != nil {
		return
	}
	delay, err := livedata.ParseTime(latin1(r.buf[:delayTextLength]))
	if err != nil {
		return
	}
	msg = &message.SetNextMessageDelay{Delay: delay}
	return
}

func (r *Reader) readSessionType(ctx context.Context, header Header) (msg message.Message, err error) {
	err = r.readBytes(ctx, header.DataLength)
	if err != nil {
		return
	}
	sessionType, err := livedata.ToSessionType(header.Colour)
	if err != nil {
		return
	}
	sessionID := ""
	if header.DataLength > 1 {
		sessionID = latin1(r.buf[1:header.DataLength])
	}
	msg = &message.SetSessionType{SessionType: sessionType, SessionID: sessionID}
	return
}

func (r *Reader) readKeyframeMarker(ctx context.Context, header Header) (msg message.Message, err error) {
	if header.DataLength != 2 {
		err = &UnsupportedPacketError{Header: header, Reason: fmt.Sprintf("keyframe marker has data length %d", header.DataLength)}
		return
	}
	err = r.readBytes(ctx, 2)
	if err != nil {
		return
	}
	msg = &message.SetKeyframe{Keyframe: int(r.buf[1])<<8 | int(r.buf[0])}
	return
}

func (r *Reader) readSessionTimeOrWeather(ctx context.Context, header Header) (msg message.Message, err error) {
	switch {
	case header.DataLength >= countdownStartLength:
		msg = &message.StartSessionTimeCountdown{}
	case header.Colour > 0:
		msg, err = r.readWeather(ctx, header)
	case header.DataLength > 0:
		err = r.readAndDecrypt(ctx, header.DataLength)
		if err != nil {
			return
		}
		var remaining time.Duration
		remaining, err = livedata.ParseTime(latin1(r.buf[:header.DataLength]))
		if err != nil {
			return
		}
		msg = message.Combine(&message.StopSessionTimeCountdown{}, &message.SetRemainingSessionTime{Remaining: remaining})
	default:
		logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog, "Ignoring empty session time packet %s\n", header)
	}
	return
}

func (r *Reader) readWeather(ctx context.Context, header Header) (msg message.Message, err error) {
	err = r.readAndDecrypt(ctx, header.DataLength)
	if err != nil {
		return
	}
	text := latin1(r.buf[:header.DataLength])

	var value float64
	switch header.Colour {
	case 1, 2, 4, 5, 6:
		value, err = livedata.ParseFloat(text)
		if err != nil {
			return
		}
	}

	switch header.Colour {
	case 1:
		msg = &message.SetTrackTemperature{Temperature: value}
	case 2:
		msg = &message.SetAirTemperature{Temperature: value}
	case 3:
		var wet int
		wet, err = livedata.ParseInt(text)
		if err != nil {
			return
		}
		msg = &message.SetIsWet{IsWet: wet == 1}
	case 4:
		msg = &message.SetWindSpeed{Speed: value}
	case 5:
		msg = &message.SetHumidity{Humidity: value}
	case 6:
		msg = &message.SetAtmosphericPressure{Pressure: value}
	case 7:
		angle, parseErr := livedata.ParseInt(text)
		if parseErr != nil || !message.IsValidWindAngle(angle) {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Ignoring invalid wind angle %q\n", text)
			return
		}
		msg = &message.SetWindAngle{Angle: angle}
	default:
		err = &UnsupportedPacketError{Header: header, Reason: "unknown weather colour"}
	}
	return
}

func (r *Reader) readSpeedCapture(ctx context.Context, header Header) (msg message.Message, err error) {
	err = r.readAndDecrypt(ctx, header.Value)
	if err != nil {
		return
	}
	if header.Value < 1 {
		return
	}

	location := message.SpeedCaptureLocation(int(r.buf[0]) - 1)
	if !location.IsValid() {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Ignoring speed capture at unknown location %d\n", r.buf[0])
		return
	}

	capture := &message.SpeedCapture{Location: location}
	text := latin1(r.buf[1:header.Value])
	for _, match := range speedCapturePattern.FindAllStringSubmatch(text, -1) {
		speed, parseErr := livedata.ParseInt(match[2])
		if parseErr != nil {
			logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog, "Ignoring speed capture entry: %v\n", parseErr)
			continue
		}
		capture.Speeds = append(capture.Speeds, &message.SpeedEntry{
			DriverName: strings.TrimSpace(match[1]),
			Speed:      speed,
		})
	}
	msg = capture
	return
}

func (r *Reader) readSessionStatus(ctx context.Context, header Header) (msg message.Message, err error) {
	switch header.Colour {
	case 1:
		err = r.readAndDecrypt(ctx, header.DataLength)
		if err != nil {
			return
		}
		var status message.SessionStatus
		status, err = livedata.ToSessionStatus(latin1(r.buf[:header.DataLength]))
		if err != nil {
			return
		}
		msg = &message.SetSessionStatus{SessionStatus: status}
	case 4:
		if header.DataLength == 0 {
			return
		}
		err = r.readAndDecrypt(ctx, header.DataLength)
		if err != nil {
			return
		}
		var required time.Duration
		required, err = livedata.ParseTime(latin1(r.buf[:header.DataLength]))
		if err != nil {
			return
		}
		msg = &message.SetMinRequiredQuallyTime{Time: required}
	default:
		err = r.readAndDecrypt(ctx, header.DataLength)
		if err != nil {
			return
		}
		logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog, "Ignoring session packet %s\n", header)
	}
	return
}

func (r *Reader) readDriver(ctx context.Context, header Header) (msg message.Message, err error) {
	switch {
	case header.Type == 0:
		// Position zero clears the row
		if header.Value == 0 {
			msg = &message.ClearGridRow{DriverID: header.DriverID}
			return
		}
		msg = &message.SetDriverPosition{DriverID: header.DriverID, Position: header.Value}
	case header.Type == 15:
		// Historical position data is not used
		err = r.readAndDecrypt(ctx, header.Value)
	case header.Type <= 13:
		msg, err = r.readGridColumn(ctx, header)
	default:
		err = &UnsupportedPacketError{Header: header, Reason: "unknown driver packet type"}
	}
	return
}

func (r *Reader) readGridColumn(ctx context.Context, header Header) (msg message.Message, err error) {
	column, err := livedata.ToGridColumn(header.Type, r.sessionType)
	if err != nil {
		return
	}
	colour, err := livedata.ToGridColumnColour(header.Colour)
	if err != nil {
		return
	}

	switch {
	case header.DataLength == 0:
		msg = &message.SetGridColumnValue{DriverID: header.DriverID, Column: column, Colour: colour}
	case header.DataLength < 15:
		err = r.readAndDecrypt(ctx, header.DataLength)
		if err != nil {
			return
		}
		msg = &message.SetGridColumnValue{
			DriverID: header.DriverID,
			Column:   column,
			Colour:   colour,
			Value:    latin1(r.buf[:header.DataLength]),
		}
	default:
		msg = &message.SetGridColumnColour{DriverID: header.DriverID, Column: column, Colour: colour}
	}
	return
}

func (r *Reader) readBytes(ctx context.Context, count int) (err error) {
	if count == 0 {
		return
	}
	if count > len(r.buf) {
		err = fmt.Errorf("packet length %d exceeds buffer", count)
		return
	}
	err = r.stream.ReadFull(ctx, r.buf[:count])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		err = fmt.Errorf("failed to read feed: %w", err)
	}
	return
}

func (r *Reader) readAndDecrypt(ctx context.Context, count int) (err error) {
	err = r.readBytes(ctx, count)
	if err != nil {
		return
	}
	r.decrypter.Decrypt(r.buf[:count])
	return
}

func latin1(b []byte) string {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(decoded)
}
