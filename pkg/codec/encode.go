package codec

import (
	"bufio"
	"encoding/binary"
	"f1timing/pkg/message"
	"fmt"
	"io"
	"math"
	"time"
)

// Serializes a single message into a standalone frame.
// Frames can be concatenated and terminated with MarshalEnd.
func Marshal(msg message.Message) (frame []byte, err error) {
	if msg == nil {
		err = &MalformedMessageError{Err: fmt.Errorf("nil message")}
		return
	}
	err = msg.Validate()
	if err != nil {
		err = &MalformedMessageError{TypeName: message.NameOf(msg), Err: err}
		return
	}
	frame, err = appendObject(make([]byte, 0, 32), msg)
	return
}

// End of stream sentinel frame
func MarshalEnd() (frame []byte) {
	frame = append([]byte(nil), sentinel...)
	return
}

// Buffered message encoder
type Writer struct {
	out     *bufio.Writer
	written int64
}

func NewWriter(output io.Writer) (writer *Writer) {
	writer = &Writer{out: bufio.NewWriter(output)}
	return
}

// Encodes one message. Output is buffered until Flush or WriteEnd.
func (w *Writer) Write(msg message.Message) (err error) {
	frame, err := Marshal(msg)
	if err != nil {
		return
	}
	err = w.WriteFrame(frame)
	return
}

// Writes a frame produced by Marshal
func (w *Writer) WriteFrame(frame []byte) (err error) {
	n, err := w.out.Write(frame)
	w.written += int64(n)
	if err != nil {
		err = fmt.Errorf("failed to write message frame: %w", err)
	}
	return
}

// Writes the end of stream sentinel and flushes
func (w *Writer) WriteEnd() (err error) {
	err = w.WriteFrame(sentinel)
	if err != nil {
		return
	}
	err = w.Flush()
	return
}

func (w *Writer) Flush() (err error) {
	err = w.out.Flush()
	if err != nil {
		err = fmt.Errorf("failed to flush message writer: %w", err)
	}
	return
}

// Total bytes accepted by the writer
func (w *Writer) Written() int64 {
	return w.written
}

func appendObject(buf []byte, obj message.Object) (out []byte, err error) {
	shape, found := message.Lookup(obj.TypeID())
	if !found {
		err = &UnknownTypeError{TypeID: obj.TypeID()}
		return
	}

	type present struct {
		id    uint8
		value any
	}
	fields := make([]present, 0, len(shape.Fields))
	for _, field := range shape.Fields {
		value := field.Get(obj)
		if value != nil {
			fields = append(fields, present{id: field.ID, value: value})
		}
	}

	buf = append(buf, codeObject)
	buf = binary.BigEndian.AppendUint32(buf, uint32(shape.TypeID))
	buf = append(buf, uint8(len(fields)))
	for _, field := range fields {
		buf = append(buf, field.id)
		buf, err = appendValue(buf, field.value)
		if err != nil {
			err = fmt.Errorf("field %d of %s: %w", field.id, shape.Name, err)
			return
		}
	}
	out = buf
	return
}

func appendValue(buf []byte, value any) (out []byte, err error) {
	switch v := value.(type) {
	case int64:
		buf = appendInt(buf, v)
	case float64:
		buf = append(buf, codeFloat64)
		buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(v))
	case string:
		if len(v) > maxStringLen {
			err = fmt.Errorf("string of %d bytes exceeds limit of %d", len(v), maxStringLen)
			return
		}
		buf = append(buf, codeString)
		buf = binary.AppendUvarint(buf, uint64(len(v)))
		buf = append(buf, v...)
	case bool:
		buf = append(buf, codeBool)
		if v {
			buf = append(buf, 0x01)
		} else {
			buf = append(buf, 0x00)
		}
	case time.Duration:
		buf = append(buf, codeDuration)
		buf = binary.BigEndian.AppendUint64(buf, uint64(v))
	case message.Object:
		buf, err = appendObject(buf, v)
		if err != nil {
			return
		}
	case []any:
		if len(v) > maxListLen {
			err = fmt.Errorf("list of %d items exceeds limit of %d", len(v), maxListLen)
			return
		}
		buf = append(buf, codeList)
		buf = binary.AppendUvarint(buf, uint64(len(v)))
		for _, item := range v {
			buf, err = appendValue(buf, item)
			if err != nil {
				return
			}
		}
	default:
		err = fmt.Errorf("unsupported value type %T", value)
		return
	}
	out = buf
	return
}

// Integers are written in the smallest width that holds them
func appendInt(buf []byte, v int64) []byte {
	switch {
	case v >= math.MinInt8 && v <= math.MaxInt8:
		return append(buf, codeInt8, byte(int8(v)))
	case v >= math.MinInt16 && v <= math.MaxInt16:
		buf = append(buf, codeInt16)
		return binary.BigEndian.AppendUint16(buf, uint16(int16(v)))
	case v >= math.MinInt32 && v <= math.MaxInt32:
		buf = append(buf, codeInt32)
		return binary.BigEndian.AppendUint32(buf, uint32(int32(v)))
	default:
		buf = append(buf, codeInt64)
		return binary.BigEndian.AppendUint64(buf, uint64(v))
	}
}
