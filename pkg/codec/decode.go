package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"f1timing/pkg/message"
	"fmt"
	"io"
	"math"
	"time"
)

// Buffered message decoder
type Reader struct {
	in       *bufio.Reader
	offset   int64
	ended    bool
	deferred error // first recoverable error seen while consuming the current message
}

func NewReader(input io.Reader) (reader *Reader) {
	reader = &Reader{in: bufio.NewReader(input)}
	return
}

// Decodes the next message. Returns io.EOF once the end of stream sentinel is read.
// Unknown types and malformed messages are fully consumed before the error is returned
// so the stream stays aligned on the next message.
func (r *Reader) Read() (msg message.Message, err error) {
	if r.ended {
		err = io.EOF
		return
	}

	code, err := r.readByte()
	if err != nil {
		err = r.truncated(err)
		return
	}
	if code == codeEmpty {
		r.ended = true
		err = io.EOF
		return
	}
	if code != codeObject {
		err = &MalformedMessageError{Err: fmt.Errorf("root value code %d is not an object", code)}
		return
	}

	r.deferred = nil
	obj, err := r.readObject(0)
	if err != nil {
		err = r.truncated(err)
		return
	}
	if r.deferred != nil {
		err = r.deferred
		return
	}

	msg, ok := obj.(message.Message)
	if !ok {
		err = &MalformedMessageError{TypeName: message.NameOf(obj), Err: errNotMessage}
		return
	}
	err = msg.Validate()
	if err != nil {
		err = &MalformedMessageError{TypeName: message.NameOf(msg), Err: err}
		msg = nil
	}
	return
}

// Bytes consumed so far
func (r *Reader) Offset() int64 {
	return r.offset
}

// Decodes a single frame produced by Marshal
func Unmarshal(frame []byte) (msg message.Message, err error) {
	reader := NewReader(bytes.NewReader(frame))
	msg, err = reader.Read()
	return
}

func (r *Reader) deferErr(err error) {
	if r.deferred == nil {
		r.deferred = err
	}
}

// End of input inside a message, or at a message boundary before the sentinel
func (r *Reader) truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &TruncatedStreamError{Offset: r.offset, Err: io.ErrUnexpectedEOF}
	}
	return err
}

// Returns the decoded object, or nil when its type is unknown (recorded as deferred error)
func (r *Reader) readObject(depth int) (obj message.Object, err error) {
	if depth > maxDepth {
		err = &MalformedMessageError{Err: fmt.Errorf("objects nested deeper than %d", maxDepth)}
		return
	}

	var raw [5]byte
	err = r.readFull(raw[:])
	if err != nil {
		return
	}
	typeID := int32(binary.BigEndian.Uint32(raw[:4]))
	fieldCount := int(raw[4])

	shape, known := message.Lookup(typeID)
	if known {
		obj = shape.New()
	} else {
		r.deferErr(&UnknownTypeError{TypeID: typeID})
	}

	for i := 0; i < fieldCount; i++ {
		var fieldID uint8
		fieldID, err = r.readByte()
		if err != nil {
			return
		}

		var value any
		value, err = r.readValue(depth)
		if err != nil {
			return
		}
		if !known {
			continue
		}

		// Fields added by newer writers are skipped
		field, found := shape.Field(fieldID)
		if !found || value == nil {
			continue
		}
		setErr := field.Set(obj, value)
		if setErr != nil {
			r.deferErr(&MalformedMessageError{TypeName: shape.Name, Err: setErr})
		}
	}

	if !known {
		obj = nil
	}
	return
}

func (r *Reader) readValue(depth int) (value any, err error) {
	code, err := r.readByte()
	if err != nil {
		return
	}

	switch code {
	case codeEmpty:
	case codeObject:
		var obj message.Object
		obj, err = r.readObject(depth + 1)
		if err != nil || obj == nil {
			return
		}
		value = obj
	case codeBool:
		var b byte
		b, err = r.readByte()
		value = b != 0
	case codeInt8:
		var b byte
		b, err = r.readByte()
		value = int64(int8(b))
	case codeInt16:
		var raw [2]byte
		err = r.readFull(raw[:])
		value = int64(int16(binary.BigEndian.Uint16(raw[:])))
	case codeInt32:
		var raw [4]byte
		err = r.readFull(raw[:])
		value = int64(int32(binary.BigEndian.Uint32(raw[:])))
	case codeInt64:
		var raw [8]byte
		err = r.readFull(raw[:])
		value = int64(binary.BigEndian.Uint64(raw[:]))
	case codeFloat64:
		var raw [8]byte
		err = r.readFull(raw[:])
		value = math.Float64frombits(binary.BigEndian.Uint64(raw[:]))
	case codeDuration:
		var raw [8]byte
		err = r.readFull(raw[:])
		value = time.Duration(int64(binary.BigEndian.Uint64(raw[:])))
	case codeString:
		var length uint64
		length, err = r.readUvarint()
		if err != nil {
			return
		}
		if length > maxStringLen {
			err = &MalformedMessageError{Err: fmt.Errorf("string length %d exceeds limit of %d", length, maxStringLen)}
			return
		}
		data := make([]byte, length)
		err = r.readFull(data)
		value = string(data)
	case codeList:
		var count uint64
		count, err = r.readUvarint()
		if err != nil {
			return
		}
		if count > maxListLen {
			err = &MalformedMessageError{Err: fmt.Errorf("list length %d exceeds limit of %d", count, maxListLen)}
			return
		}
		items := make([]any, 0, count)
		for i := uint64(0); i < count; i++ {
			var item any
			item, err = r.readValue(depth + 1)
			if err != nil {
				return
			}
			if item != nil {
				items = append(items, item)
			}
		}
		value = items
	default:
		// Without a known width the rest of the stream cannot be aligned
		err = &MalformedMessageError{Err: fmt.Errorf("unsupported value code %d", code)}
	}
	return
}

func (r *Reader) readByte() (b byte, err error) {
	b, err = r.in.ReadByte()
	if err == nil {
		r.offset++
	}
	return
}

func (r *Reader) readFull(buf []byte) (err error) {
	n, err := io.ReadFull(r.in, buf)
	r.offset += int64(n)
	return
}

func (r *Reader) readUvarint() (v uint64, err error) {
	var shift uint
	for i := 0; i < binary.MaxVarintLen64; i++ {
		var b byte
		b, err = r.readByte()
		if err != nil {
			return
		}
		if b < 0x80 {
			if i == binary.MaxVarintLen64-1 && b > 1 {
				break
			}
			v |= uint64(b) << shift
			return
		}
		v |= uint64(b&0x7f) << shift
		shift += 7
	}
	err = &MalformedMessageError{Err: fmt.Errorf("length varint overflows 64 bits")}
	return
}
