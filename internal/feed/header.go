// Raw provider feed: packet decoding, keyframes, transport and login
package feed

import "fmt"

// Two byte packet header.
// Driver packets carry a driver id, system packets have id 0.
type Header struct {
	DriverID   int
	Type       int
	Colour     int
	DataLength int // upper nibble of the second byte
	Value      int // upper seven bits of the second byte
}

func ParseHeader(b0, b1 byte) (header Header) {
	header = Header{
		DriverID:   int(b0 & 0x1F),
		Type:       int((b0>>5)&0x07 | (b1&0x01)<<3),
		Colour:     int((b1 & 0x0E) >> 1),
		DataLength: int(b1 >> 4),
		Value:      int(b1 >> 1),
	}
	return
}

// Inverse of ParseHeader. Value overlaps Colour and DataLength so only one form is encoded:
// value is used when non-zero.
func (h Header) Bytes() (b0, b1 byte) {
	b0 = byte(h.DriverID&0x1F) | byte(h.Type&0x07)<<5
	b1 = byte(h.Type>>3) & 0x01
	if h.Value != 0 {
		b1 |= byte(h.Value&0x7F) << 1
	} else {
		b1 |= byte(h.Colour&0x07)<<1 | byte(h.DataLength&0x0F)<<4
	}
	return
}

func (h Header) IsSystem() bool { return h.DriverID == 0 }

func (h Header) String() string {
	return fmt.Sprintf("Header{DriverID: %d, Type: %d, Colour: %d, DataLength: %d, Value: %d}",
		h.DriverID, h.Type, h.Colour, h.DataLength, h.Value)
}
