// Self-describing binary encoding of timing messages.
// The same format is used on proxy sockets and in recorded session files.
package codec

const (
	// Value codes
	codeEmpty    uint8 = 0 // at a root position this is the end of stream sentinel
	codeObject   uint8 = 1
	codeBool     uint8 = 3
	codeInt8     uint8 = 5
	codeInt16    uint8 = 7
	codeInt32    uint8 = 9
	codeInt64    uint8 = 11
	codeFloat64  uint8 = 14
	codeString   uint8 = 18
	codeDuration uint8 = 19
	codeList     uint8 = 20

	// Decoder limits
	maxStringLen = 1 << 20
	maxListLen   = 1 << 16
	maxDepth     = 16
)

// Single byte written after the last message of a stream
var sentinel = []byte{codeEmpty}
