package feed

import (
	"errors"
	"f1timing/internal/crypto/seed"
	"fmt"
)

// Login response carried no session cookie
var ErrCredentialsRejected = seed.ErrCredentialsRejected

// Live streams must open with a keyframe marker
var ErrUnexpectedFirstMessage = errors.New("feed did not start with a keyframe marker")

// Packet type the decoder does not understand
type UnsupportedPacketError struct {
	Header Header
	Reason string
}

func (e *UnsupportedPacketError) Error() string {
	return fmt.Sprintf("unsupported feed packet %s: %s", e.Header, e.Reason)
}
