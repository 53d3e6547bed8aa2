package codec

import (
	"errors"
	"fmt"
)

// Stream closed before the end of stream sentinel was read
type TruncatedStreamError struct {
	Offset int64 // bytes consumed before the stream ended
	Err    error
}

func (e *TruncatedStreamError) Error() string {
	return fmt.Sprintf("stream truncated at offset %d: %v", e.Offset, e.Err)
}

func (e *TruncatedStreamError) Unwrap() error { return e.Err }

// Object type identifier not present in the type table
type UnknownTypeError struct {
	TypeID int32
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type id %d", e.TypeID)
}

// Message bytes or field values failed validation
type MalformedMessageError struct {
	TypeName string
	Err      error
}

func (e *MalformedMessageError) Error() string {
	if e.TypeName == "" {
		return fmt.Sprintf("malformed message: %v", e.Err)
	}
	return fmt.Sprintf("malformed %s message: %v", e.TypeName, e.Err)
}

func (e *MalformedMessageError) Unwrap() error { return e.Err }

var errNotMessage = errors.New("root object is not a message")
