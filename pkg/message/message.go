// Typed timing messages, nested value objects and the static type table
// used by the codec to address them by numeric identifier.
package message

// Any value that can be serialized by the codec.
// Type identifiers are stable and never reused.
type Object interface {
	TypeID() int32
}

// Closed set of timing messages.
// Consumers type-switch over the concrete pointer types.
type Message interface {
	Object
	Validate() error
	isMessage()
}

// Messages that address a single driver row
type DriverMessage interface {
	Message
	Driver() int
}

// Ordered, non-empty group of messages produced and consumed together
type Composite struct {
	Messages []Message
}

// Returns nil for no messages, the message itself for one, otherwise a composite.
// Nil entries are dropped.
func Combine(msgs ...Message) (combined Message) {
	kept := make([]Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg != nil {
			kept = append(kept, msg)
		}
	}

	switch len(kept) {
	case 0:
	case 1:
		combined = kept[0]
	default:
		combined = &Composite{Messages: kept}
	}
	return
}

// Expands nested composites into their leaf messages in order
func Flatten(msg Message) (leaves []Message) {
	if msg == nil {
		return
	}
	composite, ok := msg.(*Composite)
	if !ok {
		leaves = []Message{msg}
		return
	}
	for _, child := range composite.Messages {
		leaves = append(leaves, Flatten(child)...)
	}
	return
}

func (m *Composite) Validate() (err error) {
	if len(m.Messages) == 0 {
		err = &ArgumentError{Param: "Messages", Reason: "composite must contain at least one message"}
		return
	}
	for _, child := range m.Messages {
		if child == nil {
			err = &ArgumentError{Param: "Messages", Reason: "composite contains a nil message"}
			return
		}
		err = child.Validate()
		if err != nil {
			return
		}
	}
	return
}

// Marks the end of a live session
type EndOfSession struct{}

func (m *EndOfSession) Validate() error { return nil }
