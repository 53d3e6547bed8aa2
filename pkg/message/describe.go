package message

import (
	"fmt"
	"strings"
)

// Human readable rendering of an object and its fields, used by logs and the dump command
func Describe(obj Object) (text string) {
	if obj == nil {
		text = "<nil>"
		return
	}
	shape, found := Lookup(obj.TypeID())
	if !found {
		text = fmt.Sprintf("Unknown(%d)", obj.TypeID())
		return
	}

	var sb strings.Builder
	sb.WriteString(shape.Name)
	sb.WriteByte('{')
	for i, field := range shape.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(field.Name)
		sb.WriteString(": ")
		describeValue(&sb, field.Get(obj))
	}
	sb.WriteByte('}')
	text = sb.String()
	return
}

func describeValue(sb *strings.Builder, value any) {
	switch v := value.(type) {
	case nil:
		sb.WriteString("<nil>")
	case Object:
		sb.WriteString(Describe(v))
	case []any:
		sb.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				sb.WriteString(", ")
			}
			describeValue(sb, item)
		}
		sb.WriteByte(']')
	case string:
		fmt.Fprintf(sb, "%q", v)
	default:
		fmt.Fprintf(sb, "%v", v)
	}
}
