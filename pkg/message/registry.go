package message

import (
	"fmt"
	"sort"
	"time"
)

// Serializable field of a shape.
// Get returns the canonical value: int64, float64, string, bool, time.Duration,
// Object, or []any of Objects. A nil result marks the field as absent.
type Field struct {
	ID   uint8
	Name string
	Get  func(Object) any
	Set  func(Object, any) error
}

// Static description of one registered type
type Shape struct {
	TypeID int32
	Name   string
	New    func() Object
	Fields []Field // ascending by ID
}

// Returns the field with the given identifier
func (s *Shape) Field(id uint8) (field *Field, found bool) {
	idx := sort.Search(len(s.Fields), func(i int) bool { return s.Fields[i].ID >= id })
	if idx < len(s.Fields) && s.Fields[idx].ID == id {
		field = &s.Fields[idx]
		found = true
	}
	return
}

var shapes = make(map[int32]*Shape)

// Adds a shape to the type table. Panics on duplicate identifiers.
func register(typeID int32, name string, newFn func() Object, fields ...Field) {
	if existing, dup := shapes[typeID]; dup {
		panic(fmt.Sprintf("message type id %d registered twice (%s, %s)", typeID, existing.Name, name))
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].ID < fields[j].ID })
	for i := 1; i < len(fields); i++ {
		if fields[i].ID == fields[i-1].ID {
			panic(fmt.Sprintf("field id %d registered twice on %s", fields[i].ID, name))
		}
	}
	shapes[typeID] = &Shape{TypeID: typeID, Name: name, New: newFn, Fields: fields}
}

// Looks up the shape registered for a type identifier
func Lookup(typeID int32) (shape *Shape, found bool) {
	shape, found = shapes[typeID]
	return
}

// Every registered shape ordered by type identifier
func Shapes() (all []*Shape) {
	all = make([]*Shape, 0, len(shapes))
	for _, shape := range shapes {
		all = append(all, shape)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].TypeID < all[j].TypeID })
	return
}

// Name of the registered type, for logging
func NameOf(obj Object) string {
	if obj == nil {
		return "<nil>"
	}
	if shape, found := shapes[obj.TypeID()]; found {
		return shape.Name
	}
	return fmt.Sprintf("Unknown(%d)", obj.TypeID())
}

// Value decoded for a field did not have the kind the field stores
type FieldKindError struct {
	Field string
	Value any
}

func (e *FieldKindError) Error() string {
	return fmt.Sprintf("field %s cannot hold a value of type %T", e.Field, e.Value)
}

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

func intField[T Object, V integer](id uint8, name string, ptr func(T) *V) Field {
	return Field{
		ID:   id,
		Name: name,
		Get:  func(o Object) any { return int64(*ptr(o.(T))) },
		Set: func(o Object, v any) (err error) {
			n, ok := v.(int64)
			if !ok || int64(V(n)) != n {
				err = &FieldKindError{Field: name, Value: v}
				return
			}
			*ptr(o.(T)) = V(n)
			return
		},
	}
}

func floatField[T Object](id uint8, name string, ptr func(T) *float64) Field {
	return Field{
		ID:   id,
		Name: name,
		Get:  func(o Object) any { return *ptr(o.(T)) },
		Set: func(o Object, v any) (err error) {
			f, ok := v.(float64)
			if !ok {
				err = &FieldKindError{Field: name, Value: v}
				return
			}
			*ptr(o.(T)) = f
			return
		},
	}
}

func stringField[T Object](id uint8, name string, ptr func(T) *string) Field {
	return Field{
		ID:   id,
		Name: name,
		Get:  func(o Object) any { return *ptr(o.(T)) },
		Set: func(o Object, v any) (err error) {
			s, ok := v.(string)
			if !ok {
				err = &FieldKindError{Field: name, Value: v}
				return
			}
			*ptr(o.(T)) = s
			return
		},
	}
}

func boolField[T Object](id uint8, name string, ptr func(T) *bool) Field {
	return Field{
		ID:   id,
		Name: name,
		Get:  func(o Object) any { return *ptr(o.(T)) },
		Set: func(o Object, v any) (err error) {
			b, ok := v.(bool)
			if !ok {
				err = &FieldKindError{Field: name, Value: v}
				return
			}
			*ptr(o.(T)) = b
			return
		},
	}
}

func durationField[T Object](id uint8, name string, ptr func(T) *time.Duration) Field {
	return Field{
		ID:   id,
		Name: name,
		Get:  func(o Object) any { return *ptr(o.(T)) },
		Set: func(o Object, v any) (err error) {
			d, ok := v.(time.Duration)
			if !ok {
				err = &FieldKindError{Field: name, Value: v}
				return
			}
			*ptr(o.(T)) = d
			return
		},
	}
}

// Nested object field. V is a pointer or interface type so its zero value means absent.
func objectField[T Object, V interface {
	comparable
	Object
}](id uint8, name string, ptr func(T) *V) Field {
	return Field{
		ID:   id,
		Name: name,
		Get: func(o Object) any {
			var zero V
			if value := *ptr(o.(T)); value != zero {
				return Object(value)
			}
			return nil
		},
		Set: func(o Object, v any) (err error) {
			value, ok := v.(V)
			if !ok {
				err = &FieldKindError{Field: name, Value: v}
				return
			}
			*ptr(o.(T)) = value
			return
		},
	}
}

// List of nested objects
func listField[T Object, E interface {
	comparable
	Object
}](id uint8, name string, ptr func(T) *[]E) Field {
	return Field{
		ID:   id,
		Name: name,
		Get: func(o Object) any {
			items := *ptr(o.(T))
			values := make([]any, 0, len(items))
			var zero E
			for _, item := range items {
				if item != zero {
					values = append(values, Object(item))
				}
			}
			return values
		},
		Set: func(o Object, v any) (err error) {
			values, ok := v.([]any)
			if !ok {
				err = &FieldKindError{Field: name, Value: v}
				return
			}
			var items []E
			for _, value := range values {
				item, ok := value.(E)
				if !ok {
					err = &FieldKindError{Field: name, Value: value}
					return
				}
				items = append(items, item)
			}
			*ptr(o.(T)) = items
			return
		},
	}
}
