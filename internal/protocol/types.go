package protocol

// FieldType identifies the element type of a field payload.
type FieldType int32

// Type IDs from the coupling wire contract.
const (
	TypeInt32  FieldType = 1
	TypeInt64  FieldType = 2
	TypeFloat  FieldType = 3 // 64-bit IEEE 754 elements
	TypeString FieldType = 4
)

// Field is one typed, counted data element within a Message. The payload is
// held as a typed slice so callers can never misread the element type; use
// the New*Field constructors and the typed accessors.
type Field struct {
	ID   int32
	Type FieldType

	i32 []int32
	i64 []int64
	f64 []float64
	raw []byte
}

// Count returns the element count carried on the wire. For string fields
// this is the byte length.
func (f Field) Count() int32 {
	switch f.Type {
	case TypeInt32:
		return int32(len(f.i32))
	case TypeInt64:
		return int32(len(f.i64))
	case TypeFloat:
		return int32(len(f.f64))
	case TypeString:
		return int32(len(f.raw))
	}
	return 0
}

// Message is one complete coupling exchange unit.
//
// ID semantics: 0 is control (handshake or, with zero fields, termination),
// positive IDs are ordinary step requests/responses, negative IDs signal
// abnormal termination from the sender's side.
type Message struct {
	ID     int32
	Fields []Field
}

// Field returns the first field with the given ID.
func (m *Message) Field(id int32) (Field, bool) {
	for _, f := range m.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// IsTermination reports whether the message is the zero-field ID-0
// termination handshake.
func (m *Message) IsTermination() bool {
	return m.ID == 0 && len(m.Fields) == 0
}

// IsAbnormal reports whether the message signals abnormal termination.
func (m *Message) IsAbnormal() bool {
	return m.ID < 0
}
