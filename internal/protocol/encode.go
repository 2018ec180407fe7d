package protocol

import (
	"encoding/binary"
	"math"
)

const (
	messageHeaderSize = 8  // message_id + field_count
	fieldHeaderSize   = 12 // field_id + type_tag + element_count
)

func elementSize(t FieldType) int {
	switch t {
	case TypeInt32:
		return 4
	case TypeInt64, TypeFloat:
		return 8
	case TypeString:
		return 1
	}
	return 0
}

// Encode serializes msg using the coupling wire format: big-endian
// message_id and field_count, then per field the id, type tag, element
// count and raw payload. Float payloads round-trip bit-exact.
func Encode(msg *Message) ([]byte, error) {
	if msg == nil {
		return nil, ErrInvalidLength
	}
	size := messageHeaderSize
	for _, f := range msg.Fields {
		esz := elementSize(f.Type)
		if esz == 0 {
			return nil, ErrFieldTypeMismatch
		}
		size += fieldHeaderSize + esz*int(f.Count())
	}

	buf := make([]byte, 0, size)
	buf = appendInt32(buf, msg.ID)
	buf = appendInt32(buf, int32(len(msg.Fields)))
	for _, f := range msg.Fields {
		buf = appendInt32(buf, f.ID)
		buf = appendInt32(buf, int32(f.Type))
		buf = appendInt32(buf, f.Count())
		switch f.Type {
		case TypeInt32:
			for _, v := range f.i32 {
				buf = appendInt32(buf, v)
			}
		case TypeInt64:
			for _, v := range f.i64 {
				buf = binary.BigEndian.AppendUint64(buf, uint64(v))
			}
		case TypeFloat:
			for _, v := range f.f64 {
				buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(v))
			}
		case TypeString:
			buf = append(buf, f.raw...)
		}
	}
	return buf, nil
}

func appendInt32(buf []byte, v int32) []byte {
	return binary.BigEndian.AppendUint32(buf, uint32(v))
}
