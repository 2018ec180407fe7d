package protocol

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Decode parses one complete encoded message. Any truncation, overrun,
// negative count or unknown type tag fails with ErrMalformed: once the
// byte offsets disagree the stream is unrecoverable, so the caller must
// treat this as fatal for the session.
func Decode(data []byte) (*Message, error) {
	if len(data) < messageHeaderSize {
		return nil, fmt.Errorf("%w: short message header", ErrMalformed)
	}
	msg := &Message{ID: readInt32(data[0:4])}
	fieldCount := readInt32(data[4:8])
	if fieldCount < 0 {
		return nil, fmt.Errorf("%w: negative field count %d", ErrMalformed, fieldCount)
	}

	offset := messageHeaderSize
	for i := int32(0); i < fieldCount; i++ {
		if len(data)-offset < fieldHeaderSize {
			return nil, fmt.Errorf("%w: short header for field %d", ErrMalformed, i)
		}
		id := readInt32(data[offset : offset+4])
		typeTag := readInt32(data[offset+4 : offset+8])
		count := readInt32(data[offset+8 : offset+12])
		offset += fieldHeaderSize

		ft := FieldType(typeTag)
		esz := elementSize(ft)
		if esz == 0 {
			return nil, fmt.Errorf("%w: unknown type tag %d for field %d", ErrMalformed, typeTag, id)
		}
		if count < 0 {
			return nil, fmt.Errorf("%w: negative element count %d for field %d", ErrMalformed, count, id)
		}
		// The product stays in int64: esz*count can wrap a 32-bit int
		// before the bounds check fires.
		if int64(esz)*int64(count) > int64(len(data)-offset) {
			return nil, fmt.Errorf("%w: field %d payload exceeds buffer", ErrMalformed, id)
		}
		payloadLen := esz * int(count)
		payload := data[offset : offset+payloadLen]
		offset += payloadLen

		field := Field{ID: id, Type: ft}
		switch ft {
		case TypeInt32:
			field.i32 = make([]int32, count)
			for j := range field.i32 {
				field.i32[j] = readInt32(payload[4*j : 4*j+4])
			}
		case TypeInt64:
			field.i64 = make([]int64, count)
			for j := range field.i64 {
				field.i64[j] = int64(binary.BigEndian.Uint64(payload[8*j : 8*j+8]))
			}
		case TypeFloat:
			field.f64 = make([]float64, count)
			for j := range field.f64 {
				field.f64[j] = math.Float64frombits(binary.BigEndian.Uint64(payload[8*j : 8*j+8]))
			}
		case TypeString:
			field.raw = make([]byte, count)
			copy(field.raw, payload)
		}
		msg.Fields = append(msg.Fields, field)
	}

	if offset != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, len(data)-offset)
	}
	return msg, nil
}

func readInt32(b []byte) int32 {
	return int32(binary.BigEndian.Uint32(b))
}
