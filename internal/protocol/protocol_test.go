package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestRoundTripEncodeDecode(t *testing.T) {
	msg := &Message{
		ID: 7,
		Fields: []Field{
			NewStringField(FieldUnits, "real"),
			NewScalarInt32Field(FieldNatoms, 3),
			NewInt32Field(FieldTypes, []int32{1, 1, 2}),
			NewInt64Field(11, []int64{-1, 1 << 40}),
			NewFloatField(FieldCoords, []float64{0.0, -1.5, 2.25, 1e-300, math.Pi, -0.0, 6.5, 7, 8}),
		},
	}

	buf, err := Encode(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(msg, decoded) {
		t.Fatalf("round-trip mismatch:\n got %+v\nwant %+v", decoded, msg)
	}

	buf2, err := Encode(decoded)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(buf, buf2) {
		t.Fatalf("re-encoded bytes differ")
	}
}

func TestEncodeForcesWireLayout(t *testing.T) {
	payload := []float64{1.0, -2.5, 3.0, 0.0, 0.25, -0.25}
	msg := &Message{
		ID:     5,
		Fields: []Field{NewFloatField(FieldForces, payload)},
	}

	buf, err := Encode(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	wantLen := 8 + 12 + 8*len(payload)
	if len(buf) != wantLen {
		t.Fatalf("encoded length = %d, want %d", len(buf), wantLen)
	}
	if got := int32(binary.BigEndian.Uint32(buf[0:4])); got != 5 {
		t.Fatalf("message_id = %d, want 5", got)
	}
	if got := binary.BigEndian.Uint32(buf[4:8]); got != 1 {
		t.Fatalf("field_count = %d, want 1", got)
	}
	if got := int32(binary.BigEndian.Uint32(buf[8:12])); got != FieldForces {
		t.Fatalf("field_id = %d, want %d", got, FieldForces)
	}
	if got := FieldType(binary.BigEndian.Uint32(buf[12:16])); got != TypeFloat {
		t.Fatalf("type_tag = %d, want %d", got, TypeFloat)
	}
	if got := binary.BigEndian.Uint32(buf[16:20]); got != 6 {
		t.Fatalf("element_count = %d, want 6", got)
	}

	decoded, err := Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != 5 || len(decoded.Fields) != 1 {
		t.Fatalf("decoded shape mismatch: %+v", decoded)
	}
	forces, err := decoded.Fields[0].Floats()
	if err != nil {
		t.Fatalf("forces: %v", err)
	}
	for i, v := range payload {
		if math.Float64bits(forces[i]) != math.Float64bits(v) {
			t.Fatalf("forces[%d] = %v, want bit-exact %v", i, forces[i], v)
		}
	}
}

func TestDecodeTruncatedByOneByte(t *testing.T) {
	msg := &Message{
		ID:     1,
		Fields: []Field{NewFloatField(FieldCoords, []float64{1, 2, 3})},
	}
	buf, err := Encode(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, err = Decode(buf[:len(buf)-1])
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestDecodeMalformedInputs(t *testing.T) {
	valid, err := Encode(&Message{ID: 2, Fields: []Field{NewScalarInt32Field(1, 9)}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	cases := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"short header", func(b []byte) []byte { return b[:6] }},
		{"negative field count", func(b []byte) []byte {
			binary.BigEndian.PutUint32(b[4:8], ^uint32(0))
			return b
		}},
		{"unknown type tag", func(b []byte) []byte {
			binary.BigEndian.PutUint32(b[12:16], 99)
			return b
		}},
		{"negative element count", func(b []byte) []byte {
			binary.BigEndian.PutUint32(b[16:20], ^uint32(0))
			return b
		}},
		{"count beyond buffer", func(b []byte) []byte {
			binary.BigEndian.PutUint32(b[16:20], 1000)
			return b
		}},
		// esz*count wraps a 32-bit int; the bounds check must still hold.
		{"count overflows payload length", func(b []byte) []byte {
			binary.BigEndian.PutUint32(b[16:20], math.MaxInt32)
			return b
		}},
		{"trailing bytes", func(b []byte) []byte { return append(b, 0xff) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf := make([]byte, len(valid))
			copy(buf, valid)
			_, err := Decode(tc.mutate(buf))
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestDecodeEmptyControlMessage(t *testing.T) {
	buf, err := Encode(&Message{ID: 0})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	msg, err := Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !msg.IsTermination() {
		t.Fatalf("expected termination message, got %+v", msg)
	}
}

func TestFieldAccessorTypeMismatch(t *testing.T) {
	f := NewStringField(FieldUnits, "metal")
	if _, err := f.Floats(); !errors.Is(err, ErrFieldTypeMismatch) {
		t.Fatalf("expected ErrFieldTypeMismatch, got %v", err)
	}
	if _, err := f.Int32(); !errors.Is(err, ErrFieldTypeMismatch) {
		t.Fatalf("expected ErrFieldTypeMismatch, got %v", err)
	}
	s, err := f.String()
	if err != nil || s != "metal" {
		t.Fatalf("string accessor: %q %v", s, err)
	}
}

func TestScalarAccessorLength(t *testing.T) {
	f := NewFloatField(FieldEnergy, []float64{1, 2})
	if _, err := f.Float(); !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("expected ErrInvalidLength, got %v", err)
	}
}

func TestRegistryNames(t *testing.T) {
	if name, ok := RequestFieldName(FieldCoords); !ok || name != "coords" {
		t.Fatalf("coords lookup: %q %v", name, ok)
	}
	if name, ok := ResponseFieldName(FieldVirial); !ok || name != "virial" {
		t.Fatalf("virial lookup: %q %v", name, ok)
	}
	if _, ok := RequestFieldName(42); ok {
		t.Fatalf("expected unknown request field")
	}
}
