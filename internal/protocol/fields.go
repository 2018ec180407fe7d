package protocol

// NewInt32Field creates an int32 array field.
func NewInt32Field(id int32, v []int32) Field {
	buf := make([]int32, len(v))
	copy(buf, v)
	return Field{ID: id, Type: TypeInt32, i32: buf}
}

// NewInt64Field creates an int64 array field.
func NewInt64Field(id int32, v []int64) Field {
	buf := make([]int64, len(v))
	copy(buf, v)
	return Field{ID: id, Type: TypeInt64, i64: buf}
}

// NewFloatField creates a float64 array field.
func NewFloatField(id int32, v []float64) Field {
	buf := make([]float64, len(v))
	copy(buf, v)
	return Field{ID: id, Type: TypeFloat, f64: buf}
}

// NewScalarInt32Field creates a one-element int32 field.
func NewScalarInt32Field(id int32, v int32) Field {
	return Field{ID: id, Type: TypeInt32, i32: []int32{v}}
}

// NewScalarFloatField creates a one-element float64 field.
func NewScalarFloatField(id int32, v float64) Field {
	return Field{ID: id, Type: TypeFloat, f64: []float64{v}}
}

// NewStringField creates a string field.
func NewStringField(id int32, v string) Field {
	return Field{ID: id, Type: TypeString, raw: []byte(v)}
}

// Int32s returns the field payload as an int32 slice.
func (f Field) Int32s() ([]int32, error) {
	if f.Type != TypeInt32 {
		return nil, ErrFieldTypeMismatch
	}
	out := make([]int32, len(f.i32))
	copy(out, f.i32)
	return out, nil
}

// Int64s returns the field payload as an int64 slice.
func (f Field) Int64s() ([]int64, error) {
	if f.Type != TypeInt64 {
		return nil, ErrFieldTypeMismatch
	}
	out := make([]int64, len(f.i64))
	copy(out, f.i64)
	return out, nil
}

// Floats returns the field payload as a float64 slice.
func (f Field) Floats() ([]float64, error) {
	if f.Type != TypeFloat {
		return nil, ErrFieldTypeMismatch
	}
	out := make([]float64, len(f.f64))
	copy(out, f.f64)
	return out, nil
}

// Int32 returns a one-element int32 payload.
func (f Field) Int32() (int32, error) {
	if f.Type != TypeInt32 {
		return 0, ErrFieldTypeMismatch
	}
	if len(f.i32) != 1 {
		return 0, ErrInvalidLength
	}
	return f.i32[0], nil
}

// Float returns a one-element float64 payload.
func (f Field) Float() (float64, error) {
	if f.Type != TypeFloat {
		return 0, ErrFieldTypeMismatch
	}
	if len(f.f64) != 1 {
		return 0, ErrInvalidLength
	}
	return f.f64[0], nil
}

// String returns the field payload as a string.
func (f Field) String() (string, error) {
	if f.Type != TypeString {
		return "", ErrFieldTypeMismatch
	}
	return string(f.raw), nil
}
