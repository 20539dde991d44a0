package tensor

import (
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/x448/float16"
)

// Common errors.
var (
	ErrInvalidDims   = errors.New("invalid dims")
	ErrCountMismatch = errors.New("element count does not match dims")
)

// Array is a dense n-dimensional array: a shape, an element type, and a
// contiguous native-endian buffer. It carries no device, strides, or
// views; it exists to move payloads between message formats and Go
// slices.
type Array struct {
	dims  []int64
	dtype DataType
	data  []byte
}

// NewArray creates a zero-filled array with the given shape and type.
func NewArray(dims []int64, dtype DataType) (*Array, error) {
	n, err := numElements(dims)
	if err != nil {
		return nil, err
	}
	if n > math.MaxInt/dtype.Size() {
		return nil, fmt.Errorf("%w: byte size overflows for dims %v", ErrInvalidDims, dims)
	}
	return &Array{
		dims:  append([]int64(nil), dims...),
		dtype: dtype,
		data:  make([]byte, n*dtype.Size()),
	}, nil
}

// FromFloat32s creates a Float32 array over a copy of values, validating
// the element count against dims.
func FromFloat32s(dims []int64, values []float32) (*Array, error) {
	a, err := NewArray(dims, Float32)
	if err != nil {
		return nil, err
	}
	if len(values) != a.NumElements() {
		return nil, fmt.Errorf("%w: %d values for dims %v", ErrCountMismatch, len(values), dims)
	}
	copy(a.AsFloat32(), values)
	return a, nil
}

func numElements(dims []int64) (int, error) {
	n := int64(1)
	for _, d := range dims {
		if d < 0 {
			return 0, fmt.Errorf("%w: negative dim %d", ErrInvalidDims, d)
		}
		if d > 0 && n > math.MaxInt64/d {
			return 0, fmt.Errorf("%w: element count overflows for dims %v", ErrInvalidDims, dims)
		}
		n *= d
	}
	if n > math.MaxInt {
		return 0, fmt.Errorf("%w: element count overflows for dims %v", ErrInvalidDims, dims)
	}
	return int(n), nil
}

// Dims returns the array's shape.
func (a *Array) Dims() []int64 {
	return a.dims
}

// DType returns the array's data type.
func (a *Array) DType() DataType {
	return a.dtype
}

// NumElements returns the total number of elements.
func (a *Array) NumElements() int {
	n := 1
	for _, d := range a.dims {
		n *= int(d)
	}
	return n
}

// ByteSize returns the total buffer size in bytes.
func (a *Array) ByteSize() int {
	return len(a.data)
}

// Data returns the raw byte buffer.
func (a *Array) Data() []byte {
	return a.data
}

// AsFloat32 interprets the buffer as []float32.
// Panics if the array's dtype is not Float32.
func (a *Array) AsFloat32() []float32 {
	a.mustBe(Float32)
	return reinterpret[float32](a)
}

// AsFloat64 interprets the buffer as []float64.
// Panics if the array's dtype is not Float64.
func (a *Array) AsFloat64() []float64 {
	a.mustBe(Float64)
	return reinterpret[float64](a)
}

// AsInt32 interprets the buffer as []int32.
// Panics if the array's dtype is not Int32.
func (a *Array) AsInt32() []int32 {
	a.mustBe(Int32)
	return reinterpret[int32](a)
}

// AsInt64 interprets the buffer as []int64.
// Panics if the array's dtype is not Int64.
func (a *Array) AsInt64() []int64 {
	a.mustBe(Int64)
	return reinterpret[int64](a)
}

// AsUint8 interprets the buffer as []uint8.
// Panics if the array's dtype is not Uint8.
func (a *Array) AsUint8() []uint8 {
	a.mustBe(Uint8)
	return a.data
}

// AsInt8 interprets the buffer as []int8.
// Panics if the array's dtype is not Int8.
func (a *Array) AsInt8() []int8 {
	a.mustBe(Int8)
	return reinterpret[int8](a)
}

// AsBool interprets the buffer as []bool.
// Panics if the array's dtype is not Bool.
func (a *Array) AsBool() []bool {
	a.mustBe(Bool)
	return reinterpret[bool](a)
}

// AsFloat16 interprets the buffer as half-precision values.
// Panics if the array's dtype is not Float16.
func (a *Array) AsFloat16() []float16.Float16 {
	a.mustBe(Float16)
	return reinterpret[float16.Float16](a)
}

// Float16AsFloat32 decodes a Float16 array's elements to float32.
// Panics if the array's dtype is not Float16.
func (a *Array) Float16AsFloat32() []float32 {
	halves := a.AsFloat16()
	out := make([]float32, len(halves))
	for i, h := range halves {
		out[i] = h.Float32()
	}
	return out
}

func (a *Array) mustBe(dt DataType) {
	if a.dtype != dt {
		panic(fmt.Sprintf("array dtype is %s, not %s", a.dtype, dt))
	}
}

func reinterpret[T any](a *Array) []T {
	if len(a.data) == 0 {
		return nil
	}
	n := a.NumElements()
	//nolint:gosec // Zero-copy view over the owned buffer; length follows from dims.
	return unsafe.Slice((*T)(unsafe.Pointer(&a.data[0])), n)
}
