package tensor

import (
	"errors"
	"fmt"
	"math"

	"github.com/x448/float16"

	"github.com/kaffe-ml/kaffe/internal/c2pb"
)

// ErrUnsupportedDataType reports a TensorProto element type with no Array
// equivalent.
var ErrUnsupportedDataType = errors.New("unsupported tensor data type")

// FromBlobProto converts a legacy Caffe dense blob to a 4-D float array
// shaped [num, channels, height, width].
func FromBlobProto(blob *c2pb.BlobProto) (*Array, error) {
	dims := []int64{int64(blob.Num), int64(blob.Channels), int64(blob.Height), int64(blob.Width)}
	a, err := FromFloat32s(dims, blob.Data)
	if err != nil {
		return nil, fmt.Errorf("blob: %w", err)
	}
	return a, nil
}

// FromTensorProto converts a Caffe2 tensor message to an array, reading
// the payload slot implied by the element type. A zero (absent) DataType
// means FLOAT, per the schema default. Narrow integer and bool payloads
// ride widened in int32_data; FLOAT16 payloads are half-precision bit
// patterns in int32_data.
//
//nolint:gocyclo,cyclop // One case per element type.
func FromTensorProto(t *c2pb.TensorProto) (*Array, error) {
	dataType := t.DataType
	if dataType == c2pb.TensorProtoUndefined {
		dataType = c2pb.TensorProtoFloat
	}
	switch dataType {
	case c2pb.TensorProtoFloat:
		a, err := FromFloat32s(t.Dims, t.FloatData)
		if err != nil {
			return nil, tensorErr(t, err)
		}
		return a, nil
	case c2pb.TensorProtoDouble:
		a, err := newChecked(t, Float64, len(t.DoubleData))
		if err != nil {
			return nil, err
		}
		copy(a.AsFloat64(), t.DoubleData)
		return a, nil
	case c2pb.TensorProtoInt32:
		a, err := newChecked(t, Int32, len(t.Int32Data))
		if err != nil {
			return nil, err
		}
		copy(a.AsInt32(), t.Int32Data)
		return a, nil
	case c2pb.TensorProtoInt64:
		a, err := newChecked(t, Int64, len(t.Int64Data))
		if err != nil {
			return nil, err
		}
		copy(a.AsInt64(), t.Int64Data)
		return a, nil
	case c2pb.TensorProtoBool:
		a, err := newChecked(t, Bool, len(t.Int32Data))
		if err != nil {
			return nil, err
		}
		dst := a.AsBool()
		for i, v := range t.Int32Data {
			dst[i] = v != 0
		}
		return a, nil
	case c2pb.TensorProtoUint8:
		return uint8FromProto(t)
	case c2pb.TensorProtoInt8:
		return int8FromProto(t)
	case c2pb.TensorProtoFloat16:
		return float16FromProto(t)
	default:
		return nil, fmt.Errorf("tensor %q: %w: %s", t.Name, ErrUnsupportedDataType, c2pb.DataTypeName(t.DataType))
	}
}

// uint8FromProto reads byte-wide unsigned payloads, preferring byte_data
// and falling back to widened int32_data.
func uint8FromProto(t *c2pb.TensorProto) (*Array, error) {
	if len(t.ByteData) > 0 || len(t.Int32Data) == 0 {
		a, err := newChecked(t, Uint8, len(t.ByteData))
		if err != nil {
			return nil, err
		}
		copy(a.AsUint8(), t.ByteData)
		return a, nil
	}
	a, err := newChecked(t, Uint8, len(t.Int32Data))
	if err != nil {
		return nil, err
	}
	dst := a.AsUint8()
	for i, v := range t.Int32Data {
		dst[i] = uint8(v) //nolint:gosec // G115: widened byte payload.
	}
	return a, nil
}

// int8FromProto reads byte-wide signed payloads, preferring byte_data and
// falling back to widened int32_data.
func int8FromProto(t *c2pb.TensorProto) (*Array, error) {
	if len(t.ByteData) > 0 || len(t.Int32Data) == 0 {
		a, err := newChecked(t, Int8, len(t.ByteData))
		if err != nil {
			return nil, err
		}
		dst := a.AsInt8()
		for i, b := range t.ByteData {
			dst[i] = int8(b) //nolint:gosec // G115: reinterpreted byte payload.
		}
		return a, nil
	}
	a, err := newChecked(t, Int8, len(t.Int32Data))
	if err != nil {
		return nil, err
	}
	dst := a.AsInt8()
	for i, v := range t.Int32Data {
		dst[i] = int8(v) //nolint:gosec // G115: widened byte payload.
	}
	return a, nil
}

func float16FromProto(t *c2pb.TensorProto) (*Array, error) {
	a, err := newChecked(t, Float16, len(t.Int32Data))
	if err != nil {
		return nil, err
	}
	dst := a.AsFloat16()
	for i, v := range t.Int32Data {
		if v < 0 || v > math.MaxUint16 {
			return nil, fmt.Errorf("tensor %q: float16 bits %d out of range", t.Name, v)
		}
		dst[i] = float16.Float16(v)
	}
	return a, nil
}

// newChecked allocates an array for the tensor's dims and validates the
// payload element count.
func newChecked(t *c2pb.TensorProto, dtype DataType, count int) (*Array, error) {
	a, err := NewArray(t.Dims, dtype)
	if err != nil {
		return nil, tensorErr(t, err)
	}
	if count != a.NumElements() {
		return nil, tensorErr(t, fmt.Errorf("%w: %d values for dims %v", ErrCountMismatch, count, t.Dims))
	}
	return a, nil
}

func tensorErr(t *c2pb.TensorProto, err error) error {
	if t.Name == "" {
		return err
	}
	return fmt.Errorf("tensor %q: %w", t.Name, err)
}

// ToTensorProto converts an array to a Caffe2 tensor message, writing the
// canonical payload slot for the array's dtype.
func ToTensorProto(a *Array, name string) (*c2pb.TensorProto, error) {
	t := &c2pb.TensorProto{
		Name: name,
		Dims: append([]int64(nil), a.Dims()...),
	}
	switch a.DType() {
	case Float32:
		t.DataType = c2pb.TensorProtoFloat
		t.FloatData = append([]float32(nil), a.AsFloat32()...)
	case Float64:
		t.DataType = c2pb.TensorProtoDouble
		t.DoubleData = append([]float64(nil), a.AsFloat64()...)
	case Int32:
		t.DataType = c2pb.TensorProtoInt32
		t.Int32Data = append([]int32(nil), a.AsInt32()...)
	case Int64:
		t.DataType = c2pb.TensorProtoInt64
		t.Int64Data = append([]int64(nil), a.AsInt64()...)
	case Bool:
		t.DataType = c2pb.TensorProtoBool
		for _, b := range a.AsBool() {
			if b {
				t.Int32Data = append(t.Int32Data, 1)
			} else {
				t.Int32Data = append(t.Int32Data, 0)
			}
		}
	case Uint8:
		t.DataType = c2pb.TensorProtoUint8
		t.ByteData = append([]byte(nil), a.AsUint8()...)
	case Int8:
		t.DataType = c2pb.TensorProtoInt8
		for _, v := range a.AsInt8() {
			t.Int32Data = append(t.Int32Data, int32(v))
		}
	case Float16:
		t.DataType = c2pb.TensorProtoFloat16
		for _, h := range a.AsFloat16() {
			t.Int32Data = append(t.Int32Data, int32(h.Bits()))
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDataType, a.DType())
	}
	return t, nil
}
