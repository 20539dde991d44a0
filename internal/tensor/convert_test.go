package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"

	"github.com/kaffe-ml/kaffe/internal/c2pb"
)

func TestFromBlobProto(t *testing.T) {
	blob := &c2pb.BlobProto{
		Num:      2,
		Channels: 3,
		Height:   1,
		Width:    2,
		Data:     []float32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	}
	a, err := FromBlobProto(blob)
	require.NoError(t, err)

	assert.Equal(t, []int64{2, 3, 1, 2}, a.Dims())
	assert.Equal(t, Float32, a.DType())
	assert.Equal(t, 12, a.NumElements())
	assert.Equal(t, blob.Data, a.AsFloat32())
}

func TestFromBlobProtoCountMismatch(t *testing.T) {
	blob := &c2pb.BlobProto{Num: 1, Channels: 1, Height: 2, Width: 2, Data: []float32{1, 2, 3}}
	_, err := FromBlobProto(blob)
	assert.ErrorIs(t, err, ErrCountMismatch)
}

func TestFromTensorProtoFloat(t *testing.T) {
	proto := &c2pb.TensorProto{
		Dims:      []int64{2, 2},
		DataType:  c2pb.TensorProtoFloat,
		FloatData: []float32{1, 2, 3, 4},
		Name:      "w",
	}
	a, err := FromTensorProto(proto)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 2}, a.Dims())
	assert.Equal(t, []float32{1, 2, 3, 4}, a.AsFloat32())
}

func TestFromTensorProtoDefaultsToFloat(t *testing.T) {
	// data_type absent on the wire means FLOAT.
	proto := &c2pb.TensorProto{Dims: []int64{2}, FloatData: []float32{1, 2}}
	a, err := FromTensorProto(proto)
	require.NoError(t, err)
	assert.Equal(t, Float32, a.DType())
}

func TestFromTensorProtoScalarDtypes(t *testing.T) {
	tests := []struct {
		name  string
		proto c2pb.TensorProto
		check func(t *testing.T, a *Array)
	}{
		{
			"double",
			c2pb.TensorProto{Dims: []int64{2}, DataType: c2pb.TensorProtoDouble, DoubleData: []float64{1.5, 1e300}},
			func(t *testing.T, a *Array) { assert.Equal(t, []float64{1.5, 1e300}, a.AsFloat64()) },
		},
		{
			"int32",
			c2pb.TensorProto{Dims: []int64{3}, DataType: c2pb.TensorProtoInt32, Int32Data: []int32{-1, 0, 7}},
			func(t *testing.T, a *Array) { assert.Equal(t, []int32{-1, 0, 7}, a.AsInt32()) },
		},
		{
			"int64",
			c2pb.TensorProto{Dims: []int64{2}, DataType: c2pb.TensorProtoInt64, Int64Data: []int64{1 << 40, -5}},
			func(t *testing.T, a *Array) { assert.Equal(t, []int64{1 << 40, -5}, a.AsInt64()) },
		},
		{
			"bool",
			c2pb.TensorProto{Dims: []int64{3}, DataType: c2pb.TensorProtoBool, Int32Data: []int32{1, 0, 1}},
			func(t *testing.T, a *Array) { assert.Equal(t, []bool{true, false, true}, a.AsBool()) },
		},
		{
			"uint8_bytes",
			c2pb.TensorProto{Dims: []int64{2}, DataType: c2pb.TensorProtoUint8, ByteData: []byte{0xfe, 0x01}},
			func(t *testing.T, a *Array) { assert.Equal(t, []uint8{0xfe, 0x01}, a.AsUint8()) },
		},
		{
			"uint8_widened",
			c2pb.TensorProto{Dims: []int64{2}, DataType: c2pb.TensorProtoUint8, Int32Data: []int32{200, 3}},
			func(t *testing.T, a *Array) { assert.Equal(t, []uint8{200, 3}, a.AsUint8()) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := FromTensorProto(&tt.proto)
			require.NoError(t, err)
			tt.check(t, a)
		})
	}
}

func TestFromTensorProtoInt8RoundTrip(t *testing.T) {
	// Signed byte payloads keep their tag and their sign through a
	// conversion round trip.
	proto := &c2pb.TensorProto{
		Dims:      []int64{3},
		DataType:  c2pb.TensorProtoInt8,
		Int32Data: []int32{-1, 0, 127},
	}
	a, err := FromTensorProto(proto)
	require.NoError(t, err)
	assert.Equal(t, Int8, a.DType())
	assert.Equal(t, []int8{-1, 0, 127}, a.AsInt8())

	back, err := ToTensorProto(a, "q")
	require.NoError(t, err)
	assert.Equal(t, c2pb.TensorProtoInt8, back.DataType)
	assert.Equal(t, []int32{-1, 0, 127}, back.Int32Data)
}

func TestFromTensorProtoFloat16(t *testing.T) {
	one := float16.Fromfloat32(1.0)
	half := float16.Fromfloat32(0.5)
	proto := &c2pb.TensorProto{
		Dims:      []int64{2},
		DataType:  c2pb.TensorProtoFloat16,
		Int32Data: []int32{int32(one.Bits()), int32(half.Bits())},
	}
	a, err := FromTensorProto(proto)
	require.NoError(t, err)
	assert.Equal(t, Float16, a.DType())
	assert.Equal(t, []float32{1.0, 0.5}, a.Float16AsFloat32())
}

func TestFromTensorProtoFloat16BitsOutOfRange(t *testing.T) {
	proto := &c2pb.TensorProto{Dims: []int64{1}, DataType: c2pb.TensorProtoFloat16, Int32Data: []int32{1 << 20}}
	_, err := FromTensorProto(proto)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestFromTensorProtoCountMismatch(t *testing.T) {
	proto := &c2pb.TensorProto{Dims: []int64{5}, DataType: c2pb.TensorProtoFloat, FloatData: []float32{1}, Name: "bad"}
	_, err := FromTensorProto(proto)
	require.ErrorIs(t, err, ErrCountMismatch)
	assert.Contains(t, err.Error(), `"bad"`)
}

func TestFromTensorProtoUnsupported(t *testing.T) {
	proto := &c2pb.TensorProto{DataType: c2pb.TensorProtoString}
	_, err := FromTensorProto(proto)
	assert.ErrorIs(t, err, ErrUnsupportedDataType)
}

func TestToTensorProtoRoundTrip(t *testing.T) {
	a, err := FromFloat32s([]int64{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	proto, err := ToTensorProto(a, "weights")
	require.NoError(t, err)
	assert.Equal(t, "weights", proto.Name)
	assert.Equal(t, c2pb.TensorProtoFloat, proto.DataType)
	assert.Equal(t, []int64{2, 3}, proto.Dims)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, proto.FloatData)

	back, err := FromTensorProto(proto)
	require.NoError(t, err)
	assert.Equal(t, a.AsFloat32(), back.AsFloat32())
	assert.Equal(t, a.Dims(), back.Dims())
}

func TestToTensorProtoFloat16(t *testing.T) {
	a, err := NewArray([]int64{2}, Float16)
	require.NoError(t, err)
	halves := a.AsFloat16()
	halves[0] = float16.Fromfloat32(2.0)
	halves[1] = float16.Fromfloat32(-0.25)

	proto, err := ToTensorProto(a, "h")
	require.NoError(t, err)
	assert.Equal(t, c2pb.TensorProtoFloat16, proto.DataType)

	back, err := FromTensorProto(proto)
	require.NoError(t, err)
	assert.Equal(t, []float32{2.0, -0.25}, back.Float16AsFloat32())
}

func TestNewArrayRejectsNegativeDim(t *testing.T) {
	_, err := NewArray([]int64{2, -1}, Float32)
	assert.ErrorIs(t, err, ErrInvalidDims)
}

func TestNewArrayRejectsOverflowingDims(t *testing.T) {
	// Element count overflows int64.
	_, err := NewArray([]int64{1 << 32, 1 << 32}, Float32)
	assert.ErrorIs(t, err, ErrInvalidDims)

	// Element count fits but the byte size does not.
	_, err = NewArray([]int64{1 << 31, 1 << 31}, Float64)
	assert.ErrorIs(t, err, ErrInvalidDims)
}

func TestFromBlobProtoHugeDims(t *testing.T) {
	// A well-formed blob whose byte size overflows must error, not panic.
	blob := &c2pb.BlobProto{Num: 1 << 21, Channels: 1 << 20, Height: 1 << 20, Width: 1}
	_, err := FromBlobProto(blob)
	assert.ErrorIs(t, err, ErrInvalidDims)
}

func TestArrayAccessorPanicsOnDTypeMismatch(t *testing.T) {
	a, err := NewArray([]int64{1}, Float32)
	require.NoError(t, err)
	assert.Panics(t, func() { a.AsInt32() })
}

func TestBlobTensorBridge(t *testing.T) {
	// Legacy blob in, modern tensor message out.
	blob := &c2pb.BlobProto{Num: 1, Channels: 2, Height: 1, Width: 2, Data: []float32{9, 8, 7, 6}}
	a, err := FromBlobProto(blob)
	require.NoError(t, err)

	proto, err := ToTensorProto(a, "migrated")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 1, 2}, proto.Dims)
	assert.Equal(t, []float32{9, 8, 7, 6}, proto.FloatData)
}
