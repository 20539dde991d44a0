package c2pb

import (
	"encoding/binary"
	"math"
)

// encoder builds protobuf wire-format output. Scalar fields are emitted
// only when non-zero, matching proto2 presence as closely as the plain
// structs allow; repeated fields marked packed in the schema are written
// packed.
type encoder struct {
	buf []byte
}

// Marshal encodes the NetDef in binary wire format.
func (m *NetDef) Marshal() ([]byte, error) {
	e := &encoder{}
	e.netDef(m)
	return e.buf, nil
}

// Marshal encodes the OperatorDef in binary wire format.
func (m *OperatorDef) Marshal() ([]byte, error) {
	e := &encoder{}
	e.operatorDef(m)
	return e.buf, nil
}

// Marshal encodes the Argument in binary wire format.
func (m *Argument) Marshal() ([]byte, error) {
	e := &encoder{}
	e.argument(m)
	return e.buf, nil
}

// Marshal encodes the DeviceOption in binary wire format.
func (m *DeviceOption) Marshal() ([]byte, error) {
	e := &encoder{}
	e.deviceOption(m)
	return e.buf, nil
}

// Marshal encodes the TensorProto in binary wire format.
func (m *TensorProto) Marshal() ([]byte, error) {
	e := &encoder{}
	e.tensorProto(m)
	return e.buf, nil
}

// Marshal encodes the TensorProtos in binary wire format.
func (m *TensorProtos) Marshal() ([]byte, error) {
	e := &encoder{}
	for i := range m.Protos {
		e.message(1, func(sub *encoder) { sub.tensorProto(&m.Protos[i]) })
	}
	return e.buf, nil
}

// Marshal encodes the BlobProto in binary wire format.
func (m *BlobProto) Marshal() ([]byte, error) {
	e := &encoder{}
	e.blobProto(m)
	return e.buf, nil
}

func (e *encoder) netDef(m *NetDef) {
	e.stringField(1, m.Name)
	for i := range m.Ops {
		e.message(2, func(sub *encoder) { sub.operatorDef(&m.Ops[i]) })
	}
	e.stringField(3, m.Type)
	e.int64Field(4, int64(m.NumWorkers))
	if m.DeviceOption != nil {
		e.message(5, func(sub *encoder) { sub.deviceOption(m.DeviceOption) })
	}
	for i := range m.Args {
		e.message(6, func(sub *encoder) { sub.argument(&m.Args[i]) })
	}
	for _, s := range m.ExternalInputs {
		e.bytesField(7, []byte(s))
	}
	for _, s := range m.ExternalOutputs {
		e.bytesField(8, []byte(s))
	}
}

func (e *encoder) operatorDef(m *OperatorDef) {
	for _, s := range m.Inputs {
		e.bytesField(1, []byte(s))
	}
	for _, s := range m.Outputs {
		e.bytesField(2, []byte(s))
	}
	e.stringField(3, m.Name)
	e.stringField(4, m.Type)
	for i := range m.Args {
		e.message(5, func(sub *encoder) { sub.argument(&m.Args[i]) })
	}
	if m.DeviceOption != nil {
		e.message(6, func(sub *encoder) { sub.deviceOption(m.DeviceOption) })
	}
	e.stringField(7, m.Engine)
	for _, s := range m.ControlInputs {
		e.bytesField(8, []byte(s))
	}
}

func (e *encoder) argument(m *Argument) {
	e.stringField(1, m.Name)
	e.floatField(2, m.F)
	e.int64Field(3, m.I)
	if len(m.S) > 0 {
		e.bytesField(4, m.S)
	}
	for _, v := range m.Floats { // floats is not packed in the schema
		e.tag(5, wire32Bit)
		e.fixed32(math.Float32bits(v))
	}
	for _, v := range m.Ints {
		e.tag(6, wireVarint)
		e.varint(uint64(v)) //nolint:gosec // G115: wire encoding.
	}
	for _, b := range m.Strings {
		e.bytesField(7, b)
	}
}

func (e *encoder) deviceOption(m *DeviceOption) {
	e.int64Field(1, int64(m.DeviceType))
	e.int64Field(2, int64(m.DeviceID))
	if m.RandomSeed != 0 {
		e.tag(3, wireVarint)
		e.varint(uint64(m.RandomSeed))
	}
	e.stringField(4, m.NodeName)
}

func (e *encoder) tensorProto(m *TensorProto) {
	for _, v := range m.Dims { // dims is not packed in the schema
		e.tag(1, wireVarint)
		e.varint(uint64(v)) //nolint:gosec // G115: wire encoding.
	}
	e.int64Field(2, int64(m.DataType))
	e.packedFloat32(3, m.FloatData)
	e.packedVarint32(4, m.Int32Data)
	if len(m.ByteData) > 0 {
		e.bytesField(5, m.ByteData)
	}
	for _, b := range m.StringData {
		e.bytesField(6, b)
	}
	e.stringField(7, m.Name)
	if m.DeviceDetail != nil {
		e.message(8, func(sub *encoder) { sub.deviceOption(m.DeviceDetail) })
	}
	e.packedFloat64(9, m.DoubleData)
	e.packedVarint64(10, m.Int64Data)
}

func (e *encoder) blobProto(m *BlobProto) {
	e.int64Field(1, int64(m.Num))
	e.int64Field(2, int64(m.Channels))
	e.int64Field(3, int64(m.Height))
	e.int64Field(4, int64(m.Width))
	e.packedFloat32(5, m.Data)
}

func (e *encoder) tag(fieldNum, wireType int) {
	e.varint(uint64(fieldNum)<<3 | uint64(wireType)) //nolint:gosec // G115: field numbers are small positives.
}

func (e *encoder) varint(v uint64) {
	e.buf = binary.AppendUvarint(e.buf, v)
}

func (e *encoder) fixed32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *encoder) fixed64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

// int64Field emits a varint field, omitting the zero value.
func (e *encoder) int64Field(fieldNum int, v int64) {
	if v == 0 {
		return
	}
	e.tag(fieldNum, wireVarint)
	e.varint(uint64(v)) //nolint:gosec // G115: wire encoding.
}

// floatField emits a float field, omitting the zero value.
func (e *encoder) floatField(fieldNum int, v float32) {
	if v == 0 {
		return
	}
	e.tag(fieldNum, wire32Bit)
	e.fixed32(math.Float32bits(v))
}

// stringField emits a string field, omitting the empty string.
func (e *encoder) stringField(fieldNum int, s string) {
	if s == "" {
		return
	}
	e.bytesField(fieldNum, []byte(s))
}

func (e *encoder) bytesField(fieldNum int, b []byte) {
	e.tag(fieldNum, wireBytes)
	e.varint(uint64(len(b)))
	e.buf = append(e.buf, b...)
}

// message emits an embedded message field.
func (e *encoder) message(fieldNum int, encode func(*encoder)) {
	sub := &encoder{}
	encode(sub)
	e.bytesField(fieldNum, sub.buf)
}

func (e *encoder) packedFloat32(fieldNum int, vs []float32) {
	if len(vs) == 0 {
		return
	}
	e.tag(fieldNum, wireBytes)
	e.varint(uint64(len(vs)) * 4)
	for _, v := range vs {
		e.fixed32(math.Float32bits(v))
	}
}

func (e *encoder) packedFloat64(fieldNum int, vs []float64) {
	if len(vs) == 0 {
		return
	}
	e.tag(fieldNum, wireBytes)
	e.varint(uint64(len(vs)) * 8)
	for _, v := range vs {
		e.fixed64(math.Float64bits(v))
	}
}

func (e *encoder) packedVarint64(fieldNum int, vs []int64) {
	if len(vs) == 0 {
		return
	}
	sub := &encoder{}
	for _, v := range vs {
		sub.varint(uint64(v)) //nolint:gosec // G115: wire encoding.
	}
	e.bytesField(fieldNum, sub.buf)
}

func (e *encoder) packedVarint32(fieldNum int, vs []int32) {
	if len(vs) == 0 {
		return
	}
	sub := &encoder{}
	for _, v := range vs {
		sub.varint(uint64(int64(v))) //nolint:gosec // G115: sign-extended wire encoding.
	}
	e.bytesField(fieldNum, sub.buf)
}
