package c2pb

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Protobuf wire types.
const (
	wireVarint = 0 // int32, int64, uint32, uint64, bool, enum
	wire64Bit  = 1 // fixed64, sfixed64, double
	wireBytes  = 2 // string, bytes, embedded messages, packed repeated fields
	wire32Bit  = 5 // fixed32, sfixed32, float
)

// decoder implements a minimal protobuf wire format reader.
type decoder struct {
	data []byte
	pos  int
}

// Unmarshal decodes binary wire-format data into the NetDef.
func (m *NetDef) Unmarshal(data []byte) error {
	d := &decoder{data: data}
	return d.netDef(m)
}

// Unmarshal decodes binary wire-format data into the OperatorDef.
func (m *OperatorDef) Unmarshal(data []byte) error {
	d := &decoder{data: data}
	return d.operatorDef(m)
}

// Unmarshal decodes binary wire-format data into the Argument.
func (m *Argument) Unmarshal(data []byte) error {
	d := &decoder{data: data}
	return d.argument(m)
}

// Unmarshal decodes binary wire-format data into the DeviceOption.
func (m *DeviceOption) Unmarshal(data []byte) error {
	d := &decoder{data: data}
	return d.deviceOption(m)
}

// Unmarshal decodes binary wire-format data into the TensorProto.
func (m *TensorProto) Unmarshal(data []byte) error {
	d := &decoder{data: data}
	return d.tensorProto(m)
}

// Unmarshal decodes binary wire-format data into the TensorProtos.
func (m *TensorProtos) Unmarshal(data []byte) error {
	d := &decoder{data: data}
	return d.tensorProtos(m)
}

// Unmarshal decodes binary wire-format data into the BlobProto.
func (m *BlobProto) Unmarshal(data []byte) error {
	d := &decoder{data: data}
	return d.blobProto(m)
}

func (d *decoder) netDef(m *NetDef) error {
	for d.pos < len(d.data) {
		fieldNum, wireType, err := d.readTag()
		if err != nil {
			return err
		}
		switch fieldNum {
		case 1: // name
			m.Name, err = d.readString(wireType)
		case 2: // op
			var op OperatorDef
			if err = d.readMessage(wireType, func(sub *decoder) error { return sub.operatorDef(&op) }); err == nil {
				m.Ops = append(m.Ops, op)
			}
		case 3: // type
			m.Type, err = d.readString(wireType)
		case 4: // num_workers
			m.NumWorkers, err = d.readInt32(wireType)
		case 5: // device_option
			m.DeviceOption = &DeviceOption{}
			err = d.readMessage(wireType, func(sub *decoder) error { return sub.deviceOption(m.DeviceOption) })
		case 6: // arg
			var arg Argument
			if err = d.readMessage(wireType, func(sub *decoder) error { return sub.argument(&arg) }); err == nil {
				m.Args = append(m.Args, arg)
			}
		case 7: // external_input
			var s string
			if s, err = d.readString(wireType); err == nil {
				m.ExternalInputs = append(m.ExternalInputs, s)
			}
		case 8: // external_output
			var s string
			if s, err = d.readString(wireType); err == nil {
				m.ExternalOutputs = append(m.ExternalOutputs, s)
			}
		default:
			err = d.skipField(wireType)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) operatorDef(m *OperatorDef) error {
	for d.pos < len(d.data) {
		fieldNum, wireType, err := d.readTag()
		if err != nil {
			return err
		}
		switch fieldNum {
		case 1: // input
			var s string
			if s, err = d.readString(wireType); err == nil {
				m.Inputs = append(m.Inputs, s)
			}
		case 2: // output
			var s string
			if s, err = d.readString(wireType); err == nil {
				m.Outputs = append(m.Outputs, s)
			}
		case 3: // name
			m.Name, err = d.readString(wireType)
		case 4: // type
			m.Type, err = d.readString(wireType)
		case 5: // arg
			var arg Argument
			if err = d.readMessage(wireType, func(sub *decoder) error { return sub.argument(&arg) }); err == nil {
				m.Args = append(m.Args, arg)
			}
		case 6: // device_option
			m.DeviceOption = &DeviceOption{}
			err = d.readMessage(wireType, func(sub *decoder) error { return sub.deviceOption(m.DeviceOption) })
		case 7: // engine
			m.Engine, err = d.readString(wireType)
		case 8: // control_input
			var s string
			if s, err = d.readString(wireType); err == nil {
				m.ControlInputs = append(m.ControlInputs, s)
			}
		default:
			err = d.skipField(wireType)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) argument(m *Argument) error {
	for d.pos < len(d.data) {
		fieldNum, wireType, err := d.readTag()
		if err != nil {
			return err
		}
		switch fieldNum {
		case 1: // name
			m.Name, err = d.readString(wireType)
		case 2: // f
			m.F, err = d.readFloat32(wireType)
		case 3: // i
			m.I, err = d.readVarint64(wireType)
		case 4: // s
			m.S, err = d.readBytesField(wireType)
		case 5: // floats
			err = d.readRepeatedFloat32(wireType, &m.Floats)
		case 6: // ints
			err = d.readRepeatedVarint64(wireType, &m.Ints)
		case 7: // strings
			var b []byte
			if b, err = d.readBytesField(wireType); err == nil {
				m.Strings = append(m.Strings, b)
			}
		default:
			err = d.skipField(wireType)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) deviceOption(m *DeviceOption) error {
	for d.pos < len(d.data) {
		fieldNum, wireType, err := d.readTag()
		if err != nil {
			return err
		}
		switch fieldNum {
		case 1: // device_type
			m.DeviceType, err = d.readInt32(wireType)
		case 2: // device_id
			m.DeviceID, err = d.readInt32(wireType)
		case 3: // random_seed
			var v int64
			if v, err = d.readVarint64(wireType); err == nil {
				m.RandomSeed = uint32(v) //nolint:gosec // G115: schema declares uint32.
			}
		case 4: // node_name
			m.NodeName, err = d.readString(wireType)
		default:
			err = d.skipField(wireType)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) tensorProto(m *TensorProto) error {
	for d.pos < len(d.data) {
		fieldNum, wireType, err := d.readTag()
		if err != nil {
			return err
		}
		switch fieldNum {
		case 1: // dims
			err = d.readRepeatedVarint64(wireType, &m.Dims)
		case 2: // data_type
			m.DataType, err = d.readInt32(wireType)
		case 3: // float_data (packed)
			err = d.readRepeatedFloat32(wireType, &m.FloatData)
		case 4: // int32_data (packed)
			err = d.readRepeatedVarint32(wireType, &m.Int32Data)
		case 5: // byte_data
			m.ByteData, err = d.readBytesField(wireType)
		case 6: // string_data
			var b []byte
			if b, err = d.readBytesField(wireType); err == nil {
				m.StringData = append(m.StringData, b)
			}
		case 7: // name
			m.Name, err = d.readString(wireType)
		case 8: // device_detail
			m.DeviceDetail = &DeviceOption{}
			err = d.readMessage(wireType, func(sub *decoder) error { return sub.deviceOption(m.DeviceDetail) })
		case 9: // double_data (packed)
			err = d.readRepeatedFloat64(wireType, &m.DoubleData)
		case 10: // int64_data (packed)
			err = d.readRepeatedVarint64(wireType, &m.Int64Data)
		default:
			err = d.skipField(wireType)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) tensorProtos(m *TensorProtos) error {
	for d.pos < len(d.data) {
		fieldNum, wireType, err := d.readTag()
		if err != nil {
			return err
		}
		switch fieldNum {
		case 1: // protos
			var t TensorProto
			if err = d.readMessage(wireType, func(sub *decoder) error { return sub.tensorProto(&t) }); err == nil {
				m.Protos = append(m.Protos, t)
			}
		default:
			err = d.skipField(wireType)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) blobProto(m *BlobProto) error {
	for d.pos < len(d.data) {
		fieldNum, wireType, err := d.readTag()
		if err != nil {
			return err
		}
		switch fieldNum {
		case 1: // num
			m.Num, err = d.readInt32(wireType)
		case 2: // channels
			m.Channels, err = d.readInt32(wireType)
		case 3: // height
			m.Height, err = d.readInt32(wireType)
		case 4: // width
			m.Width, err = d.readInt32(wireType)
		case 5: // data (packed)
			err = d.readRepeatedFloat32(wireType, &m.Data)
		default:
			err = d.skipField(wireType)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// readTag reads a protobuf field tag.
func (d *decoder) readTag() (fieldNum, wireType int, err error) {
	tag, err := d.readVarint()
	if err != nil {
		return 0, 0, err
	}
	fieldNum = int(tag >> 3)
	wireType = int(tag & 0x7)
	if fieldNum == 0 {
		return 0, 0, fmt.Errorf("invalid field number 0")
	}
	return fieldNum, wireType, nil
}

// readVarint reads a varint-encoded uint64.
func (d *decoder) readVarint() (uint64, error) {
	var result uint64
	var shift uint
	for {
		if d.pos >= len(d.data) {
			return 0, io.ErrUnexpectedEOF
		}
		b := d.data[d.pos]
		d.pos++
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
		if shift >= 64 {
			return 0, ErrVarintOverflow
		}
	}
	return result, nil
}

// readVarint64 reads a varint field, requiring the varint wire type.
func (d *decoder) readVarint64(wireType int) (int64, error) {
	if wireType != wireVarint {
		return 0, fmt.Errorf("unexpected wire type %d for varint field", wireType)
	}
	v, err := d.readVarint()
	return int64(v), err //nolint:gosec // G115: two's-complement reinterpretation is the wire encoding.
}

// readInt32 reads a varint field as int32.
func (d *decoder) readInt32(wireType int) (int32, error) {
	v, err := d.readVarint64(wireType)
	if err != nil {
		return 0, err
	}
	return int32(v), nil //nolint:gosec // G115: schema declares int32.
}

// readLengthDelimited reads a length-delimited payload.
func (d *decoder) readLengthDelimited() ([]byte, error) {
	length, err := d.readVarint()
	if err != nil {
		return nil, err
	}
	if length > uint64(len(d.data)-d.pos) {
		return nil, io.ErrUnexpectedEOF
	}
	result := d.data[d.pos : d.pos+int(length)]
	d.pos += int(length)
	return result, nil
}

// readBytesField reads a bytes field, copying out of the input buffer.
func (d *decoder) readBytesField(wireType int) ([]byte, error) {
	if wireType != wireBytes {
		return nil, fmt.Errorf("unexpected wire type %d for bytes field", wireType)
	}
	data, err := d.readLengthDelimited()
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), data...), nil
}

// readString reads a string field.
func (d *decoder) readString(wireType int) (string, error) {
	if wireType != wireBytes {
		return "", fmt.Errorf("unexpected wire type %d for string field", wireType)
	}
	data, err := d.readLengthDelimited()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// readMessage reads an embedded message field via the given sub-parse.
func (d *decoder) readMessage(wireType int, parse func(*decoder) error) error {
	if wireType != wireBytes {
		return fmt.Errorf("unexpected wire type %d for message field", wireType)
	}
	data, err := d.readLengthDelimited()
	if err != nil {
		return err
	}
	return parse(&decoder{data: data})
}

// readFloat32 reads a float field.
func (d *decoder) readFloat32(wireType int) (float32, error) {
	if wireType != wire32Bit {
		return 0, fmt.Errorf("unexpected wire type %d for float field", wireType)
	}
	if d.pos+4 > len(d.data) {
		return 0, io.ErrUnexpectedEOF
	}
	bits := binary.LittleEndian.Uint32(d.data[d.pos:])
	d.pos += 4
	return math.Float32frombits(bits), nil
}

// readFloat64 reads a double field.
func (d *decoder) readFloat64(wireType int) (float64, error) {
	if wireType != wire64Bit {
		return 0, fmt.Errorf("unexpected wire type %d for double field", wireType)
	}
	if d.pos+8 > len(d.data) {
		return 0, io.ErrUnexpectedEOF
	}
	bits := binary.LittleEndian.Uint64(d.data[d.pos:])
	d.pos += 8
	return math.Float64frombits(bits), nil
}

// readRepeatedFloat32 reads one element or a packed run of a repeated
// float field. Both encodings are accepted regardless of how the schema
// annotates the field.
func (d *decoder) readRepeatedFloat32(wireType int, out *[]float32) error {
	if wireType == wireBytes {
		data, err := d.readLengthDelimited()
		if err != nil {
			return err
		}
		if len(data)%4 != 0 {
			return fmt.Errorf("packed float run of %d bytes", len(data))
		}
		for i := 0; i+4 <= len(data); i += 4 {
			*out = append(*out, math.Float32frombits(binary.LittleEndian.Uint32(data[i:])))
		}
		return nil
	}
	v, err := d.readFloat32(wireType)
	if err != nil {
		return err
	}
	*out = append(*out, v)
	return nil
}

// readRepeatedFloat64 reads one element or a packed run of a repeated
// double field.
func (d *decoder) readRepeatedFloat64(wireType int, out *[]float64) error {
	if wireType == wireBytes {
		data, err := d.readLengthDelimited()
		if err != nil {
			return err
		}
		if len(data)%8 != 0 {
			return fmt.Errorf("packed double run of %d bytes", len(data))
		}
		for i := 0; i+8 <= len(data); i += 8 {
			*out = append(*out, math.Float64frombits(binary.LittleEndian.Uint64(data[i:])))
		}
		return nil
	}
	v, err := d.readFloat64(wireType)
	if err != nil {
		return err
	}
	*out = append(*out, v)
	return nil
}

// readRepeatedVarint64 reads one element or a packed run of a repeated
// int64 field.
func (d *decoder) readRepeatedVarint64(wireType int, out *[]int64) error {
	if wireType == wireBytes {
		data, err := d.readLengthDelimited()
		if err != nil {
			return err
		}
		sub := &decoder{data: data}
		for sub.pos < len(sub.data) {
			v, err := sub.readVarint()
			if err != nil {
				return err
			}
			*out = append(*out, int64(v)) //nolint:gosec // G115: wire encoding.
		}
		return nil
	}
	v, err := d.readVarint64(wireType)
	if err != nil {
		return err
	}
	*out = append(*out, v)
	return nil
}

// readRepeatedVarint32 reads one element or a packed run of a repeated
// int32 field.
func (d *decoder) readRepeatedVarint32(wireType int, out *[]int32) error {
	var wide []int64
	if err := d.readRepeatedVarint64(wireType, &wide); err != nil {
		return err
	}
	for _, v := range wide {
		*out = append(*out, int32(v)) //nolint:gosec // G115: schema declares int32.
	}
	return nil
}

// skipField skips an unknown field based on wire type.
func (d *decoder) skipField(wireType int) error {
	switch wireType {
	case wireVarint:
		_, err := d.readVarint()
		return err
	case wire64Bit:
		if d.pos+8 > len(d.data) {
			return io.ErrUnexpectedEOF
		}
		d.pos += 8
		return nil
	case wireBytes:
		_, err := d.readLengthDelimited()
		return err
	case wire32Bit:
		if d.pos+4 > len(d.data) {
			return io.ErrUnexpectedEOF
		}
		d.pos += 4
		return nil
	default:
		return fmt.Errorf("unknown wire type: %d", wireType)
	}
}
