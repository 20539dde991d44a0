package c2pb

import (
	"strconv"
)

// textWriter prints messages in protobuf text format, two-space indented,
// one field per line. Scalar zero values are omitted, mirroring the
// binary encoder.
type textWriter struct {
	buf    []byte
	indent int
}

// MarshalText encodes the NetDef in text format.
func (m *NetDef) MarshalText() ([]byte, error) {
	w := &textWriter{}
	w.netDef(m)
	return w.buf, nil
}

// MarshalText encodes the OperatorDef in text format.
func (m *OperatorDef) MarshalText() ([]byte, error) {
	w := &textWriter{}
	w.operatorDef(m)
	return w.buf, nil
}

// MarshalText encodes the Argument in text format.
func (m *Argument) MarshalText() ([]byte, error) {
	w := &textWriter{}
	w.argument(m)
	return w.buf, nil
}

// MarshalText encodes the DeviceOption in text format.
func (m *DeviceOption) MarshalText() ([]byte, error) {
	w := &textWriter{}
	w.deviceOption(m)
	return w.buf, nil
}

// MarshalText encodes the TensorProto in text format.
func (m *TensorProto) MarshalText() ([]byte, error) {
	w := &textWriter{}
	w.tensorProto(m)
	return w.buf, nil
}

// MarshalText encodes the TensorProtos in text format.
func (m *TensorProtos) MarshalText() ([]byte, error) {
	w := &textWriter{}
	for i := range m.Protos {
		w.block("protos", func() { w.tensorProto(&m.Protos[i]) })
	}
	return w.buf, nil
}

// MarshalText encodes the BlobProto in text format.
func (m *BlobProto) MarshalText() ([]byte, error) {
	w := &textWriter{}
	w.blobProto(m)
	return w.buf, nil
}

func (w *textWriter) netDef(m *NetDef) {
	w.stringField("name", m.Name)
	for i := range m.Ops {
		w.block("op", func() { w.operatorDef(&m.Ops[i]) })
	}
	w.stringField("type", m.Type)
	if m.NumWorkers != 0 {
		w.line("num_workers", strconv.FormatInt(int64(m.NumWorkers), 10))
	}
	if m.DeviceOption != nil {
		w.block("device_option", func() { w.deviceOption(m.DeviceOption) })
	}
	for i := range m.Args {
		w.block("arg", func() { w.argument(&m.Args[i]) })
	}
	for _, s := range m.ExternalInputs {
		w.bytesLine("external_input", []byte(s))
	}
	for _, s := range m.ExternalOutputs {
		w.bytesLine("external_output", []byte(s))
	}
}

func (w *textWriter) operatorDef(m *OperatorDef) {
	for _, s := range m.Inputs {
		w.bytesLine("input", []byte(s))
	}
	for _, s := range m.Outputs {
		w.bytesLine("output", []byte(s))
	}
	w.stringField("name", m.Name)
	w.stringField("type", m.Type)
	for i := range m.Args {
		w.block("arg", func() { w.argument(&m.Args[i]) })
	}
	if m.DeviceOption != nil {
		w.block("device_option", func() { w.deviceOption(m.DeviceOption) })
	}
	w.stringField("engine", m.Engine)
	for _, s := range m.ControlInputs {
		w.bytesLine("control_input", []byte(s))
	}
}

func (w *textWriter) argument(m *Argument) {
	w.stringField("name", m.Name)
	if m.F != 0 {
		w.line("f", formatFloat32(m.F))
	}
	if m.I != 0 {
		w.line("i", strconv.FormatInt(m.I, 10))
	}
	if len(m.S) > 0 {
		w.bytesLine("s", m.S)
	}
	for _, v := range m.Floats {
		w.line("floats", formatFloat32(v))
	}
	for _, v := range m.Ints {
		w.line("ints", strconv.FormatInt(v, 10))
	}
	for _, b := range m.Strings {
		w.bytesLine("strings", b)
	}
}

func (w *textWriter) deviceOption(m *DeviceOption) {
	if m.DeviceType != 0 {
		w.line("device_type", strconv.FormatInt(int64(m.DeviceType), 10))
	}
	if m.DeviceID != 0 {
		w.line("device_id", strconv.FormatInt(int64(m.DeviceID), 10))
	}
	if m.RandomSeed != 0 {
		w.line("random_seed", strconv.FormatUint(uint64(m.RandomSeed), 10))
	}
	w.stringField("node_name", m.NodeName)
}

func (w *textWriter) tensorProto(m *TensorProto) {
	for _, v := range m.Dims {
		w.line("dims", strconv.FormatInt(v, 10))
	}
	if m.DataType != 0 {
		w.line("data_type", DataTypeName(m.DataType))
	}
	for _, v := range m.FloatData {
		w.line("float_data", formatFloat32(v))
	}
	for _, v := range m.Int32Data {
		w.line("int32_data", strconv.FormatInt(int64(v), 10))
	}
	if len(m.ByteData) > 0 {
		w.bytesLine("byte_data", m.ByteData)
	}
	for _, b := range m.StringData {
		w.bytesLine("string_data", b)
	}
	w.stringField("name", m.Name)
	if m.DeviceDetail != nil {
		w.block("device_detail", func() { w.deviceOption(m.DeviceDetail) })
	}
	for _, v := range m.DoubleData {
		w.line("double_data", strconv.FormatFloat(v, 'g', -1, 64))
	}
	for _, v := range m.Int64Data {
		w.line("int64_data", strconv.FormatInt(v, 10))
	}
}

func (w *textWriter) blobProto(m *BlobProto) {
	if m.Num != 0 {
		w.line("num", strconv.FormatInt(int64(m.Num), 10))
	}
	if m.Channels != 0 {
		w.line("channels", strconv.FormatInt(int64(m.Channels), 10))
	}
	if m.Height != 0 {
		w.line("height", strconv.FormatInt(int64(m.Height), 10))
	}
	if m.Width != 0 {
		w.line("width", strconv.FormatInt(int64(m.Width), 10))
	}
	for _, v := range m.Data {
		w.line("data", formatFloat32(v))
	}
}

// line emits "name: value\n" at the current indent.
func (w *textWriter) line(name, value string) {
	w.pad()
	w.buf = append(w.buf, name...)
	w.buf = append(w.buf, ": "...)
	w.buf = append(w.buf, value...)
	w.buf = append(w.buf, '\n')
}

// stringField emits a quoted string field, omitting the empty string.
func (w *textWriter) stringField(name, s string) {
	if s == "" {
		return
	}
	w.bytesLine(name, []byte(s))
}

// bytesLine emits a quoted byte-string field.
func (w *textWriter) bytesLine(name string, b []byte) {
	w.pad()
	w.buf = append(w.buf, name...)
	w.buf = append(w.buf, ": "...)
	w.buf = appendQuoted(w.buf, b)
	w.buf = append(w.buf, '\n')
}

// block emits "name {\n ... \n}\n" with the body indented one level.
func (w *textWriter) block(name string, body func()) {
	w.pad()
	w.buf = append(w.buf, name...)
	w.buf = append(w.buf, " {\n"...)
	w.indent++
	body()
	w.indent--
	w.pad()
	w.buf = append(w.buf, "}\n"...)
}

func (w *textWriter) pad() {
	for i := 0; i < w.indent; i++ {
		w.buf = append(w.buf, "  "...)
	}
}

// appendQuoted writes a double-quoted literal. Non-printable bytes are
// escaped as three-digit octal, which the reader and the protobuf C++
// text printer both use.
func appendQuoted(buf, b []byte) []byte {
	buf = append(buf, '"')
	for _, c := range b {
		switch c {
		case '"':
			buf = append(buf, '\\', '"')
		case '\\':
			buf = append(buf, '\\', '\\')
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		default:
			if c >= 0x20 && c < 0x7f {
				buf = append(buf, c)
			} else {
				buf = append(buf, '\\', '0'+(c>>6)&7, '0'+(c>>3)&7, '0'+c&7)
			}
		}
	}
	return append(buf, '"')
}

// formatFloat32 prints the shortest decimal that round-trips a float32.
func formatFloat32(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}
