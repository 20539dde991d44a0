package c2pb

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// The text format is the protobuf text syntax: `field: value` scalars,
// `field { ... }` sub-messages (colon optional, angle brackets accepted),
// `[v, v]` repeated shorthand, '#' comments, quoted strings with C-style
// escapes and adjacent-literal concatenation. Unknown field names are a
// parse error, which is what lets speculative decoding tell schemas apart.

// fieldSink receives one parsed field occurrence. Repeated fields arrive
// as one call per element.
type fieldSink func(name string, v *textValue) error

// UnmarshalText decodes text-format data into the NetDef.
func (m *NetDef) UnmarshalText(data []byte) error {
	return parseText(data, m.textSink())
}

// UnmarshalText decodes text-format data into the OperatorDef.
func (m *OperatorDef) UnmarshalText(data []byte) error {
	return parseText(data, m.textSink())
}

// UnmarshalText decodes text-format data into the Argument.
func (m *Argument) UnmarshalText(data []byte) error {
	return parseText(data, m.textSink())
}

// UnmarshalText decodes text-format data into the DeviceOption.
func (m *DeviceOption) UnmarshalText(data []byte) error {
	return parseText(data, m.textSink())
}

// UnmarshalText decodes text-format data into the TensorProto.
func (m *TensorProto) UnmarshalText(data []byte) error {
	return parseText(data, m.textSink())
}

// UnmarshalText decodes text-format data into the TensorProtos.
func (m *TensorProtos) UnmarshalText(data []byte) error {
	return parseText(data, m.textSink())
}

// UnmarshalText decodes text-format data into the BlobProto.
func (m *BlobProto) UnmarshalText(data []byte) error {
	return parseText(data, m.textSink())
}

func parseText(data []byte, sink fieldSink) error {
	d := &textDecoder{data: data, line: 1}
	return d.message(sink, 0)
}

func (m *NetDef) textSink() fieldSink {
	return func(name string, v *textValue) error {
		var err error
		switch name {
		case "name":
			m.Name, err = v.str()
		case "op":
			var op OperatorDef
			if err = v.message(op.textSink()); err == nil {
				m.Ops = append(m.Ops, op)
			}
		case "type":
			m.Type, err = v.str()
		case "num_workers":
			m.NumWorkers, err = v.int32()
		case "device_option":
			m.DeviceOption = &DeviceOption{}
			err = v.message(m.DeviceOption.textSink())
		case "arg":
			var arg Argument
			if err = v.message(arg.textSink()); err == nil {
				m.Args = append(m.Args, arg)
			}
		case "external_input":
			var s string
			if s, err = v.str(); err == nil {
				m.ExternalInputs = append(m.ExternalInputs, s)
			}
		case "external_output":
			var s string
			if s, err = v.str(); err == nil {
				m.ExternalOutputs = append(m.ExternalOutputs, s)
			}
		default:
			err = fmt.Errorf("unknown field %q in NetDef", name)
		}
		return err
	}
}

func (m *OperatorDef) textSink() fieldSink {
	return func(name string, v *textValue) error {
		var err error
		switch name {
		case "input":
			var s string
			if s, err = v.str(); err == nil {
				m.Inputs = append(m.Inputs, s)
			}
		case "output":
			var s string
			if s, err = v.str(); err == nil {
				m.Outputs = append(m.Outputs, s)
			}
		case "name":
			m.Name, err = v.str()
		case "type":
			m.Type, err = v.str()
		case "arg":
			var arg Argument
			if err = v.message(arg.textSink()); err == nil {
				m.Args = append(m.Args, arg)
			}
		case "device_option":
			m.DeviceOption = &DeviceOption{}
			err = v.message(m.DeviceOption.textSink())
		case "engine":
			m.Engine, err = v.str()
		case "control_input":
			var s string
			if s, err = v.str(); err == nil {
				m.ControlInputs = append(m.ControlInputs, s)
			}
		default:
			err = fmt.Errorf("unknown field %q in OperatorDef", name)
		}
		return err
	}
}

func (m *Argument) textSink() fieldSink {
	return func(name string, v *textValue) error {
		var err error
		switch name {
		case "name":
			m.Name, err = v.str()
		case "f":
			m.F, err = v.float32()
		case "i":
			m.I, err = v.int64()
		case "s":
			m.S, err = v.bytesValue()
		case "floats":
			var f float32
			if f, err = v.float32(); err == nil {
				m.Floats = append(m.Floats, f)
			}
		case "ints":
			var i int64
			if i, err = v.int64(); err == nil {
				m.Ints = append(m.Ints, i)
			}
		case "strings":
			var b []byte
			if b, err = v.bytesValue(); err == nil {
				m.Strings = append(m.Strings, b)
			}
		default:
			err = fmt.Errorf("unknown field %q in Argument", name)
		}
		return err
	}
}

func (m *DeviceOption) textSink() fieldSink {
	return func(name string, v *textValue) error {
		var err error
		switch name {
		case "device_type":
			m.DeviceType, err = v.int32()
		case "device_id":
			m.DeviceID, err = v.int32()
		case "random_seed":
			m.RandomSeed, err = v.uint32()
		case "node_name":
			m.NodeName, err = v.str()
		default:
			err = fmt.Errorf("unknown field %q in DeviceOption", name)
		}
		return err
	}
}

func (m *TensorProto) textSink() fieldSink {
	return func(name string, v *textValue) error {
		var err error
		switch name {
		case "dims":
			var i int64
			if i, err = v.int64(); err == nil {
				m.Dims = append(m.Dims, i)
			}
		case "data_type":
			m.DataType, err = v.enum(dataTypeValues)
		case "float_data":
			var f float32
			if f, err = v.float32(); err == nil {
				m.FloatData = append(m.FloatData, f)
			}
		case "int32_data":
			var i int32
			if i, err = v.int32(); err == nil {
				m.Int32Data = append(m.Int32Data, i)
			}
		case "byte_data":
			m.ByteData, err = v.bytesValue()
		case "string_data":
			var b []byte
			if b, err = v.bytesValue(); err == nil {
				m.StringData = append(m.StringData, b)
			}
		case "name":
			m.Name, err = v.str()
		case "device_detail":
			m.DeviceDetail = &DeviceOption{}
			err = v.message(m.DeviceDetail.textSink())
		case "double_data":
			var f float64
			if f, err = v.float64(); err == nil {
				m.DoubleData = append(m.DoubleData, f)
			}
		case "int64_data":
			var i int64
			if i, err = v.int64(); err == nil {
				m.Int64Data = append(m.Int64Data, i)
			}
		default:
			err = fmt.Errorf("unknown field %q in TensorProto", name)
		}
		return err
	}
}

func (m *TensorProtos) textSink() fieldSink {
	return func(name string, v *textValue) error {
		if name != "protos" {
			return fmt.Errorf("unknown field %q in TensorProtos", name)
		}
		var t TensorProto
		if err := v.message(t.textSink()); err != nil {
			return err
		}
		m.Protos = append(m.Protos, t)
		return nil
	}
}

func (m *BlobProto) textSink() fieldSink {
	return func(name string, v *textValue) error {
		var err error
		switch name {
		case "num":
			m.Num, err = v.int32()
		case "channels":
			m.Channels, err = v.int32()
		case "height":
			m.Height, err = v.int32()
		case "width":
			m.Width, err = v.int32()
		case "data":
			var f float32
			if f, err = v.float32(); err == nil {
				m.Data = append(m.Data, f)
			}
		default:
			err = fmt.Errorf("unknown field %q in BlobProto", name)
		}
		return err
	}
}

// Value kinds produced by the lexer.
const (
	tvString = iota // quoted literal, decoded into bytes
	tvNumber        // numeric token, including inf/nan spellings with a sign
	tvIdent         // bare identifier (enum value)
	tvMessage       // brace- or angle-delimited sub-message
)

// textValue is one field value as it appears in the input. Message values
// are consumed lazily: the sink must call message exactly once, which
// parses the body in place.
type textValue struct {
	d        *textDecoder
	kind     int
	text     string // tvNumber / tvIdent token text
	data     []byte // tvString decoded bytes
	term     byte   // tvMessage closing delimiter
	consumed bool
}

func (v *textValue) mismatch(want string) error {
	switch v.kind {
	case tvString:
		return fmt.Errorf("line %d: expected %s, got string %q", v.d.line, want, v.data)
	case tvMessage:
		return fmt.Errorf("line %d: expected %s, got message", v.d.line, want)
	default:
		return fmt.Errorf("line %d: expected %s, got %q", v.d.line, want, v.text)
	}
}

func (v *textValue) message(sink fieldSink) error {
	if v.kind != tvMessage {
		return v.mismatch("message")
	}
	v.consumed = true
	return v.d.message(sink, v.term)
}

func (v *textValue) str() (string, error) {
	b, err := v.bytesValue()
	return string(b), err
}

func (v *textValue) bytesValue() ([]byte, error) {
	if v.kind != tvString {
		return nil, v.mismatch("string")
	}
	return v.data, nil
}

func (v *textValue) float32() (float32, error) {
	f, err := v.parseFloat(32)
	return float32(f), err
}

func (v *textValue) float64() (float64, error) {
	return v.parseFloat(64)
}

func (v *textValue) parseFloat(bits int) (float64, error) {
	if v.kind != tvNumber && v.kind != tvIdent {
		return 0, v.mismatch("number")
	}
	f, err := strconv.ParseFloat(v.text, bits)
	if err != nil {
		// "1.5f" carries the C float suffix; "inf" must not be trimmed.
		s := strings.TrimSuffix(strings.TrimSuffix(v.text, "f"), "F")
		if f, err = strconv.ParseFloat(s, bits); err != nil {
			return 0, v.mismatch("number")
		}
	}
	return f, nil
}

func (v *textValue) int64() (int64, error) {
	if v.kind != tvNumber {
		return 0, v.mismatch("integer")
	}
	i, err := strconv.ParseInt(v.text, 0, 64)
	if err != nil {
		return 0, v.mismatch("integer")
	}
	return i, nil
}

func (v *textValue) int32() (int32, error) {
	if v.kind != tvNumber {
		return 0, v.mismatch("integer")
	}
	i, err := strconv.ParseInt(v.text, 0, 32)
	if err != nil {
		return 0, v.mismatch("integer")
	}
	return int32(i), nil
}

func (v *textValue) uint32() (uint32, error) {
	if v.kind != tvNumber {
		return 0, v.mismatch("integer")
	}
	u, err := strconv.ParseUint(v.text, 0, 32)
	if err != nil {
		return 0, v.mismatch("integer")
	}
	return uint32(u), nil
}

// enum accepts the value by name or by number.
func (v *textValue) enum(values map[string]int32) (int32, error) {
	switch v.kind {
	case tvIdent:
		if n, ok := values[v.text]; ok {
			return n, nil
		}
		return 0, fmt.Errorf("line %d: unknown enum value %q", v.d.line, v.text)
	case tvNumber:
		return v.int32()
	default:
		return 0, v.mismatch("enum value")
	}
}

// textDecoder is the text-format lexer and field-structure parser.
type textDecoder struct {
	data []byte
	pos  int
	line int
}

// message parses fields until the terminator (0 means end of input).
func (d *textDecoder) message(sink fieldSink, term byte) error {
	for {
		d.skipSpace()
		if d.pos >= len(d.data) {
			if term != 0 {
				return fmt.Errorf("line %d: unexpected end of input, expected %q", d.line, term)
			}
			return nil
		}
		if term != 0 && d.data[d.pos] == term {
			d.pos++
			return nil
		}
		if err := d.field(sink); err != nil {
			return err
		}
		// optional field separators
		d.skipSpace()
		if d.pos < len(d.data) && (d.data[d.pos] == ',' || d.data[d.pos] == ';') {
			d.pos++
		}
	}
}

func (d *textDecoder) field(sink fieldSink) error {
	name, err := d.readIdent()
	if err != nil {
		return err
	}
	d.skipSpace()
	if d.pos >= len(d.data) {
		return fmt.Errorf("line %d: unexpected end of input after field %q", d.line, name)
	}
	switch d.data[d.pos] {
	case ':':
		d.pos++
		d.skipSpace()
		if d.pos >= len(d.data) {
			return fmt.Errorf("line %d: missing value for field %q", d.line, name)
		}
		switch d.data[d.pos] {
		case '{', '<':
			return d.messageValue(name, sink)
		case '[':
			return d.listValue(name, sink)
		default:
			return d.scalarValue(name, sink)
		}
	case '{', '<':
		return d.messageValue(name, sink)
	default:
		return fmt.Errorf("line %d: expected ':' after field %q", d.line, name)
	}
}

func (d *textDecoder) messageValue(name string, sink fieldSink) error {
	term := byte('}')
	if d.data[d.pos] == '<' {
		term = '>'
	}
	d.pos++
	v := &textValue{d: d, kind: tvMessage, term: term}
	if err := sink(name, v); err != nil {
		return err
	}
	if !v.consumed {
		return fmt.Errorf("line %d: field %q does not take a message value", d.line, name)
	}
	return nil
}

func (d *textDecoder) listValue(name string, sink fieldSink) error {
	d.pos++ // consume '['
	d.skipSpace()
	if d.pos < len(d.data) && d.data[d.pos] == ']' {
		d.pos++
		return nil
	}
	for {
		d.skipSpace()
		if d.pos >= len(d.data) {
			return fmt.Errorf("line %d: unterminated list for field %q", d.line, name)
		}
		var err error
		if d.data[d.pos] == '{' || d.data[d.pos] == '<' {
			err = d.messageValue(name, sink)
		} else {
			err = d.scalarValue(name, sink)
		}
		if err != nil {
			return err
		}
		d.skipSpace()
		if d.pos >= len(d.data) {
			return fmt.Errorf("line %d: unterminated list for field %q", d.line, name)
		}
		switch d.data[d.pos] {
		case ',':
			d.pos++
		case ']':
			d.pos++
			return nil
		default:
			return fmt.Errorf("line %d: expected ',' or ']' in list for field %q", d.line, name)
		}
	}
}

func (d *textDecoder) scalarValue(name string, sink fieldSink) error {
	v, err := d.readScalar()
	if err != nil {
		return err
	}
	return sink(name, v)
}

func (d *textDecoder) readScalar() (*textValue, error) {
	c := d.data[d.pos]
	switch {
	case c == '"' || c == '\'':
		b, err := d.readStringLiteral()
		if err != nil {
			return nil, err
		}
		return &textValue{d: d, kind: tvString, data: b}, nil
	case isIdentStart(c):
		ident, err := d.readIdent()
		if err != nil {
			return nil, err
		}
		return &textValue{d: d, kind: tvIdent, text: ident}, nil
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return &textValue{d: d, kind: tvNumber, text: d.readNumberToken()}, nil
	default:
		return nil, fmt.Errorf("line %d: unexpected character %q", d.line, c)
	}
}

// readStringLiteral reads one or more adjacent quoted literals and
// concatenates them.
func (d *textDecoder) readStringLiteral() ([]byte, error) {
	var out []byte
	for {
		quote := d.data[d.pos]
		d.pos++
		for {
			if d.pos >= len(d.data) {
				return nil, fmt.Errorf("line %d: unterminated string", d.line)
			}
			c := d.data[d.pos]
			if c == quote {
				d.pos++
				break
			}
			if c == '\n' {
				return nil, fmt.Errorf("line %d: newline in string", d.line)
			}
			if c == '\\' {
				b, err := d.readEscape()
				if err != nil {
					return nil, err
				}
				out = append(out, b...)
				continue
			}
			out = append(out, c)
			d.pos++
		}
		d.skipSpace()
		if d.pos >= len(d.data) || (d.data[d.pos] != '"' && d.data[d.pos] != '\'') {
			return out, nil
		}
	}
}

//nolint:gocyclo,cyclop // Escape handling is a flat case-per-escape switch.
func (d *textDecoder) readEscape() ([]byte, error) {
	d.pos++ // consume '\'
	if d.pos >= len(d.data) {
		return nil, fmt.Errorf("line %d: unterminated escape", d.line)
	}
	c := d.data[d.pos]
	d.pos++
	switch c {
	case 'a':
		return []byte{'\a'}, nil
	case 'b':
		return []byte{'\b'}, nil
	case 'f':
		return []byte{'\f'}, nil
	case 'n':
		return []byte{'\n'}, nil
	case 'r':
		return []byte{'\r'}, nil
	case 't':
		return []byte{'\t'}, nil
	case 'v':
		return []byte{'\v'}, nil
	case '\\', '\'', '"', '?':
		return []byte{c}, nil
	case 'x', 'X':
		return d.readHexEscape(2)
	case 'u':
		return d.readUnicodeEscape(4)
	case 'U':
		return d.readUnicodeEscape(8)
	default:
		if c >= '0' && c <= '7' {
			d.pos--
			return d.readOctalEscape()
		}
		return nil, fmt.Errorf("line %d: invalid escape \\%c", d.line, c)
	}
}

func (d *textDecoder) readHexEscape(maxDigits int) ([]byte, error) {
	var v int
	n := 0
	for n < maxDigits && d.pos < len(d.data) {
		h := hexDigit(d.data[d.pos])
		if h < 0 {
			break
		}
		v = v<<4 | h
		d.pos++
		n++
	}
	if n == 0 {
		return nil, fmt.Errorf("line %d: invalid hex escape", d.line)
	}
	return []byte{byte(v)}, nil
}

func (d *textDecoder) readOctalEscape() ([]byte, error) {
	var v int
	n := 0
	for n < 3 && d.pos < len(d.data) && d.data[d.pos] >= '0' && d.data[d.pos] <= '7' {
		v = v<<3 | int(d.data[d.pos]-'0')
		d.pos++
		n++
	}
	return []byte{byte(v)}, nil
}

func (d *textDecoder) readUnicodeEscape(digits int) ([]byte, error) {
	var v rune
	for i := 0; i < digits; i++ {
		if d.pos >= len(d.data) {
			return nil, fmt.Errorf("line %d: invalid unicode escape", d.line)
		}
		h := hexDigit(d.data[d.pos])
		if h < 0 {
			return nil, fmt.Errorf("line %d: invalid unicode escape", d.line)
		}
		v = v<<4 | rune(h)
		d.pos++
	}
	return utf8.AppendRune(nil, v), nil
}

func hexDigit(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}

func (d *textDecoder) readIdent() (string, error) {
	if d.pos >= len(d.data) || !isIdentStart(d.data[d.pos]) {
		return "", fmt.Errorf("line %d: expected identifier", d.line)
	}
	start := d.pos
	for d.pos < len(d.data) && isIdentChar(d.data[d.pos]) {
		d.pos++
	}
	return string(d.data[start:d.pos]), nil
}

// readNumberToken reads a numeric token greedily; validation happens in
// the typed accessors. The charset covers exponents, hex prefixes, the
// trailing float suffix, and signed inf spellings.
func (d *textDecoder) readNumberToken() string {
	start := d.pos
	for d.pos < len(d.data) && isNumberChar(d.data[d.pos]) {
		d.pos++
	}
	return string(d.data[start:d.pos])
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isNumberChar(c byte) bool {
	return isIdentChar(c) || c == '.' || c == '+' || c == '-'
}

// skipSpace skips whitespace and '#' comments, tracking the line number.
func (d *textDecoder) skipSpace() {
	for d.pos < len(d.data) {
		switch d.data[d.pos] {
		case ' ', '\t', '\r':
			d.pos++
		case '\n':
			d.line++
			d.pos++
		case '#':
			for d.pos < len(d.data) && d.data[d.pos] != '\n' {
				d.pos++
			}
		default:
			return
		}
	}
}
