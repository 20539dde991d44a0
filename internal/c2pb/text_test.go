package c2pb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const predictNetText = `
# A minimal two-operator predict net.
name: "lenet_predict"
type: "simple"
op {
  input: "data"
  input: "conv1_w"
  output: "conv1"
  type: "Conv"
  arg {
    name: "kernel"
    i: 5
  }
  arg {
    name: "pads"
    ints: [2, 2, 2, 2]
  }
  engine: "CUDNN"
}
op {
  input: "conv1"
  output: "pool1"
  type: "MaxPool"
  arg { name: "stride" i: 2 }
}
external_input: "data"
external_input: "conv1_w"
external_output: "pool1"
`

func TestUnmarshalTextNetDef(t *testing.T) {
	var net NetDef
	require.NoError(t, net.UnmarshalText([]byte(predictNetText)))

	assert.Equal(t, "lenet_predict", net.Name)
	assert.Equal(t, "simple", net.Type)
	require.Len(t, net.Ops, 2)

	conv := net.Ops[0]
	assert.Equal(t, "Conv", conv.Type)
	assert.Equal(t, []string{"data", "conv1_w"}, conv.Inputs)
	assert.Equal(t, "CUDNN", conv.Engine)
	require.Len(t, conv.Args, 2)
	assert.Equal(t, int64(5), conv.Args[0].I)
	assert.Equal(t, []int64{2, 2, 2, 2}, conv.Args[1].Ints)

	pool := net.Ops[1]
	assert.Equal(t, "MaxPool", pool.Type)
	require.Len(t, pool.Args, 1)
	assert.Equal(t, int64(2), pool.Args[0].I)

	assert.Equal(t, []string{"data", "conv1_w"}, net.ExternalInputs)
	assert.Equal(t, []string{"pool1"}, net.ExternalOutputs)
}

func TestUnmarshalTextTensorProto(t *testing.T) {
	text := `
dims: 2
dims: 2
data_type: FLOAT
float_data: 1.0
float_data: -0.5
float_data: 2.5e-3
float_data: 4
name: "w"
`
	var tensor TensorProto
	require.NoError(t, tensor.UnmarshalText([]byte(text)))
	assert.Equal(t, []int64{2, 2}, tensor.Dims)
	assert.Equal(t, TensorProtoFloat, tensor.DataType)
	assert.Equal(t, []float32{1.0, -0.5, 2.5e-3, 4}, tensor.FloatData)
	assert.Equal(t, "w", tensor.Name)
}

func TestUnmarshalTextEnumByNumber(t *testing.T) {
	var tensor TensorProto
	require.NoError(t, tensor.UnmarshalText([]byte(`data_type: 13`)))
	assert.Equal(t, TensorProtoDouble, tensor.DataType)
}

func TestUnmarshalTextStringEscapes(t *testing.T) {
	text := `s: "tab\there\nand \"quotes\" and \x41\102é"`
	var arg Argument
	require.NoError(t, arg.UnmarshalText([]byte(text)))
	assert.Equal(t, []byte("tab\there\nand \"quotes\" and ABé"), arg.S)
}

func TestUnmarshalTextAdjacentLiterals(t *testing.T) {
	var arg Argument
	require.NoError(t, arg.UnmarshalText([]byte(`s: "foo" 'bar'`)))
	assert.Equal(t, []byte("foobar"), arg.S)
}

func TestUnmarshalTextAngleBrackets(t *testing.T) {
	var net NetDef
	require.NoError(t, net.UnmarshalText([]byte(`op < type: "Relu" >`)))
	require.Len(t, net.Ops, 1)
	assert.Equal(t, "Relu", net.Ops[0].Type)
}

func TestUnmarshalTextUnknownField(t *testing.T) {
	var net NetDef
	err := net.UnmarshalText([]byte(`bogus: 1`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field")
}

func TestUnmarshalTextRejectsBinary(t *testing.T) {
	raw := buildReluNet()
	var net NetDef
	require.Error(t, net.UnmarshalText(raw))
}

func TestUnmarshalTextEmptyInput(t *testing.T) {
	// An empty document is a valid empty message.
	var net NetDef
	require.NoError(t, net.UnmarshalText(nil))
	assert.Equal(t, NetDef{}, net)
}

func TestTextRoundTrip(t *testing.T) {
	net := NetDef{
		Name: "round_trip",
		Ops: []OperatorDef{
			{
				Inputs:  []string{"x"},
				Outputs: []string{"y"},
				Type:    "LeakyRelu",
				Args: []Argument{
					{Name: "alpha", F: 0.01},
					{Name: "note", S: []byte("weird \x01 bytes \"here\"")},
					{Name: "shape", Ints: []int64{-1, 10}},
				},
			},
		},
		DeviceOption:    &DeviceOption{DeviceType: 1, RandomSeed: 42},
		ExternalInputs:  []string{"x"},
		ExternalOutputs: []string{"y"},
	}

	text, err := net.MarshalText()
	require.NoError(t, err)

	var got NetDef
	require.NoError(t, got.UnmarshalText(text))
	assert.Equal(t, net, got)
}

func TestTextRoundTripTensor(t *testing.T) {
	tensor := TensorProto{
		Dims:       []int64{3},
		DataType:   TensorProtoFloat16,
		Int32Data:  []int32{0x3c00, 0x4000, 0x4200},
		Name:       "halves",
		StringData: [][]byte{[]byte("a"), []byte("b")},
	}
	text, err := tensor.MarshalText()
	require.NoError(t, err)

	var got TensorProto
	require.NoError(t, got.UnmarshalText(text))
	assert.Equal(t, tensor, got)
}

func TestBinaryTextAgreement(t *testing.T) {
	// The same message must survive both serializations identically.
	arg := Argument{
		Name:    "mixed",
		Floats:  []float32{1.5, -2.25},
		Strings: [][]byte{[]byte("one"), []byte("two")},
	}

	raw, err := arg.Marshal()
	require.NoError(t, err)
	var fromBinary Argument
	require.NoError(t, fromBinary.Unmarshal(raw))

	text, err := arg.MarshalText()
	require.NoError(t, err)
	var fromText Argument
	require.NoError(t, fromText.UnmarshalText(text))

	assert.Equal(t, fromBinary, fromText)
}
