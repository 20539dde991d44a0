package c2pb

import "strconv"

// Caffe2 protobuf data structures (hand-written).

// Message is implemented by every Caffe2 message type in this package.
// Marshal/Unmarshal use the binary wire format, MarshalText/UnmarshalText
// the protobuf text format. Reset restores the zero value.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
	MarshalText() ([]byte, error)
	UnmarshalText(data []byte) error
	Reset()
}

// NetDef represents a network: a list of operators plus metadata.
type NetDef struct {
	Name            string        // Network name
	Ops             []OperatorDef // Operators, in execution order
	Type            string        // Executor type (e.g., "simple", "dag")
	NumWorkers      int32         // Worker count for parallel executors (legacy)
	DeviceOption    *DeviceOption // Default device for all operators
	Args            []Argument    // Network-level arguments
	ExternalInputs  []string      // Blobs the network reads
	ExternalOutputs []string      // Blobs the network produces
}

// OperatorDef represents a single operator in a network.
type OperatorDef struct {
	Inputs        []string      // Input blob names
	Outputs       []string      // Output blob names
	Name          string        // Operator name (optional)
	Type          string        // Operator type (e.g., "Conv", "FC", "Relu")
	Args          []Argument    // Operator arguments
	DeviceOption  *DeviceOption // Device placement
	Engine        string        // Engine override (e.g., "CUDNN")
	ControlInputs []string      // Scheduling-only dependencies
}

// Argument is a named tagged-union value. At most one payload slot is
// populated; which one depends on the value's type (see BuildArgument).
type Argument struct {
	Name    string    // Argument name
	F       float32   // Single float payload
	I       int64     // Single integer payload
	S       []byte    // Single byte-string payload
	Floats  []float32 // Repeated float payload
	Ints    []int64   // Repeated integer payload
	Strings [][]byte  // Repeated byte-string payload
}

// DeviceOption describes device placement for a network or operator.
type DeviceOption struct {
	DeviceType int32  // 0 = CPU, 1 = CUDA
	DeviceID   int32  // Device ordinal
	RandomSeed uint32 // Per-device RNG seed
	NodeName   string // Node name for distributed execution
}

// TensorProto represents a dense tensor. The payload lives in the slot
// matching DataType; FLOAT16 bit patterns and narrow integer types ride
// in Int32Data, widened per element.
type TensorProto struct {
	Dims         []int64       // Tensor shape
	DataType     int32         // Element data type (TensorProto* constants; 0 means FLOAT)
	FloatData    []float32     // FLOAT payload
	Int32Data    []int32       // INT32 and narrow-type payload
	ByteData     []byte        // UINT8/INT8 payload, one byte per element
	StringData   [][]byte      // STRING payload
	Name         string        // Tensor name
	DeviceDetail *DeviceOption // Device the tensor was serialized from
	DoubleData   []float64     // DOUBLE payload
	Int64Data    []int64       // INT64 payload
}

// TensorProtos is a list of tensors, used as an on-disk container.
type TensorProtos struct {
	Protos []TensorProto
}

// BlobProto is the legacy Caffe dense blob with a fixed 4-D shape.
type BlobProto struct {
	Num      int32     // Batch size
	Channels int32     // Channel count
	Height   int32     // Spatial height
	Width    int32     // Spatial width
	Data     []float32 // Dense payload, num*channels*height*width elements
}

// Caffe2 tensor element types (TensorProto.DataType). Value 11 is reserved
// in the schema and intentionally absent.
const (
	TensorProtoUndefined int32 = 0
	TensorProtoFloat     int32 = 1  // float32
	TensorProtoInt32     int32 = 2  // int32
	TensorProtoByte      int32 = 3  // deprecated byte blob
	TensorProtoString    int32 = 4  // byte strings
	TensorProtoBool      int32 = 5  // bool
	TensorProtoUint8     int32 = 6  // uint8
	TensorProtoInt8      int32 = 7  // int8
	TensorProtoUint16    int32 = 8  // uint16
	TensorProtoInt16     int32 = 9  // int16
	TensorProtoInt64     int32 = 10 // int64
	TensorProtoFloat16   int32 = 12 // float16 bit patterns in Int32Data
	TensorProtoDouble    int32 = 13 // float64
)

// dataTypeNames maps DataType values to their schema enum names, used by
// the text format.
var dataTypeNames = map[int32]string{
	TensorProtoUndefined: "UNDEFINED",
	TensorProtoFloat:     "FLOAT",
	TensorProtoInt32:     "INT32",
	TensorProtoByte:      "BYTE",
	TensorProtoString:    "STRING",
	TensorProtoBool:      "BOOL",
	TensorProtoUint8:     "UINT8",
	TensorProtoInt8:      "INT8",
	TensorProtoUint16:    "UINT16",
	TensorProtoInt16:     "INT16",
	TensorProtoInt64:     "INT64",
	TensorProtoFloat16:   "FLOAT16",
	TensorProtoDouble:    "DOUBLE",
}

var dataTypeValues = func() map[string]int32 {
	m := make(map[string]int32, len(dataTypeNames))
	for v, name := range dataTypeNames {
		m[name] = v
	}
	return m
}()

// DataTypeName returns the schema enum name for a DataType value, or the
// decimal representation for unknown values.
func DataTypeName(dt int32) string {
	if name, ok := dataTypeNames[dt]; ok {
		return name
	}
	return strconv.FormatInt(int64(dt), 10)
}

// Reset restores the zero value.
func (m *NetDef) Reset() { *m = NetDef{} }

// Reset restores the zero value.
func (m *OperatorDef) Reset() { *m = OperatorDef{} }

// Reset restores the zero value.
func (m *Argument) Reset() { *m = Argument{} }

// Reset restores the zero value.
func (m *DeviceOption) Reset() { *m = DeviceOption{} }

// Reset restores the zero value.
func (m *TensorProto) Reset() { *m = TensorProto{} }

// Reset restores the zero value.
func (m *TensorProtos) Reset() { *m = TensorProtos{} }

// Reset restores the zero value.
func (m *BlobProto) Reset() { *m = BlobProto{} }
