// Package c2pb implements the Caffe2 model-description protobuf format.
//
// The package hand-writes both the message structures and their codecs,
// without generated code or external protobuf dependencies.
//
// Key components:
//   - NetDef: a network as a list of operators with named external inputs/outputs
//   - OperatorDef: a single operator with inputs, outputs, and arguments
//   - Argument: a named tagged-union value parametrizing an operator
//   - TensorProto: a dense tensor with shape and a per-dtype payload slot
//   - BlobProto: the legacy Caffe dense blob (num/channels/height/width)
//
// Every message supports two symmetric serializations:
//   - Binary protobuf wire format (Marshal / Unmarshal)
//   - Protobuf text format (MarshalText / UnmarshalText)
//
// On top of the codecs the package provides the dispatch helpers used by
// model tooling:
//   - BuildArgument encodes a native Go value into an Argument based on
//     its runtime type.
//   - ParseWith / DecodeAndDispatch speculatively decode an opaque byte
//     string against an ordered list of candidate message classes, trying
//     the text format before the binary format.
//   - ExtractContent dispatches an already-decoded message by its exact
//     dynamic type, returning absent (not an error) on no match.
//
// Example usage:
//
//	net, err := c2pb.Parse[c2pb.NetDef](data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, op := range net.Ops {
//	    fmt.Printf("op: %s (%s)\n", op.Name, op.Type)
//	}
package c2pb
