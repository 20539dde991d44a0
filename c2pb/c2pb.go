// Copyright 2026 The Kaffe Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package c2pb is the public API for the Caffe2 model-description
// protobuf format: hand-written message types with symmetric binary and
// text codecs, plus the argument-construction and speculative-decoding
// helpers used by model tooling.
//
// # Basic Usage
//
//	import "github.com/kaffe-ml/kaffe/c2pb"
//
//	// Decode a serialized network, text or binary format.
//	net, err := c2pb.Parse[c2pb.NetDef](data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Build an operator argument from a native value.
//	arg, err := c2pb.BuildArgument("kernel", 5)
//
// # Speculative Decoding
//
// When the message class of a byte string is unknown, DecodeAndDispatch
// tries an ordered list of candidate classes and invokes the handler of
// the first one that parses. The text format is always attempted before
// the binary format, since text parsing of binary data fails fast while
// the reverse can mis-parse. Order candidates from most to least
// specific.
package c2pb

import (
	internalc2pb "github.com/kaffe-ml/kaffe/internal/c2pb"
)

// Message types.
type (
	// NetDef represents a network: a list of operators plus metadata.
	NetDef = internalc2pb.NetDef
	// OperatorDef represents a single operator in a network.
	OperatorDef = internalc2pb.OperatorDef
	// Argument is a named tagged-union value.
	Argument = internalc2pb.Argument
	// DeviceOption describes device placement.
	DeviceOption = internalc2pb.DeviceOption
	// TensorProto represents a dense tensor.
	TensorProto = internalc2pb.TensorProto
	// TensorProtos is a list of tensors.
	TensorProtos = internalc2pb.TensorProtos
	// BlobProto is the legacy Caffe dense blob.
	BlobProto = internalc2pb.BlobProto

	// Message is implemented by every message type in this package.
	Message = internalc2pb.Message
	// UnsupportedTypeError reports a value BuildArgument cannot encode.
	UnsupportedTypeError = internalc2pb.UnsupportedTypeError
)

// Tensor element types (TensorProto.DataType).
const (
	TensorProtoUndefined = internalc2pb.TensorProtoUndefined
	TensorProtoFloat     = internalc2pb.TensorProtoFloat
	TensorProtoInt32     = internalc2pb.TensorProtoInt32
	TensorProtoByte      = internalc2pb.TensorProtoByte
	TensorProtoString    = internalc2pb.TensorProtoString
	TensorProtoBool      = internalc2pb.TensorProtoBool
	TensorProtoUint8     = internalc2pb.TensorProtoUint8
	TensorProtoInt8      = internalc2pb.TensorProtoInt8
	TensorProtoUint16    = internalc2pb.TensorProtoUint16
	TensorProtoInt16     = internalc2pb.TensorProtoInt16
	TensorProtoInt64     = internalc2pb.TensorProtoInt64
	TensorProtoFloat16   = internalc2pb.TensorProtoFloat16
	TensorProtoDouble    = internalc2pb.TensorProtoDouble
)

// Common errors.
var (
	// ErrDecode reports that neither text nor binary parsing succeeded.
	ErrDecode = internalc2pb.ErrDecode
	// ErrNoMatch reports that every candidate class failed to parse.
	ErrNoMatch = internalc2pb.ErrNoMatch
)

// DataTypeName returns the schema enum name for a DataType value.
func DataTypeName(dt int32) string {
	return internalc2pb.DataTypeName(dt)
}

// BuildArgument encodes a native Go value into a fresh Argument based on
// its runtime type. See the internal documentation for the dispatch
// rules; unsupported or mixed-type values yield *UnsupportedTypeError.
func BuildArgument(name string, value any) (*Argument, error) {
	return internalc2pb.BuildArgument(name, value)
}

// ParseWith decodes data against a single message class, text format
// first, binary format second.
func ParseWith(newMsg func() Message, data []byte) (Message, error) {
	return internalc2pb.ParseWith(newMsg, data)
}

// Parse decodes data as a concrete message type, text format first.
//
//	net, err := c2pb.Parse[c2pb.NetDef](data)
func Parse[M any, PM interface {
	*M
	Message
}](data []byte) (*M, error) {
	return internalc2pb.Parse[M, PM](data)
}

// Candidate pairs a message-class constructor with the handler to invoke
// when data decodes under that class.
type Candidate[T any] struct {
	New    func() Message
	Handle func(Message) (T, error)
}

// DecodeAndDispatch tries each candidate in order and invokes the first
// successfully-parsing candidate's handler. When no candidate parses,
// the error wraps ErrNoMatch.
func DecodeAndDispatch[T any](data []byte, candidates []Candidate[T]) (T, error) {
	inner := make([]internalc2pb.Candidate[T], len(candidates))
	for i, c := range candidates {
		inner[i] = internalc2pb.Candidate[T]{New: c.New, Handle: c.Handle}
	}
	return internalc2pb.DecodeAndDispatch(data, inner)
}

// ExtractContent dispatches an already-decoded message by exact dynamic
// type. A miss returns the zero value and false, never an error.
func ExtractContent[T any](msg Message, handlers []func(Message) (T, bool)) (T, bool) {
	return internalc2pb.ExtractContent(msg, handlers)
}

// On builds an ExtractContent handler from a function over one concrete
// message type.
func On[M Message, T any](fn func(M) T) func(Message) (T, bool) {
	return internalc2pb.On[M, T](fn)
}
