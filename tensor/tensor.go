// Copyright 2026 The Kaffe Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor is the public API for the numeric array type that
// Caffe2 tensor and blob messages convert to and from.
//
//	import (
//	    "github.com/kaffe-ml/kaffe/c2pb"
//	    "github.com/kaffe-ml/kaffe/tensor"
//	)
//
//	var proto c2pb.TensorProto
//	if err := proto.Unmarshal(data); err != nil {
//	    log.Fatal(err)
//	}
//	arr, err := tensor.FromTensorProto(&proto)
package tensor

import (
	internalc2pb "github.com/kaffe-ml/kaffe/internal/c2pb"
	internaltensor "github.com/kaffe-ml/kaffe/internal/tensor"
)

// Array is a dense n-dimensional array with a shape, an element type,
// and a contiguous buffer.
type Array = internaltensor.Array

// DataType represents runtime type information for arrays.
type DataType = internaltensor.DataType

// Supported data types.
const (
	Float32 = internaltensor.Float32
	Float64 = internaltensor.Float64
	Float16 = internaltensor.Float16
	Int32   = internaltensor.Int32
	Int64   = internaltensor.Int64
	Uint8   = internaltensor.Uint8
	Int8    = internaltensor.Int8
	Bool    = internaltensor.Bool
)

// Common errors.
var (
	ErrInvalidDims         = internaltensor.ErrInvalidDims
	ErrCountMismatch       = internaltensor.ErrCountMismatch
	ErrUnsupportedDataType = internaltensor.ErrUnsupportedDataType
)

// NewArray creates a zero-filled array with the given shape and type.
func NewArray(dims []int64, dtype DataType) (*Array, error) {
	return internaltensor.NewArray(dims, dtype)
}

// FromFloat32s creates a Float32 array over a copy of values.
func FromFloat32s(dims []int64, values []float32) (*Array, error) {
	return internaltensor.FromFloat32s(dims, values)
}

// FromBlobProto converts a legacy Caffe dense blob to a 4-D float array
// shaped [num, channels, height, width].
func FromBlobProto(blob *internalc2pb.BlobProto) (*Array, error) {
	return internaltensor.FromBlobProto(blob)
}

// FromTensorProto converts a Caffe2 tensor message to an array.
func FromTensorProto(t *internalc2pb.TensorProto) (*Array, error) {
	return internaltensor.FromTensorProto(t)
}

// ToTensorProto converts an array to a Caffe2 tensor message.
func ToTensorProto(a *Array, name string) (*internalc2pb.TensorProto, error) {
	return internaltensor.ToTensorProto(a, name)
}
