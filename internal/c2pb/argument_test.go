package c2pb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArgumentScalars(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  Argument
	}{
		{"float64", 1.5, Argument{Name: "k", F: 1.5}},
		{"float32", float32(-0.25), Argument{Name: "k", F: -0.25}},
		{"int", 42, Argument{Name: "k", I: 42}},
		{"int64", int64(-7), Argument{Name: "k", I: -7}},
		{"uint16", uint16(9), Argument{Name: "k", I: 9}},
		{"bool_true", true, Argument{Name: "k", I: 1}},
		{"bool_false", false, Argument{Name: "k", I: 0}},
		{"string", "order", Argument{Name: "k", S: []byte("order")}},
		{"bytes", []byte{0x01, 0x02}, Argument{Name: "k", S: []byte{0x01, 0x02}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arg, err := BuildArgument("k", tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *arg)
		})
	}
}

func TestBuildArgumentMessage(t *testing.T) {
	inner := &DeviceOption{DeviceType: 1, NodeName: "worker0"}
	arg, err := BuildArgument("device", inner)
	require.NoError(t, err)

	// The payload is the message's binary serialization.
	var got DeviceOption
	require.NoError(t, got.Unmarshal(arg.S))
	assert.Equal(t, *inner, got)
	assert.Empty(t, arg.Floats)
	assert.Empty(t, arg.Ints)
	assert.Empty(t, arg.Strings)
}

func TestBuildArgumentSequences(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  Argument
	}{
		{"floats", []float64{1, 2.5}, Argument{Name: "k", Floats: []float32{1, 2.5}}},
		{"floats32", []float32{0.5}, Argument{Name: "k", Floats: []float32{0.5}}},
		{"ints", []int{3, 1}, Argument{Name: "k", Ints: []int64{3, 1}}},
		{"bools", []bool{true, false, true}, Argument{Name: "k", Ints: []int64{1, 0, 1}}},
		{"strings", []string{"b", "a"}, Argument{Name: "k", Strings: [][]byte{[]byte("b"), []byte("a")}}},
		{"any_floats", []any{1.0, 2.0}, Argument{Name: "k", Floats: []float32{1, 2}}},
		{"any_ints_bools", []any{1, true, int64(3)}, Argument{Name: "k", Ints: []int64{1, 1, 3}}},
		{"any_strings", []any{"x", []byte("y")}, Argument{Name: "k", Strings: [][]byte{[]byte("x"), []byte("y")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arg, err := BuildArgument("k", tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *arg)
		})
	}
}

func TestBuildArgumentOrderPreserved(t *testing.T) {
	seq := []float64{5, 4, 3, 2, 1}
	arg, err := BuildArgument("k", seq)
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 4, 3, 2, 1}, arg.Floats)
}

func TestBuildArgumentMessageSequence(t *testing.T) {
	msgs := []Message{
		&DeviceOption{DeviceType: 0},
		&DeviceOption{DeviceType: 1},
	}
	arg, err := BuildArgument("devices", msgs)
	require.NoError(t, err)
	require.Len(t, arg.Strings, 2)

	var second DeviceOption
	require.NoError(t, second.Unmarshal(arg.Strings[1]))
	assert.Equal(t, int32(1), second.DeviceType)
}

func TestBuildArgumentUnsupported(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"mixed_int_string", []any{1, "a"}},
		{"mixed_float_int", []any{1.5, 2}},
		{"nested_slice", []any{[]any{1.0}}},
		{"map", map[string]int{"a": 1}},
		{"nil", nil},
		{"struct", struct{ X int }{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildArgument("k", tt.value)
			require.Error(t, err)

			var unsupported *UnsupportedTypeError
			require.True(t, errors.As(err, &unsupported))
			assert.Equal(t, "k", unsupported.Key)
			assert.Contains(t, unsupported.Error(), "key=k")
		})
	}
}

func TestBuildArgumentEmptySequence(t *testing.T) {
	// An empty sequence vacuously satisfies the float rule: only the name
	// is set, and no error is raised.
	arg, err := BuildArgument("k", []any{})
	require.NoError(t, err)
	assert.Equal(t, Argument{Name: "k"}, *arg)
}

func TestBuildArgumentNoSideEffects(t *testing.T) {
	payload := []byte("mutable")
	arg, err := BuildArgument("k", payload)
	require.NoError(t, err)

	payload[0] = 'X'
	assert.Equal(t, []byte("mutable"), arg.S, "argument must not alias caller memory")
}
