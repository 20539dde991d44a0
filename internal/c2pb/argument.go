package c2pb

import "reflect"

// BuildArgument encodes a native Go value into a fresh Argument based on
// its runtime type. The rules, tried in order:
//
//  1. float scalar            -> F
//  2. integer or bool scalar  -> I (bool widened to 0/1)
//  3. string or []byte        -> S
//  4. Message                 -> S (binary serialization)
//  5. homogeneous sequence    -> Floats / Ints / Strings, same rules per element
//
// Typed slices are homogeneous by construction; a []any is inspected
// element by element in the same rule order. A mixed or unsupported value
// yields an *UnsupportedTypeError. An empty sequence satisfies the float
// rule vacuously and produces an Argument with only the name set.
func BuildArgument(name string, value any) (*Argument, error) {
	arg := &Argument{Name: name}
	switch v := value.(type) {
	case float32:
		arg.F = v
	case float64:
		arg.F = float32(v)
	case bool:
		if v {
			arg.I = 1
		}
	case int:
		arg.I = int64(v)
	case int8:
		arg.I = int64(v)
	case int16:
		arg.I = int64(v)
	case int32:
		arg.I = int64(v)
	case int64:
		arg.I = v
	case uint:
		arg.I = int64(v) //nolint:gosec // G115: values beyond int64 are caller misuse.
	case uint8:
		arg.I = int64(v)
	case uint16:
		arg.I = int64(v)
	case uint32:
		arg.I = int64(v)
	case uint64:
		arg.I = int64(v) //nolint:gosec // G115: values beyond int64 are caller misuse.
	case string:
		arg.S = []byte(v)
	case []byte:
		arg.S = append([]byte(nil), v...)
	case Message:
		b, err := v.Marshal()
		if err != nil {
			return nil, err
		}
		arg.S = b
	case []float32:
		arg.Floats = append(arg.Floats, v...)
	case []float64:
		for _, f := range v {
			arg.Floats = append(arg.Floats, float32(f))
		}
	case []bool:
		for _, b := range v {
			arg.Ints = append(arg.Ints, boolToInt(b))
		}
	case []int:
		for _, i := range v {
			arg.Ints = append(arg.Ints, int64(i))
		}
	case []int32:
		for _, i := range v {
			arg.Ints = append(arg.Ints, int64(i))
		}
	case []int64:
		arg.Ints = append(arg.Ints, v...)
	case []string:
		for _, s := range v {
			arg.Strings = append(arg.Strings, []byte(s))
		}
	case [][]byte:
		for _, b := range v {
			arg.Strings = append(arg.Strings, append([]byte(nil), b...))
		}
	case []Message:
		for _, m := range v {
			b, err := m.Marshal()
			if err != nil {
				return nil, err
			}
			arg.Strings = append(arg.Strings, b)
		}
	case []any:
		if err := buildFromMixedSlice(arg, name, value, v); err != nil {
			return nil, err
		}
	default:
		// Typed slices not listed above (e.g. a slice of a concrete
		// message type) go through element-wise classification.
		rv := reflect.ValueOf(value)
		if !rv.IsValid() || rv.Kind() != reflect.Slice {
			return nil, &UnsupportedTypeError{Key: name, Value: value}
		}
		elems := make([]any, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i).Interface()
		}
		if err := buildFromMixedSlice(arg, name, value, elems); err != nil {
			return nil, err
		}
	}
	return arg, nil
}

// buildFromMixedSlice classifies a []any element by element, in the same
// rule order as the scalar cases. All elements must take the same rule.
func buildFromMixedSlice(arg *Argument, name string, whole any, vs []any) error {
	switch {
	case allOf(vs, isFloat):
		for _, v := range vs {
			arg.Floats = append(arg.Floats, asFloat32(v))
		}
	case allOf(vs, isInt):
		for _, v := range vs {
			arg.Ints = append(arg.Ints, asInt64(v))
		}
	case allOf(vs, isByteString):
		for _, v := range vs {
			arg.Strings = append(arg.Strings, asBytes(v))
		}
	case allOf(vs, isMessage):
		for _, v := range vs {
			b, err := v.(Message).Marshal()
			if err != nil {
				return err
			}
			arg.Strings = append(arg.Strings, b)
		}
	default:
		return &UnsupportedTypeError{Key: name, Value: whole}
	}
	return nil
}

func allOf(vs []any, pred func(any) bool) bool {
	for _, v := range vs {
		if !pred(v) {
			return false
		}
	}
	return true
}

func isFloat(v any) bool {
	switch v.(type) {
	case float32, float64:
		return true
	}
	return false
}

func isInt(v any) bool {
	switch v.(type) {
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func isByteString(v any) bool {
	switch v.(type) {
	case string, []byte:
		return true
	}
	return false
}

func isMessage(v any) bool {
	_, ok := v.(Message)
	return ok
}

func asFloat32(v any) float32 {
	switch f := v.(type) {
	case float32:
		return f
	case float64:
		return float32(f)
	}
	return 0
}

//nolint:gocyclo,cyclop // Flat widening switch over the integer kinds.
func asInt64(v any) int64 {
	switch i := v.(type) {
	case bool:
		return boolToInt(i)
	case int:
		return int64(i)
	case int8:
		return int64(i)
	case int16:
		return int64(i)
	case int32:
		return int64(i)
	case int64:
		return i
	case uint:
		return int64(i) //nolint:gosec // G115: values beyond int64 are caller misuse.
	case uint8:
		return int64(i)
	case uint16:
		return int64(i)
	case uint32:
		return int64(i)
	case uint64:
		return int64(i) //nolint:gosec // G115: values beyond int64 are caller misuse.
	}
	return 0
}

func asBytes(v any) []byte {
	switch s := v.(type) {
	case string:
		return []byte(s)
	case []byte:
		return append([]byte(nil), s...)
	}
	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
