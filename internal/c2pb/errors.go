package c2pb

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrDecode         = errors.New("cannot decode message")
	ErrNoMatch        = errors.New("no matching message class")
	ErrVarintOverflow = errors.New("varint overflow")
)

// UnsupportedTypeError reports a value whose runtime type matches none of
// the Argument encoding rules.
type UnsupportedTypeError struct {
	Key   string // Argument name
	Value any    // Offending value
}

// Error implements the error interface.
func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported argument type: key=%s value=%v, value type=%T", e.Key, e.Value, e.Value)
}
