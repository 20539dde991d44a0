package c2pb

import (
	"errors"
	"fmt"
)

// ParseWith decodes data against a single message class. The text format
// is tried first: text parsing of true binary data fails fast, while the
// reverse can mis-parse, so this order minimizes false positives. The
// message is reset between attempts so a failed text parse never leaks
// partial state. If both formats fail the error wraps ErrDecode.
func ParseWith(newMsg func() Message, data []byte) (Message, error) {
	msg := newMsg()
	textErr := msg.UnmarshalText(data)
	if textErr == nil {
		return msg, nil
	}
	msg.Reset()
	if binErr := msg.Unmarshal(data); binErr != nil {
		return nil, fmt.Errorf("%w: text format: %v; binary format: %v", ErrDecode, textErr, binErr)
	}
	return msg, nil
}

// Parse decodes data as a concrete message type, text format first.
//
//	net, err := c2pb.Parse[c2pb.NetDef](data)
func Parse[M any, PM interface {
	*M
	Message
}](data []byte) (*M, error) {
	msg, err := ParseWith(func() Message { return PM(new(M)) }, data)
	if err != nil {
		return nil, err
	}
	return (*M)(msg.(PM)), nil
}

// Candidate pairs a message-class constructor with the handler to invoke
// when data decodes under that class.
type Candidate[T any] struct {
	New    func() Message
	Handle func(Message) (T, error)
}

// DecodeAndDispatch tries each candidate in order against the data and
// invokes the first successfully-parsing candidate's handler, returning
// its result. Handler errors propagate as-is and stop the search. When no
// candidate parses, the error wraps ErrNoMatch.
//
// Parsing is speculative: two classes with overlapping text grammars can
// both accept the same input, so callers should order candidates from
// most to least specific.
func DecodeAndDispatch[T any](data []byte, candidates []Candidate[T]) (T, error) {
	var zero T
	for _, c := range candidates {
		msg, err := ParseWith(c.New, data)
		if err != nil {
			if errors.Is(err, ErrDecode) {
				continue
			}
			return zero, err
		}
		return c.Handle(msg)
	}
	return zero, fmt.Errorf("%w: tried %d candidate classes", ErrNoMatch, len(candidates))
}

// ExtractContent dispatches an already-decoded message by exact dynamic
// type: the first handler that accepts the message wins. A miss returns
// the zero value and false, never an error; this is deliberately distinct
// from the byte-string decode path, which fails loudly.
func ExtractContent[T any](msg Message, handlers []func(Message) (T, bool)) (T, bool) {
	for _, h := range handlers {
		if v, ok := h(msg); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// On builds an ExtractContent handler from a function over one concrete
// message type.
func On[M Message, T any](fn func(M) T) func(Message) (T, bool) {
	return func(msg Message) (T, bool) {
		m, ok := msg.(M)
		if !ok {
			var zero T
			return zero, false
		}
		return fn(m), true
	}
}
