// Package objectmodel implements the dynamically-typed attribute bag
// that HSN2 objects are built from, plus the wire bridge to the binary
// protocol the object store and framework speak.
package objectmodel

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the type of value an Attribute carries. The numeric
// values match the wire schema's attribute type enumeration.
type Kind int32

const (
	KindEmpty Kind = iota
	KindBool
	KindInt
	KindFloat
	KindTime
	KindString
	KindBytes
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "EMPTY"
	case KindBool:
		return "BOOL"
	case KindInt:
		return "INT"
	case KindFloat:
		return "FLOAT"
	case KindTime:
		return "TIME"
	case KindString:
		return "STRING"
	case KindBytes:
		return "BYTES"
	case KindObject:
		return "OBJECT"
	default:
		return "UNKNOWN"
	}
}

// ErrBadValue is returned when a value cannot be coerced to the
// requested attribute kind.
var ErrBadValue = errors.New("objectmodel: incorrect attribute value")

// ErrUnknownAttribute is returned by operations on a name the object
// does not carry.
var ErrUnknownAttribute = errors.New("objectmodel: unknown attribute")

// BytesRef is the value carried by a BYTES attribute: a key into the
// Data Store, plus an optional store identifier when more than one
// Data Store instance is in play.
type BytesRef struct {
	Key   uint64
	Store *int32
}

// Attribute is one named, typed value on an Object.
type Attribute struct {
	Name  string
	Kind  Kind
	Value any // nil for Empty, bool, int64, float64, string, int64 (Time), BytesRef, or uint64 (Object id)
}

// ToBoolValue converts value to bool the way the object model always
// has: "true"/"1" (case-insensitive) are true, "false"/"0" are false,
// anything else is rejected.
func ToBoolValue(value any) (bool, error) {
	if b, ok := value.(bool); ok {
		return b, nil
	}
	s := strings.ToLower(fmt.Sprintf("%v", value))
	switch s {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrBadValue, s)
	}
}
