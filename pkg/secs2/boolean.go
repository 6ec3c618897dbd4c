package secs2

import (
	"fmt"
	"strings"
)

// Boolean is a mutable SECS-II BOOLEAN variable: one byte per element,
// 0 = false, non-zero = true. Implements Item.
type Boolean struct {
	values []bool
	count  int // fixed element count, -1 means unconstrained
}

// NewBoolean creates an empty Boolean variable with no fixed element count.
func NewBoolean() *Boolean {
	return &Boolean{count: -1}
}

// SetCount fixes the maximum element count; Set then rejects assignments
// longer than count with ErrTooLong. Pass -1 to remove the constraint.
func (n *Boolean) SetCount(count int) { n.count = count }

// Format implements Item.
func (n *Boolean) Format() Format { return FormatBoolean }

// Size implements Item.
func (n *Boolean) Size() int { return len(n.values) }

// Get implements Item. A single-element vector collapses to its scalar.
func (n *Boolean) Get() interface{} {
	if len(n.values) == 1 {
		return n.values[0]
	}
	out := make([]bool, len(n.values))
	copy(out, n.values)
	return out
}

// scalarToBool accepts bool, integers 0/1, and a fixed truthy/falsy string
// set (case-insensitive): "true"/"yes" -> true, "false"/"no" -> false.
// Any other int or string is rejected.
func scalarToBool(value interface{}) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(v) {
		case "true", "yes":
			return true, true
		case "false", "no":
			return false, true
		default:
			return false, false
		}
	default:
		if n, ok := scalarToInt64(value); ok {
			switch n {
			case 0:
				return false, true
			case 1:
				return true, true
			default:
				return false, false
			}
		}
		return false, false
	}
}

// SupportsValue implements Item.
func (n *Boolean) SupportsValue(value interface{}) bool {
	elems, _ := asSlice(value)
	if n.count != -1 && len(elems) > n.count {
		return false
	}
	for _, e := range elems {
		if _, ok := scalarToBool(e); !ok {
			return false
		}
	}
	return true
}

// Set implements Item.
func (n *Boolean) Set(value interface{}) error {
	elems, _ := asSlice(value)
	if n.count != -1 && len(elems) > n.count {
		return &ErrTooLong{Type: "BOOLEAN", Count: n.count, Supplied: len(elems)}
	}

	converted := make([]bool, len(elems))
	for i, e := range elems {
		v, ok := scalarToBool(e)
		if !ok {
			return &ErrTypeMismatch{Type: "BOOLEAN", Value: e}
		}
		converted[i] = v
	}
	n.values = converted
	return nil
}

// Encode implements Item.
func (n *Boolean) Encode() []byte {
	header, err := encodeHeader(FormatBoolean, len(n.values))
	if err != nil {
		return nil
	}
	result := header
	for _, v := range n.values {
		if v {
			result = append(result, 1)
		} else {
			result = append(result, 0)
		}
	}
	return result
}

// Decode implements Item.
func (n *Boolean) Decode(data []byte, start int) (int, error) {
	pos, format, length, err := decodeHeader(data, start)
	if err != nil {
		return 0, err
	}
	if format != FormatBoolean {
		return 0, &ErrTypeMismatch{Type: "BOOLEAN", Value: format}
	}
	if pos+length > len(data) {
		return 0, &ErrBadItemHeader{Reason: "buffer underrun reading payload"}
	}

	values := make([]bool, length)
	for i, b := range data[pos : pos+length] {
		values[i] = b != 0
	}
	n.values = values
	return pos + length, nil
}

// Equal implements Item.
func (n *Boolean) Equal(other Item) bool {
	o, ok := other.(*Boolean)
	if !ok || len(o.values) != len(n.values) {
		return false
	}
	for i, v := range n.values {
		if o.values[i] != v {
			return false
		}
	}
	return true
}

// String implements Item.
func (n *Boolean) String() string {
	if len(n.values) == 0 {
		return "<BOOLEAN[0]>"
	}
	parts := make([]string, len(n.values))
	for i, v := range n.values {
		if v {
			parts[i] = "T"
		} else {
			parts[i] = "F"
		}
	}
	return fmt.Sprintf("<BOOLEAN[%d] %s>", len(n.values), strings.Join(parts, " "))
}
