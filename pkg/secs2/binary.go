package secs2

import "fmt"

// Binary is a mutable SECS-II BINARY variable: raw bytes. Implements Item.
//
// Set accepts an int in 0..255, a []byte, a []int (each element 0..255),
// or an ASCII-encodable string, mirroring the coercion rules of the
// original secsgem Binary variable.
type Binary struct {
	values []byte
	count  int // fixed element count, -1 means unconstrained
}

// NewBinary creates an empty Binary variable with no fixed element count.
func NewBinary() *Binary {
	return &Binary{count: -1}
}

// SetCount fixes the maximum element count; Set then rejects assignments
// longer than count with ErrTooLong. Pass -1 to remove the constraint.
func (n *Binary) SetCount(count int) { n.count = count }

// Format implements Item.
func (n *Binary) Format() Format { return FormatBinary }

// Size implements Item.
func (n *Binary) Size() int { return len(n.values) }

// Get implements Item. A single-element vector collapses to its scalar
// byte value; otherwise the raw byte slice is returned.
func (n *Binary) Get() interface{} {
	if len(n.values) == 1 {
		return n.values[0]
	}
	out := make([]byte, len(n.values))
	copy(out, n.values)
	return out
}

// coerce converts value to bytes, distinguishing a recognized-but-out-of-
// range element (ErrOutOfRange) from a value no rule accepts at all
// (ErrTypeMismatch), mirroring original secsgem's ValueError/TypeError split.
func (n *Binary) coerce(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		for _, ch := range v {
			if ch > 0x7F {
				return nil, &ErrTypeMismatch{Type: "BINARY", Value: value}
			}
		}
		return []byte(v), nil
	case int:
		if v < 0 || v > 255 {
			return nil, &ErrOutOfRange{Type: "BINARY", Value: v}
		}
		return []byte{byte(v)}, nil
	case byte:
		return []byte{v}, nil
	case []int:
		out := make([]byte, len(v))
		for i, e := range v {
			if e < 0 || e > 255 {
				return nil, &ErrOutOfRange{Type: "BINARY", Value: e}
			}
			out[i] = byte(e)
		}
		return out, nil
	default:
		return nil, &ErrTypeMismatch{Type: "BINARY", Value: value}
	}
}

// SupportsValue implements Item.
func (n *Binary) SupportsValue(value interface{}) bool {
	bytes, err := n.coerce(value)
	if err != nil {
		return false
	}
	return n.count == -1 || len(bytes) <= n.count
}

// Set implements Item.
func (n *Binary) Set(value interface{}) error {
	bytes, err := n.coerce(value)
	if err != nil {
		return err
	}
	if n.count != -1 && len(bytes) > n.count {
		return &ErrTooLong{Type: "BINARY", Count: n.count, Supplied: len(bytes)}
	}
	n.values = bytes
	return nil
}

// Encode implements Item.
func (n *Binary) Encode() []byte {
	header, err := encodeHeader(FormatBinary, len(n.values))
	if err != nil {
		return nil
	}
	return append(header, n.values...)
}

// Decode implements Item.
func (n *Binary) Decode(data []byte, start int) (int, error) {
	pos, format, length, err := decodeHeader(data, start)
	if err != nil {
		return 0, err
	}
	if format != FormatBinary {
		return 0, &ErrTypeMismatch{Type: "BINARY", Value: format}
	}
	if pos+length > len(data) {
		return 0, &ErrBadItemHeader{Reason: "buffer underrun reading payload"}
	}
	values := make([]byte, length)
	copy(values, data[pos:pos+length])
	n.values = values
	return pos + length, nil
}

// Equal implements Item.
func (n *Binary) Equal(other Item) bool {
	o, ok := other.(*Binary)
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
func (n *Binary) String() string {
	if len(n.values) == 0 {
		return "<B>"
	}
	result := "<B"
	for _, v := range n.values {
		result += fmt.Sprintf(" 0x%x", v)
	}
	return result + ">"
}
