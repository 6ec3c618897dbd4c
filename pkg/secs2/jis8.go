package secs2

import "fmt"

// JIS8String is a mutable SECS-II JIS-8 string variable. Implements Item.
//
// JIS-8 (8-bit JIS X 0201) is a single-byte encoding that is a superset of
// ASCII plus half-width katakana in the 0xA1-0xDF range; unlike full
// Shift-JIS it never needs a second byte. Set therefore accepts any byte
// value 0x00-0xFF and stores the string as its raw byte sequence, which
// round-trips unchanged through Encode/Decode.
type JIS8String struct {
	value []byte
	count int // fixed element (byte) count, -1 means unconstrained
}

// NewJIS8String creates a JIS8String variable, initialized to value
// (interpreted as raw JIS-8 bytes).
func NewJIS8String(value string) *JIS8String {
	return &JIS8String{value: []byte(value), count: -1}
}

// SetCount fixes the maximum string length; Set then rejects assignments
// longer than count with ErrTooLong. Pass -1 to remove the constraint.
func (n *JIS8String) SetCount(count int) { n.count = count }

// Format implements Item.
func (n *JIS8String) Format() Format { return FormatJIS8 }

// Size implements Item.
func (n *JIS8String) Size() int { return len(n.value) }

// Get implements Item.
func (n *JIS8String) Get() interface{} { return string(n.value) }

func (n *JIS8String) coerce(value interface{}) ([]byte, bool) {
	switch v := value.(type) {
	case string:
		return []byte(v), true
	case []byte:
		return v, true
	default:
		return nil, false
	}
}

// SupportsValue implements Item.
func (n *JIS8String) SupportsValue(value interface{}) bool {
	bytes, ok := n.coerce(value)
	if !ok {
		return false
	}
	return n.count == -1 || len(bytes) <= n.count
}

// Set implements Item.
func (n *JIS8String) Set(value interface{}) error {
	bytes, ok := n.coerce(value)
	if !ok {
		return &ErrTypeMismatch{Type: "J", Value: value}
	}
	if n.count != -1 && len(bytes) > n.count {
		return &ErrTooLong{Type: "J", Count: n.count, Supplied: len(bytes)}
	}
	n.value = bytes
	return nil
}

// Encode implements Item.
func (n *JIS8String) Encode() []byte {
	header, err := encodeHeader(FormatJIS8, len(n.value))
	if err != nil {
		return nil
	}
	return append(header, n.value...)
}

// Decode implements Item.
func (n *JIS8String) Decode(data []byte, start int) (int, error) {
	pos, format, length, err := decodeHeader(data, start)
	if err != nil {
		return 0, err
	}
	if format != FormatJIS8 {
		return 0, &ErrTypeMismatch{Type: "J", Value: format}
	}
	if pos+length > len(data) {
		return 0, &ErrBadItemHeader{Reason: "buffer underrun reading payload"}
	}
	value := make([]byte, length)
	copy(value, data[pos:pos+length])
	n.value = value
	return pos + length, nil
}

// Equal implements Item.
func (n *JIS8String) Equal(other Item) bool {
	o, ok := other.(*JIS8String)
	if !ok || len(o.value) != len(n.value) {
		return false
	}
	for i, v := range n.value {
		if o.value[i] != v {
			return false
		}
	}
	return true
}

// String implements Item.
func (n *JIS8String) String() string {
	return fmt.Sprintf("<J %q>", string(n.value))
}
