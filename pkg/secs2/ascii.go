package secs2

import (
	"fmt"
	"strings"
	"unicode"
)

// ASCIIString is a mutable SECS-II ASCII string variable. Implements Item.
//
// Set rejects any string containing a byte above 0x7F.
type ASCIIString struct {
	value string
	count int // fixed element (byte) count, -1 means unconstrained
}

// NewASCIIString creates an ASCIIString variable, initialized to value.
func NewASCIIString(value string) *ASCIIString {
	return &ASCIIString{value: value, count: -1}
}

// SetCount fixes the maximum string length; Set then rejects assignments
// longer than count with ErrTooLong. Pass -1 to remove the constraint.
func (n *ASCIIString) SetCount(count int) { n.count = count }

// Format implements Item.
func (n *ASCIIString) Format() Format { return FormatASCII }

// Size implements Item.
func (n *ASCIIString) Size() int { return len(n.value) }

// Get implements Item.
func (n *ASCIIString) Get() interface{} { return n.value }

func (n *ASCIIString) coerce(value interface{}) (string, bool) {
	s, ok := value.(string)
	if !ok {
		return "", false
	}
	for _, ch := range s {
		if ch > unicode.MaxASCII {
			return "", false
		}
	}
	return s, true
}

// SupportsValue implements Item.
func (n *ASCIIString) SupportsValue(value interface{}) bool {
	s, ok := n.coerce(value)
	if !ok {
		return false
	}
	return n.count == -1 || len(s) <= n.count
}

// Set implements Item.
func (n *ASCIIString) Set(value interface{}) error {
	s, ok := n.coerce(value)
	if !ok {
		return &ErrTypeMismatch{Type: "A", Value: value}
	}
	if n.count != -1 && len(s) > n.count {
		return &ErrTooLong{Type: "A", Count: n.count, Supplied: len(s)}
	}
	n.value = s
	return nil
}

// Encode implements Item.
func (n *ASCIIString) Encode() []byte {
	header, err := encodeHeader(FormatASCII, len(n.value))
	if err != nil {
		return nil
	}
	return append(header, []byte(n.value)...)
}

// Decode implements Item.
func (n *ASCIIString) Decode(data []byte, start int) (int, error) {
	pos, format, length, err := decodeHeader(data, start)
	if err != nil {
		return 0, err
	}
	if format != FormatASCII {
		return 0, &ErrTypeMismatch{Type: "A", Value: format}
	}
	if pos+length > len(data) {
		return 0, &ErrBadItemHeader{Reason: "buffer underrun reading payload"}
	}
	n.value = string(data[pos : pos+length])
	return pos + length, nil
}

// Equal implements Item.
func (n *ASCIIString) Equal(other Item) bool {
	o, ok := other.(*ASCIIString)
	return ok && o.value == n.value
}

// String implements Item.
func (n *ASCIIString) String() string {
	if n.value == "" {
		return "<A[0]>"
	}

	var sb strings.Builder
	printable := false
	for _, ch := range n.value {
		if ch < 32 || ch == 127 {
			if printable {
				printable = false
				sb.WriteString(`"`)
			}
			fmt.Fprintf(&sb, " 0x%02X", ch)
		} else {
			if !printable {
				printable = true
				sb.WriteString(` "`)
			}
			sb.WriteRune(ch)
		}
	}
	if printable {
		sb.WriteString(`"`)
	}
	return fmt.Sprintf("<A%s>", sb.String())
}
