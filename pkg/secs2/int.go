package secs2

import (
	"fmt"
	"strconv"
	"strings"
)

// Int is a mutable SECS-II signed integer variable (I1, I2, I4, or I8).
// Implements Item.
type Int struct {
	byteSize int     // 1, 2, 4, or 8
	values   []int64 // current elements, big-endian two's complement on the wire
	count    int     // fixed element count, -1 means unconstrained

	// Rep invariants
	// - byteSize is one of 1, 2, 4, 8
	// - every values[i] fits in byteSize bytes of signed two's complement
	// - count == -1, or len(values) <= count
}

func newIntItem(byteSize int) *Int {
	switch byteSize {
	case 1, 2, 4, 8:
	default:
		panic(fmt.Sprintf("secs2: invalid int byte size %d", byteSize))
	}
	return &Int{byteSize: byteSize, count: -1}
}

// NewI1, NewI2, NewI4, NewI8 create signed integer variables of the given
// width with no fixed element count.
func NewI1() *Int { return newIntItem(1) }
func NewI2() *Int { return newIntItem(2) }
func NewI4() *Int { return newIntItem(4) }
func NewI8() *Int { return newIntItem(8) }

func (n *Int) formatFor() Format {
	switch n.byteSize {
	case 1:
		return FormatI1
	case 2:
		return FormatI2
	case 4:
		return FormatI4
	default:
		return FormatI8
	}
}

// SetCount fixes the maximum element count; Set then rejects assignments
// longer than count with ErrTooLong. Pass -1 to remove the constraint.
func (n *Int) SetCount(count int) { n.count = count }

func (n *Int) bounds() (min, max int64) {
	max = 1<<(n.byteSize*8-1) - 1
	min = -max - 1
	return
}

// Format implements Item.
func (n *Int) Format() Format { return n.formatFor() }

// Size implements Item.
func (n *Int) Size() int { return len(n.values) }

// Get implements Item. A single-element vector collapses to its scalar.
func (n *Int) Get() interface{} {
	if len(n.values) == 1 {
		return n.values[0]
	}
	out := make([]int64, len(n.values))
	copy(out, n.values)
	return out
}

// SupportsValue implements Item.
func (n *Int) SupportsValue(value interface{}) bool {
	elems, _ := asSlice(value)
	if n.count != -1 && len(elems) > n.count {
		return false
	}
	min, max := n.bounds()
	for _, e := range elems {
		v, ok := scalarToInt64(e)
		if !ok || v < min || v > max {
			return false
		}
	}
	return true
}

// Set implements Item.
func (n *Int) Set(value interface{}) error {
	elems, _ := asSlice(value)
	if n.count != -1 && len(elems) > n.count {
		return &ErrTooLong{Type: n.formatFor().String(), Count: n.count, Supplied: len(elems)}
	}

	min, max := n.bounds()
	converted := make([]int64, len(elems))
	for i, e := range elems {
		v, ok := scalarToInt64(e)
		if !ok {
			return &ErrTypeMismatch{Type: n.formatFor().String(), Value: e}
		}
		if v < min || v > max {
			return &ErrOutOfRange{Type: n.formatFor().String(), Value: v}
		}
		converted[i] = v
	}
	n.values = converted
	return nil
}

// Encode implements Item.
func (n *Int) Encode() []byte {
	header, err := encodeHeader(n.formatFor(), n.byteSize*len(n.values))
	if err != nil {
		return nil
	}
	result := header
	for _, v := range n.values {
		bits := uint64(v)
		for i := n.byteSize - 1; i >= 0; i-- {
			result = append(result, byte(bits>>(i*8)))
		}
	}
	return result
}

// Decode implements Item.
func (n *Int) Decode(data []byte, start int) (int, error) {
	pos, format, length, err := decodeHeader(data, start)
	if err != nil {
		return 0, err
	}
	if format != n.formatFor() {
		return 0, &ErrTypeMismatch{Type: n.formatFor().String(), Value: format}
	}
	if length%n.byteSize != 0 {
		return 0, &ErrBadItemHeader{Reason: fmt.Sprintf("length %d not a multiple of element size %d", length, n.byteSize)}
	}
	if pos+length > len(data) {
		return 0, &ErrBadItemHeader{Reason: "buffer underrun reading payload"}
	}

	count := length / n.byteSize
	values := make([]int64, count)
	for i := 0; i < count; i++ {
		var bits uint64
		for j := 0; j < n.byteSize; j++ {
			bits = bits<<8 | uint64(data[pos+i*n.byteSize+j])
		}
		shift := uint(64 - n.byteSize*8)
		values[i] = int64(bits<<shift) >> shift
	}
	n.values = values
	return pos + length, nil
}

// Equal implements Item.
func (n *Int) Equal(other Item) bool {
	o, ok := other.(*Int)
	if !ok || o.byteSize != n.byteSize || len(o.values) != len(n.values) {
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
func (n *Int) String() string {
	if len(n.values) == 0 {
		return fmt.Sprintf("<%s[0]>", n.formatFor())
	}
	parts := make([]string, len(n.values))
	for i, v := range n.values {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return fmt.Sprintf("<%s[%d] %s>", n.formatFor(), len(n.values), strings.Join(parts, " "))
}
