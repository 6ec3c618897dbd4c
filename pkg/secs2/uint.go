package secs2

import (
	"fmt"
	"strconv"
	"strings"
)

// Uint is a mutable SECS-II unsigned integer variable (U1, U2, U4, or U8).
// Implements Item.
type Uint struct {
	byteSize int      // 1, 2, 4, or 8
	values   []uint64 // current elements, big-endian on the wire
	count    int      // fixed element count, -1 means unconstrained

	// Rep invariants
	// - byteSize is one of 1, 2, 4, 8
	// - every values[i] fits in byteSize bytes unsigned
	// - count == -1, or len(values) <= count
}

func newUintItem(byteSize int) *Uint {
	switch byteSize {
	case 1, 2, 4, 8:
	default:
		panic(fmt.Sprintf("secs2: invalid uint byte size %d", byteSize))
	}
	return &Uint{byteSize: byteSize, count: -1}
}

// NewU1, NewU2, NewU4, NewU8 create unsigned integer variables of the
// given width with no fixed element count.
func NewU1() *Uint { return newUintItem(1) }
func NewU2() *Uint { return newUintItem(2) }
func NewU4() *Uint { return newUintItem(4) }
func NewU8() *Uint { return newUintItem(8) }

func (n *Uint) formatFor() Format {
	switch n.byteSize {
	case 1:
		return FormatU1
	case 2:
		return FormatU2
	case 4:
		return FormatU4
	default:
		return FormatU8
	}
}

// SetCount fixes the maximum element count; Set then rejects assignments
// longer than count with ErrTooLong. Pass -1 to remove the constraint.
func (n *Uint) SetCount(count int) { n.count = count }

func (n *Uint) max() uint64 {
	if n.byteSize == 8 {
		return ^uint64(0)
	}
	return 1<<(n.byteSize*8) - 1
}

// Format implements Item.
func (n *Uint) Format() Format { return n.formatFor() }

// Size implements Item.
func (n *Uint) Size() int { return len(n.values) }

// Get implements Item. A single-element vector collapses to its scalar.
func (n *Uint) Get() interface{} {
	if len(n.values) == 1 {
		return n.values[0]
	}
	out := make([]uint64, len(n.values))
	copy(out, n.values)
	return out
}

// SupportsValue implements Item.
func (n *Uint) SupportsValue(value interface{}) bool {
	elems, _ := asSlice(value)
	if n.count != -1 && len(elems) > n.count {
		return false
	}
	max := n.max()
	for _, e := range elems {
		v, ok := scalarToUint64(e)
		if !ok || v > max {
			return false
		}
	}
	return true
}

// Set implements Item.
func (n *Uint) Set(value interface{}) error {
	elems, _ := asSlice(value)
	if n.count != -1 && len(elems) > n.count {
		return &ErrTooLong{Type: n.formatFor().String(), Count: n.count, Supplied: len(elems)}
	}

	max := n.max()
	converted := make([]uint64, len(elems))
	for i, e := range elems {
		v, ok := scalarToUint64(e)
		if !ok {
			if s, signed := scalarToInt64(e); signed && s < 0 {
				return &ErrOutOfRange{Type: n.formatFor().String(), Value: s}
			}
			return &ErrTypeMismatch{Type: n.formatFor().String(), Value: e}
		}
		if v > max {
			return &ErrOutOfRange{Type: n.formatFor().String(), Value: v}
		}
		converted[i] = v
	}
	n.values = converted
	return nil
}

// Encode implements Item.
func (n *Uint) Encode() []byte {
	header, err := encodeHeader(n.formatFor(), n.byteSize*len(n.values))
	if err != nil {
		return nil
	}
	result := header
	for _, v := range n.values {
		for i := n.byteSize - 1; i >= 0; i-- {
			result = append(result, byte(v>>(i*8)))
		}
	}
	return result
}

// Decode implements Item.
func (n *Uint) Decode(data []byte, start int) (int, error) {
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
	values := make([]uint64, count)
	for i := 0; i < count; i++ {
		var bits uint64
		for j := 0; j < n.byteSize; j++ {
			bits = bits<<8 | uint64(data[pos+i*n.byteSize+j])
		}
		values[i] = bits
	}
	n.values = values
	return pos + length, nil
}

// Equal implements Item.
func (n *Uint) Equal(other Item) bool {
	o, ok := other.(*Uint)
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
func (n *Uint) String() string {
	if len(n.values) == 0 {
		return fmt.Sprintf("<%s[0]>", n.formatFor())
	}
	parts := make([]string, len(n.values))
	for i, v := range n.values {
		parts[i] = strconv.FormatUint(v, 10)
	}
	return fmt.Sprintf("<%s[%d] %s>", n.formatFor(), len(n.values), strings.Join(parts, " "))
}
