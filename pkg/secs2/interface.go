// Package secs2 implements the SECS-II (SEMI E5) self-describing binary
// item format: a 6-bit format code plus a variable-width length header,
// ~12 primitive scalar/vector types, and composite LIST items, together
// with typed variable containers that coerce host values on assignment.
package secs2

import "fmt"

// MaxPayloadLength is the largest payload a SECS-II item header can
// describe: three length bytes, 2^24 - 1.
const MaxPayloadLength = 1<<24 - 1

// Format identifies the wire format of a SECS-II item; the high 6 bits
// of the item header's first byte.
type Format byte

// Format codes, as laid out in SEMI E5. Octal matches the standard's own
// numbering so the header arithmetic reads the same way the standard
// documents it.
const (
	FormatList    Format = 0o00
	FormatBinary  Format = 0o10
	FormatBoolean Format = 0o11
	FormatASCII   Format = 0o20
	FormatJIS8    Format = 0o21
	FormatI8      Format = 0o30
	FormatI1      Format = 0o31
	FormatI2      Format = 0o32
	FormatI4      Format = 0o34
	FormatF8      Format = 0o40
	FormatF4      Format = 0o44
	FormatU8      Format = 0o50
	FormatU1      Format = 0o51
	FormatU2      Format = 0o52
	FormatU4      Format = 0o54
)

// textTags maps a format code to its SML text tag, e.g. "A" for ASCII.
var textTags = map[Format]string{
	FormatList:    "L",
	FormatBinary:  "B",
	FormatBoolean: "BOOLEAN",
	FormatASCII:   "A",
	FormatJIS8:    "J",
	FormatI8:      "I8",
	FormatI1:      "I1",
	FormatI2:      "I2",
	FormatI4:      "I4",
	FormatF8:      "F8",
	FormatF4:      "F4",
	FormatU8:      "U8",
	FormatU1:      "U1",
	FormatU2:      "U2",
	FormatU4:      "U4",
}

// elementSizes maps a non-LIST format code to the number of bytes one
// element occupies on the wire.
var elementSizes = map[Format]int{
	FormatBinary:  1,
	FormatBoolean: 1,
	FormatASCII:   1,
	FormatJIS8:    1,
	FormatI8:      8,
	FormatI1:      1,
	FormatI2:      2,
	FormatI4:      4,
	FormatF8:      8,
	FormatF4:      4,
	FormatU8:      8,
	FormatU1:      1,
	FormatU2:      2,
	FormatU4:      4,
}

// String returns the SML text tag for the format, e.g. "U4", "L".
func (f Format) String() string {
	if tag, ok := textTags[f]; ok {
		return tag
	}
	return fmt.Sprintf("UNKNOWN(0o%02o)", byte(f))
}

// elementSize returns the per-element byte width for a non-LIST format.
// It panics for FormatList and for unknown formats; callers must only
// invoke it for primitive formats they already validated.
func (f Format) elementSize() int {
	size, ok := elementSizes[f]
	if !ok {
		panic(fmt.Sprintf("secs2: no element size for format %v", f))
	}
	return size
}

// Item is a SECS-II typed variable: a self-describing value that can
// encode itself to wire bytes, decode itself from wire bytes, and accept
// new values through the coercion rules of its concrete type.
//
// Implementations are not safe for concurrent use without external
// synchronization: Set/Decode mutate the receiver in place, unlike the
// immutable ast.ItemNode this package replaces.
type Item interface {
	// Format returns the item's wire format code.
	Format() Format

	// Size returns the element count: children for List, otherwise the
	// vector length.
	Size() int

	// Get returns the current value. Vector types with exactly one
	// element return the bare scalar rather than a length-1 slice.
	Get() interface{}

	// Set coerces value into the item according to the type's coercion
	// rules and replaces the current contents. It returns ErrTypeMismatch,
	// ErrOutOfRange, or ErrTooLong on failure, leaving the item unchanged.
	Set(value interface{}) error

	// SupportsValue reports whether Set(value) would succeed, without
	// mutating the item.
	SupportsValue(value interface{}) bool

	// Encode returns the wire representation: header followed by payload.
	Encode() []byte

	// Decode parses an item starting at data[start], replacing the
	// item's contents, and returns the position just past the item.
	Decode(data []byte, start int) (next int, err error)

	// Equal reports value equality with another Item of the same format.
	Equal(other Item) bool

	// String returns a SML-like human readable representation.
	String() string
}

// encodeHeader returns the header bytes (format byte + length bytes) for
// an item of the given format whose length field (byte count for
// primitives, child count for LIST) is length.
func encodeHeader(format Format, length int) ([]byte, error) {
	if length < 0 || length > MaxPayloadLength {
		return nil, &ErrBadItemHeader{Reason: fmt.Sprintf("length %d out of range", length)}
	}

	lengthBytes := []byte{byte(length >> 16), byte(length >> 8), byte(length)}
	switch {
	case lengthBytes[0] != 0:
		// keep all three bytes
	case lengthBytes[1] != 0:
		lengthBytes = lengthBytes[1:]
	default:
		lengthBytes = lengthBytes[2:]
	}

	header := make([]byte, 0, 1+len(lengthBytes))
	header = append(header, byte(format)<<2|byte(len(lengthBytes)))
	header = append(header, lengthBytes...)
	return header, nil
}

// decodeHeader reads one item header starting at data[start] and returns
// the position just past the header, the format code, and the length
// field (byte count for primitives, child count for LIST).
func decodeHeader(data []byte, start int) (next int, format Format, length int, err error) {
	if start >= len(data) {
		return 0, 0, 0, &ErrBadItemHeader{Reason: "buffer underrun reading format byte"}
	}

	b := data[start]
	format = Format(b >> 2)
	lenBytes := int(b & 0b11)
	if lenBytes == 0 {
		return 0, 0, 0, &ErrBadItemHeader{Reason: "length byte count is zero"}
	}

	pos := start + 1
	if pos+lenBytes > len(data) {
		return 0, 0, 0, &ErrBadItemHeader{Reason: "buffer underrun reading length bytes"}
	}

	length = 0
	for _, lb := range data[pos : pos+lenBytes] {
		length = length<<8 | int(lb)
	}
	pos += lenBytes

	return pos, format, length, nil
}
