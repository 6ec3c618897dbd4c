package secs2

import "fmt"

// NewByFormat returns a freshly zero-valued Item of the given format, e.g.
// for use as a decode target when the caller only knows the format code
// in advance (as the Dynamic type does while probing allowed formats).
func NewByFormat(format Format) (Item, error) {
	switch format {
	case FormatList:
		return NewList(), nil
	case FormatBinary:
		return NewBinary(), nil
	case FormatBoolean:
		return NewBoolean(), nil
	case FormatASCII:
		return NewASCIIString(""), nil
	case FormatJIS8:
		return NewJIS8String(""), nil
	case FormatI1:
		return newIntItem(1), nil
	case FormatI2:
		return newIntItem(2), nil
	case FormatI4:
		return newIntItem(4), nil
	case FormatI8:
		return newIntItem(8), nil
	case FormatU1:
		return newUintItem(1), nil
	case FormatU2:
		return newUintItem(2), nil
	case FormatU4:
		return newUintItem(4), nil
	case FormatU8:
		return newUintItem(8), nil
	case FormatF4:
		return newFloatItem(4), nil
	case FormatF8:
		return newFloatItem(8), nil
	default:
		return nil, &ErrBadItemHeader{Reason: fmt.Sprintf("unknown format code 0o%02o", byte(format))}
	}
}

// Decode parses exactly one SECS-II item, including nested LIST children,
// starting at data[start]. It returns the decoded item and the position
// just past it.
func Decode(data []byte, start int) (item Item, next int, err error) {
	pos, format, _, err := decodeHeader(data, start)
	if err != nil {
		return nil, 0, err
	}
	_ = pos

	item, err = NewByFormat(format)
	if err != nil {
		return nil, 0, err
	}

	next, err = item.Decode(data, start)
	if err != nil {
		return nil, 0, err
	}
	return item, next, nil
}

// Encode is a convenience wrapper equivalent to item.Encode().
func Encode(item Item) []byte {
	return item.Encode()
}
