package secs2

import (
	"fmt"
	"strings"
)

// Array is a mutable SECS-II LIST variable whose children are all the
// same item class, e.g. a list of U4 readings. Implements Item.
//
// It encodes and decodes exactly like List (format code LIST, length
// field is child count), but Set coerces a plain slice of host values
// element-by-element through a single factory, and count optionally
// fixes the element count exactly.
type Array struct {
	newElement func() Item
	elements   []Item
	count      int // fixed element count, -1 means unconstrained
}

// NewArray creates an empty Array whose elements are produced by
// newElement, e.g. secs2.NewArray(secs2.NewU4).
func NewArray(newElement func() Item) *Array {
	return &Array{newElement: newElement, count: -1}
}

// SetCount fixes the exact element count. Assignments of any other
// length fail with ErrTooLong; a short one reports Supplied < Count.
// Pass -1 to remove the constraint.
func (a *Array) SetCount(count int) { a.count = count }

// Format implements Item.
func (a *Array) Format() Format { return FormatList }

// Size implements Item.
func (a *Array) Size() int { return len(a.elements) }

// Get implements Item. A single-element array collapses to that
// element's own Get() value.
func (a *Array) Get() interface{} {
	if len(a.elements) == 1 {
		return a.elements[0].Get()
	}
	out := make([]interface{}, len(a.elements))
	for i, e := range a.elements {
		out[i] = e.Get()
	}
	return out
}

// SupportsValue implements Item.
func (a *Array) SupportsValue(value interface{}) bool {
	elems, ok := asSlice(value)
	if !ok {
		return false
	}
	if a.count != -1 && len(elems) != a.count {
		return false
	}
	for _, e := range elems {
		probe := a.newElement()
		if !probe.SupportsValue(e) {
			return false
		}
	}
	return true
}

// Set implements Item. Every element is validated independently before
// any assignment is committed; a single bad element fails the whole
// call, per spec §4.2's vector-assignment rule.
func (a *Array) Set(value interface{}) error {
	elems, ok := asSlice(value)
	if !ok {
		return &ErrTypeMismatch{Type: "array", Value: value}
	}
	if a.count != -1 && len(elems) != a.count {
		return &ErrTooLong{Type: "array", Count: a.count, Supplied: len(elems)}
	}

	newElements := make([]Item, len(elems))
	var errs error
	for i, e := range elems {
		item := a.newElement()
		if err := item.Set(e); err != nil {
			errs = appendMultiError(errs, fmt.Errorf("element %d: %w", i, err))
			continue
		}
		newElements[i] = item
	}
	if errs != nil {
		return errs
	}

	a.elements = newElements
	return nil
}

// Encode implements Item.
func (a *Array) Encode() []byte {
	header, err := encodeHeader(FormatList, len(a.elements))
	if err != nil {
		return nil
	}
	result := header
	for _, e := range a.elements {
		result = append(result, e.Encode()...)
	}
	return result
}

// Decode implements Item.
func (a *Array) Decode(data []byte, start int) (int, error) {
	pos, format, length, err := decodeHeader(data, start)
	if err != nil {
		return 0, err
	}
	if format != FormatList {
		return 0, &ErrTypeMismatch{Type: "array", Value: format}
	}

	elements := make([]Item, length)
	for i := 0; i < length; i++ {
		item := a.newElement()
		next, err := item.Decode(data, pos)
		if err != nil {
			return 0, err
		}
		elements[i] = item
		pos = next
	}
	a.elements = elements
	return pos, nil
}

// Equal implements Item.
func (a *Array) Equal(other Item) bool {
	o, ok := other.(*Array)
	if !ok || len(o.elements) != len(a.elements) {
		return false
	}
	for i, e := range a.elements {
		if !e.Equal(o.elements[i]) {
			return false
		}
	}
	return true
}

// String implements Item.
func (a *Array) String() string {
	if len(a.elements) == 0 {
		return "<L[0]>"
	}
	parts := make([]string, len(a.elements))
	for i, e := range a.elements {
		parts[i] = e.String()
	}
	return fmt.Sprintf("<L[%d] %s>", len(a.elements), strings.Join(parts, " "))
}
