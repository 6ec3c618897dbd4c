package secs2

import (
	"github.com/golang-collections/collections/set"
)

// Dynamic is a polymorphic Item holder bound to a set of allowed formats.
// On Set it selects the first allowed type, in declaration order, that
// admits the value; on
// Decode it accepts any format present in the allowed set (an empty
// allowed set means "accept any format"). Implements Item.
type Dynamic struct {
	order   []Format // allowed formats, in declaration/probe order
	allowed *set.Set // same formats, for O(1) membership tests
	current Item     // currently-resolved concrete variable, nil until set
}

// NewDynamic creates a Dynamic variable restricted to the given formats,
// probed in the order given. No arguments means any format is accepted.
func NewDynamic(formats ...Format) *Dynamic {
	allowed := set.New()
	for _, f := range formats {
		allowed.Insert(f)
	}
	return &Dynamic{order: formats, allowed: allowed}
}

func (d *Dynamic) formatAllowed(f Format) bool {
	if len(d.order) == 0 {
		return true
	}
	return d.allowed.Has(f)
}

// Format implements Item. It panics if no value has been set yet; callers
// should check Resolved() first when the format is not already known.
func (d *Dynamic) Format() Format {
	if d.current == nil {
		panic("secs2: Dynamic.Format() called before any value was set")
	}
	return d.current.Format()
}

// Resolved reports whether this Dynamic has an instantiated concrete item.
func (d *Dynamic) Resolved() bool { return d.current != nil }

// Current returns the currently-resolved concrete Item, or nil.
func (d *Dynamic) Current() Item { return d.current }

// Size implements Item.
func (d *Dynamic) Size() int {
	if d.current == nil {
		return 0
	}
	return d.current.Size()
}

// Get implements Item.
func (d *Dynamic) Get() interface{} {
	if d.current == nil {
		return nil
	}
	return d.current.Get()
}

// SupportsValue implements Item.
func (d *Dynamic) SupportsValue(value interface{}) bool {
	if item, ok := value.(Item); ok {
		return d.formatAllowed(item.Format())
	}
	_, ok := d.probe(value)
	return ok
}

// probe tries each allowed format in declaration order and returns the
// first whose SupportsValue(value) accepts it. With no declared formats,
// every concrete format is tried in a fixed canonical order.
func (d *Dynamic) probe(value interface{}) (Item, bool) {
	candidates := d.order
	if len(candidates) == 0 {
		candidates = allFormats
	}
	for _, f := range candidates {
		item, err := NewByFormat(f)
		if err != nil {
			continue
		}
		if item.SupportsValue(value) {
			return item, true
		}
	}
	return nil, false
}

// Set implements Item. If value is already a concrete Item whose format
// is allowed, it is adopted directly; otherwise each allowed type is
// probed in declaration order and the first acceptor is instantiated and
// assigned.
func (d *Dynamic) Set(value interface{}) error {
	if item, ok := value.(Item); ok {
		if !d.formatAllowed(item.Format()) {
			return &ErrTypeMismatch{Type: "dynamic", Value: value}
		}
		d.current = item
		return nil
	}

	item, ok := d.probe(value)
	if !ok {
		return &ErrTypeMismatch{Type: "dynamic", Value: value}
	}
	if err := item.Set(value); err != nil {
		return err
	}
	d.current = item
	return nil
}

// Encode implements Item.
func (d *Dynamic) Encode() []byte {
	if d.current == nil {
		return nil
	}
	return d.current.Encode()
}

// Decode implements Item. It peeks the format code without consuming
// input; if the format is empty-allowed-set-or-member, the matching
// concrete type is instantiated and decoding is delegated to it.
func (d *Dynamic) Decode(data []byte, start int) (int, error) {
	_, format, _, err := decodeHeader(data, start)
	if err != nil {
		return 0, err
	}
	if !d.formatAllowed(format) {
		return 0, &ErrTypeMismatch{Type: "dynamic", Value: format}
	}

	item, err := NewByFormat(format)
	if err != nil {
		return 0, err
	}
	next, err := item.Decode(data, start)
	if err != nil {
		return 0, err
	}
	d.current = item
	return next, nil
}

// Equal implements Item.
func (d *Dynamic) Equal(other Item) bool {
	o, ok := other.(*Dynamic)
	if ok {
		if d.current == nil || o.current == nil {
			return d.current == o.current
		}
		return d.current.Equal(o.current)
	}
	if d.current == nil {
		return false
	}
	return d.current.Equal(other)
}

// String implements Item.
func (d *Dynamic) String() string {
	if d.current == nil {
		return "<dynamic unset>"
	}
	return d.current.String()
}

// allFormats lists every concrete format in a fixed probing order, used
// when a Dynamic declares no allowed-format restriction.
var allFormats = []Format{
	FormatBoolean,
	FormatI1, FormatI2, FormatI4, FormatI8,
	FormatU1, FormatU2, FormatU4, FormatU8,
	FormatF4, FormatF8,
	FormatASCII,
	FormatJIS8,
	FormatBinary,
	FormatList,
}
