package secs2

import (
	"fmt"
	"strings"
)

// List is a mutable SECS-II LIST variable: an ordered, possibly nested,
// sequence of child items. Implements Item.
//
// Unlike every other format, a LIST's length header field counts child
// items, not payload bytes.
type List struct {
	children []Item
	count    int // fixed child count, -1 means unconstrained
}

// NewList creates a List containing the given children, in order.
func NewList(children ...Item) *List {
	return &List{children: children, count: -1}
}

// SetCount fixes the maximum child count; Set then rejects assignments
// longer than count with ErrTooLong. Pass -1 to remove the constraint.
func (l *List) SetCount(count int) { l.count = count }

// Format implements Item.
func (l *List) Format() Format { return FormatList }

// Size implements Item. Size counts direct children only, not recursively.
func (l *List) Size() int { return len(l.children) }

// Children returns the list's direct child items, in order.
func (l *List) Children() []Item { return l.children }

// At returns the child item at position i.
func (l *List) At(i int) Item { return l.children[i] }

// Get implements Item, returning the child item slice.
func (l *List) Get() interface{} { return l.children }

// SupportsValue implements Item. It accepts a []Item of acceptable length.
func (l *List) SupportsValue(value interface{}) bool {
	children, ok := value.([]Item)
	if !ok {
		return false
	}
	return l.count == -1 || len(children) <= l.count
}

// Set implements Item. It replaces children in order; a sequence shorter
// than the current child count leaves the tail children untouched, per
// spec §4.2's List-assignment rule.
func (l *List) Set(value interface{}) error {
	children, ok := value.([]Item)
	if !ok {
		return &ErrTypeMismatch{Type: "L", Value: value}
	}
	if l.count != -1 && len(children) > l.count {
		return &ErrTooLong{Type: "L", Count: l.count, Supplied: len(children)}
	}

	if len(children) >= len(l.children) {
		l.children = children
		return nil
	}
	copy(l.children, children)
	return nil
}

// Encode implements Item.
func (l *List) Encode() []byte {
	header, err := encodeHeader(FormatList, len(l.children))
	if err != nil {
		return nil
	}
	result := header
	for _, child := range l.children {
		result = append(result, child.Encode()...)
	}
	return result
}

// Decode implements Item.
func (l *List) Decode(data []byte, start int) (int, error) {
	pos, format, length, err := decodeHeader(data, start)
	if err != nil {
		return 0, err
	}
	if format != FormatList {
		return 0, &ErrTypeMismatch{Type: "L", Value: format}
	}

	children := make([]Item, length)
	for i := 0; i < length; i++ {
		child, next, err := Decode(data, pos)
		if err != nil {
			return 0, err
		}
		children[i] = child
		pos = next
	}
	l.children = children
	return pos, nil
}

// Equal implements Item.
func (l *List) Equal(other Item) bool {
	o, ok := other.(*List)
	if !ok || len(o.children) != len(l.children) {
		return false
	}
	for i, c := range l.children {
		if !c.Equal(o.children[i]) {
			return false
		}
	}
	return true
}

// String implements Item.
func (l *List) String() string {
	return l.stringIndented(0)
}

func (l *List) stringIndented(level int) string {
	indent := strings.Repeat("  ", level)
	if len(l.children) == 0 {
		return fmt.Sprintf("%s<L[0]>", indent)
	}

	var sb strings.Builder
	for _, child := range l.children {
		if nested, ok := child.(*List); ok {
			fmt.Fprintln(&sb, nested.stringIndented(level+1))
		} else {
			fmt.Fprintf(&sb, "%s  %s\n", indent, child)
		}
	}
	return fmt.Sprintf("%s<L[%d]\n%s%s>", indent, len(l.children), sb.String(), indent)
}

// ListTemplate is a named, ordered schema used by stream/function
// definitions: each position has a name and a factory for the concrete
// Item type that position holds.
type ListTemplate struct {
	names   []string
	factory []func() Item
	index   map[string]int
}

// TemplateField names one position of a ListTemplate and the factory
// that creates its concrete Item type.
type TemplateField struct {
	Name string
	New  func() Item
}

// NewListTemplate builds a schema from an ordered list of fields.
func NewListTemplate(fields ...TemplateField) *ListTemplate {
	t := &ListTemplate{
		names:   make([]string, len(fields)),
		factory: make([]func() Item, len(fields)),
		index:   make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		t.names[i] = f.Name
		t.factory[i] = f.New
		t.index[f.Name] = i
	}
	return t
}

// New instantiates a NamedList bound to this template, with every
// position populated by its factory's zero value.
func (t *ListTemplate) New() *NamedList {
	children := make([]Item, len(t.factory))
	for i, newItem := range t.factory {
		children[i] = newItem()
	}
	return &NamedList{template: t, list: &List{children: children, count: -1}}
}

// NamedList is a List whose positions are addressable by template name in
// addition to index, and whose Set enforces each position's type
// constraint from the template. Implements Item.
type NamedList struct {
	template *ListTemplate
	list     *List
}

// Template returns the schema this NamedList was instantiated from.
func (l *NamedList) Template() *ListTemplate { return l.template }

// Format implements Item.
func (l *NamedList) Format() Format { return FormatList }

// Size implements Item.
func (l *NamedList) Size() int { return l.list.Size() }

// Get implements Item.
func (l *NamedList) Get() interface{} { return l.list.Get() }

// SupportsValue implements Item.
func (l *NamedList) SupportsValue(value interface{}) bool {
	values, ok := value.([]interface{})
	if !ok || len(values) > len(l.list.children) {
		return false
	}
	for i, v := range values {
		if !l.fieldSupports(i, v) {
			return false
		}
	}
	return true
}

func (l *NamedList) fieldSupports(i int, value interface{}) bool {
	if item, ok := value.(Item); ok {
		return item.Format() == l.list.children[i].Format()
	}
	return l.list.children[i].SupportsValue(value)
}

// Set implements Item. It accepts a []interface{} of positional values,
// each forwarded to the corresponding field's Set. Every value is checked
// before any field is assigned.
func (l *NamedList) Set(value interface{}) error {
	values, ok := value.([]interface{})
	if !ok {
		return &ErrTypeMismatch{Type: "L", Value: value}
	}
	if len(values) > len(l.list.children) {
		return &ErrTooLong{Type: "L", Count: len(l.list.children), Supplied: len(values)}
	}
	for i, v := range values {
		if !l.fieldSupports(i, v) {
			// SetField reports the error and leaves field i unchanged.
			return l.SetField(i, v)
		}
	}
	for i, v := range values {
		if err := l.SetField(i, v); err != nil {
			return err
		}
	}
	return nil
}

// Field returns the child item at position i or bound to name.
func (l *NamedList) Field(key interface{}) (Item, error) {
	i, err := l.resolve(key)
	if err != nil {
		return nil, err
	}
	return l.list.children[i], nil
}

// SetField assigns a value to the field addressed by index or name.
// If value is already a concrete Item whose format matches the
// template's class for that position, it is adopted directly; otherwise
// it is forwarded to the existing child's Set.
func (l *NamedList) SetField(key interface{}, value interface{}) error {
	i, err := l.resolve(key)
	if err != nil {
		return err
	}

	if item, ok := value.(Item); ok {
		if item.Format() != l.list.children[i].Format() {
			return &ErrTypeMismatch{Type: l.template.names[i], Value: value}
		}
		l.list.children[i] = item
		return nil
	}

	return l.list.children[i].Set(value)
}

func (l *NamedList) resolve(key interface{}) (int, error) {
	switch k := key.(type) {
	case int:
		if k < 0 || k >= len(l.list.children) {
			return 0, fmt.Errorf("secs2: field index %d out of range", k)
		}
		return k, nil
	case string:
		i, ok := l.template.index[k]
		if !ok {
			return 0, fmt.Errorf("secs2: no field named %q", k)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("secs2: invalid field key %v (%T)", key, key)
	}
}

// Encode implements Item.
func (l *NamedList) Encode() []byte { return l.list.Encode() }

// Decode implements Item. Decoded children are re-validated against
// template positions by arity only; format compatibility is the caller's
// responsibility, matching how stream/function definitions trust their
// own schema.
func (l *NamedList) Decode(data []byte, start int) (int, error) {
	decoded := &List{count: -1}
	next, err := decoded.Decode(data, start)
	if err != nil {
		return 0, err
	}
	if len(decoded.children) != len(l.template.names) {
		return 0, fmt.Errorf("secs2: decoded list has %d children, template has %d fields", len(decoded.children), len(l.template.names))
	}
	l.list.children = decoded.children
	return next, nil
}

// Equal implements Item.
func (l *NamedList) Equal(other Item) bool {
	o, ok := other.(*NamedList)
	if !ok {
		return l.list.Equal(other)
	}
	return l.list.Equal(o.list)
}

// String implements Item.
func (l *NamedList) String() string { return l.list.String() }
