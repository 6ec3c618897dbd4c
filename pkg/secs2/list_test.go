package secs2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_SizeAndChildren(t *testing.T) {
	a := NewASCIIString("x")
	u := NewU1()
	require.NoError(t, u.Set(1))
	list := NewList(a, u)

	assert.Equal(t, 2, list.Size())
	assert.Same(t, a, list.At(0))
}

func TestList_SetShorterLeavesTailUntouched(t *testing.T) {
	a1, a2, a3 := NewASCIIString("a"), NewASCIIString("b"), NewASCIIString("c")
	list := NewList(a1, a2, a3)

	replaced := NewASCIIString("z")
	require.NoError(t, list.Set([]Item{replaced}))

	assert.Same(t, replaced, list.At(0))
	assert.Same(t, a2, list.At(1))
	assert.Same(t, a3, list.At(2))
}

func TestList_SetTooLong(t *testing.T) {
	list := NewList(NewASCIIString("a"))
	list.SetCount(1)
	err := list.Set([]Item{NewASCIIString("x"), NewASCIIString("y")})
	require.Error(t, err)
	assert.IsType(t, &ErrTooLong{}, err)
}

// A LIST of two ASCII strings encodes as format byte, child-count length
// byte, then each child's own full encoding in order.
func TestList_EncodeTwoASCIIChildren(t *testing.T) {
	list := NewList(NewASCIIString("AB"), NewASCIIString("C"))
	expected := []byte{0x01, 0x02} // LIST format 0o00<<2|1=0x01, length=2 children
	expected = append(expected, []byte{0x41, 0x02, 'A', 'B'}...)
	expected = append(expected, []byte{0x41, 0x01, 'C'}...)
	assert.Equal(t, expected, list.Encode())
}

func TestList_EncodeDecodeRoundTrip(t *testing.T) {
	inner := NewList(NewU1())
	require.NoError(t, inner.At(0).Set(9))
	outer := NewList(NewASCIIString("hi"), inner)

	encoded := outer.Encode()
	decoded := &List{}
	next, err := decoded.Decode(encoded, 0)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), next)
	assert.True(t, outer.Equal(decoded))
}

func TestNamedList_FieldByNameAndIndex(t *testing.T) {
	tmpl := NewListTemplate(
		TemplateField{Name: "PPID", New: func() Item { return NewASCIIString("") }},
		TemplateField{Name: "LENGTH", New: func() Item { return NewU4() }},
	)
	nl := tmpl.New()

	require.NoError(t, nl.SetField("PPID", "PROC1"))
	require.NoError(t, nl.SetField(1, 42))

	field, err := nl.Field("PPID")
	require.NoError(t, err)
	assert.Equal(t, "PROC1", field.Get())

	field, err = nl.Field(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), field.Get())
}

func TestNamedList_SetFieldRejectsUnknownName(t *testing.T) {
	tmpl := NewListTemplate(TemplateField{Name: "X", New: func() Item { return NewU1() }})
	nl := tmpl.New()
	_, err := nl.Field("Y")
	assert.Error(t, err)
}

func TestNamedList_SetPositional(t *testing.T) {
	tmpl := NewListTemplate(
		TemplateField{Name: "A", New: func() Item { return NewU1() }},
		TemplateField{Name: "B", New: func() Item { return NewASCIIString("") }},
	)
	nl := tmpl.New()
	require.NoError(t, nl.Set([]interface{}{7, "seven"}))

	a, _ := nl.Field("A")
	b, _ := nl.Field("B")
	assert.Equal(t, uint64(7), a.Get())
	assert.Equal(t, "seven", b.Get())
}
