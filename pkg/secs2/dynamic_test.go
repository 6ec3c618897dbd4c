package secs2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDynamic_SetProbesAllowedFormatsInOrder(t *testing.T) {
	d := NewDynamic(FormatU1, FormatASCII)
	require.NoError(t, d.Set(5))
	assert.Equal(t, FormatU1, d.Format())

	d2 := NewDynamic(FormatU1, FormatASCII)
	require.NoError(t, d2.Set("hello"))
	assert.Equal(t, FormatASCII, d2.Format())
}

func TestDynamic_SetRejectsDisallowedFormat(t *testing.T) {
	d := NewDynamic(FormatU1)
	err := d.Set("not a u1")
	require.Error(t, err)
}

func TestDynamic_SetAdoptsConcreteItemDirectly(t *testing.T) {
	d := NewDynamic(FormatASCII, FormatU1)
	item := NewASCIIString("adopted")
	require.NoError(t, d.Set(item))
	assert.Same(t, item, d.Current())
}

func TestDynamic_SetRejectsItemOfDisallowedFormat(t *testing.T) {
	d := NewDynamic(FormatU1)
	err := d.Set(NewASCIIString("x"))
	require.Error(t, err)
	assert.IsType(t, &ErrTypeMismatch{}, err)
}

func TestDynamic_FormatPanicsBeforeSet(t *testing.T) {
	d := NewDynamic(FormatU1)
	assert.Panics(t, func() { d.Format() })
}

func TestDynamic_UnrestrictedAcceptsAnyFormat(t *testing.T) {
	d := NewDynamic()
	require.NoError(t, d.Set(true))
	assert.Equal(t, FormatBoolean, d.Format())
}

func TestDynamic_EncodeDecodeRoundTrip(t *testing.T) {
	d := NewDynamic(FormatU4, FormatASCII)
	require.NoError(t, d.Set(1337))
	encoded := d.Encode()

	decoded := NewDynamic(FormatU4, FormatASCII)
	next, err := decoded.Decode(encoded, 0)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), next)
	assert.True(t, d.Equal(decoded))
}

func TestDynamic_DecodeRejectsDisallowedFormat(t *testing.T) {
	ascii := NewASCIIString("nope")
	encoded := ascii.Encode()

	d := NewDynamic(FormatU4)
	_, err := d.Decode(encoded, 0)
	require.Error(t, err)
}
