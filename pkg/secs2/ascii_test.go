package secs2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestASCIIString_SetAndGet(t *testing.T) {
	item := NewASCIIString("")
	require.NoError(t, item.Set("hello"))
	assert.Equal(t, "hello", item.Get())
}

func TestASCIIString_SetRejectsNonASCII(t *testing.T) {
	item := NewASCIIString("")
	err := item.Set("café")
	require.Error(t, err)
	assert.IsType(t, &ErrTypeMismatch{}, err)
}

func TestASCIIString_SetRejectsNonString(t *testing.T) {
	item := NewASCIIString("")
	err := item.Set(5)
	require.Error(t, err)
	assert.IsType(t, &ErrTypeMismatch{}, err)
}

func TestASCIIString_SetTooLong(t *testing.T) {
	item := NewASCIIString("")
	item.SetCount(3)
	err := item.Set("abcd")
	require.Error(t, err)
	assert.IsType(t, &ErrTooLong{}, err)
}

// String("testString") must encode to the concrete wire bytes.
func TestASCIIString_EncodeTestString(t *testing.T) {
	item := NewASCIIString("testString")
	expected := append([]byte{0x41, 0x0A}, []byte("testString")...)
	assert.Equal(t, expected, item.Encode())
}

func TestASCIIString_EncodeDecodeRoundTrip(t *testing.T) {
	item := NewASCIIString("round trip")
	encoded := item.Encode()

	decoded := NewASCIIString("")
	next, err := decoded.Decode(encoded, 0)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), next)
	assert.True(t, item.Equal(decoded))
}

func TestASCIIString_StringQuotesControlCharacters(t *testing.T) {
	item := NewASCIIString("ab\x01cd")
	assert.Equal(t, `<A "ab" 0x01 "cd">`, item.String())
}
