package secs2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJIS8String_SetAndGet(t *testing.T) {
	item := NewJIS8String("")
	require.NoError(t, item.Set([]byte{0xA1, 0xDF, 'x'}))
	assert.Equal(t, string([]byte{0xA1, 0xDF, 'x'}), item.Get())
}

func TestJIS8String_SetRejectsUnsupportedType(t *testing.T) {
	item := NewJIS8String("")
	err := item.Set(5)
	require.Error(t, err)
	assert.IsType(t, &ErrTypeMismatch{}, err)
}

func TestJIS8String_EncodeDecodeRoundTrip(t *testing.T) {
	item := NewJIS8String("katakana-ish")
	encoded := item.Encode()

	decoded := NewJIS8String("")
	next, err := decoded.Decode(encoded, 0)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), next)
	assert.True(t, item.Equal(decoded))
}

func TestJIS8String_String(t *testing.T) {
	item := NewJIS8String("ab")
	assert.Equal(t, `<J "ab">`, item.String())
}
