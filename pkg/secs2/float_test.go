package secs2

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat_SetAndGet(t *testing.T) {
	item := NewF4()
	require.NoError(t, item.Set(1.5))
	assert.Equal(t, 1.5, item.Get())
}

func TestFloat_SetRejectsInfAndNaN(t *testing.T) {
	item := NewF8()

	err := item.Set(math.Inf(1))
	require.Error(t, err)
	assert.IsType(t, &ErrOutOfRange{}, err)

	err = item.Set(math.NaN())
	require.Error(t, err)
	assert.IsType(t, &ErrOutOfRange{}, err)
}

func TestFloat_SetRejectsOutOfMagnitude(t *testing.T) {
	item := NewF4()
	err := item.Set(math.MaxFloat64)
	require.Error(t, err)
	assert.IsType(t, &ErrOutOfRange{}, err)
}

// F4(123.0) must encode to the concrete wire bytes.
func TestFloat_EncodeF4_123(t *testing.T) {
	item := NewF4()
	require.NoError(t, item.Set(123.0))
	assert.Equal(t, []byte{0x91, 0x04, 0x42, 0xF6, 0x00, 0x00}, item.Encode())
}

func TestFloat_EncodeDecodeRoundTrip(t *testing.T) {
	var tests = []struct {
		description string
		byteSize    int
		input       interface{}
	}{
		{"F4 scalar", 4, 3.25},
		{"F8 vector", 8, []interface{}{1.1, -2.2, 3.3}},
	}
	for i, test := range tests {
		t.Logf("Test #%d: %s", i, test.description)
		item := newFloatItem(test.byteSize)
		require.NoError(t, item.Set(test.input))
		encoded := item.Encode()

		decoded := newFloatItem(test.byteSize)
		next, err := decoded.Decode(encoded, 0)
		require.NoError(t, err)
		assert.Equal(t, len(encoded), next)
		assert.True(t, item.Equal(decoded))
	}
}

func TestFloat_InvalidByteSizePanics(t *testing.T) {
	assert.Panics(t, func() { newFloatItem(2) })
}
