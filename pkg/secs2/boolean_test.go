package secs2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoolean_SetAndGet(t *testing.T) {
	var tests = []struct {
		description string
		input       interface{}
		expectedGet interface{}
	}{
		{"bool scalar", true, true},
		{"int 0/1", []interface{}{0, 1}, []bool{false, true}},
		{"yes/no strings", []interface{}{"yes", "No", "TRUE"}, []bool{true, false, true}},
	}
	for i, test := range tests {
		t.Logf("Test #%d: %s", i, test.description)
		item := NewBoolean()
		require.NoError(t, item.Set(test.input))
		assert.Equal(t, test.expectedGet, item.Get())
	}
}

func TestBoolean_SetRejectsInvalid(t *testing.T) {
	item := NewBoolean()
	err := item.Set(2)
	require.Error(t, err)
	assert.IsType(t, &ErrTypeMismatch{}, err)

	err = item.Set("maybe")
	require.Error(t, err)
	assert.IsType(t, &ErrTypeMismatch{}, err)
}

func TestBoolean_EncodeDecodeRoundTrip(t *testing.T) {
	item := NewBoolean()
	require.NoError(t, item.Set([]interface{}{true, false, true}))
	encoded := item.Encode()

	decoded := NewBoolean()
	next, err := decoded.Decode(encoded, 0)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), next)
	assert.True(t, item.Equal(decoded))
}

func TestBoolean_String(t *testing.T) {
	item := NewBoolean()
	require.NoError(t, item.Set([]interface{}{true, false}))
	assert.Equal(t, "<BOOLEAN[2] T F>", item.String())
}
