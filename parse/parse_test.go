package parse

import (
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestParseField(t *testing.T) {
	value, err := ParseField("0.00001", 0)
	require.NoError(t, err)
	assert.Equal(t, 0.00001, value)

	value, err = ParseField("3.14 25.13 31 42", 0)
	require.NoError(t, err)
	assert.Equal(t, 3.14, value)

	value, err = ParseField("  3.14\t25.13   31 42\n", 3)
	require.NoError(t, err)
	assert.Equal(t, 42.0, value)

	value, err = ParseField("-1e3", 0)
	require.NoError(t, err)
	assert.Equal(t, -1000.0, value)
}

func TestParseField_Errors(t *testing.T) {
	cases := []struct {
		line     string
		index    int
		expected error
	}{
		{"", 0, ErrMissing},
		{"", 5, ErrMissing},
		{"1 2 3", 5, ErrMissing},
		{"1 2 3", -1, ErrMissing},
		{"NaN", 0, ErrNotANumber},
		{"inf", 0, ErrNotANumber},
		{"-Infinity", 0, ErrNotANumber},
		{"1e999", 0, ErrNotANumber},
		{"abc", 0, ErrFailed},
		{"1 2,5", 1, ErrFailed},
	}
	for _, c := range cases {
		_, err := ParseField(c.line, c.index)
		assert.True(t, errors.Is(err, c.expected), "%q[%d]: %v", c.line, c.index, err)
	}
}
