package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		mode  string
		read  bool
		write bool
	}{
		{"r", true, false},
		{"rb", true, false},
		{"r+", true, true},
		{"r+b", true, true},
		{"w", false, true},
		{"wb", false, true},
		{"w+", true, true},
		{"a", false, true},
		{"a+", true, true},
		{"x", false, true},
		{"c+", true, true},
		{"rt", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			m, err := ParseMode(tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.read, m.CanRead())
			assert.Equal(t, tt.write, m.CanWrite())
			assert.Equal(t, tt.mode, m.String())
		})
	}
}

func TestParseMode_Invalid(t *testing.T) {
	for _, mode := range []string{"", "b", "q", "rw", "r++", "+r", "read"} {
		t.Run(mode, func(t *testing.T) {
			_, err := ParseMode(mode)
			assert.ErrorIs(t, err, ErrInvalidMode)
		})
	}
}
