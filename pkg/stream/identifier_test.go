package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		in     string
		scheme string
		key    string
	}{
		{"apc://a/b.txt", "apc", "a/b.txt"},
		{"temp://x", "temp", "x"},
		{"TEMP://x", "temp", "x"},
		{"redis+tls://k", "redis+tls", "k"},
		{"temp://dir/with/slashes/", "temp", "dir/with/slashes/"},
		{"a/b.txt", "", "a/b.txt"},
		{"plain", "", "plain"},
		{"temp://my file.txt", "temp", "my file.txt"},
		{"temp://100%done", "temp", "100%done"},
		{"temp://%zz", "temp", "%zz"},
		{"a b", "", "a b"},
		{"100%", "", "100%"},
		{"temp://host:port/x?q=1#f", "temp", "host:port/x?q=1#f"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			id, err := ParseIdentifier(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.scheme, id.Scheme)
			assert.Equal(t, tt.key, id.Key)
		})
	}
}

func TestParseIdentifier_Invalid(t *testing.T) {
	for _, in := range []string{
		"",
		"temp://",
		"://key",
		"1temp://key",
		"te mp://key",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseIdentifier(in)
			assert.ErrorIs(t, err, ErrInvalidIdentifier)
		})
	}
}

func TestIdentifier_String(t *testing.T) {
	assert.Equal(t, "apc://a/b.txt", Identifier{Scheme: "apc", Key: "a/b.txt"}.String())
	assert.Equal(t, "a/b.txt", Identifier{Key: "a/b.txt"}.String())
}

func TestErrUnknownSchemeIsInvalidIdentifier(t *testing.T) {
	assert.ErrorIs(t, ErrUnknownScheme, ErrInvalidIdentifier)
}
