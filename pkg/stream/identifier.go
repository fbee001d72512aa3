package stream

import (
	"fmt"
	"strings"

	"github.com/fystack/kvstream/pkg/common/constant"
)

// Identifier is a parsed "scheme://key-path". Scheme is empty when the
// identifier carried none.
type Identifier struct {
	Scheme string
	Key    string
}

func (id Identifier) String() string {
	if id.Scheme == "" {
		return id.Key
	}
	return id.Scheme + constant.SchemeSeparator + id.Key
}

// ParseIdentifier splits identifier into scheme and key. Only the scheme is
// checked; the key is taken verbatim, spaces, escapes and separators
// included.
func ParseIdentifier(identifier string) (Identifier, error) {
	if identifier == "" {
		return Identifier{}, fmt.Errorf("%w: empty", ErrInvalidIdentifier)
	}

	i := strings.Index(identifier, constant.SchemeSeparator)
	if i < 0 {
		return Identifier{Key: identifier}, nil
	}

	scheme := strings.ToLower(identifier[:i])
	if !validScheme(scheme) {
		return Identifier{}, fmt.Errorf("%w: bad scheme %q", ErrInvalidIdentifier, identifier[:i])
	}
	key := identifier[i+len(constant.SchemeSeparator):]
	if key == "" {
		return Identifier{}, fmt.Errorf("%w: empty key in %q", ErrInvalidIdentifier, identifier)
	}
	return Identifier{Scheme: scheme, Key: key}, nil
}

// validScheme follows RFC 3986: a letter, then letters, digits, "+", "-" or ".".
func validScheme(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}
