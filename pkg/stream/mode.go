package stream

import (
	"fmt"
	"strings"
)

// Mode is a parsed fopen-style mode string. Only access rights are taken
// from it: opening never truncates or creates anything.
type Mode struct {
	raw   string
	read  bool
	write bool
}

func ParseMode(s string) (Mode, error) {
	base := strings.Map(func(r rune) rune {
		if r == 'b' || r == 't' {
			return -1
		}
		return r
	}, s)

	m := Mode{raw: s}
	switch base {
	case "r":
		m.read = true
	case "w", "a", "x", "c":
		m.write = true
	case "r+", "w+", "a+", "x+", "c+":
		m.read, m.write = true, true
	default:
		return Mode{}, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}

func (m Mode) CanRead() bool  { return m.read }
func (m Mode) CanWrite() bool { return m.write }
func (m Mode) String() string { return m.raw }
