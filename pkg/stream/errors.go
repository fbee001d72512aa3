package stream

import (
	"errors"
	"fmt"

	"github.com/fystack/kvstream/pkg/infra"
)

var (
	ErrInvalidIdentifier = errors.New("invalid stream identifier")
	ErrUnknownScheme     = fmt.Errorf("%w: unknown scheme", ErrInvalidIdentifier)
	ErrInvalidMode       = errors.New("invalid open mode")
	ErrInvalidSeek       = errors.New("invalid seek")
	ErrNotReadable       = errors.New("stream not opened for reading")
	ErrNotWritable       = errors.New("stream not opened for writing")
	ErrSchemeExists      = errors.New("scheme already registered")
	ErrValueTooLarge     = errors.New("value would exceed the maximum size")

	ErrKeyNotFound = infra.ErrKeyNotFound
)
