package record

import (
	"strconv"

	"github.com/google/uuid"
)

// IDGenerator allocates record identifiers. A generator must never return the
// same id twice over its lifetime.
type IDGenerator interface {
	Next() string
}

// Sequence yields "1", "2", ... or, with a prefix, "prefix-1", "prefix-2", ...
type Sequence struct {
	prefix string
	last   uint64
}

// NewSequence returns a counter starting at 1.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

func (s *Sequence) Next() string {
	s.last++
	n := strconv.FormatUint(s.last, 10)
	if s.prefix == "" {
		return n
	}
	return s.prefix + "-" + n
}

// UUIDs yields random version 4 UUID strings.
type UUIDs struct{}

func (UUIDs) Next() string { return uuid.NewString() }
