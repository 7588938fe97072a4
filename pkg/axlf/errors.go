package axlf

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidMagic      = errors.New("axlf: invalid magic")
	ErrInvalidContainer  = errors.New("axlf: invalid container")
	ErrOutOfBounds       = errors.New("axlf: read out of bounds")
	ErrTruncatedSection  = errors.New("axlf: truncated section")
	ErrMalformedSection  = errors.New("axlf: malformed section")
	ErrSectionNotFound   = errors.New("axlf: section not found")
	ErrDanglingReference = errors.New("axlf: dangling cross-reference")
	ErrNameTooLong       = errors.New("axlf: name exceeds field width")
	ErrClosed            = errors.New("axlf: file closed")
)

// SectionError scopes a decode failure to one section descriptor.
// Other sections of the same container remain decodable.
type SectionError struct {
	Kind  SectionKind
	Index int // position in the descriptor table, -1 if unknown
	Err   error
}

func (e *SectionError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("section %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("section %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *SectionError) Unwrap() error { return e.Err }

// ReferenceError reports a connectivity entry pointing outside the IP layout
// or memory topology arrays.
type ReferenceError struct {
	Connection int    // index in the connectivity array
	Field      string // "m_ip_layout_index" or "mem_data_index"
	Value      int32
	Limit      int
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("connection %d: %s %d out of range [0,%d)", e.Connection, e.Field, e.Value, e.Limit)
}

func (e *ReferenceError) Unwrap() error { return ErrDanglingReference }

// IsContainerFatal reports whether err rejects the whole container rather
// than a single section.
func IsContainerFatal(err error) bool {
	return errors.Is(err, ErrInvalidMagic) || errors.Is(err, ErrInvalidContainer)
}
