package axlf

import (
	"fmt"
	"iter"
	"math"
)

// Array is a borrowed, fixed-length sequence of records laid out back to back
// in the container buffer. Records are decoded on access; nothing is copied
// until Slice is called.
type Array[T any] struct {
	raw    []byte
	n      int
	width  int
	decode func([]byte) T
}

func newArray[T any](raw []byte, n, width int, decode func([]byte) T) Array[T] {
	return Array[T]{raw: raw, n: n, width: width, decode: decode}
}

// Len returns the record count.
func (a Array[T]) Len() int { return a.n }

// At decodes record i.
func (a Array[T]) At(i int) (T, error) {
	var zero T
	if i < 0 || i >= a.n {
		return zero, fmt.Errorf("%w: record %d of %d", ErrOutOfBounds, i, a.n)
	}
	return a.decode(a.raw[i*a.width : (i+1)*a.width]), nil
}

// All yields every record in order. The sequence can be ranged over any
// number of times.
func (a Array[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < a.n; i++ {
			if !yield(i, a.decode(a.raw[i*a.width:(i+1)*a.width])) {
				return
			}
		}
	}
}

// Slice returns a detached copy of every record.
func (a Array[T]) Slice() []T {
	out := make([]T, 0, a.n)
	for _, v := range a.All() {
		out = append(out, v)
	}
	return out
}

// arrayLayout describes a "count + trailing records" payload.
type arrayLayout struct {
	countWidth int // 1, 2 or 4 bytes
	signed     bool
	dataOffset int // where record 0 starts, after the count and its padding
	width      int // bytes per record
}

func (l arrayLayout) maxCount() int {
	bits := l.countWidth * 8
	if l.signed {
		bits--
	}
	return int(uint64(1)<<bits - 1)
}

// records validates the count field and returns the record region.
func (c Codec) records(buf []byte, l arrayLayout) ([]byte, int, error) {
	if len(buf) < l.countWidth {
		return nil, 0, fmt.Errorf("%w: %d bytes cannot hold the %d-byte count", ErrTruncatedSection, len(buf), l.countWidth)
	}
	r := c.cursorAt(buf, 0)
	var n int64
	switch l.countWidth {
	case 1:
		if l.signed {
			n = int64(r.i8())
		} else {
			n = int64(r.u8())
		}
	case 2:
		if l.signed {
			n = int64(r.i16())
		} else {
			n = int64(r.u16())
		}
	default:
		if l.signed {
			n = int64(r.i32())
		} else {
			n = int64(r.u32())
		}
	}
	if n < 0 {
		return nil, 0, fmt.Errorf("%w: negative record count %d", ErrMalformedSection, n)
	}

	need := uint64(l.dataOffset) + uint64(n)*uint64(l.width)
	if need > uint64(len(buf)) {
		return nil, 0, fmt.Errorf("%w: %d records of %d bytes need %d bytes, section has %d",
			ErrTruncatedSection, n, l.width, need, len(buf))
	}
	if c.strict && need != uint64(len(buf)) {
		return nil, 0, fmt.Errorf("%w: section size %d does not match expected %d", ErrMalformedSection, len(buf), need)
	}
	if need > math.MaxInt {
		return nil, 0, ErrOutOfBounds
	}
	return buf[l.dataOffset:need], int(n), nil
}

// putCount writes the count field and the padding up to the first record.
func (p *putter) putCount(l arrayLayout, n int) {
	if p.err != nil {
		return
	}
	if n > l.maxCount() {
		p.err = fmt.Errorf("%w: %d records exceed the count field maximum %d", ErrMalformedSection, n, l.maxCount())
		return
	}
	switch l.countWidth {
	case 1:
		p.u8(uint8(n))
	case 2:
		p.u16(uint16(n))
	default:
		p.u32(uint32(n))
	}
	p.zeros(l.dataOffset - l.countWidth)
}
