package axlf

import (
	"encoding/binary"
	"fmt"
)

// Codec carries the layout rules shared by every structure: byte order and
// the policies that pick which arm of an untagged union is meaningful.
// The zero value is not usable; build one with NewCodec.
type Codec struct {
	order  binary.ByteOrder
	memArm func(MemType) MemUnionArm
	ipArm  func(IPType, uint32) IPUnionArm
	strict bool
}

// Option configures a Codec.
type Option func(*Codec)

// WithByteOrder overrides the default little-endian byte order.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(c *Codec) {
		if order != nil {
			c.order = order
		}
	}
}

// WithMemUnionSelector sets how a memory bank's unions are interpreted.
func WithMemUnionSelector(fn func(MemType) MemUnionArm) Option {
	return func(c *Codec) {
		if fn != nil {
			c.memArm = fn
		}
	}
}

// WithIPUnionSelector sets how an IP entry's address union is interpreted.
// The selector receives the IP type and the raw properties word.
func WithIPUnionSelector(fn func(IPType, uint32) IPUnionArm) Option {
	return func(c *Codec) {
		if fn != nil {
			c.ipArm = fn
		}
	}
}

// WithStrictSizes rejects array sections carrying bytes past their last record.
func WithStrictSizes() Option {
	return func(c *Codec) { c.strict = true }
}

// NewCodec returns a little-endian codec with the default union selectors.
func NewCodec(opts ...Option) Codec {
	c := Codec{
		order:  binary.LittleEndian,
		memArm: DefaultMemUnionArm,
		ipArm:  DefaultIPUnionArm,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}

// ByteOrder returns the byte order used for every multi-byte field.
func (c Codec) ByteOrder() binary.ByteOrder { return c.order }

// cursor reads fixed-width fields from a byte slice. The first failure is
// sticky: later reads return zero values and err keeps the original cause.
type cursor struct {
	buf   []byte
	off   int
	order binary.ByteOrder
	err   error
}

func (c Codec) cursorAt(buf []byte, off int) *cursor {
	cur := &cursor{buf: buf, off: off, order: c.order}
	if off < 0 || off > len(buf) {
		cur.err = fmt.Errorf("%w: offset %d outside buffer of %d bytes", ErrOutOfBounds, off, len(buf))
	}
	return cur
}

// next returns a window over the next n bytes without copying.
func (r *cursor) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > len(r.buf)-r.off {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrOutOfBounds, n, r.off, len(r.buf)-r.off)
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *cursor) skip(n int) { r.next(n) }

func (r *cursor) u8() uint8 {
	b := r.next(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *cursor) u16() uint16 {
	b := r.next(2)
	if b == nil {
		return 0
	}
	return r.order.Uint16(b)
}

func (r *cursor) u32() uint32 {
	b := r.next(4)
	if b == nil {
		return 0
	}
	return r.order.Uint32(b)
}

func (r *cursor) u64() uint64 {
	b := r.next(8)
	if b == nil {
		return 0
	}
	return r.order.Uint64(b)
}

func (r *cursor) i8() int8   { return int8(r.u8()) }
func (r *cursor) i16() int16 { return int16(r.u16()) }
func (r *cursor) i32() int32 { return int32(r.u32()) }
func (r *cursor) i64() int64 { return int64(r.u64()) }

// str reads a NUL-padded field of width n as a bounded string.
func (r *cursor) str(n int) string {
	return cString(r.next(n))
}

// array16 copies a 16-byte field.
func (r *cursor) array16() [16]byte {
	var out [16]byte
	copy(out[:], r.next(16))
	return out
}

// putter is the encoding inverse of cursor. It appends to buf and records
// the first failure.
type putter struct {
	buf   []byte
	order binary.ByteOrder
	err   error
}

func (c Codec) newPutter(capacity int) *putter {
	return &putter{buf: make([]byte, 0, capacity), order: c.order}
}

func (p *putter) u8(v uint8) { p.buf = append(p.buf, v) }

// grow extends buf by n bytes and returns the new tail for PutUint*.
func (p *putter) grow(n int) []byte {
	p.buf = append(p.buf, make([]byte, n)...)
	return p.buf[len(p.buf)-n:]
}

func (p *putter) u16(v uint16) { p.order.PutUint16(p.grow(2), v) }

func (p *putter) u32(v uint32) { p.order.PutUint32(p.grow(4), v) }

func (p *putter) u64(v uint64) { p.order.PutUint64(p.grow(8), v) }

func (p *putter) i8(v int8)   { p.u8(uint8(v)) }
func (p *putter) i16(v int16) { p.u16(uint16(v)) }
func (p *putter) i32(v int32) { p.u32(uint32(v)) }
func (p *putter) i64(v int64) { p.u64(uint64(v)) }

func (p *putter) zeros(n int) {
	for range n {
		p.buf = append(p.buf, 0)
	}
}

func (p *putter) raw(b []byte) { p.buf = append(p.buf, b...) }

// str writes s into a NUL-padded field of width n. The terminating NUL must
// fit, so s may hold at most n-1 bytes.
func (p *putter) str(s string, n int, field string) {
	if p.err != nil {
		return
	}
	if err := checkName(s, n, field); err != nil {
		p.err = err
		return
	}
	p.buf = append(p.buf, s...)
	p.zeros(n - len(s))
}

func (p *putter) bytes() ([]byte, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.buf, nil
}
