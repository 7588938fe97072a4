package axlf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// Builder assembles an AXLF container in memory.
//
// The layout is fixed: magic, zeroed cipher and key block, unique id, header,
// descriptor table, then payloads in insertion order with each payload start
// aligned to 8 bytes. Header.Length and Header.NumSections are computed when
// the container is emitted; whatever the caller set is ignored.
type Builder struct {
	codec    Codec
	header   Header
	uniqueID uint64
	sections []pendingSection

	mu sync.Mutex
}

type pendingSection struct {
	kind SectionKind
	name string
	data []byte
}

// NewBuilder starts a container with the given header.
func NewBuilder(h Header, opts ...Option) *Builder {
	return &Builder{
		codec:  NewCodec(opts...),
		header: h,
	}
}

// SetUniqueID sets the 64-bit unique id stored before the header.
func (b *Builder) SetUniqueID(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uniqueID = id
}

// AddSection appends a raw payload. Kinds may repeat and need not be known.
// data is retained, not copied.
func (b *Builder) AddSection(kind SectionKind, name string, data []byte) error {
	if err := checkName(name, SectionNameWidth, "m_sectionName"); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sections = append(b.sections, pendingSection{kind: kind, name: name, data: data})
	return nil
}

// AddSectionFromReader reads r to EOF and appends it as a section payload.
func (b *Builder) AddSectionFromReader(kind SectionKind, name string, r io.Reader) error {
	if r == nil {
		return errors.New("axlf: nil reader")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return b.AddSection(kind, name, data)
}

// AddPayload encodes p with the builder's codec and appends it.
func (b *Builder) AddPayload(name string, p Payload) error {
	data, err := b.codec.Encode(p)
	if err != nil {
		return fmt.Errorf("encode %s: %w", p.Kind(), err)
	}
	return b.AddSection(p.Kind(), name, data)
}

// Bytes lays out and returns the complete container.
func (b *Builder) Bytes() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	descs := make([]SectionDescriptor, len(b.sections))
	end := uint64(DescriptorOffset) + uint64(len(b.sections))*DescriptorSize
	for i, s := range b.sections {
		end = alignUp(end, payloadAlign)
		descs[i] = SectionDescriptor{Kind: s.kind, Name: s.name, Offset: end, Size: uint64(len(s.data))}
		end += uint64(len(s.data))
	}

	h := b.header
	h.Length = end
	h.NumSections = uint32(len(b.sections))
	hdr, err := b.codec.encodeHeader(h)
	if err != nil {
		return nil, err
	}

	p := b.codec.newPutter(int(end))
	p.raw([]byte(Magic))
	p.zeros(cipherSize + keyBlockSize)
	p.u64(b.uniqueID)
	p.raw(hdr)
	for _, d := range descs {
		b.codec.encodeDescriptor(p, d)
	}
	for i, s := range b.sections {
		p.zeros(int(descs[i].Offset) - len(p.buf))
		p.raw(s.data)
	}
	return p.bytes()
}

// WriteTo writes the container to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	data, err := b.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// WriteFile writes the container to path, truncating any existing file.
func (b *Builder) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := b.WriteTo(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func alignUp(v, align uint64) uint64 {
	if rem := v % align; rem != 0 {
		return v + align - rem
	}
	return v
}
