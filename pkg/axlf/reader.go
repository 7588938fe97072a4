package axlf

import (
	"fmt"
	"io"
	"iter"
	"os"

	"golang.org/x/sys/unix"
)

// File is an opened AXLF container.
type File struct {
	data     []byte
	codec    Codec
	header   Header
	uniqueID uint64
	sections []SectionDescriptor
	mmapped  bool
}

// Open maps an xclbin file read-only and validates its structure.
// If mmap is unavailable, it falls back to ReadAt-based loading.
// The returned file must be closed to release any mapping.
func Open(path string, opts ...Option) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 < 0 || size64 > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("%w: file size %d not addressable", ErrInvalidContainer, size64)
	}
	size := int(size64)
	codec := NewCodec(opts...)

	if size > 0 {
		data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
		if err == nil {
			xf, parseErr := parse(data, codec, true)
			if parseErr != nil {
				_ = unix.Munmap(data)
				return nil, parseErr
			}
			return xf, nil
		}
	}

	data, err := readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return parse(data, codec, false)
}

// OpenReaderAt loads and validates a container from a random-access reader
// without mmap.
func OpenReaderAt(r io.ReaderAt, size int64, opts ...Option) (*File, error) {
	if size < 0 || size > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("%w: size %d not addressable", ErrInvalidContainer, size)
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return parse(data, NewCodec(opts...), false)
}

// Parse validates a container already held in memory. The File borrows data;
// the caller must keep it unchanged for as long as the File is in use.
func Parse(data []byte, opts ...Option) (*File, error) {
	return parse(data, NewCodec(opts...), false)
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

func parse(data []byte, codec Codec, mmapped bool) (*File, error) {
	// The magic is checked before any other field is looked at.
	if len(data) < magicSize || string(data[:magicSize]) != Magic {
		return nil, fmt.Errorf("%w: %w", ErrInvalidContainer, ErrInvalidMagic)
	}
	if len(data) < DescriptorOffset {
		return nil, fmt.Errorf("%w: %d bytes cannot hold the %d-byte header", ErrInvalidContainer, len(data), DescriptorOffset)
	}

	hdr, err := codec.decodeHeader(data[HeaderOffset:DescriptorOffset])
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrInvalidContainer, err)
	}

	dirEnd := uint64(DescriptorOffset) + uint64(hdr.NumSections)*DescriptorSize
	if dirEnd > uint64(len(data)) {
		return nil, fmt.Errorf("%w: %d section descriptors end at %d, buffer has %d bytes",
			ErrInvalidContainer, hdr.NumSections, dirEnd, len(data))
	}
	if hdr.Length > uint64(len(data)) {
		return nil, fmt.Errorf("%w: header length %d exceeds buffer of %d bytes", ErrInvalidContainer, hdr.Length, len(data))
	}
	if hdr.Length < dirEnd {
		return nil, fmt.Errorf("%w: header length %d ends inside the section table", ErrInvalidContainer, hdr.Length)
	}

	uid := codec.cursorAt(data, uniqueIDOffset).u64()

	sections := make([]SectionDescriptor, hdr.NumSections)
	for i := range sections {
		d, err := codec.decodeDescriptor(data, DescriptorOffset+i*DescriptorSize)
		if err != nil {
			return nil, fmt.Errorf("%w: descriptor %d: %v", ErrInvalidContainer, i, err)
		}
		sections[i] = d
	}

	return &File{
		data:     data,
		codec:    codec,
		header:   hdr,
		uniqueID: uid,
		sections: sections,
		mmapped:  mmapped,
	}, nil
}

// Close releases file resources and any mmap backing.
func (f *File) Close() error {
	if f == nil || f.data == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = unix.Munmap(f.data)
	}
	f.data = nil
	f.sections = nil
	f.header = Header{}
	f.uniqueID = 0
	f.mmapped = false
	return err
}

// Codec returns the codec the file was parsed with.
func (f *File) Codec() Codec { return f.codec }

// Bytes returns the whole container buffer.
// The caller must not retain this slice after Close.
func (f *File) Bytes() []byte { return f.data }

// Header returns the decoded header. After Close it is the zero Header.
func (f *File) Header() Header { return f.header }

// UniqueID returns the 64-bit id stored before the header, or 0 after Close.
func (f *File) UniqueID() uint64 { return f.uniqueID }

// Cipher returns the opaque cipher region.
func (f *File) Cipher() []byte {
	if f.data == nil {
		return nil
	}
	return f.data[cipherOffset:keyBlockOffset]
}

// KeyBlock returns the opaque key-block region.
func (f *File) KeyBlock() []byte {
	if f.data == nil {
		return nil
	}
	return f.data[keyBlockOffset:uniqueIDOffset]
}

// Sections returns the descriptor table in file order. A closed file has no
// sections, so FindSection and SectionsOfKind find nothing after Close.
func (f *File) Sections() []SectionDescriptor { return f.sections }

// FindSection returns the first descriptor of the given kind.
func (f *File) FindSection(kind SectionKind) (SectionDescriptor, bool) {
	for _, d := range f.sections {
		if d.Kind == kind {
			return d, true
		}
	}
	return SectionDescriptor{}, false
}

// SectionsOfKind yields every descriptor of the given kind in table order.
func (f *File) SectionsOfKind(kind SectionKind) iter.Seq[SectionDescriptor] {
	return func(yield func(SectionDescriptor) bool) {
		for _, d := range f.sections {
			if d.Kind == kind && !yield(d) {
				return
			}
		}
	}
}

// SectionData returns a zero-copy slice covering the section payload.
// The caller must not retain this slice after Close.
func (f *File) SectionData(d SectionDescriptor) ([]byte, error) {
	if f.data == nil {
		return nil, ErrClosed
	}
	return sectionBytes(f.data, d)
}

// Decode interprets the payload described by d.
func (f *File) Decode(d SectionDescriptor) (Payload, error) {
	if f.data == nil {
		return nil, ErrClosed
	}
	index := -1
	for i, s := range f.sections {
		if s == d {
			index = i
			break
		}
	}
	return f.codec.decodeAt(f.data, d, index)
}

// DecodeSection decodes the first section of the given kind.
func (f *File) DecodeSection(kind SectionKind) (Payload, error) {
	if f.data == nil {
		return nil, ErrClosed
	}
	for i, d := range f.sections {
		if d.Kind == kind {
			return f.codec.decodeAt(f.data, d, i)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSectionNotFound, kind)
}

func decodeAs[T Payload](f *File, kind SectionKind) (T, error) {
	var zero T
	p, err := f.DecodeSection(kind)
	if err != nil {
		return zero, err
	}
	v, ok := p.(T)
	if !ok {
		return zero, fmt.Errorf("axlf: %s decoded as %T", kind, p)
	}
	return v, nil
}

func (f *File) MemTopology() (*MemTopology, error) {
	return decodeAs[*MemTopology](f, SectionMemTopology)
}

func (f *File) Connectivity() (*Connectivity, error) {
	return decodeAs[*Connectivity](f, SectionConnectivity)
}

func (f *File) IPLayout() (*IPLayout, error) {
	return decodeAs[*IPLayout](f, SectionIPLayout)
}

func (f *File) DebugIPLayout() (*DebugIPLayout, error) {
	return decodeAs[*DebugIPLayout](f, SectionDebugIPLayout)
}

func (f *File) ClockFreqTopology() (*ClockFreqTopology, error) {
	return decodeAs[*ClockFreqTopology](f, SectionClockFreqTopology)
}

func (f *File) MCS() (*MCS, error) {
	return decodeAs[*MCS](f, SectionMCS)
}

func (f *File) BMC() (*BMC, error) {
	return decodeAs[*BMC](f, SectionBMC)
}
