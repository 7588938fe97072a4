package xclbinstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/samcharles93/xclbin/internal/logger"
	"github.com/samcharles93/xclbin/pkg/axlf"
)

var ErrKernelNotFound = errors.New("xclbinstore: kernel not found")

// File is an opened xclbin with the kernel-level views the CLI and API need.
// It is safe for concurrent readers until Close.
type File struct {
	file *axlf.File
	path string
	log  logger.Logger
}

// KernelArg is one kernel argument bound to a memory bank.
type KernelArg struct {
	Index    int32        `json:"index"`
	MemIndex int32        `json:"mem_index"`
	MemTag   string       `json:"mem_tag,omitempty"`
	MemType  axlf.MemType `json:"mem_type"`
}

// Kernel is an IP_KERNEL entry joined with its connectivity.
type Kernel struct {
	Name             string         `json:"name"`
	BaseAddress      uint64         `json:"base_address"`
	Control          axlf.IPControl `json:"control"`
	InterruptEnabled bool           `json:"interrupt_enabled"`
	Args             []KernelArg    `json:"args"`
}

func Open(path string, opts ...axlf.Option) (*File, error) {
	return OpenContext(context.Background(), path, opts...)
}

// OpenContext is Open with the logger carried by ctx.
func OpenContext(ctx context.Context, path string, opts ...axlf.Option) (*File, error) {
	af, err := axlf.Open(path, opts...)
	if err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx).With("xclbin", path)
	h := af.Header()
	log.Debug("opened xclbin",
		"platform", h.PlatformVBNV,
		"uuid", h.XclbinUUID().String(),
		"sections", len(af.Sections()),
	)
	return &File{file: af, path: path, log: log}, nil
}

func (f *File) Close() error {
	if f == nil || f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

// Path returns the path the file was opened from.
func (f *File) Path() string { return f.path }

// Container exposes the underlying parsed container.
func (f *File) Container() *axlf.File { return f.file }

func (f *File) Header() (axlf.Header, error) {
	if f == nil || f.file == nil {
		return axlf.Header{}, axlf.ErrClosed
	}
	return f.file.Header(), nil
}

// UUID returns the xclbin UUID held in the header union.
func (f *File) UUID() (uuid.UUID, error) {
	h, err := f.Header()
	if err != nil {
		return uuid.Nil, err
	}
	return h.XclbinUUID(), nil
}

func (f *File) Sections() []axlf.SectionDescriptor {
	if f == nil || f.file == nil {
		return nil
	}
	return f.file.Sections()
}

// Section decodes the first section of kind.
func (f *File) Section(kind axlf.SectionKind) (axlf.Payload, error) {
	if f == nil || f.file == nil {
		return nil, axlf.ErrClosed
	}
	p, err := f.file.DecodeSection(kind)
	if err != nil && !errors.Is(err, axlf.ErrSectionNotFound) {
		f.log.Warn("section decode failed", "kind", kind.String(), "error", err)
	}
	return p, err
}

// SectionData returns the raw payload of the first section of kind.
func (f *File) SectionData(kind axlf.SectionKind) ([]byte, error) {
	if f == nil || f.file == nil {
		return nil, axlf.ErrClosed
	}
	d, ok := f.file.FindSection(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", axlf.ErrSectionNotFound, kind)
	}
	return f.file.SectionData(d)
}

// Kernels lists every IP_KERNEL entry in IP_LAYOUT order with its arguments
// resolved through CONNECTIVITY and MEM_TOPOLOGY. A container without an
// IP_LAYOUT has no kernels.
func (f *File) Kernels() ([]Kernel, error) {
	if f == nil || f.file == nil {
		return nil, axlf.ErrClosed
	}
	ips, err := f.file.IPLayout()
	if errors.Is(err, axlf.ErrSectionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	conn, err := optional(f.file.Connectivity)
	if err != nil {
		return nil, err
	}
	mem, err := optional(f.file.MemTopology)
	if err != nil {
		return nil, err
	}

	var kernels []Kernel
	for i, ip := range ips.IPs.All() {
		if ip.Type != axlf.IPKernel {
			continue
		}
		k := Kernel{
			Name:             ip.Name,
			Control:          ip.Control(),
			InterruptEnabled: ip.InterruptEnabled(),
			Args:             []KernelArg{},
		}
		if base, ok := ip.BaseAddress(); ok {
			k.BaseAddress = base
		}
		if conn != nil {
			for _, c := range conn.Connections.All() {
				if int(c.IPLayoutIndex) != i {
					continue
				}
				arg := KernelArg{Index: c.ArgIndex, MemIndex: c.MemDataIndex}
				if mem != nil {
					if bank, err := mem.Banks.At(int(c.MemDataIndex)); err == nil {
						arg.MemTag = bank.Tag
						arg.MemType = bank.Type
					}
				}
				k.Args = append(k.Args, arg)
			}
		}
		slices.SortStableFunc(k.Args, func(a, b KernelArg) int {
			return int(a.Index) - int(b.Index)
		})
		kernels = append(kernels, k)
	}
	return kernels, nil
}

// Kernel finds a kernel by its full IP name or by the kernel name before ':'.
func (f *File) Kernel(name string) (Kernel, error) {
	kernels, err := f.Kernels()
	if err != nil {
		return Kernel{}, err
	}
	for _, k := range kernels {
		if k.Name == name {
			return k, nil
		}
	}
	for _, k := range kernels {
		if base, _, ok := strings.Cut(k.Name, ":"); ok && base == name {
			return k, nil
		}
	}
	return Kernel{}, fmt.Errorf("%w: %q", ErrKernelNotFound, name)
}

// Mirror renders the container as JSON.
func (f *File) Mirror() ([]byte, error) {
	if f == nil || f.file == nil {
		return nil, axlf.ErrClosed
	}
	return axlf.MarshalMirror(f.file)
}

// Validate runs the full container check and logs each problem at warn.
func (f *File) Validate() error {
	if f == nil || f.file == nil {
		return axlf.ErrClosed
	}
	err := f.file.Validate()
	for _, p := range Problems(err) {
		f.log.Warn("validation problem", "error", p)
	}
	return err
}

// Problems flattens an error tree built with errors.Join into its leaves.
func Problems(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range j.Unwrap() {
			out = append(out, Problems(e)...)
		}
		return out
	}
	return []error{err}
}

// optional treats an absent section as a nil payload.
func optional[T axlf.Payload](decode func() (T, error)) (T, error) {
	v, err := decode()
	if errors.Is(err, axlf.ErrSectionNotFound) {
		var zero T
		return zero, nil
	}
	return v, err
}
