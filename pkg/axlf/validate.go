package axlf

import (
	"errors"
)

// CheckConnectivity reports every connection whose IP or memory index falls
// outside the given arrays. Each problem is a *ReferenceError; they are joined
// with errors.Join, so errors.Is(err, ErrDanglingReference) holds for any of
// them. A nil ips or mem skips the corresponding check.
func CheckConnectivity(conn *Connectivity, ips *IPLayout, mem *MemTopology) error {
	if conn == nil {
		return nil
	}
	var errs []error
	for i, c := range conn.Connections.All() {
		if ips != nil && outOfRange(c.IPLayoutIndex, ips.IPs.Len()) {
			errs = append(errs, &ReferenceError{
				Connection: i,
				Field:      "m_ip_layout_index",
				Value:      c.IPLayoutIndex,
				Limit:      ips.IPs.Len(),
			})
		}
		if mem != nil && outOfRange(c.MemDataIndex, mem.Banks.Len()) {
			errs = append(errs, &ReferenceError{
				Connection: i,
				Field:      "mem_data_index",
				Value:      c.MemDataIndex,
				Limit:      mem.Banks.Len(),
			})
		}
	}
	return errors.Join(errs...)
}

func outOfRange(v int32, n int) bool {
	return v < 0 || int(v) >= n
}

// Validate decodes every section and checks connectivity cross-references.
// Section failures are reported as *SectionError; all problems are joined.
func (f *File) Validate() error {
	if f.data == nil {
		return ErrClosed
	}
	var (
		errs []error
		conn *Connectivity
		ips  *IPLayout
		mem  *MemTopology
	)
	for i, d := range f.sections {
		p, err := f.codec.decodeAt(f.data, d, i)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		switch v := p.(type) {
		case *Connectivity:
			if conn == nil {
				conn = v
			}
		case *IPLayout:
			if ips == nil {
				ips = v
			}
		case *MemTopology:
			if mem == nil {
				mem = v
			}
		}
	}
	if err := CheckConnectivity(conn, ips, mem); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
