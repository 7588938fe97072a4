package axlf

import "fmt"

// Payload is a decoded section. The concrete type follows the section kind:
// *MemTopology, *Connectivity, *IPLayout, *DebugIPLayout,
// *ClockFreqTopology, *MCS, *BMC, or *Opaque for everything else.
type Payload interface {
	Kind() SectionKind
	isPayload()
}

// Opaque is the raw span of a section this package does not interpret,
// including kinds outside the known enumeration.
type Opaque struct {
	Type SectionKind
	Data []byte
}

func (o *Opaque) Kind() SectionKind { return o.Type }
func (*Opaque) isPayload()          {}

// Interprets reports whether kind decodes to something richer than Opaque.
func Interprets(kind SectionKind) bool {
	switch kind {
	case SectionMemTopology, SectionConnectivity, SectionIPLayout, SectionDebugIPLayout,
		SectionClockFreqTopology, SectionMCS, SectionBMC:
		return true
	}
	return false
}

// DecodePayload interprets data as a payload of the given kind.
func (c Codec) DecodePayload(kind SectionKind, data []byte) (Payload, error) {
	switch kind {
	case SectionMemTopology:
		return c.DecodeMemTopology(data)
	case SectionConnectivity:
		return c.DecodeConnectivity(data)
	case SectionIPLayout:
		return c.DecodeIPLayout(data)
	case SectionDebugIPLayout:
		return c.DecodeDebugIPLayout(data)
	case SectionClockFreqTopology:
		return c.DecodeClockFreqTopology(data)
	case SectionMCS:
		return c.DecodeMCS(data)
	case SectionBMC:
		return c.DecodeBMC(data)
	default:
		return &Opaque{Type: kind, Data: data}, nil
	}
}

// Decode locates the payload described by d inside buf and interprets it.
// Failures are returned as *SectionError.
func (c Codec) Decode(buf []byte, d SectionDescriptor) (Payload, error) {
	return c.decodeAt(buf, d, -1)
}

func (c Codec) decodeAt(buf []byte, d SectionDescriptor, index int) (Payload, error) {
	data, err := sectionBytes(buf, d)
	if err != nil {
		return nil, &SectionError{Kind: d.Kind, Index: index, Err: err}
	}
	p, err := c.DecodePayload(d.Kind, data)
	if err != nil {
		return nil, &SectionError{Kind: d.Kind, Index: index, Err: err}
	}
	return p, nil
}

func sectionBytes(buf []byte, d SectionDescriptor) ([]byte, error) {
	if !d.within(len(buf)) {
		return nil, fmt.Errorf("%w: payload [%d,+%d) outside %d-byte container", ErrOutOfBounds, d.Offset, d.Size, len(buf))
	}
	return buf[d.Offset:d.End()], nil
}

// Encode is the inverse of DecodePayload.
func (c Codec) Encode(p Payload) ([]byte, error) {
	switch v := p.(type) {
	case *MemTopology:
		return c.EncodeMemTopology(v.Banks.Slice())
	case *Connectivity:
		return c.EncodeConnectivity(v.Connections.Slice())
	case *IPLayout:
		return c.EncodeIPLayout(v.IPs.Slice())
	case *DebugIPLayout:
		return c.EncodeDebugIPLayout(v.IPs.Slice())
	case *ClockFreqTopology:
		return c.EncodeClockFreqTopology(v.Clocks.Slice())
	case *MCS:
		return c.EncodeMCS(v.Chunks.Slice())
	case *BMC:
		return c.EncodeBMC(*v)
	case *Opaque:
		return v.Data, nil
	case nil:
		return nil, fmt.Errorf("axlf: nil payload")
	default:
		return nil, fmt.Errorf("axlf: cannot encode payload %T", p)
	}
}

// SectionLocator finds section descriptors by kind. *File implements it;
// callers holding a container loaded elsewhere can supply their own.
type SectionLocator interface {
	FindSection(kind SectionKind) (SectionDescriptor, bool)
}

// DecodeLocated decodes the first section of kind found by loc within buf.
func DecodeLocated(c Codec, loc SectionLocator, buf []byte, kind SectionKind) (Payload, error) {
	d, ok := loc.FindSection(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSectionNotFound, kind)
	}
	return c.Decode(buf, d)
}
