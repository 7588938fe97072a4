package axlf

// SectionDescriptor is one axlf_section_header entry. Offset is relative to
// the start of the container.
type SectionDescriptor struct {
	Kind   SectionKind
	Name   string
	Offset uint64
	Size   uint64
}

// End returns the exclusive end offset of the payload.
func (d SectionDescriptor) End() uint64 {
	return d.Offset + d.Size
}

// within reports whether the payload lies inside a buffer of n bytes.
func (d SectionDescriptor) within(n int) bool {
	end := d.Offset + d.Size
	return end >= d.Offset && end <= uint64(n)
}

func (c Codec) decodeDescriptor(buf []byte, off int) (SectionDescriptor, error) {
	r := c.cursorAt(buf, off)
	d := SectionDescriptor{
		Kind: SectionKind(r.u32()),
		Name: r.str(SectionNameWidth),
	}
	r.skip(4)
	d.Offset = r.u64()
	d.Size = r.u64()
	if r.err != nil {
		return SectionDescriptor{}, r.err
	}
	return d, nil
}

func (c Codec) encodeDescriptor(p *putter, d SectionDescriptor) {
	p.u32(uint32(d.Kind))
	p.str(d.Name, SectionNameWidth, "m_sectionName")
	p.zeros(4)
	p.u64(d.Offset)
	p.u64(d.Size)
}
