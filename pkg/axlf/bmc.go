package axlf

import "fmt"

// BMC is the BMC payload: a single record describing the board management
// controller firmware image.
type BMC struct {
	Offset     uint64
	Size       uint64
	ImageName  string
	DeviceName string
	Version    string
	MD5        string
}

func (*BMC) Kind() SectionKind { return SectionBMC }
func (*BMC) isPayload()        {}

const bmcSize = 248

// DecodeBMC interprets a BMC payload.
func (c Codec) DecodeBMC(data []byte) (*BMC, error) {
	if len(data) < bmcSize {
		return nil, fmt.Errorf("%w: bmc record needs %d bytes, section has %d", ErrTruncatedSection, bmcSize, len(data))
	}
	if c.strict && len(data) != bmcSize {
		return nil, fmt.Errorf("%w: section size %d does not match expected %d", ErrMalformedSection, len(data), bmcSize)
	}
	r := c.cursorAt(data, 0)
	b := &BMC{
		Offset:     r.u64(),
		Size:       r.u64(),
		ImageName:  r.str(BMCNameWidth),
		DeviceName: r.str(BMCNameWidth),
		Version:    r.str(BMCNameWidth),
		MD5:        r.str(BMCMD5Width),
	}
	if r.err != nil {
		return nil, r.err
	}
	return b, nil
}

// EncodeBMC builds a BMC payload.
func (c Codec) EncodeBMC(b BMC) ([]byte, error) {
	p := c.newPutter(bmcSize)
	p.u64(b.Offset)
	p.u64(b.Size)
	p.str(b.ImageName, BMCNameWidth, "m_image_name")
	p.str(b.DeviceName, BMCNameWidth, "m_device_name")
	p.str(b.Version, BMCNameWidth, "m_version")
	p.str(b.MD5, BMCMD5Width, "m_md5value")
	p.zeros(7)
	return p.bytes()
}
