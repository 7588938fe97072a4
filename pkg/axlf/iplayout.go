package axlf

import "strconv"

// IPType is the kind of an IP instance.
type IPType uint32

const (
	IPMB IPType = iota
	IPKernel
	IPDNASC
	IPDDR4Controller
	IPMemDDR4
	IPMemHBM
)

var ipTypeNames = [...]string{
	"IP_MB",
	"IP_KERNEL",
	"IP_DNASC",
	"IP_DDR4_CONTROLLER",
	"IP_MEM_DDR4",
	"IP_MEM_HBM",
}

func (t IPType) String() string {
	if int(t) < len(ipTypeNames) {
		return ipTypeNames[t]
	}
	return "UNKNOWN(" + strconv.FormatUint(uint64(t), 10) + ")"
}

func (t IPType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// IPControl is the kernel control protocol packed into the properties word.
type IPControl uint8

const (
	APCtrlHS IPControl = iota
	APCtrlChain
	APCtrlNone
	APCtrlME
)

var ipControlNames = [...]string{"AP_CTRL_HS", "AP_CTRL_CHAIN", "AP_CTRL_NONE", "AP_CTRL_ME"}

func (c IPControl) String() string {
	if int(c) < len(ipControlNames) {
		return ipControlNames[c]
	}
	return "UNKNOWN(" + strconv.Itoa(int(c)) + ")"
}

func (c IPControl) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Properties word layout.
const (
	IPIntEnableMask    uint32 = 0x0001
	IPInterruptIDMask  uint32 = 0x00FE
	IPInterruptIDShift        = 1
	IPControlMask      uint32 = 0xFF0000
	IPControlShift            = 16
)

// IPUnionArm selects how an IP entry's 8-byte address union is read.
type IPUnionArm uint8

const (
	IPArmBaseAddress IPUnionArm = iota
	IPArmIndices
)

// DefaultIPUnionArm reads every entry as a base address.
func DefaultIPUnionArm(IPType, uint32) IPUnionArm { return IPArmBaseAddress }

// IPAddress is either an IPBaseAddress or IPIndices.
type IPAddress interface {
	isIPAddress()
}

// IPBaseAddress is the 64-bit register base of an IP.
type IPBaseAddress uint64

// IPIndices is the compact index pair used in place of a base address.
type IPIndices struct {
	Index   uint16
	PCIndex uint8
}

func (IPBaseAddress) isIPAddress() {}
func (IPIndices) isIPAddress()     {}

// IPData is one ip_data record.
type IPData struct {
	Type       IPType
	Properties uint32
	Address    IPAddress
	Name       string
}

// BaseAddress returns the base address when that is the decoded arm.
func (d IPData) BaseAddress() (uint64, bool) {
	a, ok := d.Address.(IPBaseAddress)
	return uint64(a), ok
}

// Indices returns the index pair when that is the decoded arm.
func (d IPData) Indices() (IPIndices, bool) {
	i, ok := d.Address.(IPIndices)
	return i, ok
}

func (d IPData) InterruptEnabled() bool { return d.Properties&IPIntEnableMask != 0 }

func (d IPData) InterruptID() uint8 {
	return uint8((d.Properties & IPInterruptIDMask) >> IPInterruptIDShift)
}

func (d IPData) Control() IPControl {
	return IPControl((d.Properties & IPControlMask) >> IPControlShift)
}

// IPLayout is the IP_LAYOUT payload.
type IPLayout struct {
	IPs Array[IPData]
}

func (*IPLayout) Kind() SectionKind { return SectionIPLayout }
func (*IPLayout) isPayload()        {}

const ipDataSize = 80

var ipLayoutLayout = arrayLayout{countWidth: 4, signed: true, dataOffset: 8, width: ipDataSize}

// DecodeIPLayout interprets an IP_LAYOUT payload.
func (c Codec) DecodeIPLayout(data []byte) (*IPLayout, error) {
	raw, n, err := c.records(data, ipLayoutLayout)
	if err != nil {
		return nil, err
	}
	return &IPLayout{IPs: newArray(raw, n, ipDataSize, c.decodeIPData)}, nil
}

func (c Codec) decodeIPData(b []byte) IPData {
	r := c.cursorAt(b, 0)
	d := IPData{
		Type:       IPType(r.u32()),
		Properties: r.u32(),
	}
	d.Address = c.decodeIPAddress(r.next(8), c.ipArm(d.Type, d.Properties))
	d.Name = r.str(IPNameWidth)
	return d
}

func (c Codec) decodeIPAddress(b []byte, arm IPUnionArm) IPAddress {
	r := c.cursorAt(b, 0)
	if arm == IPArmIndices {
		return IPIndices{Index: r.u16(), PCIndex: r.u8()}
	}
	return IPBaseAddress(r.u64())
}

func (c Codec) encodeIPAddress(p *putter, a IPAddress) {
	switch v := a.(type) {
	case IPIndices:
		p.u16(v.Index)
		p.u8(v.PCIndex)
		p.zeros(5)
	case IPBaseAddress:
		p.u64(uint64(v))
	default:
		p.u64(0)
	}
}

// ReinterpretIP reads the same union bytes through the other arm.
func (c Codec) ReinterpretIP(a IPAddress, arm IPUnionArm) IPAddress {
	p := c.newPutter(8)
	c.encodeIPAddress(p, a)
	return c.decodeIPAddress(p.buf, arm)
}

// EncodeIPLayout builds an IP_LAYOUT payload.
func (c Codec) EncodeIPLayout(ips []IPData) ([]byte, error) {
	p := c.newPutter(ipLayoutLayout.dataOffset + len(ips)*ipDataSize)
	p.putCount(ipLayoutLayout, len(ips))
	for _, d := range ips {
		p.u32(uint32(d.Type))
		p.u32(d.Properties)
		c.encodeIPAddress(p, d.Address)
		p.str(d.Name, IPNameWidth, "m_name")
	}
	return p.bytes()
}
