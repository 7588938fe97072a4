package axlf

import "strconv"

// MemType is the kind of a memory bank.
type MemType uint8

const (
	MemDDR3 MemType = iota
	MemDDR4
	MemDRAM
	MemStreaming
	MemPreallocatedGlob
	MemARE
	MemHBM
	MemBRAM
	MemURAM
	MemStreamingConnection
)

var memTypeNames = [...]string{
	"MEM_DDR3",
	"MEM_DDR4",
	"MEM_DRAM",
	"MEM_STREAMING",
	"MEM_PREALLOCATED_GLOB",
	"MEM_ARE",
	"MEM_HBM",
	"MEM_BRAM",
	"MEM_URAM",
	"MEM_STREAMING_CONNECTION",
}

func (t MemType) String() string {
	if int(t) < len(memTypeNames) {
		return memTypeNames[t]
	}
	return "UNKNOWN(" + strconv.Itoa(int(t)) + ")"
}

func (t MemType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// IsStreaming reports whether the bank is a stream endpoint rather than an
// addressable region.
func (t MemType) IsStreaming() bool {
	return t == MemStreaming || t == MemStreamingConnection
}

// MemUnionArm selects how a bank's two unions are read.
type MemUnionArm uint8

const (
	MemArmRegion MemUnionArm = iota // size + base address
	MemArmStream                    // route id + flow id
)

// DefaultMemUnionArm reads streaming banks as streams and everything else as
// addressable regions.
func DefaultMemUnionArm(t MemType) MemUnionArm {
	if t.IsStreaming() {
		return MemArmStream
	}
	return MemArmRegion
}

// MemLocation is either a MemRegion or a MemStream.
type MemLocation interface {
	words() (int64, int64)
	isMemLocation()
}

// MemRegion is an addressable bank.
type MemRegion struct {
	Size        int64
	BaseAddress int64
}

// MemStream is a streaming endpoint.
type MemStream struct {
	RouteID int64
	FlowID  int64
}

func (r MemRegion) words() (int64, int64) { return r.Size, r.BaseAddress }
func (s MemStream) words() (int64, int64) { return s.RouteID, s.FlowID }
func (MemRegion) isMemLocation()          {}
func (MemStream) isMemLocation()          {}

// ReinterpretMem reads the same union bytes through the other arm.
func ReinterpretMem(loc MemLocation, arm MemUnionArm) MemLocation {
	var a, b int64
	if loc != nil {
		a, b = loc.words()
	}
	if arm == MemArmStream {
		return MemStream{RouteID: a, FlowID: b}
	}
	return MemRegion{Size: a, BaseAddress: b}
}

// MemData is one mem_data record.
type MemData struct {
	Type     MemType
	Used     bool
	Location MemLocation
	Tag      string
}

// Region returns the addressable view when that is the decoded arm.
func (m MemData) Region() (MemRegion, bool) {
	r, ok := m.Location.(MemRegion)
	return r, ok
}

// Stream returns the streaming view when that is the decoded arm.
func (m MemData) Stream() (MemStream, bool) {
	s, ok := m.Location.(MemStream)
	return s, ok
}

// MemTopology is the MEM_TOPOLOGY payload.
type MemTopology struct {
	Banks Array[MemData]
}

func (*MemTopology) Kind() SectionKind { return SectionMemTopology }
func (*MemTopology) isPayload()        {}

const memDataSize = 40

var memTopologyLayout = arrayLayout{countWidth: 4, signed: true, dataOffset: 8, width: memDataSize}

// DecodeMemTopology interprets a MEM_TOPOLOGY payload.
func (c Codec) DecodeMemTopology(data []byte) (*MemTopology, error) {
	raw, n, err := c.records(data, memTopologyLayout)
	if err != nil {
		return nil, err
	}
	return &MemTopology{Banks: newArray(raw, n, memDataSize, c.decodeMemData)}, nil
}

func (c Codec) decodeMemData(b []byte) MemData {
	r := c.cursorAt(b, 0)
	m := MemData{
		Type: MemType(r.u8()),
		Used: r.u8() != 0,
	}
	r.skip(6)
	loc := ReinterpretMem(MemRegion{Size: r.i64(), BaseAddress: r.i64()}, c.memArm(m.Type))
	m.Location = loc
	m.Tag = r.str(MemTagWidth)
	return m
}

// EncodeMemTopology builds a MEM_TOPOLOGY payload.
func (c Codec) EncodeMemTopology(banks []MemData) ([]byte, error) {
	p := c.newPutter(memTopologyLayout.dataOffset + len(banks)*memDataSize)
	p.putCount(memTopologyLayout, len(banks))
	for _, m := range banks {
		p.u8(uint8(m.Type))
		if m.Used {
			p.u8(1)
		} else {
			p.u8(0)
		}
		p.zeros(6)
		var a, b int64
		if m.Location != nil {
			a, b = m.Location.words()
		}
		p.i64(a)
		p.i64(b)
		p.str(m.Tag, MemTagWidth, "m_tag")
	}
	return p.bytes()
}
