package axlf

import "strconv"

// MCSType identifies a configuration-memory chunk.
type MCSType uint8

const (
	MCSUnknown MCSType = iota
	MCSPrimary
	MCSSecondary
)

var mcsTypeNames = [...]string{"MCS_UNKNOWN", "MCS_PRIMARY", "MCS_SECONDARY"}

func (t MCSType) String() string {
	if int(t) < len(mcsTypeNames) {
		return mcsTypeNames[t]
	}
	return "UNKNOWN(" + strconv.Itoa(int(t)) + ")"
}

func (t MCSType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// MCSChunk is one mcs_chunk record. Offset is relative to the MCS section.
type MCSChunk struct {
	Type   MCSType
	Offset uint64
	Size   uint64
}

// MCS is the MCS payload.
type MCS struct {
	Chunks Array[MCSChunk]
}

func (*MCS) Kind() SectionKind { return SectionMCS }
func (*MCS) isPayload()        {}

const mcsChunkSize = 24

var mcsLayout = arrayLayout{countWidth: 1, signed: true, dataOffset: 8, width: mcsChunkSize}

// DecodeMCS interprets an MCS payload.
func (c Codec) DecodeMCS(data []byte) (*MCS, error) {
	raw, n, err := c.records(data, mcsLayout)
	if err != nil {
		return nil, err
	}
	return &MCS{Chunks: newArray(raw, n, mcsChunkSize, c.decodeMCSChunk)}, nil
}

func (c Codec) decodeMCSChunk(b []byte) MCSChunk {
	r := c.cursorAt(b, 0)
	ch := MCSChunk{Type: MCSType(r.u8())}
	r.skip(7)
	ch.Offset = r.u64()
	ch.Size = r.u64()
	return ch
}

// EncodeMCS builds an MCS payload.
func (c Codec) EncodeMCS(chunks []MCSChunk) ([]byte, error) {
	p := c.newPutter(mcsLayout.dataOffset + len(chunks)*mcsChunkSize)
	p.putCount(mcsLayout, len(chunks))
	for _, ch := range chunks {
		p.u8(uint8(ch.Type))
		p.zeros(7)
		p.u64(ch.Offset)
		p.u64(ch.Size)
	}
	return p.bytes()
}
