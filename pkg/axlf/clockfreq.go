package axlf

import "strconv"

// ClockType is the role of a clock.
type ClockType uint8

const (
	ClockUnused ClockType = iota
	ClockData
	ClockKernel
	ClockSystem
)

var clockTypeNames = [...]string{"CT_UNUSED", "CT_DATA", "CT_KERNEL", "CT_SYSTEM"}

func (t ClockType) String() string {
	if int(t) < len(clockTypeNames) {
		return clockTypeNames[t]
	}
	return "UNKNOWN(" + strconv.Itoa(int(t)) + ")"
}

func (t ClockType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// ClockFreq is one clock_freq record.
type ClockFreq struct {
	FreqMHz uint16
	Type    ClockType
	Name    string
}

// ClockFreqTopology is the CLOCK_FREQ_TOPOLOGY payload.
type ClockFreqTopology struct {
	Clocks Array[ClockFreq]
}

func (*ClockFreqTopology) Kind() SectionKind { return SectionClockFreqTopology }
func (*ClockFreqTopology) isPayload()        {}

const clockFreqSize = 136

var clockFreqLayout = arrayLayout{countWidth: 2, dataOffset: 2, width: clockFreqSize}

// DecodeClockFreqTopology interprets a CLOCK_FREQ_TOPOLOGY payload.
func (c Codec) DecodeClockFreqTopology(data []byte) (*ClockFreqTopology, error) {
	raw, n, err := c.records(data, clockFreqLayout)
	if err != nil {
		return nil, err
	}
	return &ClockFreqTopology{Clocks: newArray(raw, n, clockFreqSize, c.decodeClockFreq)}, nil
}

func (c Codec) decodeClockFreq(b []byte) ClockFreq {
	r := c.cursorAt(b, 0)
	f := ClockFreq{
		FreqMHz: r.u16(),
		Type:    ClockType(r.u8()),
	}
	r.skip(5)
	f.Name = r.str(ClockNameWidth)
	return f
}

// EncodeClockFreqTopology builds a CLOCK_FREQ_TOPOLOGY payload.
func (c Codec) EncodeClockFreqTopology(clocks []ClockFreq) ([]byte, error) {
	p := c.newPutter(clockFreqLayout.dataOffset + len(clocks)*clockFreqSize)
	p.putCount(clockFreqLayout, len(clocks))
	for _, f := range clocks {
		p.u16(f.FreqMHz)
		p.u8(uint8(f.Type))
		p.zeros(5)
		p.str(f.Name, ClockNameWidth, "m_name")
	}
	return p.bytes()
}
