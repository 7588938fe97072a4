package axlf

import "strconv"

// DebugIPType is the kind of a debug/profiling core.
type DebugIPType uint8

const (
	DebugIPUndefined DebugIPType = iota
	DebugIPLAPC
	DebugIPILA
	DebugIPAXIMMMonitor
	DebugIPAXITraceFunnel
	DebugIPAXIMonitorFIFOLite
	DebugIPAXIMonitorFIFOFull
	DebugIPAccelMonitor
	DebugIPAXIStreamMonitor
	DebugIPAXIStreamProtocolChecker
	DebugIPTraceS2MM
	DebugIPAXIDMA
	DebugIPTraceS2MMFull
	DebugIPAXINOC
	DebugIPAccelDeadlockDetector
)

var debugIPTypeNames = [...]string{
	"UNDEFINED",
	"LAPC",
	"ILA",
	"AXI_MM_MONITOR",
	"AXI_TRACE_FUNNEL",
	"AXI_MONITOR_FIFO_LITE",
	"AXI_MONITOR_FIFO_FULL",
	"ACCEL_MONITOR",
	"AXI_STREAM_MONITOR",
	"AXI_STREAM_PROTOCOL_CHECKER",
	"TRACE_S2MM",
	"AXI_DMA",
	"TRACE_S2MM_FULL",
	"AXI_NOC",
	"ACCEL_DEADLOCK_DETECTOR",
}

func (t DebugIPType) String() string {
	if int(t) < len(debugIPTypeNames) {
		return debugIPTypeNames[t]
	}
	return "UNKNOWN(" + strconv.Itoa(int(t)) + ")"
}

func (t DebugIPType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// DebugIPData is one debug_ip_data record. Index is stored split across a
// low byte at offset 1 and a high byte at offset 5.
type DebugIPData struct {
	Type        DebugIPType
	Index       uint16
	Properties  uint8
	Major       uint8
	Minor       uint8
	BaseAddress uint64
	Name        string
}

// DebugIPLayout is the DEBUG_IP_LAYOUT payload.
type DebugIPLayout struct {
	IPs Array[DebugIPData]
}

func (*DebugIPLayout) Kind() SectionKind { return SectionDebugIPLayout }
func (*DebugIPLayout) isPayload()        {}

const debugIPDataSize = 144

var debugIPLayoutLayout = arrayLayout{countWidth: 2, dataOffset: 8, width: debugIPDataSize}

// DecodeDebugIPLayout interprets a DEBUG_IP_LAYOUT payload.
func (c Codec) DecodeDebugIPLayout(data []byte) (*DebugIPLayout, error) {
	raw, n, err := c.records(data, debugIPLayoutLayout)
	if err != nil {
		return nil, err
	}
	return &DebugIPLayout{IPs: newArray(raw, n, debugIPDataSize, c.decodeDebugIPData)}, nil
}

func (c Codec) decodeDebugIPData(b []byte) DebugIPData {
	r := c.cursorAt(b, 0)
	d := DebugIPData{Type: DebugIPType(r.u8())}
	low := r.u8()
	d.Properties = r.u8()
	d.Major = r.u8()
	d.Minor = r.u8()
	high := r.u8()
	d.Index = uint16(high)<<8 | uint16(low)
	r.skip(2)
	d.BaseAddress = r.u64()
	d.Name = r.str(DebugIPNameWidth)
	return d
}

// EncodeDebugIPLayout builds a DEBUG_IP_LAYOUT payload.
func (c Codec) EncodeDebugIPLayout(ips []DebugIPData) ([]byte, error) {
	p := c.newPutter(debugIPLayoutLayout.dataOffset + len(ips)*debugIPDataSize)
	p.putCount(debugIPLayoutLayout, len(ips))
	for _, d := range ips {
		p.u8(uint8(d.Type))
		p.u8(uint8(d.Index))
		p.u8(d.Properties)
		p.u8(d.Major)
		p.u8(d.Minor)
		p.u8(uint8(d.Index >> 8))
		p.zeros(2)
		p.u64(d.BaseAddress)
		p.str(d.Name, DebugIPNameWidth, "m_name")
	}
	return p.bytes()
}
