package axlf

import (
	"strconv"

	"github.com/goccy/go-json"
)

// hex64 renders as a 0x-prefixed string, the way xclbinutil prints addresses.
type hex64 uint64

func (h hex64) MarshalText() ([]byte, error) {
	return []byte("0x" + strconv.FormatUint(uint64(h), 16)), nil
}

type mirrorDoc struct {
	Magic    string          `json:"m_magic"`
	UniqueID hex64           `json:"m_uniqueId"`
	Header   mirrorHeader    `json:"m_header"`
	Sections []mirrorSection `json:"m_sections"`
}

type mirrorHeader struct {
	Length              uint64     `json:"m_length"`
	TimeStamp           uint64     `json:"m_timeStamp"`
	FeatureRomTimeStamp uint64     `json:"m_featureRomTimeStamp"`
	VersionPatch        uint16     `json:"m_versionPatch"`
	VersionMajor        uint8      `json:"m_versionMajor"`
	VersionMinor        uint8      `json:"m_versionMinor"`
	Mode                Mode       `json:"m_mode"`
	ActionMask          ActionMask `json:"m_actionMask"`
	InterfaceUUID       string     `json:"m_interface_uuid"`
	PlatformVBNV        string     `json:"m_platformVBNV"`
	XclbinUUID          string     `json:"uuid"`
	NextAxlf            string     `json:"m_next_axlf,omitempty"`
	DebugBin            string     `json:"m_debug_bin"`
	NumSections         uint32     `json:"m_numSections"`
}

type mirrorSection struct {
	Kind    SectionKind `json:"m_sectionKind"`
	Name    string      `json:"m_sectionName"`
	Offset  hex64       `json:"m_sectionOffset"`
	Size    uint64      `json:"m_sectionSize"`
	Payload any         `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// MarshalMirror renders the whole container as JSON: header, descriptor table
// and every payload this package interprets. A section that fails to decode
// carries its error string in place of a payload.
func MarshalMirror(f *File) ([]byte, error) {
	if f == nil || f.data == nil {
		return nil, ErrClosed
	}
	h := f.header
	doc := mirrorDoc{
		Magic:    Magic[:magicSize-1],
		UniqueID: hex64(f.uniqueID),
		Header: mirrorHeader{
			Length:              h.Length,
			TimeStamp:           h.TimeStamp,
			FeatureRomTimeStamp: h.FeatureRomTimeStamp,
			VersionPatch:        h.VersionPatch,
			VersionMajor:        h.VersionMajor,
			VersionMinor:        h.VersionMinor,
			Mode:                h.Mode,
			ActionMask:          h.ActionMask,
			InterfaceUUID:       h.InterfaceUUID.String(),
			PlatformVBNV:        h.PlatformVBNV,
			XclbinUUID:          h.XclbinUUID().String(),
			DebugBin:            h.DebugBin,
			NumSections:         h.NumSections,
		},
		Sections: make([]mirrorSection, 0, len(f.sections)),
	}
	for i, d := range f.sections {
		s := mirrorSection{Kind: d.Kind, Name: d.Name, Offset: hex64(d.Offset), Size: d.Size}
		p, err := f.codec.decodeAt(f.data, d, i)
		if err != nil {
			s.Error = err.Error()
		} else {
			s.Payload = mirrorPayload(p)
		}
		doc.Sections = append(doc.Sections, s)
	}
	return json.MarshalIndent(doc, "", "  ")
}

// MarshalPayload renders one decoded payload as JSON.
func MarshalPayload(p Payload) ([]byte, error) {
	return json.MarshalIndent(mirrorPayload(p), "", "  ")
}

type mirrorMemData struct {
	Type        MemType `json:"m_type"`
	Used        bool    `json:"m_used"`
	Size        *hex64  `json:"m_size,omitempty"`
	BaseAddress *hex64  `json:"m_base_address,omitempty"`
	RouteID     *int64  `json:"route_id,omitempty"`
	FlowID      *int64  `json:"flow_id,omitempty"`
	Tag         string  `json:"m_tag"`
}

type mirrorConnection struct {
	ArgIndex      int32 `json:"arg_index"`
	IPLayoutIndex int32 `json:"m_ip_layout_index"`
	MemDataIndex  int32 `json:"mem_data_index"`
}

type mirrorIPData struct {
	Type        IPType  `json:"m_type"`
	Properties  hex64   `json:"properties"`
	BaseAddress *hex64  `json:"m_base_address,omitempty"`
	Index       *uint16 `json:"m_index,omitempty"`
	PCIndex     *uint8  `json:"m_pc_index,omitempty"`
	Name        string  `json:"m_name"`
}

type mirrorDebugIPData struct {
	Type        DebugIPType `json:"m_type"`
	Index       uint16      `json:"m_index"`
	Properties  uint8       `json:"m_properties"`
	Major       uint8       `json:"m_major"`
	Minor       uint8       `json:"m_minor"`
	BaseAddress hex64       `json:"m_base_address"`
	Name        string      `json:"m_name"`
}

type mirrorClockFreq struct {
	FreqMHz uint16    `json:"m_freq_Mhz"`
	Type    ClockType `json:"m_type"`
	Name    string    `json:"m_name"`
}

type mirrorMCSChunk struct {
	Type   MCSType `json:"m_type"`
	Offset hex64   `json:"m_offset"`
	Size   uint64  `json:"m_size"`
}

type mirrorBMC struct {
	Offset     hex64  `json:"m_offset"`
	Size       uint64 `json:"m_size"`
	ImageName  string `json:"m_image_name"`
	DeviceName string `json:"m_device_name"`
	Version    string `json:"m_version"`
	MD5        string `json:"m_md5value"`
}

type mirrorOpaque struct {
	Size int `json:"m_size"`
}

func mirrorPayload(p Payload) any {
	switch v := p.(type) {
	case *MemTopology:
		banks := make([]mirrorMemData, 0, v.Banks.Len())
		for _, m := range v.Banks.All() {
			banks = append(banks, mirrorMem(m))
		}
		return struct {
			Count   int             `json:"m_count"`
			MemData []mirrorMemData `json:"m_mem_data"`
		}{len(banks), banks}
	case *Connectivity:
		conns := make([]mirrorConnection, 0, v.Connections.Len())
		for _, c := range v.Connections.All() {
			conns = append(conns, mirrorConnection(c))
		}
		return struct {
			Count      int                `json:"m_count"`
			Connection []mirrorConnection `json:"m_connection"`
		}{len(conns), conns}
	case *IPLayout:
		ips := make([]mirrorIPData, 0, v.IPs.Len())
		for _, d := range v.IPs.All() {
			ips = append(ips, mirrorIP(d))
		}
		return struct {
			Count  int            `json:"m_count"`
			IPData []mirrorIPData `json:"m_ip_data"`
		}{len(ips), ips}
	case *DebugIPLayout:
		ips := make([]mirrorDebugIPData, 0, v.IPs.Len())
		for _, d := range v.IPs.All() {
			ips = append(ips, mirrorDebugIPData{
				Type:        d.Type,
				Index:       d.Index,
				Properties:  d.Properties,
				Major:       d.Major,
				Minor:       d.Minor,
				BaseAddress: hex64(d.BaseAddress),
				Name:        d.Name,
			})
		}
		return struct {
			Count       int                 `json:"m_count"`
			DebugIPData []mirrorDebugIPData `json:"m_debug_ip_data"`
		}{len(ips), ips}
	case *ClockFreqTopology:
		clocks := make([]mirrorClockFreq, 0, v.Clocks.Len())
		for _, c := range v.Clocks.All() {
			clocks = append(clocks, mirrorClockFreq(c))
		}
		return struct {
			Count     int               `json:"m_count"`
			ClockFreq []mirrorClockFreq `json:"m_clock_freq"`
		}{len(clocks), clocks}
	case *MCS:
		chunks := make([]mirrorMCSChunk, 0, v.Chunks.Len())
		for _, c := range v.Chunks.All() {
			chunks = append(chunks, mirrorMCSChunk{Type: c.Type, Offset: hex64(c.Offset), Size: c.Size})
		}
		return struct {
			Count int              `json:"m_count"`
			Chunk []mirrorMCSChunk `json:"m_chunk"`
		}{len(chunks), chunks}
	case *BMC:
		return mirrorBMC{
			Offset:     hex64(v.Offset),
			Size:       v.Size,
			ImageName:  v.ImageName,
			DeviceName: v.DeviceName,
			Version:    v.Version,
			MD5:        v.MD5,
		}
	case *Opaque:
		return mirrorOpaque{Size: len(v.Data)}
	default:
		return nil
	}
}

func mirrorMem(m MemData) mirrorMemData {
	out := mirrorMemData{Type: m.Type, Used: m.Used, Tag: m.Tag}
	switch loc := m.Location.(type) {
	case MemRegion:
		size, base := hex64(loc.Size), hex64(loc.BaseAddress)
		out.Size, out.BaseAddress = &size, &base
	case MemStream:
		route, flow := loc.RouteID, loc.FlowID
		out.RouteID, out.FlowID = &route, &flow
	}
	return out
}

func mirrorIP(d IPData) mirrorIPData {
	out := mirrorIPData{Type: d.Type, Properties: hex64(d.Properties), Name: d.Name}
	switch a := d.Address.(type) {
	case IPBaseAddress:
		base := hex64(a)
		out.BaseAddress = &base
	case IPIndices:
		idx, pc := a.Index, a.PCIndex
		out.Index, out.PCIndex = &idx, &pc
	}
	return out
}
