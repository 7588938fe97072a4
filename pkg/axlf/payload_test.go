package axlf

import (
	"encoding/binary"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// le builds little-endian test payloads field by field.
type le []byte

func (b le) u8(v uint8) le   { return append(b, v) }
func (b le) u16(v uint16) le { return binary.LittleEndian.AppendUint16(b, v) }
func (b le) u32(v uint32) le { return binary.LittleEndian.AppendUint32(b, v) }
func (b le) u64(v uint64) le { return binary.LittleEndian.AppendUint64(b, v) }
func (b le) pad(n int) le    { return append(b, make([]byte, n)...) }
func (b le) str(s string, width int) le {
	return append(append(b, s...), make([]byte, width-len(s))...)
}

func TestDecodeConnectivityExample(t *testing.T) {
	data := le{}.
		u32(2).
		u32(0).u32(1).u32(0).
		u32(1).u32(1).u32(2)

	conn, err := NewCodec().DecodeConnectivity(data)
	require.NoError(t, err)
	require.Equal(t, 2, conn.Connections.Len())
	assert.Equal(t, []Connection{
		{ArgIndex: 0, IPLayoutIndex: 1, MemDataIndex: 0},
		{ArgIndex: 1, IPLayoutIndex: 1, MemDataIndex: 2},
	}, conn.Connections.Slice())
}

func TestDecodeIPLayoutExample(t *testing.T) {
	data := le{}.
		u32(1).pad(4).
		u32(uint32(IPKernel)).u32(0).u64(0x1000).str("conv2d_0", IPNameWidth)

	ips, err := NewCodec().DecodeIPLayout(data)
	require.NoError(t, err)
	require.Equal(t, 1, ips.IPs.Len())

	ip, err := ips.IPs.At(0)
	require.NoError(t, err)
	assert.Equal(t, IPKernel, ip.Type)
	assert.Equal(t, "conv2d_0", ip.Name)
	base, ok := ip.BaseAddress()
	require.True(t, ok)
	assert.Equal(t, uint64(0x1000), base)
}

func TestDecodeSections(t *testing.T) {
	for i, c := range []struct {
		kind SectionKind
		data []byte
		exp  any
	}{
		{
			kind: SectionMemTopology,
			data: le{}.u32(2).pad(4).
				u8(uint8(MemDDR4)).u8(1).pad(6).u64(0x400).u64(0x80000000).str("bank0", MemTagWidth).
				u8(uint8(MemStreamingConnection)).u8(0).pad(6).u64(7).u64(11).str("s_axis", MemTagWidth),
			exp: []MemData{
				{Type: MemDDR4, Used: true, Location: MemRegion{Size: 0x400, BaseAddress: 0x80000000}, Tag: "bank0"},
				{Type: MemStreamingConnection, Used: false, Location: MemStream{RouteID: 7, FlowID: 11}, Tag: "s_axis"},
			},
		},
		{
			kind: SectionDebugIPLayout,
			data: le{}.u16(1).pad(6).
				u8(uint8(DebugIPAXIMMMonitor)).u8(0x34).u8(2).u8(1).u8(0).u8(0x12).pad(2).u64(0x1800000).str("monitor", DebugIPNameWidth),
			exp: []DebugIPData{
				{Type: DebugIPAXIMMMonitor, Index: 0x1234, Properties: 2, Major: 1, Minor: 0, BaseAddress: 0x1800000, Name: "monitor"},
			},
		},
		{
			kind: SectionClockFreqTopology,
			data: le{}.u16(1).
				u16(300).u8(uint8(ClockKernel)).pad(5).str("clk_kernel", ClockNameWidth),
			exp: []ClockFreq{{FreqMHz: 300, Type: ClockKernel, Name: "clk_kernel"}},
		},
		{
			kind: SectionMCS,
			data: le{}.u8(2).pad(7).
				u8(uint8(MCSPrimary)).pad(7).u64(64).u64(128).
				u8(uint8(MCSSecondary)).pad(7).u64(192).u64(32),
			exp: []MCSChunk{
				{Type: MCSPrimary, Offset: 64, Size: 128},
				{Type: MCSSecondary, Offset: 192, Size: 32},
			},
		},
		{
			kind: SectionBMC,
			data: le{}.u64(0x40).u64(0x1000).
				str("bmc.bin", BMCNameWidth).str("u280", BMCNameWidth).str("5.1", BMCNameWidth).
				str("d41d8cd98f00b204e9800998ecf8427e", BMCMD5Width).pad(7),
			exp: &BMC{Offset: 0x40, Size: 0x1000, ImageName: "bmc.bin", DeviceName: "u280", Version: "5.1", MD5: "d41d8cd98f00b204e9800998ecf8427e"},
		},
	} {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			p, err := NewCodec().DecodePayload(c.kind, c.data)
			require.NoError(t, err)
			require.Equal(t, c.kind, p.Kind())

			var actual any
			switch v := p.(type) {
			case *MemTopology:
				actual = v.Banks.Slice()
			case *DebugIPLayout:
				actual = v.IPs.Slice()
			case *ClockFreqTopology:
				actual = v.Clocks.Slice()
			case *MCS:
				actual = v.Chunks.Slice()
			default:
				actual = p
			}
			assert.Equal(t, c.exp, actual)

			encoded, err := NewCodec().Encode(p)
			require.NoError(t, err)
			assert.Equal(t, c.data, encoded)
		})
	}
}

func TestDecodeRejectsBadCounts(t *testing.T) {
	for _, c := range []struct {
		name string
		kind SectionKind
		data []byte
		err  error
	}{
		{"empty connectivity", SectionConnectivity, nil, ErrTruncatedSection},
		{"short count", SectionMemTopology, []byte{1, 0}, ErrTruncatedSection},
		{"count past end", SectionConnectivity, le{}.u32(3).u32(0).u32(0).u32(0), ErrTruncatedSection},
		{"negative count", SectionConnectivity, le{}.u32(0xFFFFFFFF), ErrMalformedSection},
		{"uint16 clock count past end", SectionClockFreqTopology, le{}.u16(0x8000), ErrTruncatedSection},
		{"negative int8 count", SectionMCS, le{}.u8(0xFF).pad(7), ErrMalformedSection},
		{"short bmc", SectionBMC, make([]byte, bmcSize-1), ErrTruncatedSection},
	} {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewCodec().DecodePayload(c.kind, c.data)
			require.True(t, errors.Is(err, c.err), "got %v want %v", err, c.err)
		})
	}
}

func TestStrictSizes(t *testing.T) {
	data := le{}.u32(1).u32(0).u32(0).u32(0).pad(8)

	conn, err := NewCodec().DecodeConnectivity(data)
	require.NoError(t, err)
	require.Equal(t, 1, conn.Connections.Len())

	_, err = NewCodec(WithStrictSizes()).DecodeConnectivity(data)
	require.True(t, errors.Is(err, ErrMalformedSection))

	_, err = NewCodec(WithStrictSizes()).DecodeBMC(make([]byte, bmcSize+8))
	require.True(t, errors.Is(err, ErrMalformedSection))
}

func TestUnionSelectors(t *testing.T) {
	t.Run("mem", func(t *testing.T) {
		c := NewCodec()
		raw, err := c.EncodeMemTopology([]MemData{
			{Type: MemStreaming, Location: MemStream{RouteID: 5, FlowID: 6}},
		})
		require.NoError(t, err)

		asStream, err := c.DecodeMemTopology(raw)
		require.NoError(t, err)
		bank, _ := asStream.Banks.At(0)
		assert.Equal(t, MemStream{RouteID: 5, FlowID: 6}, bank.Location)

		regions := NewCodec(WithMemUnionSelector(func(MemType) MemUnionArm { return MemArmRegion }))
		asRegion, err := regions.DecodeMemTopology(raw)
		require.NoError(t, err)
		bank, _ = asRegion.Banks.At(0)
		r, ok := bank.Region()
		require.True(t, ok)
		assert.Equal(t, MemRegion{Size: 5, BaseAddress: 6}, r)
		assert.Equal(t, MemStream{RouteID: 5, FlowID: 6}, ReinterpretMem(r, MemArmStream))
	})

	t.Run("ip", func(t *testing.T) {
		indices := NewCodec(WithIPUnionSelector(func(IPType, uint32) IPUnionArm { return IPArmIndices }))
		raw, err := indices.EncodeIPLayout([]IPData{
			{Type: IPMemDDR4, Address: IPIndices{Index: 3, PCIndex: 1}, Name: "ddr4"},
		})
		require.NoError(t, err)

		ips, err := indices.DecodeIPLayout(raw)
		require.NoError(t, err)
		ip, _ := ips.IPs.At(0)
		idx, ok := ip.Indices()
		require.True(t, ok)
		assert.Equal(t, IPIndices{Index: 3, PCIndex: 1}, idx)

		byDefault, err := NewCodec().DecodeIPLayout(raw)
		require.NoError(t, err)
		ip, _ = byDefault.IPs.At(0)
		base, ok := ip.BaseAddress()
		require.True(t, ok)
		assert.Equal(t, uint64(0x010003), base)
		assert.Equal(t, IPIndices{Index: 3, PCIndex: 1}, NewCodec().ReinterpretIP(ip.Address, IPArmIndices))
	})
}

func TestIPProperties(t *testing.T) {
	ip := IPData{Properties: 1 | 5<<IPInterruptIDShift | uint32(APCtrlNone)<<IPControlShift}
	assert.True(t, ip.InterruptEnabled())
	assert.Equal(t, uint8(5), ip.InterruptID())
	assert.Equal(t, APCtrlNone, ip.Control())
}

func TestEncodeLimits(t *testing.T) {
	c := NewCodec()

	_, err := c.EncodeMCS(make([]MCSChunk, 128))
	require.True(t, errors.Is(err, ErrMalformedSection))

	_, err = c.EncodeMCS(make([]MCSChunk, 127))
	require.NoError(t, err)

	long := make([]byte, IPNameWidth)
	for i := range long {
		long[i] = 'k'
	}
	_, err = c.EncodeIPLayout([]IPData{{Type: IPKernel, Address: IPBaseAddress(0), Name: string(long)}})
	require.True(t, errors.Is(err, ErrNameTooLong))

	_, err = c.Encode(nil)
	require.Error(t, err)
}

func TestArrayAccess(t *testing.T) {
	conn, err := NewCodec().DecodeConnectivity(le{}.u32(3).
		u32(0).u32(0).u32(0).
		u32(1).u32(0).u32(0).
		u32(2).u32(0).u32(0))
	require.NoError(t, err)

	_, err = conn.Connections.At(3)
	require.True(t, errors.Is(err, ErrOutOfBounds))
	_, err = conn.Connections.At(-1)
	require.True(t, errors.Is(err, ErrOutOfBounds))

	// Ranging twice yields the same records; breaking early stops the walk.
	for range 2 {
		var args []int32
		for _, c := range conn.Connections.All() {
			args = append(args, c.ArgIndex)
		}
		assert.Equal(t, []int32{0, 1, 2}, args)
	}
	seen := 0
	for range conn.Connections.All() {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestCheckConnectivity(t *testing.T) {
	c := NewCodec()
	conn, err := c.DecodeConnectivity(le{}.u32(3).
		u32(0).u32(0).u32(1).
		u32(1).u32(2).u32(0).
		u32(2).u32(0xFFFFFFFF).u32(4))
	require.NoError(t, err)
	ips := mustDecode(t, c.EncodeIPLayout, c.DecodeIPLayout, []IPData{
		{Type: IPKernel, Address: IPBaseAddress(0x1000), Name: "k0"},
		{Type: IPKernel, Address: IPBaseAddress(0x2000), Name: "k1"},
	})
	mem := mustDecode(t, c.EncodeMemTopology, c.DecodeMemTopology, []MemData{
		{Type: MemDDR4, Used: true, Location: MemRegion{}, Tag: "bank0"},
		{Type: MemDDR4, Used: true, Location: MemRegion{}, Tag: "bank1"},
	})

	err = CheckConnectivity(conn, ips, mem)
	require.True(t, errors.Is(err, ErrDanglingReference))

	var refs []*ReferenceError
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var ref *ReferenceError
		require.True(t, errors.As(e, &ref))
		refs = append(refs, ref)
	}
	assert.Equal(t, []*ReferenceError{
		{Connection: 1, Field: "m_ip_layout_index", Value: 2, Limit: 2},
		{Connection: 2, Field: "m_ip_layout_index", Value: -1, Limit: 2},
		{Connection: 2, Field: "mem_data_index", Value: 4, Limit: 2},
	}, refs)

	require.NoError(t, CheckConnectivity(nil, ips, mem))
}

func TestParseNames(t *testing.T) {
	k, err := ParseSectionKind("ip_layout")
	require.NoError(t, err)
	assert.Equal(t, SectionIPLayout, k)

	k, err = ParseSectionKind("42")
	require.NoError(t, err)
	assert.Equal(t, SectionKind(42), k)

	_, err = ParseSectionKind("NOT_A_KIND")
	require.Error(t, err)

	m, err := ParseMode("HW_EMU")
	require.NoError(t, err)
	assert.Equal(t, ModeHWEmu, m)
	assert.Equal(t, "XCLBIN_HW_EMU", m.String())

	assert.Len(t, SectionKinds(), 23)
	assert.True(t, ActionMask(3).Has(ActionLoadPDI))
}

// tableLocator is a SectionLocator over a fixed descriptor list.
type tableLocator []SectionDescriptor

func (t tableLocator) FindSection(kind SectionKind) (SectionDescriptor, bool) {
	for _, d := range t {
		if d.Kind == kind {
			return d, true
		}
	}
	return SectionDescriptor{}, false
}

func TestDecodeLocated(t *testing.T) {
	conn := le{}.u32(1).u32(3).u32(0).u32(1)
	buf := append(le{}.pad(16), conn...)
	loc := tableLocator{
		{Kind: SectionConnectivity, Offset: 16, Size: uint64(len(conn))},
		{Kind: SectionPDI, Offset: 0, Size: 4},
	}

	p, err := DecodeLocated(NewCodec(), loc, buf, SectionConnectivity)
	require.NoError(t, err)
	c, ok := p.(*Connectivity)
	require.True(t, ok, "got %T", p)
	assert.Equal(t, []Connection{{ArgIndex: 3, IPLayoutIndex: 0, MemDataIndex: 1}}, c.Connections.Slice())

	p, err = DecodeLocated(NewCodec(), loc, buf, SectionPDI)
	require.NoError(t, err)
	assert.Len(t, p.(*Opaque).Data, 4)

	_, err = DecodeLocated(NewCodec(), loc, buf, SectionBMC)
	assert.True(t, errors.Is(err, ErrSectionNotFound), "got %v", err)
}

func TestEncodeBigEndian(t *testing.T) {
	c := NewCodec(WithByteOrder(binary.BigEndian))

	data, err := c.EncodeConnectivity([]Connection{{ArgIndex: 1, IPLayoutIndex: 2, MemDataIndex: 0x01020304}})
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0, 0, 0, 1,
		0, 0, 0, 1,
		0, 0, 0, 2,
		1, 2, 3, 4,
	}, data)

	clocks, err := c.EncodeClockFreqTopology([]ClockFreq{{FreqMHz: 0x012C, Type: ClockKernel, Name: "k"}})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 0x01, 0x2C}, clocks[:4])

	back, err := c.DecodeClockFreqTopology(clocks)
	require.NoError(t, err)
	assert.Equal(t, []ClockFreq{{FreqMHz: 300, Type: ClockKernel, Name: "k"}}, back.Clocks.Slice())
}
