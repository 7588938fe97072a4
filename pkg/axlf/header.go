package axlf

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Mode is the xclbin build mode recorded in the header.
type Mode uint32

const (
	ModeFlat Mode = iota
	ModePR
	ModeTandemStage2
	ModeTandemStage2WithPR
	ModeHWEmu
	ModeSWEmu
	ModeMax
)

var modeNames = [...]string{
	"XCLBIN_FLAT",
	"XCLBIN_PR",
	"XCLBIN_TANDEM_STAGE2",
	"XCLBIN_TANDEM_STAGE2_WITH_PR",
	"XCLBIN_HW_EMU",
	"XCLBIN_SW_EMU",
	"XCLBIN_MODE_MAX",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "UNKNOWN(" + strconv.FormatUint(uint64(m), 10) + ")"
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// ParseMode accepts a mode name with or without the XCLBIN_ prefix.
func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames {
		if s == n || "XCLBIN_"+s == n {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("axlf: unknown mode %q", s)
}

// ActionMask is the header action bitfield.
type ActionMask uint16

const (
	ActionLoadAIE ActionMask = 1 << 0
	ActionLoadPDI ActionMask = 1 << 1
)

// Has reports whether every bit of flag is set.
func (a ActionMask) Has(flag ActionMask) bool { return a&flag == flag }

// Header is the axlf_header record.
//
// The 16-byte union following PlatformVBNV holds either the name of a chained
// container or the xclbin UUID; which one applies depends on the consumer,
// so it is only reachable through NextAxlf and XclbinUUID.
type Header struct {
	Length              uint64
	TimeStamp           uint64
	FeatureRomTimeStamp uint64
	VersionPatch        uint16
	VersionMajor        uint8
	VersionMinor        uint8
	Mode                Mode
	ActionMask          ActionMask
	InterfaceUUID       uuid.UUID
	PlatformVBNV        string
	DebugBin            string
	NumSections         uint32

	ident [16]byte
}

// Version formats major.minor.patch.
func (h Header) Version() string {
	return fmt.Sprintf("%d.%d.%d", h.VersionMajor, h.VersionMinor, h.VersionPatch)
}

// XclbinUUID interprets the header union as the container UUID.
func (h Header) XclbinUUID() uuid.UUID { return uuid.UUID(h.ident) }

// NextAxlf interprets the header union as a chained container name.
func (h Header) NextAxlf() string { return cString(h.ident[:]) }

// SetXclbinUUID stores id in the header union.
func (h *Header) SetXclbinUUID(id uuid.UUID) { h.ident = id }

// SetNextAxlf stores a chained container name in the header union.
func (h *Header) SetNextAxlf(name string) error {
	if err := checkName(name, NextAxlfWidth, "m_next_axlf"); err != nil {
		return err
	}
	h.ident = [16]byte{}
	copy(h.ident[:], name)
	return nil
}

func (c Codec) decodeHeader(buf []byte) (Header, error) {
	r := c.cursorAt(buf, 0)
	h := Header{
		Length:              r.u64(),
		TimeStamp:           r.u64(),
		FeatureRomTimeStamp: r.u64(),
		VersionPatch:        r.u16(),
		VersionMajor:        r.u8(),
		VersionMinor:        r.u8(),
		Mode:                Mode(r.u32()),
		ActionMask:          ActionMask(r.u16()),
		InterfaceUUID:       uuid.UUID(r.array16()),
		PlatformVBNV:        r.str(PlatformVBNVWidth),
		ident:               r.array16(),
		DebugBin:            r.str(DebugBinWidth),
	}
	r.skip(2)
	h.NumSections = r.u32()
	if r.err != nil {
		return Header{}, r.err
	}
	return h, nil
}

func (c Codec) encodeHeader(h Header) ([]byte, error) {
	p := c.newPutter(HeaderSize)
	p.u64(h.Length)
	p.u64(h.TimeStamp)
	p.u64(h.FeatureRomTimeStamp)
	p.u16(h.VersionPatch)
	p.u8(h.VersionMajor)
	p.u8(h.VersionMinor)
	p.u32(uint32(h.Mode))
	p.u16(uint16(h.ActionMask))
	p.raw(h.InterfaceUUID[:])
	p.str(h.PlatformVBNV, PlatformVBNVWidth, "m_platformVBNV")
	p.raw(h.ident[:])
	p.str(h.DebugBin, DebugBinWidth, "m_debug_bin")
	p.zeros(2)
	p.u32(h.NumSections)
	return p.bytes()
}
