package axlf

import (
	"fmt"
	"strconv"
	"strings"
)

// SectionKind identifies the payload format of a section.
// Keep these stable forever; values outside the list decode as Opaque.
type SectionKind uint32

const (
	SectionBitstream SectionKind = iota
	SectionClearingBitstream
	SectionEmbeddedMetadata
	SectionFirmware
	SectionDebugData
	SectionSchedFirmware
	SectionMemTopology
	SectionConnectivity
	SectionIPLayout
	SectionDebugIPLayout
	SectionDesignCheckPoint
	SectionClockFreqTopology
	SectionMCS
	SectionBMC
	SectionBuildMetadata
	SectionKeyValueMetadata
	SectionUserMetadata
	SectionDNACertificate
	SectionPDI
	SectionBitstreamPartialPDI
	SectionPartitionMetadata
	SectionEmulationData
	SectionSystemMetadata

	sectionKindCount
)

var sectionKindNames = [sectionKindCount]string{
	"BITSTREAM",
	"CLEARING_BITSTREAM",
	"EMBEDDED_METADATA",
	"FIRMWARE",
	"DEBUG_DATA",
	"SCHED_FIRMWARE",
	"MEM_TOPOLOGY",
	"CONNECTIVITY",
	"IP_LAYOUT",
	"DEBUG_IP_LAYOUT",
	"DESIGN_CHECK_POINT",
	"CLOCK_FREQ_TOPOLOGY",
	"MCS",
	"BMC",
	"BUILD_METADATA",
	"KEYVALUE_METADATA",
	"USER_METADATA",
	"DNA_CERTIFICATE",
	"PDI",
	"BITSTREAM_PARTIAL_PDI",
	"PARTITION_METADATA",
	"EMULATION_DATA",
	"SYSTEM_METADATA",
}

// Known reports whether k is one of the enumerated section kinds.
func (k SectionKind) Known() bool { return k < sectionKindCount }

func (k SectionKind) String() string {
	if k.Known() {
		return sectionKindNames[k]
	}
	return "UNKNOWN(" + strconv.FormatUint(uint64(k), 10) + ")"
}

func (k SectionKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// SectionKinds returns every known kind in numeric order.
func SectionKinds() []SectionKind {
	out := make([]SectionKind, sectionKindCount)
	for i := range out {
		out[i] = SectionKind(i)
	}
	return out
}

// ParseSectionKind accepts a kind name (case-insensitive) or a decimal value.
func ParseSectionKind(s string) (SectionKind, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range sectionKindNames {
		if n == name {
			return SectionKind(i), nil
		}
	}
	if v, err := strconv.ParseUint(name, 10, 32); err == nil {
		return SectionKind(v), nil
	}
	return 0, fmt.Errorf("axlf: unknown section kind %q", s)
}
