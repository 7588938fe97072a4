package axlf

import (
	"bytes"
	"fmt"
)

// Field widths of the fixed-size names embedded in records.
const (
	SectionNameWidth  = 16
	PlatformVBNVWidth = 64
	DebugBinWidth     = 16
	NextAxlfWidth     = 16
	MemTagWidth       = 16
	IPNameWidth       = 64
	DebugIPNameWidth  = 128
	ClockNameWidth    = 128
	BMCNameWidth      = 64
	BMCMD5Width       = 33
)

// cString truncates b at the first NUL. Padding never reaches callers.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func checkName(s string, width int, field string) error {
	if len(s) >= width {
		return fmt.Errorf("%w: %s %q is %d bytes, field holds %d", ErrNameTooLong, field, s, len(s), width-1)
	}
	return nil
}
