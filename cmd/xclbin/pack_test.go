package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/samcharles93/xclbin/internal/logger"
	"github.com/samcharles93/xclbin/internal/xclbinstore"
	"github.com/samcharles93/xclbin/pkg/axlf"
)

func TestParseSectionSpec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want sectionSpec
		err  bool
	}{
		{in: "BITSTREAM=fpga.bit", want: sectionSpec{Kind: axlf.SectionBitstream, Path: "fpga.bit"}},
		{in: "ip_layout:kernels=out/ip.bin", want: sectionSpec{Kind: axlf.SectionIPLayout, Name: "kernels", Path: "out/ip.bin"}},
		{in: "42=blob", want: sectionSpec{Kind: axlf.SectionKind(42), Path: "blob"}},
		{in: "PDI", err: true},
		{in: "PDI=", err: true},
		{in: "NOT_A_KIND=x", err: true},
		{in: "PDI:a_name_that_is_too_long=x", err: true},
	}
	for _, tc := range tests {
		got, err := parseSectionSpec(tc.in)
		if tc.err {
			if err == nil {
				t.Fatalf("parseSectionSpec(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseSectionSpec(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parseSectionSpec(%q): got %+v want %+v", tc.in, got, tc.want)
		}
	}
}

func TestPackAndReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ips, err := axlf.NewCodec().EncodeIPLayout([]axlf.IPData{
		{Type: axlf.IPKernel, Address: axlf.IPBaseAddress(0x1000), Name: "vadd:vadd_1"},
	})
	if err != nil {
		t.Fatalf("encode ip layout: %v", err)
	}
	ipPath := filepath.Join(dir, "ip.bin")
	pdiPath := filepath.Join(dir, "top.pdi")
	if err := os.WriteFile(ipPath, ips, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pdiPath, []byte("pdi-image"), 0o644); err != nil {
		t.Fatal(err)
	}

	id := uuid.MustParse("0b5c8a3e-1d2f-4a6b-9c7d-8e9fa0b1c2d3")
	out := filepath.Join(dir, "build", "vadd.xclbin")
	err = packContainer(logger.Text(io.Discard, 0), packOptions{
		Out:      out,
		Platform: "xilinx_u250_gen3x16_xdma_4_1_202210_1",
		Mode:     axlf.ModePR,
		UUID:     id,
		Sections: []sectionSpec{
			{Kind: axlf.SectionIPLayout, Path: ipPath},
			{Kind: axlf.SectionPDI, Name: "top", Path: pdiPath},
		},
	})
	if err != nil {
		t.Fatalf("packContainer: %v", err)
	}

	xf, err := xclbinstore.Open(out)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = xf.Close() }()

	h, err := xf.Header()
	if err != nil {
		t.Fatalf("header: %v", err)
	}
	if h.XclbinUUID() != id || h.Mode != axlf.ModePR || h.NumSections != 2 {
		t.Fatalf("unexpected header: uuid=%s mode=%s sections=%d", h.XclbinUUID(), h.Mode, h.NumSections)
	}

	k, err := xf.Kernel("vadd")
	if err != nil {
		t.Fatalf("kernel lookup: %v", err)
	}
	if k.BaseAddress != 0x1000 {
		t.Fatalf("kernel base: got 0x%x want 0x1000", k.BaseAddress)
	}

	raw, err := sectionBytes(xf, axlf.SectionPDI, "raw")
	if err != nil {
		t.Fatalf("raw dump: %v", err)
	}
	if string(raw) != "pdi-image" {
		t.Fatalf("raw dump: got %q", raw)
	}
	js, err := sectionBytes(xf, axlf.SectionIPLayout, "json")
	if err != nil {
		t.Fatalf("json dump: %v", err)
	}
	if !bytes.Contains(js, []byte(`"vadd:vadd_1"`)) {
		t.Fatalf("json dump missing kernel name: %s", js)
	}
	if _, err := sectionBytes(xf, axlf.SectionPDI, "yaml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, err := sectionBytes(xf, axlf.SectionBMC, "raw"); !errors.Is(err, axlf.ErrSectionNotFound) {
		t.Fatalf("absent section: got %v want ErrSectionNotFound", err)
	}

	dumped := filepath.Join(dir, "dump", "pdi.bin")
	if err := writeOutput(dumped, raw); err != nil {
		t.Fatalf("writeOutput: %v", err)
	}
	if got, _ := os.ReadFile(dumped); string(got) != "pdi-image" {
		t.Fatalf("written dump: got %q", got)
	}
}

func TestPackMissingSectionFile(t *testing.T) {
	t.Parallel()

	err := packContainer(logger.Text(io.Discard, 0), packOptions{
		Out:      filepath.Join(t.TempDir(), "x.xclbin"),
		Sections: []sectionSpec{{Kind: axlf.SectionPDI, Path: filepath.Join(t.TempDir(), "missing")}},
	})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("got %v want ErrNotExist", err)
	}
}

func TestReportProblems(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if n := reportProblems(&buf, "a.xclbin", nil); n != 0 || !strings.Contains(buf.String(), "a.xclbin: ok") {
		t.Fatalf("clean report: n=%d out=%q", n, buf.String())
	}

	buf.Reset()
	err := errors.Join(
		&axlf.ReferenceError{Connection: 0, Field: "m_ip_layout_index", Value: 4, Limit: 1},
		&axlf.SectionError{Kind: axlf.SectionMemTopology, Index: 1, Err: axlf.ErrTruncatedSection},
	)
	if n := reportProblems(&buf, "b.xclbin", err); n != 2 {
		t.Fatalf("problem count: got %d want 2", n)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 2 {
		t.Fatalf("expected one line per problem, got:\n%s", buf.String())
	}
}
