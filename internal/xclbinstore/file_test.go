package xclbinstore

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/samcharles93/xclbin/internal/logger"
	"github.com/samcharles93/xclbin/pkg/axlf"
)

var testUUID = uuid.MustParse("0c6a1f3e-5b7d-4a2c-9e81-3f4d2b6a7c90")

func writeTestXclbin(t *testing.T, conns []axlf.Connection) string {
	t.Helper()

	h := axlf.Header{PlatformVBNV: "xilinx_u50_gen3x16_xdma_5_202210_1", Mode: axlf.ModeFlat}
	h.SetXclbinUUID(testUUID)
	b := axlf.NewBuilder(h)

	c := axlf.NewCodec()
	add := func(kind axlf.SectionKind, raw []byte, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("encode %s: %v", kind, err)
		}
		if err := b.AddSection(kind, "", raw); err != nil {
			t.Fatalf("add %s: %v", kind, err)
		}
	}

	raw, err := c.EncodeMemTopology([]axlf.MemData{
		{Type: axlf.MemDDR4, Used: true, Location: axlf.MemRegion{Size: 1 << 24, BaseAddress: 0x4000000000}, Tag: "DDR[0]"},
		{Type: axlf.MemHBM, Used: true, Location: axlf.MemRegion{Size: 1 << 18, BaseAddress: 0x0}, Tag: "HBM[0]"},
	})
	add(axlf.SectionMemTopology, raw, err)

	raw, err = c.EncodeIPLayout([]axlf.IPData{
		{Type: axlf.IPMemDDR4, Address: axlf.IPBaseAddress(0), Name: "ddr4_0"},
		{Type: axlf.IPKernel, Properties: 1, Address: axlf.IPBaseAddress(0x1000), Name: "vadd:vadd_1"},
		{Type: axlf.IPKernel, Address: axlf.IPBaseAddress(0x2000), Name: "vmul:vmul_1"},
	})
	add(axlf.SectionIPLayout, raw, err)

	raw, err = c.EncodeConnectivity(conns)
	add(axlf.SectionConnectivity, raw, err)

	path := filepath.Join(t.TempDir(), "test.xclbin")
	if err := b.WriteFile(path); err != nil {
		t.Fatalf("write xclbin: %v", err)
	}
	return path
}

var goodConns = []axlf.Connection{
	{ArgIndex: 2, IPLayoutIndex: 1, MemDataIndex: 1},
	{ArgIndex: 0, IPLayoutIndex: 1, MemDataIndex: 0},
	{ArgIndex: 1, IPLayoutIndex: 1, MemDataIndex: 0},
	{ArgIndex: 0, IPLayoutIndex: 2, MemDataIndex: 1},
}

func TestOpenAndKernels(t *testing.T) {
	t.Parallel()

	f, err := Open(writeTestXclbin(t, goodConns))
	if err != nil {
		t.Fatalf("open xclbinstore: %v", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			t.Fatalf("close xclbinstore: %v", cerr)
		}
	}()

	id, err := f.UUID()
	if err != nil {
		t.Fatalf("uuid: %v", err)
	}
	if id != testUUID {
		t.Fatalf("uuid mismatch: got %v want %v", id, testUUID)
	}

	kernels, err := f.Kernels()
	if err != nil {
		t.Fatalf("kernels: %v", err)
	}
	if len(kernels) != 2 {
		t.Fatalf("kernel count: got %d want 2", len(kernels))
	}

	vadd := kernels[0]
	if vadd.Name != "vadd:vadd_1" || vadd.BaseAddress != 0x1000 || !vadd.InterruptEnabled {
		t.Fatalf("vadd mismatch: got %+v", vadd)
	}
	if len(vadd.Args) != 3 {
		t.Fatalf("vadd args: got %d want 3", len(vadd.Args))
	}
	for i, want := range []string{"DDR[0]", "DDR[0]", "HBM[0]"} {
		if vadd.Args[i].Index != int32(i) || vadd.Args[i].MemTag != want {
			t.Fatalf("vadd arg %d: got %+v want tag %s", i, vadd.Args[i], want)
		}
	}
	if vadd.Args[2].MemType != axlf.MemHBM {
		t.Fatalf("vadd arg 2 type: got %v want %v", vadd.Args[2].MemType, axlf.MemHBM)
	}

	if err := f.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestKernelLookup(t *testing.T) {
	t.Parallel()

	f, err := Open(writeTestXclbin(t, goodConns))
	if err != nil {
		t.Fatalf("open xclbinstore: %v", err)
	}
	defer func() { _ = f.Close() }()

	for _, name := range []string{"vmul", "vmul:vmul_1"} {
		k, err := f.Kernel(name)
		if err != nil {
			t.Fatalf("kernel %q: %v", name, err)
		}
		if k.BaseAddress != 0x2000 {
			t.Fatalf("kernel %q base: got %#x want %#x", name, k.BaseAddress, 0x2000)
		}
	}

	if _, err := f.Kernel("vsub"); !errors.Is(err, ErrKernelNotFound) {
		t.Fatalf("missing kernel: got %v want ErrKernelNotFound", err)
	}
}

func TestValidateLogsProblems(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := logger.WithContext(context.Background(),
		logger.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	path := writeTestXclbin(t, []axlf.Connection{
		{ArgIndex: 0, IPLayoutIndex: 5, MemDataIndex: 0},
		{ArgIndex: 1, IPLayoutIndex: 1, MemDataIndex: 9},
	})
	f, err := OpenContext(ctx, path)
	if err != nil {
		t.Fatalf("open xclbinstore: %v", err)
	}
	defer func() { _ = f.Close() }()

	err = f.Validate()
	if !errors.Is(err, axlf.ErrDanglingReference) {
		t.Fatalf("validate: got %v want ErrDanglingReference", err)
	}
	if got := len(Problems(err)); got != 2 {
		t.Fatalf("problem count: got %d want 2", got)
	}

	out := buf.String()
	if !strings.Contains(out, "opened xclbin") {
		t.Fatalf("missing open log:\n%s", out)
	}
	if strings.Count(out, "validation problem") != 2 {
		t.Fatalf("expected two validation warnings:\n%s", out)
	}

	// Dangling arguments still list, without a resolved bank.
	k, err := f.Kernel("vadd")
	if err != nil {
		t.Fatalf("kernel: %v", err)
	}
	if len(k.Args) != 1 || k.Args[0].MemTag != "" {
		t.Fatalf("dangling arg: got %+v", k.Args)
	}
}

func TestSectionAccessAndClose(t *testing.T) {
	t.Parallel()

	f, err := Open(writeTestXclbin(t, goodConns))
	if err != nil {
		t.Fatalf("open xclbinstore: %v", err)
	}

	p, err := f.Section(axlf.SectionIPLayout)
	if err != nil {
		t.Fatalf("section: %v", err)
	}
	if p.Kind() != axlf.SectionIPLayout {
		t.Fatalf("section kind: got %v", p.Kind())
	}
	if _, err := f.SectionData(axlf.SectionBitstream); !errors.Is(err, axlf.ErrSectionNotFound) {
		t.Fatalf("missing bitstream: got %v want ErrSectionNotFound", err)
	}
	mirror, err := f.Mirror()
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}
	if !bytes.Contains(mirror, []byte(`"vadd:vadd_1"`)) {
		t.Fatalf("mirror missing kernel name:\n%s", mirror)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := f.Kernels(); !errors.Is(err, axlf.ErrClosed) {
		t.Fatalf("kernels after close: got %v want ErrClosed", err)
	}
	if _, err := f.UUID(); !errors.Is(err, axlf.ErrClosed) {
		t.Fatalf("uuid after close: got %v want ErrClosed", err)
	}
}
