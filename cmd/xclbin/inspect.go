package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/xclbin/internal/xclbinstore"
	"github.com/samcharles93/xclbin/pkg/axlf"
)

func inspectCmd() *cli.Command {
	var (
		showAll      bool
		showSections bool
		showKernels  bool
	)

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Inspect the header and sections of an xclbin container",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "all", Usage: "show everything", Destination: &showAll},
			&cli.BoolFlag{Name: "sections", Usage: "show section directory", Destination: &showSections},
			&cli.BoolFlag{Name: "kernels", Usage: "list kernels and their argument memory", Destination: &showKernels},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if showAll {
				showSections = true
				showKernels = true
			}

			path, err := fileArg(c)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			stat, err := os.Stat(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: stat xclbin path %q: %v", path, err), 1)
			}
			if stat.IsDir() {
				return cli.Exit(fmt.Sprintf("error: %q is a directory", path), 1)
			}
			opts, err := codecOptions()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			xf, err := xclbinstore.OpenContext(ctx, path, opts...)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open xclbin: %v", err), 1)
			}
			defer func() { _ = xf.Close() }()

			fmt.Printf("xclbin Inspect: %s\n", path)
			fmt.Printf("File: %s (%s)\n", filepath.Base(path), formatBytes(uint64(stat.Size())))
			printHeader(xf.Container())
			printSectionSummary(xf)

			if showSections {
				printSectionDirectory(xf.Sections())
			}
			if showKernels {
				kernels, err := xf.Kernels()
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: resolve kernels: %v", err), 1)
				}
				printKernels(kernels)
			}
			return nil
		},
	}
}

func printHeader(f *axlf.File) {
	h := f.Header()
	section("Header")
	row("version", h.Version())
	row("mode", h.Mode.String())
	row("platform_vbnv", h.PlatformVBNV)
	row("xclbin_uuid", h.XclbinUUID().String())
	row("interface_uuid", h.InterfaceUUID.String())
	if h.TimeStamp != 0 {
		row("timestamp", time.Unix(int64(h.TimeStamp), 0).UTC().Format(time.RFC3339))
	}
	if h.FeatureRomTimeStamp != 0 {
		row("feature_rom_timestamp", fmt.Sprintf("%d", h.FeatureRomTimeStamp))
	}
	row("debug_bin", h.DebugBin)
	row("action_mask", formatActions(h.ActionMask))
	row("unique_id", fmt.Sprintf("0x%x", f.UniqueID()))
	row("length", formatBytes(h.Length))
	rowInt("num_sections", int(h.NumSections))
}

func printSectionSummary(xf *xclbinstore.File) {
	section("Section Summary")
	for i, d := range xf.Sections() {
		fmt.Printf("[%2d] %-28s %s\n", i, d.Kind, summarize(xf.Container(), d))
	}
}

// summarize renders one line describing the decoded payload.
func summarize(f *axlf.File, d axlf.SectionDescriptor) string {
	p, err := f.Decode(d)
	if err != nil {
		return "error: " + err.Error()
	}
	switch p := p.(type) {
	case *axlf.MemTopology:
		used := 0
		for _, m := range p.Banks.All() {
			if m.Used {
				used++
			}
		}
		return fmt.Sprintf("%d banks (%d used)", p.Banks.Len(), used)
	case *axlf.Connectivity:
		return fmt.Sprintf("%d connections", p.Connections.Len())
	case *axlf.IPLayout:
		kernels := 0
		for _, ip := range p.IPs.All() {
			if ip.Type == axlf.IPKernel {
				kernels++
			}
		}
		return fmt.Sprintf("%d ips (%d kernels)", p.IPs.Len(), kernels)
	case *axlf.DebugIPLayout:
		return fmt.Sprintf("%d debug ips", p.IPs.Len())
	case *axlf.ClockFreqTopology:
		parts := make([]string, 0, p.Clocks.Len())
		for _, c := range p.Clocks.All() {
			parts = append(parts, fmt.Sprintf("%s=%dMHz", c.Name, c.FreqMHz))
		}
		return strings.Join(parts, " ")
	case *axlf.MCS:
		return fmt.Sprintf("%d chunks", p.Chunks.Len())
	case *axlf.BMC:
		return fmt.Sprintf("image=%s device=%s version=%s", p.ImageName, p.DeviceName, p.Version)
	case *axlf.Opaque:
		return formatBytes(uint64(len(p.Data)))
	}
	return ""
}

func printSectionDirectory(sections []axlf.SectionDescriptor) {
	section("Sections")
	for _, s := range sections {
		name := s.Name
		if name == "" {
			name = "-"
		}
		fmt.Printf("%-28s %-16s off=0x%-8x size=%s\n", s.Kind, name, s.Offset, formatBytes(s.Size))
	}
}

func printKernels(kernels []xclbinstore.Kernel) {
	section("Kernels")
	if len(kernels) == 0 {
		fmt.Println("(none)")
		return
	}
	for _, k := range kernels {
		irq := ""
		if k.InterruptEnabled {
			irq = " irq"
		}
		fmt.Printf("%s @0x%x %s%s\n", k.Name, k.BaseAddress, k.Control, irq)
		for _, a := range k.Args {
			mem := fmt.Sprintf("mem[%d]", a.MemIndex)
			if a.MemTag != "" {
				mem = fmt.Sprintf("%s %s (%s)", mem, a.MemTag, a.MemType)
			}
			fmt.Printf("  arg %-3d -> %s\n", a.Index, mem)
		}
	}
}

func formatActions(a axlf.ActionMask) string {
	var flags []string
	if a.Has(axlf.ActionLoadAIE) {
		flags = append(flags, "load_aie")
	}
	if a.Has(axlf.ActionLoadPDI) {
		flags = append(flags, "load_pdi")
	}
	if len(flags) == 0 {
		return "none"
	}
	return strings.Join(flags, ", ")
}

func section(title string) {
	line := strings.Repeat("-", len(title)+8)
	fmt.Printf("\n%s\n--- %s ---\n%s\n", line, title, line)
}

func row(label, value string) {
	if value == "" {
		return
	}
	fmt.Printf("%-24s %s\n", label+":", value)
}

func rowInt(label string, v int) {
	if v == 0 {
		return
	}
	row(label, fmt.Sprintf("%d", v))
}

func formatBytes(b uint64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
		tb = 1024 * gb
	)
	switch {
	case b >= tb:
		return fmt.Sprintf("%.2f TiB", float64(b)/float64(tb))
	case b >= gb:
		return fmt.Sprintf("%.2f GiB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.2f MiB", float64(b)/float64(mb))
	case b >= kb:
		return fmt.Sprintf("%.2f KiB", float64(b)/float64(kb))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
