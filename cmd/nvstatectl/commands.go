package main

import (
	"context"
	"encoding"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/nvstate"
	"github.com/arloliu/nvstate/config"
	"github.com/arloliu/nvstate/endian"
	"github.com/arloliu/nvstate/errs"
	"github.com/arloliu/nvstate/format"
	"github.com/arloliu/nvstate/internal/logfields"
	"github.com/arloliu/nvstate/medium"
	"github.com/arloliu/nvstate/metrics"
	"github.com/arloliu/nvstate/section"
	"github.com/arloliu/nvstate/snapshot"
	"github.com/arloliu/nvstate/storage"
)

// openMedium loads the profile and opens its medium.
func openMedium(root *CLI) (*config.Profile, medium.Medium, func() error, error) {
	p, err := config.Load(root.Profile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load profile: %w", err)
	}

	med, closeFn, err := nvstate.OpenMedium(context.Background(), p.Medium)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open medium: %w", err)
	}

	return p, med, closeFn, nil
}

// FormatCmd implements the 'format' command.
type FormatCmd struct{}

func (c *FormatCmd) Run(g *Global, root *CLI) error {
	_, med, closeFn, err := openMedium(root)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	mgr, err := storage.NewManager(med, storage.WithLogger(g.Logger))
	if err != nil {
		return err
	}
	if err := mgr.Format(); err != nil {
		return err
	}

	fmt.Fprintln(g.Out, "medium formatted")

	return nil
}

// InspectCmd implements the 'inspect' command.
type InspectCmd struct{}

func (c *InspectCmd) Run(g *Global, root *CLI) error {
	p, med, closeFn, err := openMedium(root)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	image, err := snapshot.Capture(med, medium.Capacity(med))
	if err != nil {
		return err
	}
	g.Logger.Debug("medium captured", logfields.Bytes(len(image)), slog.Bool("host_order_matches_media", endian.IsNativeMedia()))

	pre, err := section.ParsePreamble(image)
	if err != nil {
		return err
	}
	if err := pre.Validate(); err != nil {
		fmt.Fprintf(g.Out, "medium: %d bytes, not initialized (%v)\n", len(image), err)
		return nil
	}
	fmt.Fprintf(g.Out, "medium: %d bytes, format v%d, %d section(s)\n", len(image), pre.Version, pre.SectionsCount)

	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OFFSET\tTYPE\tSIZE\tCRC1\tCRC2\tVALID")
	infos := snapshot.Describe(image)
	for _, s := range infos {
		fmt.Fprintf(tw, "%d\t%s\t%d\t0x%04X\t0x%04X\t%t\n", s.Offset, s.Type, s.Size, s.CRC1, s.CRC2, s.Valid)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	return inspectLayout(g, p, image, infos)
}

// inspectLayout prints the profile's element layout and, when the stored
// section matches it, each element's bytes.
func inspectLayout(g *Global, p *config.Profile, image []byte, infos []snapshot.SectionInfo) error {
	if len(p.Elements) == 0 {
		return nil
	}

	reg := storage.NewRegistry()
	for _, ec := range p.Elements {
		el, err := nvstate.NewElement(ec)
		if err != nil {
			return err
		}
		if _, err := reg.Add(ec.Name, storage.SizeOf(el), el); err != nil {
			return err
		}
	}

	var payload []byte
	for _, s := range infos {
		if s.Type == format.SectionElementState && s.Valid && int(s.Size) == reg.Total() {
			start := s.Offset + section.SectionPreambleSize
			payload = image[start : start+int64(s.Size)]
		}
	}

	fmt.Fprintf(g.Out, "\nlayout: %d element(s), %d bytes, fingerprint %016x\n", reg.Len(), reg.Total(), reg.Fingerprint())
	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OFFSET\tSIZE\tNAME\tID\tDATA")
	for _, rec := range reg.Records() {
		data := "-"
		if payload != nil {
			data = fmt.Sprintf("% x", payload[rec.Offset:rec.End()])
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%016x\t%s\n", rec.Offset, rec.Size, rec.Name, rec.ID, data)
	}

	return tw.Flush()
}

// ExportCmd implements the 'export' command.
type ExportCmd struct {
	Out         string `short:"o" help:"Snapshot file to write" required:"" type:"path"`
	Compression string `help:"Override the profile's snapshot compression (none, zstd, s2, lz4)"`
}

func (c *ExportCmd) Run(g *Global, root *CLI) error {
	p, med, closeFn, err := openMedium(root)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	comp := p.CompressionType()
	if c.Compression != "" {
		var ok bool
		if comp, ok = format.ParseCompression(c.Compression); !ok {
			return fmt.Errorf("%w: %q", errs.ErrUnsupportedCodec, c.Compression)
		}
	}

	f, err := os.Create(c.Out)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	meta, err := snapshot.Export(f, med, medium.Capacity(med),
		snapshot.WithCompression(comp),
		snapshot.WithLabel(p.Snapshot.Label))
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}

	g.Logger.Debug("snapshot written", slog.String("path", c.Out), slog.String("digest", fmt.Sprintf("%016x", meta.Digest)))
	fmt.Fprintf(g.Out, "exported %d bytes as %d bytes (%s), %d section(s)\n",
		meta.ImageSize, meta.PayloadSize, meta.Compression, len(meta.Sections))

	return nil
}

// ImportCmd implements the 'import' command.
type ImportCmd struct {
	In string `short:"i" help:"Snapshot file to restore" required:"" type:"existingfile"`
}

func (c *ImportCmd) Run(g *Global, root *CLI) error {
	f, err := os.Open(c.In)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	image, meta, err := snapshot.Read(f)
	if err != nil {
		return err
	}

	_, med, closeFn, err := openMedium(root)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	if err := snapshot.Restore(med, image); err != nil {
		return err
	}

	fmt.Fprintf(g.Out, "restored %d bytes from snapshot taken %s\n", meta.ImageSize, meta.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))

	return nil
}

// SimulateCmd implements the 'simulate' command.
type SimulateCmd struct {
	Set []string `short:"s" help:"Element change as name=value (switch: on/off/toggle, counter: N or +N, bytes: hex)" sep:"none"`
}

func (c *SimulateCmd) Run(g *Global, root *CLI) error {
	p, err := config.Load(root.Profile)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	reg := prometheus.NewRegistry()
	dev, err := nvstate.Open(context.Background(), p,
		storage.WithLogger(g.Logger),
		storage.WithRecorder(metrics.NewPrometheusRecorder(reg)))
	if err != nil {
		return err
	}
	defer func() { _ = dev.Close() }()

	fmt.Fprintln(g.Out, "loaded:")
	if err := printElements(g, dev); err != nil {
		return err
	}

	for _, change := range c.Set {
		name, value, ok := strings.Cut(change, "=")
		if !ok {
			return fmt.Errorf("change %q: want name=value", change)
		}
		el, ok := dev.Element(name)
		if !ok {
			return fmt.Errorf("change %q: unknown element %q", change, name)
		}
		tu, ok := el.(encoding.TextUnmarshaler)
		if !ok {
			return fmt.Errorf("change %q: element cannot be set", change)
		}
		if err := tu.UnmarshalText([]byte(value)); err != nil {
			return fmt.Errorf("change %q: %w", change, err)
		}
	}

	if err := dev.Save(); err != nil {
		return err
	}

	fmt.Fprintln(g.Out, "saved:")
	if err := printElements(g, dev); err != nil {
		return err
	}

	st := dev.Manager.Stats()
	fmt.Fprintf(g.Out, "commits=%d writes=%d bytes=%d skipped=%d formats=%d\n",
		st.Commits, st.Writes, st.BytesWritten, st.SavesSkipped, st.Formats)

	return printMetrics(g, reg)
}

func printElements(g *Global, dev *nvstate.Device) error {
	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	for _, name := range dev.Names() {
		el, _ := dev.Element(name)
		text := "?"
		if tm, ok := el.(encoding.TextMarshaler); ok {
			b, err := tm.MarshalText()
			if err != nil {
				return err
			}
			text = string(b)
		}
		fmt.Fprintf(tw, "  %s\t%s\n", name, text)
	}

	return tw.Flush()
}

func printMetrics(g *Global, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			value := m.GetCounter().GetValue()
			if h := m.GetHistogram(); h != nil {
				value = float64(h.GetSampleCount())
			}

			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			g.Logger.Debug("metric",
				slog.String("name", mf.GetName()),
				slog.String("labels", strings.Join(labels, ",")),
				slog.Float64("value", value))
		}
	}

	return nil
}
