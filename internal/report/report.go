// Package report writes reproducible ZIP reports of bundle plans.
//
// A full report contains:
//
//	plan.json
//	bundles.jsonl
//	patches.json
//	README.md
//	TOC.md
//	FINGERPRINT
//
// A delta report contains:
//
//	delta.json
//	plan.patch
//	README.md
//
// Entries are written in a fixed order with a fixed timestamp, so the same
// plan always produces the same bytes.
package report

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"asset-bundler/internal/diff"
	"asset-bundler/internal/plan"
)

// Options configure the reports.
type Options struct {
	// Title is the README heading. Default "Bundle plan".
	Title string
	// SharedPrefix identifies promoted bundles in the summary. Default
	// "shared_". Hashed names are never counted.
	SharedPrefix string
	// Diff controls the plan.patch entry of delta reports.
	Diff diff.Options
}

func (o Options) title(def string) string {
	if o.Title == "" {
		return def
	}
	return o.Title
}

func (o Options) sharedPrefix() string {
	if o.SharedPrefix == "" {
		return "shared_"
	}
	return o.SharedPrefix
}

// Full writes the full report of p to w.
func Full(w io.Writer, p *plan.Plan, opts Options) error {
	zw := zip.NewWriter(w)

	if err := writeJSON(zw, "plan.json", p); err != nil {
		return err
	}
	if err := writeJSONL(zw, "bundles.jsonl", p.Bundles); err != nil {
		return err
	}
	patches := p.Patches
	if patches == nil {
		patches = []plan.Patch{}
	}
	if err := writeJSON(zw, "patches.json", patches); err != nil {
		return err
	}

	shared := 0
	for _, b := range p.Bundles {
		if strings.HasPrefix(b.Name, opts.sharedPrefix()) {
			shared++
		}
	}
	readme, err := render(fullReadme, fullCtx{
		Title:   opts.title("Bundle plan"),
		Version: p.Version,
		Bundles: len(p.Bundles),
		Assets:  p.AssetCount(),
		Shared:  shared,
		Patches: len(p.Patches),
		Skipped: len(p.Skipped),
	})
	if err != nil {
		return err
	}
	if err := writeText(zw, "README.md", readme); err != nil {
		return err
	}
	if err := writeText(zw, "TOC.md", toc(p)); err != nil {
		return err
	}
	if err := writeText(zw, "FINGERPRINT", []byte(p.Fingerprint()+"\n")); err != nil {
		return err
	}
	return zw.Close()
}

func toc(p *plan.Plan) []byte {
	var b strings.Builder
	b.WriteString("# TOC\n\n| # | Bundle | Assets |\n|---:|:-----|-----:|\n")
	for i, bundle := range p.Bundles {
		fmt.Fprintf(&b, "| %d | %s | %d |\n", i+1, bundle.Name, len(bundle.Assets))
	}
	return []byte(b.String())
}

// Delta writes the change report from prev to curr to w. prev may be nil.
func Delta(w io.Writer, prev, curr *plan.Plan, opts Options) error {
	zw := zip.NewWriter(w)

	d := plan.Compare(prev, curr)
	if err := writeJSON(zw, "delta.json", d); err != nil {
		return err
	}
	patch, oversize := diff.Plans(prev, curr, opts.Diff)
	if err := writeText(zw, "plan.patch", []byte(patch)); err != nil {
		return err
	}

	from := "none"
	if prev != nil {
		from = prev.Version
	}
	readme, err := render(deltaReadme, deltaCtx{
		Title:          opts.title("Bundle plan delta"),
		From:           from,
		To:             curr.Version,
		AddedBundles:   len(d.AddedBundles),
		RemovedBundles: len(d.RemovedBundles),
		Added:          len(d.Added),
		Removed:        len(d.Removed),
		Moved:          len(d.Moved),
		Oversize:       oversize,
	})
	if err != nil {
		return err
	}
	if err := writeText(zw, "README.md", readme); err != nil {
		return err
	}
	return zw.Close()
}

// WriteFile renders a report with write and stores it at path on fsys,
// creating parent directories. Nothing is written if rendering fails.
func WriteFile(fsys afero.Fs, path string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(fsys, path, buf.Bytes(), 0o644)
}
