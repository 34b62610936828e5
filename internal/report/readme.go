package report

import (
	"bytes"
	"text/template"
)

const fullReadmeTemplate = `# {{.Title}}

Bundle plan **{{.Version}}** produced by *asset-bundler*.

## Layout
- **plan.json**: the full plan (version, bundles, patches, skipped declarations).
- **bundles.jsonl**: one ` + "`{\"bundleName\", \"assetKeys\"}`" + ` object per line, the input of archive builders.
- **patches.json**: scene sub-packages and the assets tagged into them.
- **TOC.md**: bundles with their asset counts.
- **FINGERPRINT**: SHA-256 over the sorted ` + "`asset:bundle`" + ` lines.

## Summary
- Bundles: {{.Bundles}}
- Assets: {{.Assets}}
- Shared bundles: {{.Shared}}
- Patches: {{.Patches}}
{{- if .Skipped}}
- Skipped declarations: {{.Skipped}}
{{- end}}

## Conventions
- Every asset belongs to exactly one bundle.
- Bundles are sorted by name; assets inside a bundle are sorted.
- Entries carry a fixed timestamp so equal plans give equal archives.
`

const deltaReadmeTemplate = `# {{.Title}}

Changes from plan **{{.From}}** to plan **{{.To}}**.

## Layout
- **delta.json**: added and removed bundles, added, removed and moved assets.
- **plan.patch**: unified diff of the ` + "`<bundle>\\t<asset>`" + ` listings.

## Summary
- Bundles added: {{.AddedBundles}}, removed: {{.RemovedBundles}}
- Assets added: {{.Added}}, removed: {{.Removed}}, moved: {{.Moved}}
{{- if .Oversize}}
- The textual diff was omitted because it exceeded the size limit.
{{- end}}
`

var (
	fullReadme  = template.Must(template.New("full").Parse(fullReadmeTemplate))
	deltaReadme = template.Must(template.New("delta").Parse(deltaReadmeTemplate))
)

type fullCtx struct {
	Title   string
	Version string
	Bundles int
	Assets  int
	Shared  int
	Patches int
	Skipped int
}

type deltaCtx struct {
	Title          string
	From, To       string
	AddedBundles   int
	RemovedBundles int
	Added          int
	Removed        int
	Moved          int
	Oversize       bool
}

func render(t *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
