package report

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset-bundler/internal/plan"
)

func samplePlan(version string, assign map[string]string) *plan.Plan {
	p := plan.FromAssignments(version, assign)
	p.Patches = []plan.Patch{{Name: "Title", Assets: []string{"Assets/Scenes/Title.unity"}}}
	return p
}

func readZip(t *testing.T, data []byte) (names []string, files map[string]string) {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	files = make(map[string]string)
	for _, f := range zr.File {
		assert.True(t, f.Modified.Equal(fixedZipTime), f.Name)
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		names = append(names, f.Name)
		files[f.Name] = string(b)
	}
	return names, files
}

func TestFullReport(t *testing.T) {
	p := samplePlan("1.0.2", map[string]string{
		"Assets/Scenes/Title.unity": "_title",
		"Assets/Common/z.png":       "shared_assets_common",
		"Assets/UI/a.png":           "ui",
	})
	var buf bytes.Buffer
	require.NoError(t, Full(&buf, p, Options{}))

	names, files := readZip(t, buf.Bytes())
	assert.Equal(t, []string{"plan.json", "bundles.jsonl", "patches.json", "README.md", "TOC.md", "FINGERPRINT"}, names)

	var decoded plan.Plan
	require.NoError(t, json.Unmarshal([]byte(files["plan.json"]), &decoded))
	assert.Equal(t, p.Bundles, decoded.Bundles)

	assert.Equal(t,
		`{"bundleName":"_title","assetKeys":["Assets/Scenes/Title.unity"]}`+"\n"+
			`{"bundleName":"shared_assets_common","assetKeys":["Assets/Common/z.png"]}`+"\n"+
			`{"bundleName":"ui","assetKeys":["Assets/UI/a.png"]}`+"\n",
		files["bundles.jsonl"])
	assert.Contains(t, files["README.md"], "Bundle plan **1.0.2**")
	assert.Contains(t, files["README.md"], "- Shared bundles: 1")
	assert.NotContains(t, files["README.md"], "Skipped")
	assert.Contains(t, files["TOC.md"], "| 2 | shared_assets_common | 1 |")
	assert.Equal(t, p.Fingerprint()+"\n", files["FINGERPRINT"])
}

func TestFullReportIsReproducible(t *testing.T) {
	p := samplePlan("1.0.0", map[string]string{"Assets/a.png": "x"})
	var a, b bytes.Buffer
	require.NoError(t, Full(&a, p, Options{}))
	require.NoError(t, Full(&b, p, Options{}))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestDeltaReport(t *testing.T) {
	prev := samplePlan("1.0.0", map[string]string{"Assets/a.png": "x", "Assets/b.png": "x"})
	curr := samplePlan("1.0.1", map[string]string{"Assets/a.png": "x", "Assets/b.png": "y", "Assets/c.png": "y"})

	var buf bytes.Buffer
	require.NoError(t, Delta(&buf, prev, curr, Options{}))
	names, files := readZip(t, buf.Bytes())
	assert.Equal(t, []string{"delta.json", "plan.patch", "README.md"}, names)

	var d plan.Delta
	require.NoError(t, json.Unmarshal([]byte(files["delta.json"]), &d))
	assert.Equal(t, []string{"y"}, d.AddedBundles)
	assert.Equal(t, []plan.Move{{Asset: "Assets/b.png", From: "x", To: "y"}}, d.Moved)
	assert.Contains(t, files["plan.patch"], "+y\tAssets/c.png\n")
	assert.Contains(t, files["README.md"], "from plan **1.0.0** to plan **1.0.1**")
	assert.Contains(t, files["README.md"], "moved: 1")
}

func TestDeltaReportWithoutPrevious(t *testing.T) {
	curr := samplePlan("1.0.0", map[string]string{"Assets/a.png": "x"})
	var buf bytes.Buffer
	require.NoError(t, Delta(&buf, nil, curr, Options{Title: "First"}))
	_, files := readZip(t, buf.Bytes())
	assert.Contains(t, files["README.md"], "# First")
	assert.Contains(t, files["README.md"], "from plan **none**")
	assert.Contains(t, files["plan.patch"], "--- /dev/null")
}

func TestWriteFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := samplePlan("1.0.0", map[string]string{"Assets/a.png": "x"})
	require.NoError(t, WriteFile(fs, "out/report.zip", func(w io.Writer) error { return Full(w, p, Options{}) }))
	data, err := afero.ReadFile(fs, "out/report.zip")
	require.NoError(t, err)
	names, _ := readZip(t, data)
	assert.Len(t, names, 6)

	err = WriteFile(fs, "out/broken.zip", func(io.Writer) error { return assert.AnError })
	assert.ErrorIs(t, err, assert.AnError)
	exists, _ := afero.Exists(fs, "out/broken.zip")
	assert.False(t, exists)
}

func TestSanitizeZipPath(t *testing.T) {
	cases := map[string]string{
		"plan.json":     "plan.json",
		"/abs/x.json":   "abs/x.json",
		`C:\dir\x.json`: "dir/x.json",
		"a/../../b.txt": "b.txt",
		"./a/./b":       "a/b",
		"":              "entry",
		"..":            "entry",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeZipPath(in), in)
	}
}
