package cmd

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bundleerr "asset-bundler/internal/errors"
	"asset-bundler/internal/naming"
	"asset-bundler/internal/plan"
	"asset-bundler/internal/registry"
	"asset-bundler/internal/store"
)

const testGraph = `dependencies:
  Assets/UI/Title.prefab:
    - Assets/UI/btn.png
    - Assets/Shared/common.png
  Assets/Scenes/Menu.unity:
    - Assets/Shared/common.png
    - Assets/Fonts/main.ttf
`

// executeCommand runs a fresh command tree rooted at dir and returns the
// captured stdout.
func executeCommand(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	return executeCommandContext(t.Context(), dir, args...)
}

func executeCommandContext(ctx context.Context, dir string, args ...string) (string, error) {
	var out, errOut bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--root", dir}, args...))
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := executeCommand(t, dir, args...)
	require.NoError(t, err, "asset-bundler %v", args)
	return out
}

// setupProject writes a small project and isolates the user config dir.
func setupProject(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	dir := t.TempDir()
	files := map[string]string{
		"Assets/UI/Title.prefab":   "prefab",
		"Assets/UI/btn.png":        "png",
		"Assets/Shared/common.png": "png",
		"Assets/Scenes/Menu.unity": "scene",
		"Assets/Fonts/main.ttf":    "ttf",
		"Assets/Scripts/Player.cs": "class Player {}",
		"asset-graph.yaml":         testGraph,
	}
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return dir
}

func loadRecord(t *testing.T, dir string) *store.Record {
	t.Helper()
	rec, err := store.Load(afero.NewBasePathFs(afero.NewOsFs(), dir), store.DefaultPath)
	require.NoError(t, err)
	require.NotNil(t, rec)
	return rec
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCommand()
	assert.Equal(t, "asset-bundler", root.Use)

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"declare", "patch", "record", "analyze", "bundles", "version", "watch"} {
		assert.Contains(t, names, want)
	}
}

func TestDeclareAndAnalyze(t *testing.T) {
	dir := setupProject(t)

	out := mustRun(t, dir, "declare", "Assets/UI/Title.prefab")
	assert.Contains(t, out, "declared 1 assets (filename)")

	out = mustRun(t, dir, "declare", "Assets/Scenes/Menu.unity")
	assert.Contains(t, out, "current scene: Menu")

	out = mustRun(t, dir, "analyze")
	assert.Contains(t, out, "5 bundles, 5 assets, 1 patches, 0 skipped")

	rec := loadRecord(t, dir)
	p := rec.Plan()
	require.NotNil(t, p)
	assert.Equal(t, map[string]string{
		"Assets/UI/Title.prefab":   "_title",
		"Assets/UI/btn.png":        "children__title",
		"Assets/Scenes/Menu.unity": "_menu",
		"Assets/Fonts/main.ttf":    "children__menu",
		"Assets/Shared/common.png": "shared_assets_shared",
	}, p.Assignments())
	assert.Equal(t, p.Fingerprint(), rec.Fingerprint)
	assert.Equal(t, "Menu", rec.CurrentScene)

	out = mustRun(t, dir, "bundles", "--asset", "Assets/Shared/common.png")
	assert.Equal(t, "shared_assets_shared\n", out)

	out = mustRun(t, dir, "bundles", "--json")
	var bundles []plan.Bundle
	require.NoError(t, json.Unmarshal([]byte(out), &bundles))
	assert.Len(t, bundles, 5)
}

func TestDeclareDirectoryWithStrategy(t *testing.T) {
	dir := setupProject(t)

	out := mustRun(t, dir, "declare", "Assets/UI", "--group-by", "explicit", "--group", "ui")
	assert.Contains(t, out, "declared 2 assets (explicit)")

	rec := loadRecord(t, dir)
	require.Len(t, rec.Declarations, 2)
	for _, d := range rec.Declarations {
		assert.Equal(t, naming.Explicit, d.Strategy)
		assert.Equal(t, "ui", d.Group)
	}

	// Scripts are filtered out of a selection.
	_, err := executeCommand(t, dir, "declare", "Assets/Scripts")
	assert.ErrorContains(t, err, "nothing to declare")
}

func TestDeclareRejectsBadInput(t *testing.T) {
	dir := setupProject(t)

	_, err := executeCommand(t, dir, "declare", "Assets/UI", "--group-by", "explicit")
	assert.Error(t, err)

	_, err = executeCommand(t, dir, "declare", "Assets/UI", "--group-by", "sideways")
	assert.ErrorContains(t, err, "unknown grouping strategy")

	_, err = executeCommand(t, dir, "declare")
	assert.Error(t, err)
}

func TestPatchNeedsScene(t *testing.T) {
	dir := setupProject(t)

	_, err := executeCommand(t, dir, "patch", "Assets/UI/btn.png")
	assert.ErrorContains(t, err, "no current scene")

	mustRun(t, dir, "declare", "Assets/Scenes/Menu.unity")
	out := mustRun(t, dir, "patch", "Assets/UI/btn.png", "Assets/Fonts/main.ttf")
	assert.Contains(t, out, "patched 2 of 2 assets into Menu")

	rec := loadRecord(t, dir)
	require.Len(t, rec.Patches, 1)
	assert.Equal(t, []string{"Assets/Scenes/Menu.unity", "Assets/UI/btn.png", "Assets/Fonts/main.ttf"}, rec.Patches[0].Assets)
}

func TestRecord(t *testing.T) {
	dir := setupProject(t)

	_, err := executeCommand(t, dir, "record", "Assets/UI/btn.png")
	assert.ErrorContains(t, err, "auto-record is disabled")

	cfg := "record:\n  auto_record: true\n  auto_group_by_directories:\n    - Assets/UI\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "asset-bundler.yaml"), []byte(cfg), 0o644))

	out := mustRun(t, dir, "record", "Assets/UI/btn.png", "Assets/Fonts/main.ttf")
	assert.Equal(t, "Assets/UI/btn.png\tdirectory\nAssets/Fonts/main.ttf\tfilename\n", out)

	// Known assets are left alone.
	out = mustRun(t, dir, "record", "Assets/UI/btn.png")
	assert.Empty(t, out)
}

func TestAnalyzeReportsAndDiff(t *testing.T) {
	dir := setupProject(t)
	mustRun(t, dir, "declare", "Assets/UI/Title.prefab")
	mustRun(t, dir, "analyze")

	mustRun(t, dir, "declare", "Assets/Shared/common.png", "--group-by", "explicit", "--group", "common")
	mustRun(t, dir, "version", "bump")

	out := mustRun(t, dir, "analyze", "--diff", "--report")
	assert.Contains(t, out, "--- plan@0.0.0")
	assert.Contains(t, out, "+++ plan@0.0.1")
	assert.Contains(t, out, "-children__title\tAssets/Shared/common.png")
	assert.Contains(t, out, "+common\tAssets/Shared/common.png")
	assert.Contains(t, out, "wrote reports/plan-0.0.1.zip")
	assert.Contains(t, out, "wrote reports/delta-0.0.1.zip")

	zr, err := zip.OpenReader(filepath.Join(dir, "reports", "plan-0.0.1.zip"))
	require.NoError(t, err)
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "plan.json")
	assert.Contains(t, names, "FINGERPRINT")
}

func TestAnalyzeDryRunKeepsRecord(t *testing.T) {
	dir := setupProject(t)
	mustRun(t, dir, "declare", "Assets/UI/Title.prefab")
	mustRun(t, dir, "analyze", "--dry-run")

	assert.Nil(t, loadRecord(t, dir).Plan())

	_, err := executeCommand(t, dir, "bundles")
	assert.ErrorContains(t, err, "no plan recorded")
}

func TestAnalyzeWithoutGraph(t *testing.T) {
	dir := setupProject(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "asset-graph.yaml")))
	mustRun(t, dir, "declare", "Assets/UI/Title.prefab")

	out := mustRun(t, dir, "analyze", "--workers", "4")
	assert.Contains(t, out, "1 bundles, 1 assets")
}

func TestAnalyzeBrokenGraph(t *testing.T) {
	dir := setupProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "asset-graph.yaml"), []byte("dependencies: [unclosed"), 0o644))
	mustRun(t, dir, "declare", "Assets/UI/Title.prefab")

	_, err := executeCommand(t, dir, "analyze")
	assert.ErrorContains(t, err, "asset-graph.yaml")
}

func TestVersion(t *testing.T) {
	dir := setupProject(t)

	assert.Equal(t, "0.0.0\n", mustRun(t, dir, "version"))
	assert.Equal(t, "0.0.1\n", mustRun(t, dir, "version", "bump"))
	assert.Equal(t, "2.3.1\n", mustRun(t, dir, "version", "--set", "2.3"))
	assert.Equal(t, "2.3.1\n", mustRun(t, dir, "version"))

	_, err := executeCommand(t, dir, "version", "--set", "two")
	assert.Error(t, err)
	_, err = executeCommand(t, dir, "version", "sideways")
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	dir := setupProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "asset-bundler.yaml"), []byte("logging:\n  level: loud\n"), 0o644))

	_, err := executeCommand(t, dir, "version")
	assert.Error(t, err)

	_, err = executeCommand(t, dir, "--config", filepath.Join(dir, "missing.yaml"), "version")
	assert.ErrorContains(t, err, "read config")
}

func TestAnalyzePersistsPrunedPatches(t *testing.T) {
	dir := setupProject(t)
	mustRun(t, dir, "declare", "Assets/Scenes/Menu.unity")
	mustRun(t, dir, "patch", "Assets/UI/btn.png")
	mustRun(t, dir, "analyze")

	before := loadRecord(t, dir)
	require.Equal(t, []registry.Patch{
		{Name: "Menu", Assets: []string{"Assets/Scenes/Menu.unity", "Assets/UI/btn.png"}},
	}, before.Patches)

	// btn.png is not referenced by any bundle, so only the patch changes.
	require.NoError(t, os.Remove(filepath.Join(dir, "Assets", "UI", "btn.png")))
	mustRun(t, dir, "analyze")

	after := loadRecord(t, dir)
	assert.Equal(t, before.Fingerprint, after.Fingerprint)
	assert.Equal(t, []registry.Patch{
		{Name: "Menu", Assets: []string{"Assets/Scenes/Menu.unity"}},
	}, after.Patches)
	assert.Equal(t, after.Patches[0].Assets, after.Plan().Patches[0].Assets)
}

func TestBundlesWithEmptyPlan(t *testing.T) {
	dir := setupProject(t)
	mustRun(t, dir, "declare", "Assets/UI/Title.prefab")
	require.NoError(t, os.Remove(filepath.Join(dir, "Assets", "UI", "Title.prefab")))

	out := mustRun(t, dir, "analyze")
	assert.Contains(t, out, "0 bundles, 0 assets, 0 patches, 1 skipped")

	out = mustRun(t, dir, "bundles")
	assert.Contains(t, out, "plan 0.0.0")
}

func TestFailedAnalyzeLeavesRulesUntouched(t *testing.T) {
	rulesOf := func(t *testing.T, dir string) []byte {
		t.Helper()
		b, err := os.ReadFile(filepath.Join(dir, store.DefaultPath))
		require.NoError(t, err)
		return b
	}

	t.Run("malformed graph", func(t *testing.T) {
		dir := setupProject(t)
		mustRun(t, dir, "declare", "Assets/UI/Title.prefab")
		mustRun(t, dir, "analyze")
		mustRun(t, dir, "declare", "Assets/Scenes/Menu.unity")
		want := rulesOf(t, dir)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "asset-graph.yaml"), []byte("dependencies: [unclosed"), 0o644))
		_, err := executeCommand(t, dir, "analyze", "--report")
		require.Error(t, err)
		assert.Equal(t, want, rulesOf(t, dir))
		assert.NoDirExists(t, filepath.Join(dir, "reports"))
	})

	t.Run("explicit without group", func(t *testing.T) {
		dir := setupProject(t)
		rules := "formatVersion: \"1\"\nassets:\n  - asset: Assets/UI/Title.prefab\n    groupBy: explicit\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, store.DefaultPath), []byte(rules), 0o644))

		_, err := executeCommand(t, dir, "analyze")
		require.Error(t, err)
		assert.Equal(t, rules, string(rulesOf(t, dir)))
	})

	t.Run("cancelled", func(t *testing.T) {
		dir := setupProject(t)
		mustRun(t, dir, "declare", "Assets/UI/Title.prefab")
		want := rulesOf(t, dir)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		_, err := executeCommandContext(ctx, dir, "analyze")
		assert.ErrorIs(t, err, bundleerr.ErrCancelled)
		assert.Equal(t, want, rulesOf(t, dir))
	})
}
