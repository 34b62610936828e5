package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset-bundler/internal/naming"
)

func seededSet(keys ...string) Seeded {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return func(a string) bool {
		_, ok := set[a]
		return ok
	}
}

func TestTrackSingleOwnerIsChildOfOwner(t *testing.T) {
	tr := New(naming.New(naming.Defaults()), seededSet())
	require.NoError(t, tr.Track("Assets/X/w.png", "_x"))
	require.NoError(t, tr.Track("Assets/X/w.png", "_x"))

	name, ok := tr.Provisional("Assets/X/w.png")
	require.True(t, ok)
	assert.Equal(t, "children__x", name)
	assert.Equal(t, []string{"_x"}, tr.References("Assets/X/w.png"))
	assert.Equal(t, []Assignment{{Asset: "Assets/X/w.png", Bundle: "children__x"}}, tr.SingleOwners())
	assert.Empty(t, tr.Duplicates())
}

func TestTrackLastWriterWinsAndFlagsDuplicates(t *testing.T) {
	tr := New(naming.New(naming.Defaults()), seededSet())
	require.NoError(t, tr.Track("Assets/Common/z.png", "_x"))
	require.NoError(t, tr.Track("Assets/Common/z.png", "_y"))
	require.NoError(t, tr.Track("Assets/Common/z.png", "_w"))

	name, _ := tr.Provisional("Assets/Common/z.png")
	assert.Equal(t, "children__w", name)
	assert.Equal(t, []string{"_w", "_x", "_y"}, tr.References("Assets/Common/z.png"))
	assert.Equal(t, []string{"Assets/Common/z.png"}, tr.Duplicates(), "re-adding a duplicate is a no-op")
	assert.Empty(t, tr.SingleOwners())
}

func TestTrackSeededAssetsAreNeverProvisionalOrDuplicate(t *testing.T) {
	tr := New(naming.New(naming.Defaults()), seededSet("Assets/UI/a.png"))
	require.NoError(t, tr.Track("Assets/UI/a.png", "ui"))
	require.NoError(t, tr.Track("Assets/UI/a.png", "_x"))

	_, ok := tr.Provisional("Assets/UI/a.png")
	assert.False(t, ok)
	assert.Empty(t, tr.Duplicates())
	assert.Equal(t, []string{"_x", "ui"}, tr.References("Assets/UI/a.png"))
}

func TestTrackStripsOwnerExtension(t *testing.T) {
	tr := New(naming.New(naming.Options{Extension: ".bundle"}), seededSet())
	require.NoError(t, tr.Track("Assets/X/w.png", "_x.bundle"))
	name, _ := tr.Provisional("Assets/X/w.png")
	assert.Equal(t, "children__x.bundle", name)
}

func TestTrackReservedAssetIgnoresOwner(t *testing.T) {
	tr := New(naming.New(naming.Defaults()), seededSet())
	require.NoError(t, tr.Track("Assets/Shaders/Lit.shader", "_x"))
	name, _ := tr.Provisional("Assets/Shaders/Lit.shader")
	assert.Equal(t, "shaders", name)
}

func TestSingleOwnersKeepFirstSeenOrder(t *testing.T) {
	tr := New(naming.New(naming.Defaults()), seededSet())
	for _, a := range []string{"Assets/c.png", "Assets/a.png", "Assets/b.png"} {
		require.NoError(t, tr.Track(a, "_x"))
	}
	require.NoError(t, tr.Track("Assets/a.png", "_x"))

	var got []string
	for _, s := range tr.SingleOwners() {
		got = append(got, s.Asset)
	}
	assert.Equal(t, []string{"Assets/c.png", "Assets/a.png", "Assets/b.png"}, got)
}

func TestResetKeepsDuplicates(t *testing.T) {
	tr := New(naming.New(naming.Defaults()), seededSet())
	require.NoError(t, tr.Track("Assets/Common/z.png", "_x"))
	require.NoError(t, tr.Track("Assets/Common/z.png", "_y"))
	require.NoError(t, tr.Track("Assets/X/w.png", "_x"))

	tr.Reset()
	assert.Empty(t, tr.SingleOwners())
	assert.Empty(t, tr.References("Assets/Common/z.png"))
	assert.Equal(t, []string{"Assets/Common/z.png"}, tr.Duplicates())
}
