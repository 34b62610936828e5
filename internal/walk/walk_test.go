package walk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset-bundler/internal/assetpath"
	"asset-bundler/internal/fsys"
)

func project(t *testing.T) *fsys.Afero {
	t.Helper()
	fs := fsys.Memory()
	require.NoError(t, fs.Touch(
		"Assets/UI/b.png",
		"Assets/UI/a.png",
		"Assets/UI/a.png.meta",
		"Assets/UI/Icons/i.png",
		"Assets/UI/.hidden/x.png",
		"Assets/UI/Temp/t.png",
		"Assets/Scripts/Player.cs",
		"Assets/Scenes/Title.unity",
	))
	return fs
}

func TestExpandDirectoriesAndFiles(t *testing.T) {
	fs := project(t)
	got, err := Expand(fs.Fs(), []string{"Assets/UI/", "Assets/Scenes/Title.unity", "Assets/UI/a.png"}, Options{
		Filter: assetpath.MustNew(assetpath.Options{}),
		Skip:   []string{"Temp"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Assets/Scenes/Title.unity",
		"Assets/UI/Icons/i.png",
		"Assets/UI/a.png",
		"Assets/UI/b.png",
	}, got)
}

func TestExpandWithoutFilter(t *testing.T) {
	fs := project(t)
	got, err := Expand(fs.Fs(), []string{`Assets\Scripts`}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Assets/Scripts/Player.cs"}, got)
}

func TestExpandKeepsMissingKeys(t *testing.T) {
	fs := project(t)
	got, err := Expand(fs.Fs(), []string{"Assets/Later/new.png", ""}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Assets/Later/new.png"}, got)
}

func TestExpandMaxFiles(t *testing.T) {
	fs := project(t)
	got, err := Expand(fs.Fs(), []string{"Assets/UI"}, Options{MaxFiles: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
