// Package fsys is the filesystem collaborator of the planner: existence and
// directory checks over an afero filesystem rooted at the project directory.
package fsys

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FS answers the two questions the planner asks about asset keys.
type FS interface {
	Exists(key string) bool
	IsDir(key string) bool
}

// Afero implements FS on top of an afero.Fs. Keys are slash-separated and
// relative to the filesystem root.
type Afero struct {
	fs afero.Fs
}

// New wraps fs.
func New(fs afero.Fs) *Afero { return &Afero{fs: fs} }

// OS returns an FS rooted at the project directory.
func OS(root string) *Afero {
	return New(afero.NewBasePathFs(afero.NewOsFs(), root))
}

// Fs exposes the underlying filesystem for walkers and stores.
func (a *Afero) Fs() afero.Fs { return a.fs }

// Exists reports whether key names an existing file or directory.
func (a *Afero) Exists(key string) bool {
	if key == "" {
		return false
	}
	_, err := a.fs.Stat(toOS(key))
	return err == nil
}

// IsDir reports whether key names an existing directory.
func (a *Afero) IsDir(key string) bool {
	if key == "" {
		return false
	}
	info, err := a.fs.Stat(toOS(key))
	return err == nil && info.IsDir()
}

// WriteFile creates key with data, making parent directories. Used by
// fixtures and by the CLI when seeding example projects.
func (a *Afero) WriteFile(key string, data []byte) error {
	p := toOS(key)
	if err := a.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(a.fs, p, data, 0o644)
}

// Touch creates empty files for every key.
func (a *Afero) Touch(keys ...string) error {
	for _, k := range keys {
		if err := a.WriteFile(k, nil); err != nil {
			return err
		}
	}
	return nil
}

func toOS(key string) string {
	return filepath.FromSlash(strings.TrimPrefix(key, "/"))
}

// Memory returns an in-memory FS, mostly for tests.
func Memory() *Afero { return New(afero.NewMemMapFs()) }

var _ FS = (*Afero)(nil)
