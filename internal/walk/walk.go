// Package walk expands a selection of asset keys (files or directories) into
// a deterministic, filtered list of file keys, the way a deep selection in
// the editor would.
package walk

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"asset-bundler/internal/assetpath"
	"asset-bundler/internal/naming"
)

// Options control Expand.
type Options struct {
	// Filter drops keys that may not be declared. Nil keeps everything.
	Filter *assetpath.Filter
	// Skip lists base names (or base-name prefixes) of entries to skip
	// entirely, e.g. "Library" or "Temp". Hidden entries are always skipped.
	Skip []string
	// MaxFiles stops the walk once that many files were collected; 0 means
	// no limit.
	MaxFiles int
}

type walkState struct {
	fs    afero.Fs
	opts  Options
	seen  map[string]struct{}
	files []string
}

// Expand returns the sorted, unique file keys under keys. A file key is kept
// as is. A key that does not exist is kept too, so rules can be declared
// before the content lands; analysis skips it until it does.
func Expand(fsys afero.Fs, keys []string, opts Options) ([]string, error) {
	ws := &walkState{fs: fsys, opts: opts, seen: make(map[string]struct{})}
	for _, k := range keys {
		k = strings.TrimSuffix(naming.Normalize(k), "/")
		if k == "" {
			continue
		}
		info, err := fsys.Stat(filepath.FromSlash(k))
		if err != nil || !info.IsDir() {
			ws.add(k)
			continue
		}
		if err := afero.Walk(fsys, filepath.FromSlash(k), ws.visit); err != nil {
			return nil, err
		}
	}
	sort.Strings(ws.files)
	return ws.files, nil
}

func (ws *walkState) full() bool {
	return ws.opts.MaxFiles > 0 && len(ws.files) >= ws.opts.MaxFiles
}

func (ws *walkState) visit(path string, info fs.FileInfo, err error) error {
	if err != nil {
		return nil
	}
	if ws.full() {
		if info.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}
	if ws.shouldSkip(info.Name()) {
		if info.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}
	if info.IsDir() || !info.Mode().IsRegular() {
		return nil
	}
	ws.add(filepath.ToSlash(path))
	return nil
}

func (ws *walkState) shouldSkip(base string) bool {
	if strings.HasPrefix(base, ".") && base != "." {
		return true
	}
	for _, s := range ws.opts.Skip {
		if s != "" && strings.HasPrefix(base, s) {
			return true
		}
	}
	return false
}

func (ws *walkState) add(key string) {
	if ws.full() {
		return
	}
	if ws.opts.Filter != nil && !ws.opts.Filter.Valid(key) {
		return
	}
	if _, dup := ws.seen[key]; dup {
		return
	}
	ws.seen[key] = struct{}{}
	ws.files = append(ws.files, key)
}
