// Package assetpath decides which keys take part in an analysis pass.
//
// Valid is the path/extension predicate: a key must live under the content
// root and must not be code, metadata or a build script. Ignored lists
// generated artifacts that a dependency walk reports but that are never
// tracked. Optional exclude globs (gobwas/glob syntax, '/' as separator)
// remove further keys.
package assetpath

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// Defaults used when Options leave a field nil.
var (
	DefaultRoot               = "Assets/"
	DefaultExcludedExtensions = []string{".dll", ".cs", ".meta", ".js", ".boo"}
	DefaultIgnoredSuffixes    = []string{".spriteatlas", ".giparams", "LightingData.asset"}
)

// Options configure a Filter.
type Options struct {
	Root               string
	ExcludedExtensions []string
	IgnoredSuffixes    []string
	Exclude            []string
}

// Filter implements the validity predicate.
type Filter struct {
	root     string
	excluded map[string]struct{}
	ignored  []string
	globs    []glob.Glob
}

// New compiles a Filter. Nil slices select the defaults; empty, non-nil
// slices disable the respective check.
func New(opts Options) (*Filter, error) {
	root := opts.Root
	if root == "" {
		root = DefaultRoot
	}
	exts := opts.ExcludedExtensions
	if exts == nil {
		exts = DefaultExcludedExtensions
	}
	ignored := opts.IgnoredSuffixes
	if ignored == nil {
		ignored = DefaultIgnoredSuffixes
	}

	f := &Filter{
		root:     root,
		excluded: make(map[string]struct{}, len(exts)),
		ignored:  append([]string(nil), ignored...),
	}
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		f.excluded[e] = struct{}{}
	}
	for _, p := range opts.Exclude {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", p, err)
		}
		f.globs = append(f.globs, g)
	}
	return f, nil
}

// MustNew is New for static options; it panics on a bad glob.
func MustNew(opts Options) *Filter {
	f, err := New(opts)
	if err != nil {
		panic(err)
	}
	return f
}

// Root returns the content root prefix.
func (f *Filter) Root() string { return f.root }

// Valid reports whether key may be seeded or tracked.
func (f *Filter) Valid(key string) bool {
	if !strings.HasPrefix(key, f.root) {
		return false
	}
	if _, bad := f.excluded[strings.ToLower(path.Ext(key))]; bad {
		return false
	}
	for _, g := range f.globs {
		if g.Match(key) {
			return false
		}
	}
	return true
}

// Ignored reports whether key is a generated artifact that is never tracked.
func (f *Filter) Ignored(key string) bool {
	for _, s := range f.ignored {
		if strings.HasSuffix(key, s) {
			return true
		}
	}
	return false
}
