package registry

import (
	"fmt"
	"path"

	"github.com/gobwas/glob"

	bundleerr "asset-bundler/internal/errors"
	"asset-bundler/internal/fsys"
	"asset-bundler/internal/naming"
)

// Options control automatic recording of loaded assets.
type Options struct {
	// AutoRecord enables Record.
	AutoRecord bool
	// AutoGroupByDirectories are glob patterns ('/' separated) matched
	// against an asset's directory; matches are grouped by directory.
	AutoGroupByDirectories []string
}

// Registry is the mutable store of declarations. It is not safe for
// concurrent use; a pass reads a copy via Declarations.
type Registry struct {
	namer *naming.Namer
	fs    fsys.FS
	opts  Options
	auto  []glob.Glob

	decls   []Declaration
	index   map[string]int
	patches []Patch
	byPatch map[string]int
	scene   string
	version Version
}

// New creates an empty registry. fs is consulted before an asset is added
// to a patch.
func New(namer *naming.Namer, fs fsys.FS, opts Options) (*Registry, error) {
	r := &Registry{
		namer:   namer,
		fs:      fs,
		opts:    opts,
		index:   make(map[string]int),
		byPatch: make(map[string]int),
	}
	for _, p := range opts.AutoGroupByDirectories {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("auto group pattern %q: %w", p, err)
		}
		r.auto = append(r.auto, g)
	}
	return r, nil
}

// Declare upserts the declaration for key. An explicit strategy without a
// group is rejected and leaves the registry untouched. Declaring a scene
// makes it the current scene; while a scene is current every declared key
// that exists on disk is added to that scene's patch.
func (r *Registry) Declare(key string, s naming.Strategy, group string) (Declaration, error) {
	key = naming.Normalize(key)
	switch {
	case key == "":
		return Declaration{}, bundleerr.NewDeclarationError(key, "empty asset key")
	case s < naming.None || s > naming.ByDirectory:
		return Declaration{}, bundleerr.NewDeclarationError(key, fmt.Sprintf("unknown strategy %d", int(s)))
	case s == naming.Explicit && group == "":
		return Declaration{}, bundleerr.NewDeclarationError(key, "explicit grouping requires a group name")
	}
	if s != naming.Explicit {
		group = ""
	}

	d := Declaration{Asset: key, Strategy: s, Group: group}
	if i, ok := r.index[key]; ok {
		r.decls[i] = d
	} else {
		r.index[key] = len(r.decls)
		r.decls = append(r.decls, d)
	}

	if r.namer.IsScene(key) {
		r.scene = r.namer.SceneName(key)
	}
	r.PatchAsset(key)
	return d, nil
}

// DeclareAll declares every key with the same rule, skipping directories.
// It stops at the first rejected key and returns what was declared so far.
func (r *Registry) DeclareAll(keys []string, s naming.Strategy, group string) ([]Declaration, error) {
	out := make([]Declaration, 0, len(keys))
	for _, k := range keys {
		if k == "" || r.fs.IsDir(k) {
			continue
		}
		d, err := r.Declare(k, s, group)
		if err != nil {
			return out, err
		}
		out = append(out, d)
	}
	return out, nil
}

// PatchAsset adds key to the current scene's patch. It reports false when no
// scene is current or key is not an existing file.
func (r *Registry) PatchAsset(key string) bool {
	key = naming.Normalize(key)
	if r.scene == "" || !r.fs.Exists(key) || r.fs.IsDir(key) {
		return false
	}
	i, ok := r.byPatch[r.scene]
	if !ok {
		i = len(r.patches)
		r.byPatch[r.scene] = i
		r.patches = append(r.patches, Patch{Name: r.scene})
	}
	for _, a := range r.patches[i].Assets {
		if a == key {
			return true
		}
	}
	r.patches[i].Assets = append(r.patches[i].Assets, key)
	return true
}

// Record declares an asset observed at load time. Assets whose directory
// matches an auto-group pattern are grouped by directory, others by file
// name. It is a no-op unless AutoRecord is enabled.
func (r *Registry) Record(key string) (Declaration, bool, error) {
	if !r.opts.AutoRecord {
		return Declaration{}, false, nil
	}
	d, err := r.Declare(key, r.strategyFor(naming.Normalize(key)), "")
	if err != nil {
		return Declaration{}, false, err
	}
	return d, true, nil
}

func (r *Registry) strategyFor(key string) naming.Strategy {
	dir := path.Dir(key)
	for _, g := range r.auto {
		if g.Match(dir) {
			return naming.ByDirectory
		}
	}
	return naming.ByFilename
}

// Lookup returns the declaration for key.
func (r *Registry) Lookup(key string) (Declaration, bool) {
	i, ok := r.index[naming.Normalize(key)]
	if !ok {
		return Declaration{}, false
	}
	return r.decls[i], true
}

// Len is the number of declarations.
func (r *Registry) Len() int { return len(r.decls) }

// Declarations returns a copy in insertion order.
func (r *Registry) Declarations() []Declaration {
	return append([]Declaration(nil), r.decls...)
}

// Patches returns a deep copy of the sub-packages in creation order.
func (r *Registry) Patches() []Patch {
	out := make([]Patch, len(r.patches))
	for i, p := range r.patches {
		out[i] = p.clone()
	}
	return out
}

// SetPatches replaces the sub-packages, typically with the pruned list of a
// finished analysis. Patches without assets are dropped.
func (r *Registry) SetPatches(patches []Patch) {
	r.patches = r.patches[:0]
	r.byPatch = make(map[string]int, len(patches))
	for _, p := range patches {
		if len(p.Assets) == 0 {
			continue
		}
		if _, ok := r.byPatch[p.Name]; ok {
			continue
		}
		r.byPatch[p.Name] = len(r.patches)
		r.patches = append(r.patches, p.clone())
	}
}

// CurrentScene is the base name of the last declared scene.
func (r *Registry) CurrentScene() string { return r.scene }

// Version returns the version triple.
func (r *Registry) Version() Version { return r.version }

// SetVersion sets major and minor; build is kept.
func (r *Registry) SetVersion(major, minor int) {
	r.version.Major, r.version.Minor = major, minor
}

// BumpBuild increments the build number and returns the new version string.
func (r *Registry) BumpBuild() string {
	r.version.Build++
	return r.version.String()
}

// Snapshot returns the persistable state.
func (r *Registry) Snapshot() State {
	return State{
		Version:      r.version,
		CurrentScene: r.scene,
		Declarations: r.Declarations(),
		Patches:      r.Patches(),
	}
}

// Restore replaces the registry content with s. Declarations are taken as
// stored; the engine reports the ones it cannot resolve.
func (r *Registry) Restore(s State) {
	r.version = s.Version
	r.scene = s.CurrentScene
	r.decls = r.decls[:0]
	r.index = make(map[string]int, len(s.Declarations))
	for _, d := range s.Declarations {
		d.Asset = naming.Normalize(d.Asset)
		if i, ok := r.index[d.Asset]; ok {
			r.decls[i] = d
			continue
		}
		r.index[d.Asset] = len(r.decls)
		r.decls = append(r.decls, d)
	}
	r.patches = r.patches[:0]
	r.byPatch = make(map[string]int, len(s.Patches))
	for _, p := range s.Patches {
		if _, ok := r.byPatch[p.Name]; ok {
			continue
		}
		r.byPatch[p.Name] = len(r.patches)
		r.patches = append(r.patches, p.clone())
	}
}
