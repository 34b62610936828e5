// Package naming computes canonical bundle names.
//
// A name depends only on the asset key, the grouping strategy, the explicit
// group and the shared/child flags. There are no counters and no iteration
// order inputs, so the same inputs always produce the same name.
package naming

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"path"
	"strings"
)

var (
	// ErrUnbundled is returned for the None strategy: the caller must skip
	// the asset.
	ErrUnbundled = errors.New("asset is not bundled")
	// ErrMissingGroup is returned for an explicit strategy without a group.
	ErrMissingGroup = errors.New("explicit grouping requires a group name")
)

const (
	childPrefix  = "children_"
	sharedPrefix = "shared_"
)

// Hasher turns a bundle name into an opaque, stable name.
type Hasher func(name string) string

// MD5 is the default Hasher: lower-case hex MD5 of the name.
func MD5(name string) string {
	sum := md5.Sum([]byte(name))
	return hex.EncodeToString(sum[:])
}

// Options configure a Namer.
type Options struct {
	Extension         string // appended to every name, may be empty
	NameByHash        bool
	SceneExtension    string // "" disables scene handling
	ReservedExtension string // "" disables the reserved group
	ReservedGroup     string // default "shaders"
	Hasher            Hasher // default MD5
}

// Defaults returns the stock options: Unity scenes and shaders.
func Defaults() Options {
	return Options{
		SceneExtension:    ".unity",
		ReservedExtension: ".shader",
		ReservedGroup:     "shaders",
	}
}

// Namer implements the naming rules.
type Namer struct {
	opts Options
}

// New returns a Namer. Empty extensions are taken literally; start from
// Defaults for the stock behaviour.
func New(opts Options) *Namer {
	if opts.ReservedGroup == "" {
		opts.ReservedGroup = "shaders"
	}
	if opts.Hasher == nil {
		opts.Hasher = MD5
	}
	return &Namer{opts: opts}
}

// Extension returns the configured bundle file extension.
func (n *Namer) Extension() string { return n.opts.Extension }

// IsScene reports whether key has the scene extension.
func (n *Namer) IsScene(key string) bool {
	return n.opts.SceneExtension != "" && strings.HasSuffix(key, n.opts.SceneExtension)
}

// IsReserved reports whether key is forced into the reserved group.
func (n *Namer) IsReserved(key string) bool {
	return n.opts.ReservedExtension != "" && strings.HasSuffix(key, n.opts.ReservedExtension)
}

// SceneName is the base name of a scene key ("Assets/Scenes/Title.unity" -> "Title").
func (n *Namer) SceneName(key string) string {
	return stem(Normalize(key))
}

// Base strips the configured extension from a bundle name so it can be
// reused as a group (children bundles are named after their owner).
func (n *Namer) Base(bundle string) string {
	if n.opts.Extension == "" {
		return bundle
	}
	return strings.TrimSuffix(bundle, n.opts.Extension)
}

// Name returns the bundle name for key.
//
// Precedence: the reserved extension forces Explicit with the reserved group
// and drops the child flag; a scene forces ByFilename; otherwise s is used.
func (n *Namer) Name(s Strategy, key, group string, shared, child bool) (string, error) {
	key = Normalize(key)
	switch {
	case n.IsReserved(key):
		s, group, child = Explicit, n.opts.ReservedGroup, false
	case n.IsScene(key):
		s = ByFilename
	}

	var base string
	switch s {
	case Explicit:
		if group == "" {
			return "", ErrMissingGroup
		}
		base = group
	case ByFilename:
		// The sub-path of a bare file name is always empty, so the base
		// keeps only the leading separator: "Title.unity" -> "_Title".
		base = "_" + stem(key)
	case ByDirectory:
		base = dirName(key)
	default:
		return "", ErrUnbundled
	}

	switch {
	case child:
		base = childPrefix + base
	case shared:
		base = sharedPrefix + base
	}

	name := strings.ToLower(strings.TrimRight(base, "_"))
	if n.opts.NameByHash {
		name = n.opts.Hasher(name)
	}
	return name + n.opts.Extension, nil
}

// Normalize converts a key to forward slashes.
func Normalize(key string) string {
	return strings.ReplaceAll(key, `\`, "/")
}

func stem(key string) string {
	base := path.Base(key)
	return strings.TrimSuffix(base, path.Ext(base))
}

func dirName(key string) string {
	dir := path.Dir(key)
	if dir == "." || dir == "/" {
		return ""
	}
	return strings.ReplaceAll(dir, "/", "_")
}
