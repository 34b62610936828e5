// Package plan holds the output of an analysis pass: every asset assigned to
// exactly one named bundle, plus the scene patches.
package plan

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"asset-bundler/internal/sortutil"
)

// Bundle is one output bundle as consumed by archive builders.
type Bundle struct {
	Name   string   `json:"bundleName" yaml:"bundleName"`
	Assets []string `json:"assetKeys" yaml:"assetKeys"`
}

// Patch lists the assets tagged while a scene was current.
type Patch struct {
	Name   string   `json:"name" yaml:"name"`
	Assets []string `json:"assets" yaml:"assets"`
}

// Plan is the result of one successful pass. Bundles are sorted by name and
// each bundle's assets are sorted.
type Plan struct {
	Version string   `json:"version" yaml:"version"`
	Bundles []Bundle `json:"bundles" yaml:"bundles"`
	Patches []Patch  `json:"patches,omitempty" yaml:"patches,omitempty"`
	Skipped []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// FromAssignments inverts an asset->bundle map into a sorted plan.
func FromAssignments(version string, assign map[string]string) *Plan {
	byBundle := make(map[string][]string)
	for asset, bundle := range assign {
		byBundle[bundle] = append(byBundle[bundle], asset)
	}
	p := &Plan{Version: version, Bundles: make([]Bundle, 0, len(byBundle))}
	for _, name := range sortutil.Keys(byBundle) {
		p.Bundles = append(p.Bundles, Bundle{
			Name:   name,
			Assets: sortutil.StablePathSort(byBundle[name]),
		})
	}
	return p
}

// BundleOf returns the bundle containing asset.
func (p *Plan) BundleOf(asset string) (string, bool) {
	for _, b := range p.Bundles {
		i := sort.SearchStrings(b.Assets, asset)
		if i < len(b.Assets) && b.Assets[i] == asset {
			return b.Name, true
		}
	}
	return "", false
}

// Assignments returns the asset->bundle map the plan was built from.
func (p *Plan) Assignments() map[string]string {
	out := make(map[string]string)
	for _, b := range p.Bundles {
		for _, a := range b.Assets {
			out[a] = b.Name
		}
	}
	return out
}

// AssetCount is the number of assigned assets.
func (p *Plan) AssetCount() int {
	n := 0
	for _, b := range p.Bundles {
		n += len(b.Assets)
	}
	return n
}

// Names returns the bundle names in plan order.
func (p *Plan) Names() []string {
	out := make([]string, len(p.Bundles))
	for i, b := range p.Bundles {
		out[i] = b.Name
	}
	return out
}

// Fingerprint is the SHA-256 hex of the sorted "<asset>:<bundle>\n" lines.
// Equal assignments give equal fingerprints regardless of version or patches.
func (p *Plan) Fingerprint() string {
	assign := p.Assignments()
	var buf bytes.Buffer
	for _, a := range sortutil.Keys(assign) {
		buf.WriteString(a)
		buf.WriteByte(':')
		buf.WriteString(assign[a])
		buf.WriteByte('\n')
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

// Listing renders the plan as one "<bundle>\t<asset>" line per asset, in plan
// order. It is the text form diffed between passes.
func (p *Plan) Listing() string {
	var buf bytes.Buffer
	for _, b := range p.Bundles {
		for _, a := range b.Assets {
			buf.WriteString(b.Name)
			buf.WriteByte('\t')
			buf.WriteString(a)
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}
