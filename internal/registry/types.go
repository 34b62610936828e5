// Package registry holds the declared grouping of assets: which strategy each
// asset uses, the scene-derived sub-packages (patches) and the version triple.
//
// The registry is populated by users or tools before analysis and is the only
// state that survives between passes; everything the engine computes is
// rebuilt from it.
package registry

import (
	"fmt"

	"asset-bundler/internal/naming"
)

// Declaration is an immutable grouping rule for one asset.
type Declaration struct {
	Asset    string          `yaml:"asset" json:"asset"`
	Strategy naming.Strategy `yaml:"groupBy" json:"groupBy"`
	Group    string          `yaml:"group,omitempty" json:"group,omitempty"`
}

// Patch is a sub-package: the assets declared while a scene was current.
type Patch struct {
	Name   string   `yaml:"name" json:"name"`
	Assets []string `yaml:"assets" json:"assets"`
}

func (p Patch) clone() Patch {
	return Patch{Name: p.Name, Assets: append([]string(nil), p.Assets...)}
}

// Version is the major.minor.build triple stamped on every plan.
type Version struct {
	Major int `yaml:"major" json:"major"`
	Minor int `yaml:"minor" json:"minor"`
	Build int `yaml:"build" json:"build"`
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Build)
}

// State is the persisted form of a registry.
type State struct {
	Version      Version       `yaml:"version" json:"version"`
	CurrentScene string        `yaml:"currentScene,omitempty" json:"currentScene,omitempty"`
	Declarations []Declaration `yaml:"assets" json:"assets"`
	Patches      []Patch       `yaml:"patches,omitempty" json:"patches,omitempty"`
}
