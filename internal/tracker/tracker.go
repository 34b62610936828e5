// Package tracker accumulates, for one analysis pass, which bundles reach
// each dependency and the provisional bundle of dependencies nobody declared.
//
// Policy: an undeclared asset is folded into the bundle that references it
// ("children_<owner>"). A later owner in the same pass overwrites that name.
// Once a second distinct owner appears the asset becomes a duplicate and the
// engine hoists it into a shared bundle, so its last provisional name is
// irrelevant.
package tracker

import (
	"asset-bundler/internal/naming"
	"asset-bundler/internal/sortutil"
)

// Seeded reports whether an asset already has a bundle from its declaration.
type Seeded func(asset string) bool

// Assignment is an asset committed to a bundle.
type Assignment struct {
	Asset  string
	Bundle string
}

// Tracker records reference sets, provisional names and duplicates. A
// Tracker is single-pass and not safe for concurrent use; callers that walk
// in parallel must replay Track calls in a fixed order.
type Tracker struct {
	namer  *naming.Namer
	seeded Seeded

	refs        map[string]map[string]struct{}
	provisional map[string]string
	order       []string // provisional keys in first-seen order
	dupSet      map[string]struct{}
	dups        []string // duplicates in first-seen order
}

// New creates a tracker for one pass.
func New(namer *naming.Namer, seeded Seeded) *Tracker {
	return &Tracker{
		namer:       namer,
		seeded:      seeded,
		refs:        make(map[string]map[string]struct{}),
		provisional: make(map[string]string),
		dupSet:      make(map[string]struct{}),
	}
}

// Track records that bundle owner depends on asset.
func (t *Tracker) Track(asset, owner string) error {
	set, ok := t.refs[asset]
	if !ok {
		set = make(map[string]struct{}, 1)
		t.refs[asset] = set
	}
	set[owner] = struct{}{}

	if t.seeded(asset) {
		return nil
	}

	name, err := t.namer.Name(naming.Explicit, asset, t.namer.Base(owner), false, true)
	if err != nil {
		return err
	}
	if _, seen := t.provisional[asset]; !seen {
		t.order = append(t.order, asset)
	}
	t.provisional[asset] = name

	if len(set) >= 2 {
		if _, dup := t.dupSet[asset]; !dup {
			t.dupSet[asset] = struct{}{}
			t.dups = append(t.dups, asset)
		}
	}
	return nil
}

// References returns the sorted owners of asset.
func (t *Tracker) References(asset string) []string {
	return sortutil.Keys(t.refs[asset])
}

// Provisional returns the current provisional name of asset.
func (t *Tracker) Provisional(asset string) (string, bool) {
	name, ok := t.provisional[asset]
	return name, ok
}

// SingleOwners returns provisional assignments of assets reached by exactly
// one bundle, in first-seen order.
func (t *Tracker) SingleOwners() []Assignment {
	out := make([]Assignment, 0, len(t.order))
	for _, a := range t.order {
		if len(t.refs[a]) == 1 {
			out = append(out, Assignment{Asset: a, Bundle: t.provisional[a]})
		}
	}
	return out
}

// Duplicates returns undeclared assets reached by two or more bundles, in
// the order they became duplicates.
func (t *Tracker) Duplicates() []string {
	return append([]string(nil), t.dups...)
}

// Reset discards reference sets and provisional names. Duplicates survive
// until the engine has promoted them.
func (t *Tracker) Reset() {
	t.refs = make(map[string]map[string]struct{})
	t.provisional = make(map[string]string)
	t.order = nil
}
