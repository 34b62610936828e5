package plan

import (
	"sort"

	"asset-bundler/internal/sortutil"
)

// Assignment is an asset and the bundle it belongs to.
type Assignment struct {
	Asset  string `json:"asset" yaml:"asset"`
	Bundle string `json:"bundle" yaml:"bundle"`
}

// Move is an asset that changed bundle between two plans.
type Move struct {
	Asset string `json:"asset" yaml:"asset"`
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
}

// Delta is the change set between two plans. All lists are sorted.
//
//   - AddedBundles / RemovedBundles: bundle names present on one side only
//   - Added / Removed: assets assigned on one side only
//   - Moved: assets assigned on both sides to different bundles
type Delta struct {
	AddedBundles   []string     `json:"addedBundles"`
	RemovedBundles []string     `json:"removedBundles"`
	Added          []Assignment `json:"added"`
	Removed        []Assignment `json:"removed"`
	Moved          []Move       `json:"moved"`
}

// Empty reports whether the plans assign identically.
func (d Delta) Empty() bool {
	return len(d.AddedBundles) == 0 && len(d.RemovedBundles) == 0 &&
		len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Moved) == 0
}

// Compare computes the delta from prev to curr. A nil plan is empty.
func Compare(prev, curr *Plan) Delta {
	prevMap, currMap := assignments(prev), assignments(curr)
	d := Delta{
		AddedBundles:   make([]string, 0),
		RemovedBundles: make([]string, 0),
		Added:          make([]Assignment, 0),
		Removed:        make([]Assignment, 0),
		Moved:          make([]Move, 0),
	}

	for _, a := range sortutil.Keys(prevMap) {
		from := prevMap[a]
		to, ok := currMap[a]
		switch {
		case !ok:
			d.Removed = append(d.Removed, Assignment{Asset: a, Bundle: from})
		case from != to:
			d.Moved = append(d.Moved, Move{Asset: a, From: from, To: to})
		}
	}
	for _, a := range sortutil.Keys(currMap) {
		if _, ok := prevMap[a]; !ok {
			d.Added = append(d.Added, Assignment{Asset: a, Bundle: currMap[a]})
		}
	}

	prevNames, currNames := nameSet(prev), nameSet(curr)
	for n := range currNames {
		if _, ok := prevNames[n]; !ok {
			d.AddedBundles = append(d.AddedBundles, n)
		}
	}
	for n := range prevNames {
		if _, ok := currNames[n]; !ok {
			d.RemovedBundles = append(d.RemovedBundles, n)
		}
	}
	sort.Strings(d.AddedBundles)
	sort.Strings(d.RemovedBundles)
	return d
}

func assignments(p *Plan) map[string]string {
	if p == nil {
		return map[string]string{}
	}
	return p.Assignments()
}

func nameSet(p *Plan) map[string]struct{} {
	out := make(map[string]struct{})
	if p == nil {
		return out
	}
	for _, b := range p.Bundles {
		out[b.Name] = struct{}{}
	}
	return out
}
