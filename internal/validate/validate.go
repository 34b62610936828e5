// Package validate checks declarations and plans before they are persisted or
// handed to archive builders. It is not a schema validator; it checks the
// structural constraints that commonly catch hand-edited rule files and
// broken plans.
//
// All issues are aggregated into a single error, one per line.
package validate

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"asset-bundler/internal/naming"
	"asset-bundler/internal/plan"
	"asset-bundler/internal/registry"
)

// Declarations validates a rule set:
//
//   - Asset keys are non-empty, relative and use forward slashes.
//   - No ".." segments.
//   - Strategies are known; explicit declarations carry a group.
//   - No duplicate keys.
func Declarations(decls []registry.Declaration) error {
	var errs errlist
	seen := make(map[string]int, len(decls))
	for i, d := range decls {
		prefix := fmt.Sprintf("assets[%d] (%s)", i, d.Asset)
		checkKey(&errs, prefix, d.Asset)

		switch d.Strategy {
		case naming.None, naming.ByFilename, naming.ByDirectory:
		case naming.Explicit:
			if strings.TrimSpace(d.Group) == "" {
				errs.add("%s: explicit grouping requires a group", prefix)
			}
		default:
			errs.add("%s: unknown strategy %d", prefix, int(d.Strategy))
		}

		if j, dup := seen[d.Asset]; dup {
			errs.add("%s: duplicate of assets[%d]", prefix, j)
		} else if d.Asset != "" {
			seen[d.Asset] = i
		}
	}
	return errs.err()
}

// Plan validates an emitted plan:
//
//   - Bundle names are non-empty and unique, bundles sorted by name.
//   - Every bundle has sorted assets.
//   - Every asset belongs to exactly one bundle.
//   - Patch entries use valid keys.
func Plan(p *plan.Plan) error {
	if p == nil {
		return errors.New("plan is nil")
	}
	var errs errlist

	owner := make(map[string]string)
	names := make([]string, 0, len(p.Bundles))
	for i, b := range p.Bundles {
		prefix := fmt.Sprintf("bundles[%d] (%s)", i, b.Name)
		if strings.TrimSpace(b.Name) == "" {
			errs.add("%s: name must be non-empty", prefix)
		}
		names = append(names, b.Name)
		if len(b.Assets) == 0 {
			errs.add("%s: bundle has no assets", prefix)
		}
		if !sort.StringsAreSorted(b.Assets) {
			errs.add("%s: assets should be sorted for deterministic output", prefix)
		}
		for _, a := range b.Assets {
			checkKey(&errs, prefix, a)
			if prev, ok := owner[a]; ok {
				errs.add("%s: asset %q already assigned to %q", prefix, a, prev)
				continue
			}
			owner[a] = b.Name
		}
	}
	if !sort.StringsAreSorted(names) {
		errs.add("bundles should be sorted by name for deterministic output")
	}
	for i := 1; i < len(names); i++ {
		if names[i] == names[i-1] {
			errs.add("bundles[%d]: duplicate bundle name %q", i, names[i])
		}
	}
	for i, patch := range p.Patches {
		prefix := fmt.Sprintf("patches[%d] (%s)", i, patch.Name)
		if strings.TrimSpace(patch.Name) == "" {
			errs.add("%s: name must be non-empty", prefix)
		}
		for _, a := range patch.Assets {
			checkKey(&errs, prefix, a)
		}
	}
	return errs.err()
}

func checkKey(errs *errlist, prefix, key string) {
	if key == "" {
		errs.add("%s: asset key must be non-empty", prefix)
		return
	}
	if path.IsAbs(key) || strings.HasPrefix(key, `\`) || (len(key) > 1 && key[1] == ':') {
		errs.add("%s: asset key must be relative, got %q", prefix, key)
	}
	if strings.Contains(key, `\`) {
		errs.add("%s: asset key must use forward slashes ('/'), found backslash", prefix)
	}
	if hasDotDot(key) {
		errs.add("%s: asset key must not contain '..' segments (got %q)", prefix, key)
	}
}

func hasDotDot(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// errlist aggregates multiple validation issues into a single error.
type errlist struct {
	msgs []string
}

func (e *errlist) add(format string, args ...any) {
	e.msgs = append(e.msgs, fmt.Sprintf(format, args...))
}

func (e *errlist) err() error {
	if len(e.msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(e.msgs, "\n"))
}
