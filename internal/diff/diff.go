// Package diff renders unified diffs of plan listings with
// github.com/pmezard/go-difflib/difflib (---/+++ headers, @@ hunks).
package diff

import (
	"fmt"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"

	"asset-bundler/internal/plan"
)

// Options controls patch generation.
type Options struct {
	// MaxBytes caps the input size (old+new). Above it a placeholder patch is
	// returned with oversize=true. 0 means no limit.
	MaxBytes int

	// Context is the number of context lines per hunk; 0 means 3.
	Context int
}

func (o Options) context() int {
	if o.Context <= 0 {
		return 3
	}
	return o.Context
}

// Unified produces a unified patch for a->b. An empty body means no change.
func Unified(aName, bName string, a, b []byte, opt Options) (body string, oversize bool) {
	if opt.MaxBytes > 0 && len(a)+len(b) > opt.MaxBytes {
		return omitted(aName, bName), true
	}
	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(string(a)),
		B:        splitLinesKeepNL(string(b)),
		FromFile: aName,
		ToFile:   bName,
		Context:  opt.context(),
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return omitted(aName, bName), false
	}
	return s, false
}

// Added produces a patch that adds all of b.
func Added(bName string, b []byte, opt Options) (string, bool) {
	return Unified("/dev/null", bName, nil, b, opt)
}

// Plans diffs the listings of two plans. A nil prev is diffed as /dev/null.
func Plans(prev, curr *plan.Plan, opt Options) (string, bool) {
	currName := "plan@" + versionOf(curr)
	if prev == nil {
		return Added(currName, []byte(listing(curr)), opt)
	}
	return Unified("plan@"+versionOf(prev), currName, []byte(listing(prev)), []byte(listing(curr)), opt)
}

func listing(p *plan.Plan) string {
	if p == nil {
		return ""
	}
	return p.Listing()
}

func versionOf(p *plan.Plan) string {
	if p == nil || p.Version == "" {
		return "unversioned"
	}
	return p.Version
}

// splitLinesKeepNL keeps the trailing newline on each line, which difflib
// needs to produce well-formed hunks.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func omitted(aName, bName string) string {
	return fmt.Sprintf("--- %s\n+++ %s\n@@\n# diff omitted (oversize)\n", aName, bName)
}
