// Package depgraph provides a static dependency graph that answers oracle
// queries from an edge list exported by the host (one entry per asset with
// its direct references).
//
// Design goals:
//   - Deterministic output (sorted nodes/edges, deduped)
//   - Cycles are tolerated; content files may reference each other
//   - Unknown keys are leaves, never errors
//
// File format (YAML; JSON is accepted as well):
//
//	dependencies:
//	  Assets/UI/Title.prefab:
//	    - Assets/UI/Common/btn.png
//	    - Assets/Fonts/main.ttf
package depgraph

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"asset-bundler/internal/naming"
)

// Graph is a simple directed graph (no weights).
type Graph struct {
	Nodes []string    `json:"nodes"`
	Edges [][2]string `json:"edges"`

	adj map[string][]string
}

// File is the on-disk shape of a dependency export.
type File struct {
	Dependencies map[string][]string `yaml:"dependencies" json:"dependencies"`
}

// BuildFrom creates a graph from an adjacency map. Keys are normalized to
// forward slashes; self references are dropped.
func BuildFrom(deps map[string][]string) *Graph {
	nodeSet := make(map[string]struct{}, len(deps))
	edgeSet := make(map[[2]string]struct{}, len(deps)*2)

	for from, tos := range deps {
		from = naming.Normalize(from)
		addNode(nodeSet, from)
		for _, to := range tos {
			to = naming.Normalize(to)
			if to == "" || to == from {
				continue
			}
			addNode(nodeSet, to)
			edgeSet[[2]string{from, to}] = struct{}{}
		}
	}

	g := &Graph{adj: make(map[string][]string, len(nodeSet))}
	for n := range nodeSet {
		g.Nodes = append(g.Nodes, n)
	}
	sort.Strings(g.Nodes)

	for e := range edgeSet {
		g.Edges = append(g.Edges, e)
	}
	sort.Slice(g.Edges, func(i, j int) bool {
		if g.Edges[i][0] == g.Edges[j][0] {
			return g.Edges[i][1] < g.Edges[j][1]
		}
		return g.Edges[i][0] < g.Edges[j][0]
	})
	// Edges are sorted, so adjacency lists come out sorted as well.
	for _, e := range g.Edges {
		g.adj[e[0]] = append(g.adj[e[0]], e[1])
	}
	return g
}

// Load reads a dependency export from fs.
func Load(fs afero.Fs, path string) (*Graph, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes a dependency export.
func Parse(b []byte) (*Graph, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse dependency graph: %w", err)
	}
	return BuildFrom(f.Dependencies), nil
}

// Direct returns the direct references of key in sorted order.
func (g *Graph) Direct(key string) []string {
	return append([]string(nil), g.adj[naming.Normalize(key)]...)
}

// Dependencies implements oracle.Oracle. The result starts with the inputs
// in the given order followed by a breadth-first walk over sorted
// neighbours; each key appears once. Without recursive only direct
// references are added.
func (g *Graph) Dependencies(ctx context.Context, keys []string, recursive bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(keys)*4)
	out := make([]string, 0, len(keys)*4)
	visit := func(k string) bool {
		if _, ok := seen[k]; ok {
			return false
		}
		seen[k] = struct{}{}
		out = append(out, k)
		return true
	}

	queue := make([]string, 0, len(keys))
	for _, k := range keys {
		k = naming.Normalize(k)
		if visit(k) {
			queue = append(queue, k)
		}
	}
	if !recursive {
		for _, k := range queue {
			for _, n := range g.adj[k] {
				visit(n)
			}
		}
		return out, nil
	}
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		for _, n := range g.adj[k] {
			if visit(n) {
				queue = append(queue, n)
			}
		}
	}
	return out, nil
}

func addNode(set map[string]struct{}, n string) {
	if n == "" {
		return
	}
	set[n] = struct{}{}
}
