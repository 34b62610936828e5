// Package store persists the planner state between runs: the registry
// (declarations, patches, version, current scene) and the last successful
// bundle list, as one versioned record.
//
// Conventions:
//   - The format follows the file extension: ".json" is JSON, anything else
//     is YAML.
//   - Writes go to a temporary sibling file that is renamed over the target,
//     so readers never observe a partially-written record.
//   - A missing record loads as (nil, nil): the first run starts empty.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"asset-bundler/internal/plan"
	"asset-bundler/internal/registry"
)

// FormatVersion is written into every record.
const FormatVersion = "1"

// DefaultPath is the record location relative to the project root.
const DefaultPath = "asset-rules.yaml"

// Record is the persisted state.
type Record struct {
	FormatVersion  string `yaml:"formatVersion" json:"formatVersion"`
	registry.State `yaml:",inline"`
	PlanVersion    string        `yaml:"planVersion,omitempty" json:"planVersion,omitempty"`
	Fingerprint    string        `yaml:"fingerprint,omitempty" json:"fingerprint,omitempty"`
	Bundles        []plan.Bundle `yaml:"bundles,omitempty" json:"bundles,omitempty"`
}

// NewRecord captures the registry state and, when p is non-nil, the plan
// produced from it.
func NewRecord(state registry.State, p *plan.Plan) *Record {
	r := &Record{FormatVersion: FormatVersion, State: state}
	if p != nil {
		r.PlanVersion = p.Version
		r.Fingerprint = p.Fingerprint()
		r.Bundles = p.Bundles
	}
	return r
}

// Plan returns the last persisted plan, or nil if none was saved. A plan
// is present once a fingerprint was recorded, even with no bundles.
func (r *Record) Plan() *plan.Plan {
	if r == nil || r.Fingerprint == "" {
		return nil
	}
	p := &plan.Plan{Version: r.PlanVersion, Bundles: r.Bundles}
	for _, patch := range r.Patches {
		p.Patches = append(p.Patches, plan.Patch{Name: patch.Name, Assets: append([]string(nil), patch.Assets...)})
	}
	return p
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Load reads the record at path.
func Load(fsys afero.Fs, path string) (*Record, error) {
	b, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var r Record
	if isJSON(path) {
		err = json.Unmarshal(b, &r)
	} else {
		err = yaml.Unmarshal(b, &r)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if r.FormatVersion != "" && r.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%s: unsupported format version %q", path, r.FormatVersion)
	}
	return &r, nil
}

// Save writes r to path atomically.
func Save(fsys afero.Fs, path string, r *Record) error {
	if r.FormatVersion == "" {
		r.FormatVersion = FormatVersion
	}
	data, err := encode(path, r)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := afero.TempFile(fsys, dir, ".tmp-"+filepath.Base(path)+"-")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = fsys.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = fsys.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = fsys.Remove(tmp)
		return err
	}
	return fsys.Rename(tmp, path)
}

func encode(path string, r *Record) ([]byte, error) {
	if isJSON(path) {
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	}
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}
