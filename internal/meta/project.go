// Package meta detects which kind of project the planner runs in and
// reports tool build metadata.
//
// Detection is best-effort: absent or partial files yield an empty Info.
package meta

import (
	"path"
	"runtime/debug"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Info summarizes the project layout.
type Info struct {
	Engine        string // "unity" or "" when unknown
	EditorVersion string // e.g. "2021.3.5f1"
	ContentRoot   string // e.g. "Assets/"
	Product       string // productName from ProjectSettings, if readable
}

// Detect probes a project root (as an afero filesystem).
//
// A Unity project has an Assets directory and a
// ProjectSettings/ProjectVersion.txt file.
func Detect(fs afero.Fs) Info {
	if ok, _ := afero.DirExists(fs, "Assets"); !ok {
		return Info{}
	}
	inf := Info{ContentRoot: "Assets/"}

	var ver struct {
		EditorVersion string `yaml:"m_EditorVersion"`
	}
	if readYAML(fs, path.Join("ProjectSettings", "ProjectVersion.txt"), &ver) {
		inf.Engine = "unity"
		inf.EditorVersion = strings.TrimSpace(ver.EditorVersion)
	}
	inf.Product = productName(fs)
	return inf
}

func readYAML(fs afero.Fs, name string, out any) bool {
	b, err := afero.ReadFile(fs, name)
	if err != nil {
		return false
	}
	return yaml.Unmarshal(b, out) == nil
}

// productName scans ProjectSettings.asset for productName. The file carries
// Unity-specific YAML tags, so it is read line by line.
func productName(fs afero.Fs) string {
	b, err := afero.ReadFile(fs, path.Join("ProjectSettings", "ProjectSettings.asset"))
	if err != nil {
		return ""
	}
	for _, ln := range strings.Split(string(b), "\n") {
		ln = strings.TrimSpace(ln)
		if v, ok := strings.CutPrefix(ln, "productName:"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// String renders the project as "unity 2021.3.5f1 (Product)".
func (i Info) String() string {
	if i.Engine == "" {
		return "unknown project"
	}
	s := i.Engine
	if i.EditorVersion != "" {
		s += " " + i.EditorVersion
	}
	if i.Product != "" {
		s += " (" + i.Product + ")"
	}
	return s
}

// ToolVersion returns the module version of the running binary, or "devel".
func ToolVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" || bi.Main.Version == "(devel)" {
		return "devel"
	}
	return bi.Main.Version
}
