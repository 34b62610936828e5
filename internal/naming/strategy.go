package naming

import (
	"fmt"
	"strings"
)

// Strategy selects how an asset's bundle name is derived.
type Strategy int

const (
	// None marks an asset that is never bundled on its own account.
	None Strategy = iota
	// Explicit uses the declared group name verbatim.
	Explicit
	// ByFilename names the bundle after the asset's file name.
	ByFilename
	// ByDirectory names the bundle after the asset's containing directory.
	ByDirectory
)

var strategyNames = [...]string{"none", "explicit", "filename", "directory"}

func (s Strategy) String() string {
	if s < None || s > ByDirectory {
		return fmt.Sprintf("strategy(%d)", int(s))
	}
	return strategyNames[s]
}

// ParseStrategy accepts the lower-case names produced by String, plus a few
// spellings used by older rule files ("bydirectory", "by-filename", ...).
func ParseStrategy(s string) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.TrimPrefix(strings.TrimPrefix(key, "by-"), "by")
	for i, n := range strategyNames {
		if key == n {
			return Strategy(i), nil
		}
	}
	if key == "" {
		return None, nil
	}
	return None, fmt.Errorf("unknown grouping strategy %q", s)
}

// MarshalText makes strategies readable in YAML and JSON records.
func (s Strategy) MarshalText() ([]byte, error) {
	if s < None || s > ByDirectory {
		return nil, fmt.Errorf("invalid grouping strategy %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (s *Strategy) UnmarshalText(b []byte) error {
	v, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
