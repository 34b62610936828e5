package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// ValidationError represents a single validation failure.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the accepted logging.level values.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats returns the accepted logging.format values.
func ValidLogFormats() []string {
	return []string{"text", "json"}
}

// Validate returns every problem found in c.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, c.validateContent()...)
	errs = append(errs, c.validateNaming()...)
	errs = append(errs, c.validateRecord()...)
	errs = append(errs, c.validateAnalysis()...)
	errs = append(errs, c.validatePaths()...)
	errs = append(errs, c.validateLogging()...)
	return errs
}

func (c *Config) validateContent() []ValidationError {
	var errs []ValidationError
	if strings.Contains(c.Content.Root, `\`) {
		errs = append(errs, ValidationError{Field: "content.root", Value: c.Content.Root, Message: "must use forward slashes"})
	}
	for i, ext := range c.Content.ExcludedExtensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("content.excluded_extensions[%d]", i),
				Value:   ext,
				Message: "must start with a dot",
			})
		}
	}
	errs = append(errs, validateGlobs("content.exclude", c.Content.Exclude)...)
	return errs
}

func (c *Config) validateNaming() []ValidationError {
	var errs []ValidationError
	if c.Naming.Extension != "" && !strings.HasPrefix(c.Naming.Extension, ".") {
		errs = append(errs, ValidationError{Field: "naming.extension", Value: c.Naming.Extension, Message: "must be empty or start with a dot"})
	}
	for field, ext := range map[string]string{
		"naming.scene_extension":    c.Naming.SceneExtension,
		"naming.reserved_extension": c.Naming.ReservedExtension,
	} {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			errs = append(errs, ValidationError{Field: field, Value: ext, Message: "must be empty or start with a dot"})
		}
	}
	if c.Naming.ReservedExtension != "" && c.Naming.SceneExtension == c.Naming.ReservedExtension {
		errs = append(errs, ValidationError{Field: "naming.reserved_extension", Value: c.Naming.ReservedExtension, Message: "must differ from naming.scene_extension"})
	}
	if c.Naming.ReservedExtension != "" && strings.TrimSpace(c.Naming.ReservedGroup) == "" {
		errs = append(errs, ValidationError{Field: "naming.reserved_group", Value: c.Naming.ReservedGroup, Message: "must not be empty"})
	}
	slices.SortFunc(errs, func(a, b ValidationError) int { return strings.Compare(a.Field, b.Field) })
	return errs
}

func (c *Config) validateRecord() []ValidationError {
	return validateGlobs("record.auto_group_by_directories", c.Record.AutoGroupByDirectories)
}

func (c *Config) validateAnalysis() []ValidationError {
	var errs []ValidationError
	if c.Analysis.Workers < 1 || c.Analysis.Workers > 256 {
		errs = append(errs, ValidationError{Field: "analysis.workers", Value: c.Analysis.Workers, Message: "must be between 1 and 256"})
	}
	if c.Analysis.CacheSize < 0 {
		errs = append(errs, ValidationError{Field: "analysis.cache_size", Value: c.Analysis.CacheSize, Message: "must be >= 0"})
	}
	return errs
}

func (c *Config) validatePaths() []ValidationError {
	var errs []ValidationError
	if c.Paths.Rules == "" {
		errs = append(errs, ValidationError{Field: "paths.rules", Value: c.Paths.Rules, Message: "must not be empty"})
	}
	if c.Paths.Graph == "" {
		errs = append(errs, ValidationError{Field: "paths.graph", Value: c.Paths.Graph, Message: "must not be empty"})
	}
	return errs
}

func (c *Config) validateLogging() []ValidationError {
	var errs []ValidationError
	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}
	if !slices.Contains(ValidLogFormats(), strings.ToLower(c.Logging.Format)) {
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Value:   c.Logging.Format,
			Message: fmt.Sprintf("must be one of %s", strings.Join(ValidLogFormats(), ", ")),
		})
	}
	return errs
}

func validateGlobs(field string, patterns []string) []ValidationError {
	var errs []ValidationError
	for i, p := range patterns {
		if _, err := glob.Compile(p, '/'); err != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Value:   p,
				Message: "invalid glob: " + err.Error(),
			})
		}
	}
	return errs
}
