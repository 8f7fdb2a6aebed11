package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when a field is absent from depmap.yml.
const (
	DefaultMaxFunctionLines = 50
	DefaultDebounce         = 300 * time.Millisecond
)

// ProjectConfig holds project-level settings loaded from depmap.yml.
type ProjectConfig struct {
	Exclude   ExcludeConfig  `yaml:"exclude,omitempty"`
	Languages []string       `yaml:"languages,omitempty"`
	Workers   int            `yaml:"workers,omitempty"`
	Gitignore *bool          `yaml:"gitignore,omitempty"`
	Resolver  ResolverConfig `yaml:"resolver,omitempty"`
	Quality   QualityConfig  `yaml:"quality,omitempty"`
	Watch     WatchConfig    `yaml:"watch,omitempty"`
}

// ExcludeConfig lists glob patterns matched against directory and file base
// names.
type ExcludeConfig struct {
	Dirs  []string `yaml:"dirs,omitempty"`
	Files []string `yaml:"files,omitempty"`
}

// ResolverConfig tunes import resolution.
type ResolverConfig struct {
	Fuzzy *bool `yaml:"fuzzy,omitempty"`
}

// QualityConfig tunes the quality checks. Security and Performance map a
// category name to its patterns; a category listed here replaces the
// built-in category of the same name.
type QualityConfig struct {
	MaxFunctionLines int                        `yaml:"maxFunctionLines,omitempty"`
	Security         map[string][]PatternConfig `yaml:"security,omitempty"`
	Performance      map[string][]PatternConfig `yaml:"performance,omitempty"`
}

// PatternConfig is one regular expression of a quality pattern category.
type PatternConfig struct {
	Pattern     string `yaml:"pattern"`
	Description string `yaml:"description,omitempty"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty"`
}

// Load attempts to read depmap.yml or depmap.yaml from the given directory.
// Returns a zero-value config (not an error) if no config file exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"depmap.yml", "depmap.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if cfg.Workers < 0 {
			return nil, fmt.Errorf("parse %s: workers must not be negative", name)
		}
		if err := validatePatterns(cfg.Quality.Security); err != nil {
			return nil, fmt.Errorf("parse %s: quality.security: %w", name, err)
		}
		if err := validatePatterns(cfg.Quality.Performance); err != nil {
			return nil, fmt.Errorf("parse %s: quality.performance: %w", name, err)
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}

// UseGitignore reports whether .gitignore rules apply. Defaults to true.
func (c *ProjectConfig) UseGitignore() bool {
	return c.Gitignore == nil || *c.Gitignore
}

// FuzzyResolution reports whether the substring fallback is enabled.
// Defaults to true.
func (c *ProjectConfig) FuzzyResolution() bool {
	return c.Resolver.Fuzzy == nil || *c.Resolver.Fuzzy
}

// MaxFunctionLines returns the function length threshold.
func (c *ProjectConfig) MaxFunctionLines() int {
	if c.Quality.MaxFunctionLines <= 0 {
		return DefaultMaxFunctionLines
	}
	return c.Quality.MaxFunctionLines
}

// Debounce returns the quiet period watch mode waits for before rescanning.
func (c *ProjectConfig) Debounce() time.Duration {
	if c.Watch.Debounce <= 0 {
		return DefaultDebounce
	}
	return c.Watch.Debounce
}

// validatePatterns rejects empty patterns. Regexp syntax is checked when the
// patterns are compiled.
func validatePatterns(categories map[string][]PatternConfig) error {
	for category, patterns := range categories {
		for i, p := range patterns {
			if p.Pattern == "" {
				return fmt.Errorf("%s[%d]: pattern is required", category, i)
			}
		}
	}
	return nil
}
