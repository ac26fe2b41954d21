// Package config loads and saves rowdex's configuration file, in the
// same XDG-aware shape the teacher repository uses for its own
// settings.
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/user/rowdex/pkg/contract"
)

// Config holds every tunable of the index, tokenizer, cache, and demo
// display.
type Config struct {
	Index     IndexConfig     `toml:"index"`
	Tokenizer TokenizerConfig `toml:"tokenizer"`
	Cache     CacheConfig     `toml:"cache"`
	Display   DisplayConfig   `toml:"display"`
}

// IndexConfig overrides the constants governing the background scan.
type IndexConfig struct {
	MinProbe  int `toml:"min_probe"`
	MaxSamples int `toml:"max_samples"`
	MaxLines  int `toml:"max_lines"`
}

// TokenizerConfig is the default (escape, separator, quote) triple
// used before dialect detection runs or before the user overrides it.
// Runes are stored as single-character strings for TOML readability;
// an empty string means "disabled" (the null rune).
type TokenizerConfig struct {
	Escape    string `toml:"escape"`
	Separator string `toml:"separator"`
	Quote     string `toml:"quote"`
}

// CacheConfig controls the tokenized-line cache.
type CacheConfig struct {
	Capacity int `toml:"capacity"`
}

// DisplayConfig holds options for the demo grid viewer.
type DisplayConfig struct {
	ShowLineNumbers bool `toml:"show_line_numbers"`
	TabWidth        int  `toml:"tab_width"`
	HighlightCells  bool `toml:"highlight_cells"`
}

// DefaultConfig returns a Config with the values spec'd for the index
// (MinProbe=1000, MaxSamples=10000, MaxLines=2^31-1), the default
// tokenizer triple (none, ',', '"'), and the default cache capacity
// (10000).
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			MinProbe:   1000,
			MaxSamples: 10000,
			MaxLines:   1<<31 - 1,
		},
		Tokenizer: TokenizerConfig{
			Escape:    "",
			Separator: ",",
			Quote:     `"`,
		},
		Cache: CacheConfig{
			Capacity: 10000,
		},
		Display: DisplayConfig{
			ShowLineNumbers: true,
			TabWidth:        4,
			HighlightCells:  true,
		},
	}
}

// TokenizerParams converts the string-encoded triple into
// contract.TokenizerParams, treating an empty string as the disabling
// null rune and any multi-rune string as just its first rune.
func (c TokenizerConfig) TokenizerParams() contract.TokenizerParams {
	first := func(s string) rune {
		for _, r := range s {
			return r
		}
		return 0
	}
	return contract.TokenizerParams{
		Escape:    first(c.Escape),
		Separator: first(c.Separator),
		Quote:     first(c.Quote),
	}
}

// Load loads config from the XDG-resolved path, falling back silently
// to DefaultConfig when no file is present.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath := getConfigPath()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to the XDG-resolved path, creating its parent
// directory if necessary.
func Save(cfg *Config) error {
	configPath := getConfigPath()
	if configPath == "" {
		return nil
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}

func getConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rowdex", "config.toml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "rowdex", "config.toml")
}

// GetConfigPath exports the resolved config path for diagnostics.
func GetConfigPath() string {
	return getConfigPath()
}
