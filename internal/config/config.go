package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete wordex configuration.
type Config struct {
	Version  int           `yaml:"version" json:"version"`
	Index    IndexConfig   `yaml:"index" json:"index"`
	Extract  ExtractConfig `yaml:"extract" json:"extract"`
	Query    QueryConfig   `yaml:"query" json:"query"`
	UI       UIConfig      `yaml:"ui" json:"ui"`
	LogLevel string        `yaml:"log_level" json:"log_level"`
}

// IndexConfig controls which words make it into the dictionary.
type IndexConfig struct {
	// MinWordLength drops shorter words (default: 3).
	MinWordLength int `yaml:"min_word_length" json:"min_word_length"`

	// MaxWordLength truncates longer words and marks them with "_" (default: 25).
	MaxWordLength int `yaml:"max_word_length" json:"max_word_length"`

	// SkipWords are never indexed. The built-in list is used when empty.
	SkipWords []string `yaml:"skip_words" json:"skip_words"`

	// SkipWordsFile names a file of skip words, one per line. It replaces
	// SkipWords when set.
	SkipWordsFile string `yaml:"skip_words_file" json:"skip_words_file"`

	// KeepIntermediate keeps the .grid and .cong files after a build.
	KeepIntermediate bool `yaml:"keep_intermediate" json:"keep_intermediate"`
}

// ExtractConfig controls how documents are split into pages and words.
type ExtractConfig struct {
	Extensions    []string `yaml:"extensions" json:"extensions"`
	PageSeparator string   `yaml:"page_separator" json:"page_separator"`

	// Workers bounds concurrent document reads (default: NumCPU).
	Workers int `yaml:"workers" json:"workers"`

	// KeepNumbers treats digits as word characters.
	KeepNumbers bool `yaml:"keep_numbers" json:"keep_numbers"`

	// Exclude holds gitignore-style patterns skipped when walking
	// directories, on top of any .wordexignore file.
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`
}

// QueryConfig controls query sessions.
type QueryConfig struct {
	// DisplayLimit is the largest page list printed in full (default: 200).
	DisplayLimit int `yaml:"display_limit" json:"display_limit"`

	// CacheSize is the number of decoded posting lists kept in memory.
	CacheSize int `yaml:"cache_size" json:"cache_size"`

	// History records executed statements next to the index (default: true).
	History *bool `yaml:"history,omitempty" json:"history,omitempty"`
}

// UIConfig controls terminal output.
type UIConfig struct {
	NoColor bool `yaml:"no_color" json:"no_color"`
	Plain   bool `yaml:"plain" json:"plain"`
}

// DefaultSkipWords are common words too frequent to be worth indexing.
var DefaultSkipWords = []string{
	"all", "also", "and", "any", "are", "been", "but", "can", "could", "did",
	"does", "for", "from", "had", "has", "have", "her", "his", "how", "into",
	"its", "may", "more", "not", "now", "off", "one", "only", "other", "our",
	"out", "over", "said", "shall", "she", "should", "some", "such", "than",
	"that", "the", "their", "them", "then", "there", "these", "they", "this",
	"those", "upon", "very", "was", "were", "what", "when", "where", "which",
	"who", "will", "with", "would", "you", "your",
}

// NewConfig returns a configuration with every default applied.
func NewConfig() *Config {
	history := true
	return &Config{
		Version: 1,
		Index: IndexConfig{
			MinWordLength: 3,
			MaxWordLength: 25,
			SkipWords:     DefaultSkipWords,
		},
		Extract: ExtractConfig{
			Extensions:    []string{".txt"},
			PageSeparator: "\f",
			Workers:       runtime.NumCPU(),
		},
		Query: QueryConfig{
			DisplayLimit: 200,
			CacheSize:    256,
			History:      &history,
		},
		LogLevel: "info",
	}
}

// HistoryEnabled reports whether statements are recorded.
func (c *Config) HistoryEnabled() bool {
	return c.Query.History == nil || *c.Query.History
}

// GetUserConfigPath returns $XDG_CONFIG_HOME/wordex/config.yaml, falling
// back to ~/.config/wordex/config.yaml.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "wordex", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "wordex", "config.yaml")
	}
	return filepath.Join(home, ".config", "wordex", "config.yaml")
}

// GetUserConfigDir returns the directory holding the user config.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists reports whether a user config file is present.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// LoadUserConfig loads the user configuration file over the defaults.
// Returns nil config and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	path := GetUserConfigPath()
	if !fileExists(path) {
		return nil, nil
	}
	var parsed Config
	if err := readYAML(path, &parsed); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", path, err)
	}
	return &parsed, nil
}

// Load builds the configuration for a project directory:
// defaults, then the user config, then .wordex.yaml (or .wordex.yml) in
// dir, then WORDEX_* environment variables. The result is validated.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	userCfg, err := LoadUserConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if path := ProjectConfigPath(dir); path != "" {
		var parsed Config
		if err := readYAML(path, &parsed); err != nil {
			return nil, err
		}
		cfg.mergeWith(&parsed)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ProjectConfigPath returns the project config file in dir, preferring
// .wordex.yaml over .wordex.yml, or "" when neither exists.
func ProjectConfigPath(dir string) string {
	for _, name := range []string{".wordex.yaml", ".wordex.yml"} {
		if p := filepath.Join(dir, name); fileExists(p) {
			return p
		}
	}
	return ""
}

func readYAML(path string, into *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, into); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// mergeWith copies the fields other sets. Zero values mean "not set".
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}

	if other.Index.MinWordLength != 0 {
		c.Index.MinWordLength = other.Index.MinWordLength
	}
	if other.Index.MaxWordLength != 0 {
		c.Index.MaxWordLength = other.Index.MaxWordLength
	}
	if other.Index.SkipWords != nil {
		c.Index.SkipWords = other.Index.SkipWords
	}
	if other.Index.SkipWordsFile != "" {
		c.Index.SkipWordsFile = other.Index.SkipWordsFile
	}
	if other.Index.KeepIntermediate {
		c.Index.KeepIntermediate = true
	}

	if len(other.Extract.Extensions) > 0 {
		c.Extract.Extensions = other.Extract.Extensions
	}
	if other.Extract.PageSeparator != "" {
		c.Extract.PageSeparator = other.Extract.PageSeparator
	}
	if other.Extract.Workers != 0 {
		c.Extract.Workers = other.Extract.Workers
	}
	if other.Extract.KeepNumbers {
		c.Extract.KeepNumbers = true
	}
	if len(other.Extract.Exclude) > 0 {
		c.Extract.Exclude = append(c.Extract.Exclude, other.Extract.Exclude...)
	}

	if other.Query.DisplayLimit != 0 {
		c.Query.DisplayLimit = other.Query.DisplayLimit
	}
	if other.Query.CacheSize != 0 {
		c.Query.CacheSize = other.Query.CacheSize
	}
	if other.Query.History != nil {
		v := *other.Query.History
		c.Query.History = &v
	}

	if other.UI.NoColor {
		c.UI.NoColor = true
	}
	if other.UI.Plain {
		c.UI.Plain = true
	}
}

func (c *Config) applyEnvOverrides() {
	envInt := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				*dst = n
			}
		}
	}
	envBool := func(name string) (bool, bool) {
		v := os.Getenv(name)
		if v == "" {
			return false, false
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return b, err == nil
	}

	envInt("WORDEX_MIN_WORD_LENGTH", &c.Index.MinWordLength)
	envInt("WORDEX_MAX_WORD_LENGTH", &c.Index.MaxWordLength)
	envInt("WORDEX_WORKERS", &c.Extract.Workers)
	envInt("WORDEX_DISPLAY_LIMIT", &c.Query.DisplayLimit)
	envInt("WORDEX_CACHE_SIZE", &c.Query.CacheSize)

	if v := os.Getenv("WORDEX_SKIP_WORDS_FILE"); v != "" {
		c.Index.SkipWordsFile = v
	}
	if v := os.Getenv("WORDEX_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if b, ok := envBool("WORDEX_HISTORY"); ok {
		c.Query.History = &b
	}
	if b, ok := envBool("WORDEX_KEEP_INTERMEDIATE"); ok {
		c.Index.KeepIntermediate = b
	}
	if b, ok := envBool("WORDEX_PLAIN"); ok {
		c.UI.Plain = b
	}
	// NO_COLOR only needs to be present.
	if os.Getenv("NO_COLOR") != "" {
		c.UI.NoColor = true
	}
}

// Validate checks the configuration for values no component can honour.
func (c *Config) Validate() error {
	if c.Index.MinWordLength < 1 {
		return fmt.Errorf("index.min_word_length must be at least 1, got %d", c.Index.MinWordLength)
	}
	if c.Index.MaxWordLength < c.Index.MinWordLength {
		return fmt.Errorf("index.max_word_length (%d) must not be less than index.min_word_length (%d)",
			c.Index.MaxWordLength, c.Index.MinWordLength)
	}
	// Word lengths are stored with a 16-bit prefix.
	if c.Index.MaxWordLength > 1000 {
		return fmt.Errorf("index.max_word_length must be at most 1000, got %d", c.Index.MaxWordLength)
	}

	if len(c.Extract.Extensions) == 0 {
		return fmt.Errorf("extract.extensions must not be empty")
	}
	for _, ext := range c.Extract.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extract.extensions entries must start with '.', got %q", ext)
		}
	}
	if c.Extract.PageSeparator == "" {
		return fmt.Errorf("extract.page_separator must not be empty")
	}
	for _, p := range c.Extract.Exclude {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("extract.exclude entries must not be blank")
		}
	}
	if c.Extract.Workers < 0 {
		return fmt.Errorf("extract.workers must not be negative, got %d", c.Extract.Workers)
	}

	if c.Query.DisplayLimit < 4 {
		return fmt.Errorf("query.display_limit must be at least 4, got %d", c.Query.DisplayLimit)
	}
	if c.Query.CacheSize < 0 {
		return fmt.Errorf("query.cache_size must not be negative, got %d", c.Query.CacheSize)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.LogLevel)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// FindProjectRoot walks up from startDir to the nearest directory holding a
// project config file. It returns the absolute startDir when none is found.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	for dir := absDir; ; {
		if ProjectConfigPath(dir) != "" {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return absDir, nil
		}
		dir = parent
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
