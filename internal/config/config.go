package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Default similarity parameters
const (
	// DefaultPermutations is the number of MinHash functions per signature.
	// Estimation error shrinks with 1/sqrt(permutations).
	DefaultPermutations = 2500

	// DefaultShingleWidth is the number of consecutive words per shingle
	DefaultShingleWidth = 3

	// DefaultStdFactor is the number of standard deviations above the mean
	// maximum similarity at which a pair is flagged
	DefaultStdFactor = 2.0

	// DefaultOutputFormat is the report format when none is configured
	DefaultOutputFormat = "text"

	// DefaultLogLevel is the zap level used by the CLI
	DefaultLogLevel = "warn"
)

// ConfigFileNames lists the configuration files searched for, in priority order
var ConfigFileNames = []string{
	".simscan.toml",
	"simscan.toml",
	".simscan.yaml",
	"simscan.yaml",
	".simscan.yml",
	"simscan.yml",
}

// Config represents the main configuration structure
type Config struct {
	// Similarity holds signature and clustering parameters
	Similarity SimilarityConfig `mapstructure:"similarity" toml:"similarity" yaml:"similarity"`

	// Input holds file discovery configuration
	Input InputConfig `mapstructure:"input" toml:"input" yaml:"input"`

	// Output holds report configuration
	Output OutputConfig `mapstructure:"output" toml:"output" yaml:"output"`

	// History holds run history configuration
	History HistoryConfig `mapstructure:"history" toml:"history" yaml:"history"`

	// Logging holds logger configuration
	Logging LoggingConfig `mapstructure:"logging" toml:"logging" yaml:"logging"`
}

// SimilarityConfig holds configuration for signature building and clustering
type SimilarityConfig struct {
	Permutations int     `mapstructure:"permutations" toml:"permutations" yaml:"permutations" comment:"MinHash functions per signature"`
	ShingleWidth int     `mapstructure:"shingle_width" toml:"shingle_width" yaml:"shingle_width" comment:"Words per shingle"`
	StdFactor    float64 `mapstructure:"std_factor" toml:"std_factor" yaml:"std_factor" comment:"Standard deviations above the mean maximum similarity to flag"`
	Seed         int64   `mapstructure:"seed" toml:"seed" yaml:"seed" comment:"Hash seed, 0 picks a random seed per run"`
	Workers      int     `mapstructure:"workers" toml:"workers" yaml:"workers" comment:"Parallel workers, 0 uses every CPU"`
	Stem         bool    `mapstructure:"stem" toml:"stem" yaml:"stem" comment:"Reduce words to English stems before shingling"`
}

// InputConfig holds configuration for discovering submission files
type InputConfig struct {
	IncludePatterns []string `mapstructure:"include_patterns" toml:"include_patterns" yaml:"include_patterns"`
	ExcludePatterns []string `mapstructure:"exclude_patterns" toml:"exclude_patterns" yaml:"exclude_patterns"`
}

// OutputConfig holds configuration for report output
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, csv
	Format string `mapstructure:"format" toml:"format" yaml:"format" comment:"text, json, yaml or csv"`

	// Directory receives one report per submission file name
	Directory string `mapstructure:"directory" toml:"directory" yaml:"directory" comment:"Report directory, empty writes next to the submissions"`
}

// HistoryConfig holds configuration for the run history database
type HistoryConfig struct {
	Path string `mapstructure:"path" toml:"path" yaml:"path" comment:"SQLite file recording every run, empty disables history"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level string `mapstructure:"level" toml:"level" yaml:"level" comment:"debug, info, warn or error"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Similarity: SimilarityConfig{
			Permutations: DefaultPermutations,
			ShingleWidth: DefaultShingleWidth,
			StdFactor:    DefaultStdFactor,
			Workers:      0,
		},
		Input: InputConfig{
			IncludePatterns: []string{"**/*.java"},
			ExcludePatterns: []string{"**/build/**", "**/target/**", "**/out/**"},
		},
		Output: OutputConfig{
			Format: DefaultOutputFormat,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}

// EffectiveWorkers resolves the configured worker count, 0 meaning GOMAXPROCS
func (c *SimilarityConfig) EffectiveWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// LoadConfig loads configuration from configPath. When configPath is empty a
// configuration file is searched for upward from startDir and then in the home
// directory; if none is found the defaults are returned.
func LoadConfig(configPath, startDir string) (*Config, error) {
	config := DefaultConfig()

	if configPath == "" {
		configPath = FindConfig(startDir)
	}
	if configPath == "" {
		return config, nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", configPath, err)
	}

	return config, nil
}

// FindConfig walks up from startDir looking for a configuration file, then
// checks the home directory. It returns "" when nothing is found.
func FindConfig(startDir string) string {
	if startDir == "" {
		startDir = "."
	}

	dir, err := filepath.Abs(startDir)
	if err == nil {
		if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
			dir = filepath.Dir(dir)
		}
		for {
			if path := firstConfigIn(dir); path != "" {
				return path
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		return firstConfigIn(home)
	}

	return ""
}

func firstConfigIn(dir string) string {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Validate checks the configuration for out-of-range values
func (c *Config) Validate() error {
	if c.Similarity.Permutations < 1 {
		return fmt.Errorf("similarity.permutations must be >= 1, got %d", c.Similarity.Permutations)
	}

	if c.Similarity.ShingleWidth < 1 {
		return fmt.Errorf("similarity.shingle_width must be >= 1, got %d", c.Similarity.ShingleWidth)
	}

	if math.IsNaN(c.Similarity.StdFactor) || math.IsInf(c.Similarity.StdFactor, 0) || c.Similarity.StdFactor < 0 {
		return fmt.Errorf("similarity.std_factor must be a finite number >= 0, got %v", c.Similarity.StdFactor)
	}

	if c.Similarity.Workers < 0 {
		return fmt.Errorf("similarity.workers must be >= 0, got %d", c.Similarity.Workers)
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"yaml": true,
		"csv":  true,
	}

	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml, csv", c.Output.Format)
	}

	if len(c.Input.IncludePatterns) == 0 {
		return fmt.Errorf("input.include_patterns cannot be empty")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging.level '%s', must be one of: debug, info, warn, error", c.Logging.Level)
	}

	return nil
}

// Marshal renders the configuration as TOML or YAML depending on the file
// extension of path.
func Marshal(config *Config, path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Marshal(config)
	default:
		return toml.Marshal(config)
	}
}

// SaveConfig writes the configuration to path. Existing files are not
// overwritten unless force is set.
func SaveConfig(config *Config, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}

	data, err := Marshal(config, path)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}
