package service

import (
	"github.com/ludo-technologies/simscan/domain"
	"github.com/ludo-technologies/simscan/internal/config"
)

// Flag names whose explicit values override the configuration file
const (
	FlagPermutations = "permutations"
	FlagShingleWidth = "shingle-width"
	FlagStdFactor    = "std-factor"
	FlagSeed         = "seed"
	FlagWorkers      = "workers"
	FlagStem         = "stem"
	FlagInclude      = "include"
	FlagExclude      = "exclude"
	FlagOutputDir    = "output-dir"
	FlagHistory      = "history"
)

// ConfigurationLoaderImpl implements the SimilarityConfigurationLoader interface
type ConfigurationLoaderImpl struct {
	flags *config.FlagTracker
}

// NewConfigurationLoader creates a loader; flags records which CLI flags
// were set explicitly and may be nil when there is no command line.
func NewConfigurationLoader(flags *config.FlagTracker) *ConfigurationLoaderImpl {
	if flags == nil {
		flags = config.NewFlagTracker()
	}
	return &ConfigurationLoaderImpl{flags: flags}
}

// LoadConfig loads configuration from path, or discovers one upward from
// startDir when path is empty
func (c *ConfigurationLoaderImpl) LoadConfig(path, startDir string) (*domain.SimilarityRequest, error) {
	req, _, err := c.LoadSettings(path, startDir)
	return req, err
}

// LoadSettings is LoadConfig that also returns the raw configuration, which
// carries settings outside the request such as the log level
func (c *ConfigurationLoaderImpl) LoadSettings(path, startDir string) (*domain.SimilarityRequest, *config.Config, error) {
	cfg, err := config.LoadConfig(path, startDir)
	if err != nil {
		return nil, nil, domain.NewConfigError("failed to load configuration file", err)
	}

	req := ConvertConfig(cfg)
	req.ConfigPath = path
	if req.ConfigPath == "" {
		req.ConfigPath = config.FindConfig(startDir)
	}
	return req, cfg, nil
}

// LoadDefaultConfig returns the built-in defaults
func (c *ConfigurationLoaderImpl) LoadDefaultConfig() *domain.SimilarityRequest {
	return ConvertConfig(config.DefaultConfig())
}

// MergeConfig overlays override on base. Positional inputs, the output
// format and the output writer always come from override; every other field
// only when its flag was set explicitly.
func (c *ConfigurationLoaderImpl) MergeConfig(base *domain.SimilarityRequest, override *domain.SimilarityRequest) *domain.SimilarityRequest {
	merged := *base

	if override.Root != "" {
		merged.Root = override.Root
	}
	if len(override.FileNames) > 0 {
		merged.FileNames = override.FileNames
	}
	if override.OutputFormat != "" {
		merged.OutputFormat = override.OutputFormat
	}
	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}

	merged.PermutationCount = config.Merge(c.flags, base.PermutationCount, override.PermutationCount, FlagPermutations)
	merged.ShingleWidth = config.Merge(c.flags, base.ShingleWidth, override.ShingleWidth, FlagShingleWidth)
	merged.StdFactor = config.Merge(c.flags, base.StdFactor, override.StdFactor, FlagStdFactor)
	merged.Seed = config.Merge(c.flags, base.Seed, override.Seed, FlagSeed)
	merged.Workers = config.Merge(c.flags, base.Workers, override.Workers, FlagWorkers)
	merged.Stem = config.Merge(c.flags, base.Stem, override.Stem, FlagStem)
	merged.IncludePatterns = config.MergeSlice(c.flags, base.IncludePatterns, override.IncludePatterns, FlagInclude)
	merged.ExcludePatterns = config.MergeSlice(c.flags, base.ExcludePatterns, override.ExcludePatterns, FlagExclude)
	merged.OutputDir = config.Merge(c.flags, base.OutputDir, override.OutputDir, FlagOutputDir)
	merged.HistoryPath = config.Merge(c.flags, base.HistoryPath, override.HistoryPath, FlagHistory)

	return &merged
}

// ConvertConfig maps the file configuration onto a request
func ConvertConfig(cfg *config.Config) *domain.SimilarityRequest {
	return &domain.SimilarityRequest{
		Root:             ".",
		IncludePatterns:  append([]string(nil), cfg.Input.IncludePatterns...),
		ExcludePatterns:  append([]string(nil), cfg.Input.ExcludePatterns...),
		PermutationCount: cfg.Similarity.Permutations,
		ShingleWidth:     cfg.Similarity.ShingleWidth,
		StdFactor:        cfg.Similarity.StdFactor,
		Seed:             cfg.Similarity.Seed,
		Workers:          cfg.Similarity.Workers,
		Stem:             cfg.Similarity.Stem,
		OutputFormat:     domain.OutputFormat(cfg.Output.Format),
		OutputDir:        cfg.Output.Directory,
		HistoryPath:      cfg.History.Path,
	}
}
