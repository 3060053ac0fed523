package domain

import (
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"
)

// Similarity defaults shared by the CLI, the config loader and the MCP server.
const (
	DefaultPermutationCount = 2500
	DefaultShingleWidth     = 3
	DefaultStdFactor        = 2.0
)

// DefaultIncludePatterns selects Java sources when no patterns are configured.
var DefaultIncludePatterns = []string{"**/*.java"}

// DefaultExcludePatterns skips build output.
var DefaultExcludePatterns = []string{"**/build/**", "**/target/**", "**/out/**"}

// Document is one submission file after text extraction and shingling.
type Document struct {
	Label    string   `json:"label" yaml:"label"`
	Path     string   `json:"path" yaml:"path"`
	Shingles []string `json:"-" yaml:"-"`
}

// SkippedDocument records a file that could not take part in clustering.
type SkippedDocument struct {
	Label  string `json:"label" yaml:"label" csv:"label"`
	Path   string `json:"path" yaml:"path" csv:"path"`
	Reason string `json:"reason" yaml:"reason" csv:"reason"`
}

// SimilarityMatch is one flagged peer of a submission.
type SimilarityMatch struct {
	Label      string  `json:"label" yaml:"label" csv:"label"`
	Similarity float64 `json:"similarity" yaml:"similarity" csv:"similarity"`
}

// SimilarityCluster lists every peer whose similarity to Label reached the cutoff.
type SimilarityCluster struct {
	Label   string            `json:"label" yaml:"label" csv:"label"`
	Matches []SimilarityMatch `json:"matches" yaml:"matches" csv:"-"`
}

// DocumentSimilarity is a document's highest similarity to any other document.
type DocumentSimilarity struct {
	Label         string  `json:"label" yaml:"label" csv:"label"`
	Path          string  `json:"path" yaml:"path" csv:"path"`
	MaxSimilarity float64 `json:"max_similarity" yaml:"max_similarity" csv:"max_similarity"`
}

// SimilarityStatistics summarizes the corpus distribution that produced the cutoff.
type SimilarityStatistics struct {
	DocumentCount    int     `json:"document_count" yaml:"document_count" csv:"document_count"`
	VocabularySize   int     `json:"vocabulary_size" yaml:"vocabulary_size" csv:"vocabulary_size"`
	PermutationCount int     `json:"permutation_count" yaml:"permutation_count" csv:"permutation_count"`
	Seed             int64   `json:"seed" yaml:"seed" csv:"seed"`
	Mean             float64 `json:"mean" yaml:"mean" csv:"mean"`
	StdDev           float64 `json:"std_dev" yaml:"std_dev" csv:"std_dev"`
	StdFactor        float64 `json:"std_factor" yaml:"std_factor" csv:"std_factor"`
	Threshold        float64 `json:"threshold" yaml:"threshold" csv:"threshold"`
	Cutoff           float64 `json:"cutoff" yaml:"cutoff" csv:"cutoff"`
	FlaggedPairs     int     `json:"flagged_pairs" yaml:"flagged_pairs" csv:"flagged_pairs"`
}

// SimilarityReport is the outcome of clustering one submission file name.
type SimilarityReport struct {
	FileName        string                `json:"file_name" yaml:"file_name"`
	Statistics      *SimilarityStatistics `json:"statistics" yaml:"statistics"`
	TopSimilarities []DocumentSimilarity  `json:"top_similarities" yaml:"top_similarities"`
	Clusters        []SimilarityCluster   `json:"clusters" yaml:"clusters"`
	Skipped         []SkippedDocument     `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	SkipReason      string                `json:"skip_reason,omitempty" yaml:"skip_reason,omitempty"`
	RunID           int64                 `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	GeneratedAt     time.Time             `json:"generated_at" yaml:"generated_at"`
	Duration        int64                 `json:"duration_ms" yaml:"duration_ms"`
}

// IsSkipped reports whether clustering was not attempted for this file name.
func (r *SimilarityReport) IsSkipped() bool {
	return r.SkipReason != ""
}

// FlaggedLabels returns the labels that have at least one match, in report order.
func (r *SimilarityReport) FlaggedLabels() []string {
	labels := make([]string, 0, len(r.Clusters))
	for _, c := range r.Clusters {
		if len(c.Matches) > 0 {
			labels = append(labels, c.Label)
		}
	}
	return labels
}

// SimilarityRequest represents a request to cluster submissions by similarity
type SimilarityRequest struct {
	// Input
	Root            string   `json:"root"`
	FileNames       []string `json:"file_names"`
	IncludePatterns []string `json:"include_patterns"`
	ExcludePatterns []string `json:"exclude_patterns"`

	// Signature and clustering parameters
	PermutationCount int     `json:"permutation_count"`
	ShingleWidth     int     `json:"shingle_width"`
	StdFactor        float64 `json:"std_factor"`
	Seed             int64   `json:"seed"` // 0 draws a seed, reported in SimilarityStatistics.Seed
	Workers          int     `json:"workers"`
	Stem             bool    `json:"stem"`

	// Output
	OutputFormat OutputFormat `json:"output_format"`
	OutputWriter io.Writer    `json:"-"`
	OutputDir    string       `json:"output_dir"`

	ConfigPath  string `json:"config_path"`
	HistoryPath string `json:"history_path"`
}

// Validate validates the similarity request
func (req *SimilarityRequest) Validate() error {
	if req.Root == "" {
		return NewValidationError("a submissions directory is required")
	}
	if len(req.FileNames) == 0 {
		return NewValidationError("at least one submission file name is required")
	}
	for _, name := range req.FileNames {
		if strings.TrimSpace(name) == "" {
			return NewValidationError("submission file names must not be empty")
		}
		if strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) {
			return NewValidationError(fmt.Sprintf("submission file name %q must not contain a path separator", name))
		}
	}
	if req.PermutationCount <= 0 {
		return NewValidationError("permutation count must be positive")
	}
	if req.ShingleWidth <= 0 {
		return NewValidationError("shingle width must be positive")
	}
	if math.IsNaN(req.StdFactor) || math.IsInf(req.StdFactor, 0) || req.StdFactor < 0 {
		return NewValidationError("std factor must be a finite non-negative number")
	}
	if req.Workers < 0 {
		return NewValidationError("workers must be zero (automatic) or positive")
	}
	switch req.OutputFormat {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML, OutputFormatCSV:
	default:
		return NewUnsupportedFormatError(string(req.OutputFormat))
	}
	return nil
}

// DefaultSimilarityRequest returns a request populated with the default parameters
func DefaultSimilarityRequest() *SimilarityRequest {
	return &SimilarityRequest{
		Root:             ".",
		IncludePatterns:  append([]string(nil), DefaultIncludePatterns...),
		ExcludePatterns:  append([]string(nil), DefaultExcludePatterns...),
		PermutationCount: DefaultPermutationCount,
		ShingleWidth:     DefaultShingleWidth,
		StdFactor:        DefaultStdFactor,
		OutputFormat:     OutputFormatText,
	}
}

// SimilarityResponse aggregates the reports of one run
type SimilarityResponse struct {
	Reports     []*SimilarityReport `json:"reports" yaml:"reports"`
	FilesFound  int                 `json:"files_found" yaml:"files_found"`
	Success     bool                `json:"success" yaml:"success"`
	Duration    int64               `json:"duration_ms" yaml:"duration_ms"`
	GeneratedAt time.Time           `json:"generated_at" yaml:"generated_at"`
}

// SubmissionFileReader discovers and reads submission files
type SubmissionFileReader interface {
	// CollectFiles recursively finds files under root matching the include patterns
	CollectFiles(root string, includePatterns, excludePatterns []string) ([]string, error)

	// FilterByFilename keeps the paths whose base name equals name, ignoring case
	FilterByFilename(paths []string, name string) []string

	// ReadFile reads the content of a file
	ReadFile(path string) ([]byte, error)

	// FileExists checks if a file exists and returns an error if not
	FileExists(path string) (bool, error)
}

// TextExtractor turns a submission file into plain text
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// Tokenizer converts extracted text into shingles
type Tokenizer interface {
	Tokenize(ctx context.Context, path, text string) ([]string, error)
}

// DocumentLoader reads, labels and tokenizes a set of submission files
type DocumentLoader interface {
	LoadDocuments(ctx context.Context, paths []string) ([]Document, []SkippedDocument, error)
}

// SimilarityService clusters documents by estimated similarity
type SimilarityService interface {
	Analyze(ctx context.Context, req *SimilarityRequest, fileName string, docs []Document) (*SimilarityReport, error)
}

// SimilarityOutputFormatter renders similarity reports
type SimilarityOutputFormatter interface {
	// Format formats the report according to the specified format
	Format(report *SimilarityReport, format OutputFormat) (string, error)

	// Write writes the formatted report to the writer
	Write(report *SimilarityReport, format OutputFormat, writer io.Writer) error
}

// SimilarityConfigurationLoader loads similarity requests from configuration files
type SimilarityConfigurationLoader interface {
	// LoadConfig loads configuration from path, or discovers one upward from startDir when path is empty
	LoadConfig(path, startDir string) (*SimilarityRequest, error)

	// LoadDefaultConfig returns the built-in defaults
	LoadDefaultConfig() *SimilarityRequest

	// MergeConfig overlays explicitly set CLI values on the loaded configuration
	MergeConfig(base *SimilarityRequest, override *SimilarityRequest) *SimilarityRequest
}

// RunRecorder persists finished reports
type RunRecorder interface {
	SaveReport(ctx context.Context, report *SimilarityReport) (int64, error)
}
