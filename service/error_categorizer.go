package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ludo-technologies/simscan/domain"
)

// ErrorCategorizerImpl implements the ErrorCategorizer interface
type ErrorCategorizerImpl struct {
	patterns []categoryPatterns
}

type categoryPatterns struct {
	category domain.ErrorCategory
	patterns []string
}

// NewErrorCategorizer creates a new error categorizer
func NewErrorCategorizer() *ErrorCategorizerImpl {
	return &ErrorCategorizerImpl{
		patterns: initializeErrorPatterns(),
	}
}

// initializeErrorPatterns lists message fragments per category, checked in order
func initializeErrorPatterns() []categoryPatterns {
	return []categoryPatterns{
		{domain.ErrorCategoryTimeout, []string{"timeout", "deadline", "context canceled", "timed out"}},
		{domain.ErrorCategoryConfig, []string{"config", "toml", "yaml"}},
		{domain.ErrorCategoryStorage, []string{"sqlite", "history", "database"}},
		{domain.ErrorCategoryOutput, []string{"write", "output", "cannot create", "report"}},
		{domain.ErrorCategoryInput, []string{"no files found", "file not found", "directory", "permission denied", "cannot access", "path"}},
		{domain.ErrorCategoryProcessing, []string{"parse", "signature", "cluster", "shingle", "pdf"}},
	}
}

var codeCategories = map[string]domain.ErrorCategory{
	domain.ErrCodeInvalidInput:      domain.ErrorCategoryInput,
	domain.ErrCodeFileNotFound:      domain.ErrorCategoryInput,
	domain.ErrCodeEmptyInput:        domain.ErrorCategoryInput,
	domain.ErrCodeInvalidParameter:  domain.ErrorCategoryConfig,
	domain.ErrCodeConfigError:       domain.ErrorCategoryConfig,
	domain.ErrCodeUnsupportedFormat: domain.ErrorCategoryOutput,
	domain.ErrCodeOutputError:       domain.ErrorCategoryOutput,
	domain.ErrCodeStorageError:      domain.ErrorCategoryStorage,
	domain.ErrCodeUnknownDocument:   domain.ErrorCategoryProcessing,
	domain.ErrCodeAnalysisError:     domain.ErrorCategoryProcessing,
}

// Categorize determines the category of an error. Domain error codes and
// context errors decide first; the message is only inspected for other errors.
func (ec *ErrorCategorizerImpl) Categorize(err error) *domain.CategorizedError {
	if err == nil {
		return nil
	}

	category := domain.ErrorCategoryUnknown
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		category = domain.ErrorCategoryTimeout
	default:
		if c, ok := codeCategories[domain.ErrorCode(err)]; ok {
			category = c
		} else {
			errMsg := strings.ToLower(err.Error())
			for _, cp := range ec.patterns {
				if containsAnyPattern(errMsg, cp.patterns) {
					category = cp.category
					break
				}
			}
		}
	}

	message := err.Error()
	if category != domain.ErrorCategoryUnknown {
		message = ec.getCategoryMessage(category)
	}
	return &domain.CategorizedError{
		Category: category,
		Message:  message,
		Original: err,
	}
}

// GetRecoverySuggestions returns recovery suggestions for an error category
func (ec *ErrorCategorizerImpl) GetRecoverySuggestions(category domain.ErrorCategory) []string {
	suggestions := map[domain.ErrorCategory][]string{
		domain.ErrorCategoryInput: {
			"Check that the submissions directory exists and contains the named files",
			"Check the --include and --exclude patterns",
			"Ensure you have read permissions for the submissions",
		},
		domain.ErrorCategoryConfig: {
			"Verify the values in .simscan.toml",
			"Try: simscan init to generate a valid config file",
			"Permutations and shingle width must be positive, the std factor non-negative",
		},
		domain.ErrorCategoryTimeout: {
			"Reduce --permutations or scan fewer file names at once",
			"Increase --workers on machines with more CPUs",
		},
		domain.ErrorCategoryOutput: {
			"Ensure the output directory exists and is writable",
			"Use --stdout to print the report instead",
		},
		domain.ErrorCategoryStorage: {
			"Check that the --history database path is writable",
			"Remove a corrupted history file and run again",
		},
		domain.ErrorCategoryProcessing: {
			"Run with --log-level debug to see which submission failed",
			"Report the issue if it persists",
		},
		domain.ErrorCategoryUnknown: {
			"Run with --log-level debug for detailed error information",
			"Report the issue if it persists",
		},
	}

	if sug, ok := suggestions[category]; ok {
		return sug
	}
	return []string{"Check the error message for more details"}
}

// getCategoryMessage returns a user-friendly message for an error category
func (ec *ErrorCategorizerImpl) getCategoryMessage(category domain.ErrorCategory) string {
	messages := map[domain.ErrorCategory]string{
		domain.ErrorCategoryInput:      "Failed to process the submissions",
		domain.ErrorCategoryConfig:     "Configuration file or settings error",
		domain.ErrorCategoryTimeout:    "Scan timed out or was cancelled",
		domain.ErrorCategoryOutput:     "Failed to generate or write the report",
		domain.ErrorCategoryStorage:    "Failed to record run history",
		domain.ErrorCategoryProcessing: "Error while comparing submissions",
	}

	if msg, ok := messages[category]; ok {
		return msg
	}
	return "An error occurred"
}

// containsAnyPattern checks if a string contains any of the given patterns
func containsAnyPattern(str string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(str, pattern) {
			return true
		}
	}
	return false
}
