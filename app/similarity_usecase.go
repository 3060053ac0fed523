package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ludo-technologies/simscan/domain"
	"github.com/ludo-technologies/simscan/internal/logger"
	"github.com/ludo-technologies/simscan/service"
)

// SimilarityUseCase orchestrates a scan: discover submissions, cluster each
// requested file name and write one report per file name
type SimilarityUseCase struct {
	fileReader domain.SubmissionFileReader
	loader     domain.DocumentLoader
	service    domain.SimilarityService
	formatter  domain.SimilarityOutputFormatter
	output     domain.ReportWriter
	recorder   domain.RunRecorder
	executor   domain.ParallelExecutor
	logger     *zap.Logger
}

// Execute runs the scan described by req. Every file name is processed even
// when another fails; the returned error joins the failures. File names are
// analyzed concurrently, but reports are written one at a time in
// req.FileNames order once every analysis has finished.
func (uc *SimilarityUseCase) Execute(ctx context.Context, req *domain.SimilarityRequest) (*domain.SimilarityResponse, error) {
	if req == nil {
		return nil, domain.NewInvalidInputError("similarity request cannot be nil", nil)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()

	files, err := uc.fileReader.CollectFiles(req.Root, req.IncludePatterns, req.ExcludePatterns)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("collected submissions",
		zap.String("root", req.Root),
		zap.Int("files", len(files)))

	tasks := make([]domain.ExecutableTask, len(req.FileNames))
	for i, name := range req.FileNames {
		tasks[i] = service.NewSimpleTask(name, true, func(ctx context.Context) (interface{}, error) {
			return uc.scanFile(ctx, req, files, name)
		})
	}

	results, execErr := uc.run(ctx, tasks)

	response := &domain.SimilarityResponse{
		FilesFound:  len(files),
		GeneratedAt: startTime,
	}
	errs := []error{execErr}
	for _, r := range results {
		report, ok := r.(*domain.SimilarityReport)
		if !ok || report == nil {
			continue
		}
		response.Reports = append(response.Reports, report)
		if err := uc.writeReport(req, report); err != nil {
			errs = append(errs, fmt.Errorf("writing report for %s: %w", report.FileName, err))
		}
	}

	err = errors.Join(errs...)
	response.Success = err == nil
	response.Duration = time.Since(startTime).Milliseconds()

	return response, err
}

func (uc *SimilarityUseCase) run(ctx context.Context, tasks []domain.ExecutableTask) ([]interface{}, error) {
	if uc.executor != nil {
		return uc.executor.Execute(ctx, tasks)
	}

	results := make([]interface{}, len(tasks))
	var errs []error
	for i, task := range tasks {
		result, err := task.Execute(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("task %s failed: %w", task.Name(), err))
			continue
		}
		results[i] = result
	}
	return results, errors.Join(errs...)
}

// scanFile clusters the submissions named fileName and records the run
func (uc *SimilarityUseCase) scanFile(ctx context.Context, req *domain.SimilarityRequest, files []string, fileName string) (*domain.SimilarityReport, error) {
	log := uc.logger.With(zap.String("file", fileName))

	paths := uc.fileReader.FilterByFilename(files, fileName)
	log.Debug("matched submissions", zap.Int("count", len(paths)))

	docs, skipped, err := uc.loader.LoadDocuments(ctx, paths)
	if err != nil {
		return nil, err
	}

	report, err := uc.service.Analyze(ctx, req, fileName, docs)
	if err != nil {
		return nil, err
	}
	report.Skipped = append(skipped, report.Skipped...)

	if uc.recorder != nil {
		id, err := uc.recorder.SaveReport(ctx, report)
		if err != nil {
			return nil, err
		}
		report.RunID = id
	}
	return report, nil
}

func (uc *SimilarityUseCase) writeReport(req *domain.SimilarityRequest, report *domain.SimilarityReport) error {
	writeFunc := func(w io.Writer) error {
		return uc.formatter.Write(report, req.OutputFormat, w)
	}

	if req.OutputWriter != nil {
		return uc.output.Write(req.OutputWriter, "", writeFunc)
	}
	return uc.output.Write(nil, ReportPath(req, report.FileName), writeFunc)
}

// ReportPath is where the report for fileName is written when no output
// writer is set: the output directory, or the submissions root when empty
func ReportPath(req *domain.SimilarityRequest, fileName string) string {
	dir := req.OutputDir
	if dir == "" {
		dir = req.Root
	}
	return filepath.Join(dir, service.ReportFileName(fileName, req.OutputFormat))
}

// SimilarityUseCaseBuilder provides a builder pattern for creating SimilarityUseCase
type SimilarityUseCaseBuilder struct {
	fileReader domain.SubmissionFileReader
	loader     domain.DocumentLoader
	service    domain.SimilarityService
	formatter  domain.SimilarityOutputFormatter
	output     domain.ReportWriter
	recorder   domain.RunRecorder
	executor   domain.ParallelExecutor
	logger     *zap.Logger
}

// NewSimilarityUseCaseBuilder creates a new builder
func NewSimilarityUseCaseBuilder() *SimilarityUseCaseBuilder {
	return &SimilarityUseCaseBuilder{}
}

// WithFileReader sets the file reader
func (b *SimilarityUseCaseBuilder) WithFileReader(fileReader domain.SubmissionFileReader) *SimilarityUseCaseBuilder {
	b.fileReader = fileReader
	return b
}

// WithLoader sets the document loader
func (b *SimilarityUseCaseBuilder) WithLoader(loader domain.DocumentLoader) *SimilarityUseCaseBuilder {
	b.loader = loader
	return b
}

// WithService sets the similarity service
func (b *SimilarityUseCaseBuilder) WithService(svc domain.SimilarityService) *SimilarityUseCaseBuilder {
	b.service = svc
	return b
}

// WithFormatter sets the output formatter
func (b *SimilarityUseCaseBuilder) WithFormatter(formatter domain.SimilarityOutputFormatter) *SimilarityUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithOutputWriter sets the report writer
func (b *SimilarityUseCaseBuilder) WithOutputWriter(output domain.ReportWriter) *SimilarityUseCaseBuilder {
	b.output = output
	return b
}

// WithRecorder sets the run history recorder
func (b *SimilarityUseCaseBuilder) WithRecorder(recorder domain.RunRecorder) *SimilarityUseCaseBuilder {
	b.recorder = recorder
	return b
}

// WithExecutor sets the executor that processes file names concurrently
func (b *SimilarityUseCaseBuilder) WithExecutor(executor domain.ParallelExecutor) *SimilarityUseCaseBuilder {
	b.executor = executor
	return b
}

// WithLogger sets the logger
func (b *SimilarityUseCaseBuilder) WithLogger(log *zap.Logger) *SimilarityUseCaseBuilder {
	b.logger = log
	return b
}

// Build creates the SimilarityUseCase. The recorder and executor are
// optional; without an executor file names are processed one at a time.
func (b *SimilarityUseCaseBuilder) Build() (*SimilarityUseCase, error) {
	if b.fileReader == nil {
		return nil, fmt.Errorf("file reader is required")
	}
	if b.loader == nil {
		return nil, fmt.Errorf("document loader is required")
	}
	if b.service == nil {
		return nil, fmt.Errorf("similarity service is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}

	output := b.output
	if output == nil {
		output = service.NewFileOutputWriter(nil)
	}

	return &SimilarityUseCase{
		fileReader: b.fileReader,
		loader:     b.loader,
		service:    b.service,
		formatter:  b.formatter,
		output:     output,
		recorder:   b.recorder,
		executor:   b.executor,
		logger:     logger.OrNop(b.logger),
	}, nil
}
