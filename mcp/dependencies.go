package mcp

import (
	"io"

	"go.uber.org/zap"

	"github.com/ludo-technologies/simscan/app"
	"github.com/ludo-technologies/simscan/domain"
	"github.com/ludo-technologies/simscan/internal/logger"
	"github.com/ludo-technologies/simscan/internal/metrics"
	"github.com/ludo-technologies/simscan/service"
)

// Dependencies aggregates the shared services required by MCP handlers.
type Dependencies struct {
	fileReader domain.SubmissionFileReader
	logger     *zap.Logger
	metrics    *metrics.Metrics
	configPath string
}

// NewDependencies constructs the dependency set. configPath may be empty to
// discover a configuration file from each scanned directory.
func NewDependencies(log *zap.Logger, configPath string) *Dependencies {
	return &Dependencies{
		fileReader: service.NewFileReader(),
		logger:     logger.OrNop(log),
		metrics:    metrics.New(),
		configPath: configPath,
	}
}

// ConfigPath returns the configured config file path (may be empty to trigger discovery).
func (d *Dependencies) ConfigPath() string {
	return d.configPath
}

// Metrics exposes the metrics shared by every tool call.
func (d *Dependencies) Metrics() *metrics.Metrics {
	return d.metrics
}

// LoadRequest loads the configuration for root as a similarity request
func (d *Dependencies) LoadRequest(root string) (*domain.SimilarityRequest, error) {
	return service.NewConfigurationLoader(nil).LoadConfig(d.configPath, root)
}

// BuildSimilarityUseCase assembles a use case for req. Reports are rendered
// by the caller, so the use case writes them nowhere.
func (d *Dependencies) BuildSimilarityUseCase(req *domain.SimilarityRequest) (*app.SimilarityUseCase, error) {
	loader := service.NewDocumentLoader(
		service.NewDocumentReader(d.fileReader),
		service.NewTokenizer(req.ShingleWidth, req.Stem),
		nil,
		d.logger,
		req.Workers,
	).WithMetrics(d.metrics)

	return app.NewSimilarityUseCaseBuilder().
		WithFileReader(d.fileReader).
		WithLoader(loader).
		WithService(service.NewSimilarityService(d.logger, d.metrics)).
		WithFormatter(service.NewSimilarityFormatter()).
		WithOutputWriter(service.NewFileOutputWriter(io.Discard)).
		WithExecutor(service.NewParallelExecutor()).
		WithLogger(d.logger).
		Build()
}
