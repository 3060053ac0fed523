package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ludo-technologies/simscan/app"
	"github.com/ludo-technologies/simscan/domain"
	"github.com/ludo-technologies/simscan/internal/config"
	"github.com/ludo-technologies/simscan/internal/logger"
	"github.com/ludo-technologies/simscan/internal/metrics"
	"github.com/ludo-technologies/simscan/service"
)

// ScanCommand handles the scan CLI command
type ScanCommand struct {
	// Input parameters
	configFile      string
	includePatterns []string
	excludePatterns []string

	// Signature and clustering parameters
	permutations int
	shingleWidth int
	stdFactor    float64
	seed         int64
	workers      int
	stem         bool

	// Output format flags (only one should be true)
	json bool
	csv  bool
	yaml bool

	// Output options
	outputDir  string
	stdout     bool
	noProgress bool

	// Infrastructure
	historyPath string
	metricsFile string
	logLevel    string
}

// NewScanCommand creates a new scan command
func NewScanCommand() *ScanCommand {
	return &ScanCommand{
		permutations: domain.DefaultPermutationCount,
		shingleWidth: domain.DefaultShingleWidth,
		stdFactor:    domain.DefaultStdFactor,
	}
}

// CreateCobraCommand creates the Cobra command for scanning submissions
func (c *ScanCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <submissions-dir> <file-name>...",
		Short: "Cluster submissions by similarity",
		Long: `Scan a directory of submissions and report suspiciously similar copies
of each named file.

Every file under the directory whose base name matches a file name (ignoring
case) is one student's submission; the student is named after the first
directory that differs between submissions. Comments are stripped, the text
is split into overlapping word shingles and each submission gets a MinHash
signature. A pair is flagged when its estimated similarity reaches the
average maximum similarity plus --std-factor standard deviations.

One report per file name is written to the output directory (or next to the
submissions) as "<name> Clusters.txt".

Examples:
  # Check every student's Main.java and Util.java
  simscan scan submissions/ Main.java Util.java

  # Reproducible run with a stricter threshold, printed as JSON
  simscan scan --seed 42 --std-factor 2.5 --json --stdout submissions/ Main.java

  # Essays submitted as PDF or HTML
  simscan scan --include '**/*.pdf' --include '**/*.html' --stem essays/ essay.pdf`,
		Args: cobra.MinimumNArgs(2),
		RunE: c.runScan,
	}

	// Input flags
	cmd.Flags().StringVarP(&c.configFile, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringSliceVar(&c.includePatterns, service.FlagInclude, nil,
		"Glob patterns of files to consider (default **/*.java)")
	cmd.Flags().StringSliceVar(&c.excludePatterns, service.FlagExclude, nil,
		"Glob patterns of files to ignore")

	// Algorithm flags
	cmd.Flags().IntVar(&c.permutations, service.FlagPermutations, c.permutations,
		"Number of MinHash functions per signature")
	cmd.Flags().IntVar(&c.shingleWidth, service.FlagShingleWidth, c.shingleWidth,
		"Number of words per shingle")
	cmd.Flags().Float64VarP(&c.stdFactor, service.FlagStdFactor, "k", c.stdFactor,
		"Standard deviations above the mean to flag")
	cmd.Flags().Int64Var(&c.seed, service.FlagSeed, 0,
		"Hash seed for reproducible runs (0 picks one at random)")
	cmd.Flags().IntVarP(&c.workers, service.FlagWorkers, "j", 0,
		"Parallel workers (0 uses every CPU)")
	cmd.Flags().BoolVar(&c.stem, service.FlagStem, false,
		"Reduce words to English stems before shingling")

	// Output format flags
	cmd.Flags().BoolVar(&c.json, "json", false, "Write JSON reports")
	cmd.Flags().BoolVar(&c.csv, "csv", false, "Write CSV reports")
	cmd.Flags().BoolVar(&c.yaml, "yaml", false, "Write YAML reports")

	// Output options
	cmd.Flags().StringVarP(&c.outputDir, service.FlagOutputDir, "o", "", "Directory for report files")
	cmd.Flags().BoolVar(&c.stdout, "stdout", false, "Print reports to stdout instead of writing files")
	cmd.Flags().BoolVar(&c.noProgress, "no-progress", false, "Disable progress bars")

	// Infrastructure flags
	cmd.Flags().StringVar(&c.historyPath, service.FlagHistory, "", "SQLite database recording every run")
	cmd.Flags().StringVar(&c.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the scan")
	cmd.Flags().StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	return cmd
}

// runScan executes the scan command
func (c *ScanCommand) runScan(cmd *cobra.Command, args []string) error {
	root, fileNames := args[0], args[1:]

	loader := service.NewConfigurationLoader(config.NewFlagTrackerFromFlagSet(cmd.Flags()))
	base, cfg, err := loader.LoadSettings(c.configFile, root)
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if cmd.Flags().Changed("log-level") {
		level = c.logLevel
	}
	log, err := logger.NewLogger("cli", level)
	if err != nil {
		return domain.NewConfigError("failed to create logger", err)
	}
	defer func() { _ = log.Sync() }()

	request, err := c.createScanRequest(cmd, loader, base, root, fileNames)
	if err != nil {
		return err
	}
	log.Debug("scan request",
		zap.String("config", request.ConfigPath),
		zap.Int("permutations", request.PermutationCount),
		zap.Int("shingle_width", request.ShingleWidth),
		zap.Float64("std_factor", request.StdFactor),
		zap.Int64("seed", request.Seed))

	m := metrics.New()
	useCase, cleanup, err := c.createScanUseCase(request, log, m)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	response, err := useCase.Execute(ctx, request)
	if response != nil {
		printSummary(cmd.ErrOrStderr(), response)
	}

	if c.metricsFile != "" {
		if mErr := m.WriteToTextfile(c.metricsFile); mErr != nil {
			log.Warn("failed to write metrics", zap.Error(mErr))
		}
	}

	return err
}

// createScanRequest merges explicit flags over the loaded configuration
func (c *ScanCommand) createScanRequest(cmd *cobra.Command, loader *service.ConfigurationLoaderImpl, base *domain.SimilarityRequest, root string, fileNames []string) (*domain.SimilarityRequest, error) {
	format, err := service.NewOutputFormatResolver().Determine(c.json, c.csv, c.yaml, string(base.OutputFormat))
	if err != nil {
		return nil, err
	}

	override := &domain.SimilarityRequest{
		Root:             root,
		FileNames:        fileNames,
		IncludePatterns:  c.includePatterns,
		ExcludePatterns:  c.excludePatterns,
		PermutationCount: c.permutations,
		ShingleWidth:     c.shingleWidth,
		StdFactor:        c.stdFactor,
		Seed:             c.seed,
		Workers:          c.workers,
		Stem:             c.stem,
		OutputFormat:     format,
		OutputDir:        c.outputDir,
		HistoryPath:      c.historyPath,
	}
	if c.stdout {
		override.OutputWriter = cmd.OutOrStdout()
	}

	return loader.MergeConfig(base, override), nil
}

// createScanUseCase wires the scan dependencies. The returned cleanup closes
// the progress bars and the history database.
func (c *ScanCommand) createScanUseCase(req *domain.SimilarityRequest, log *zap.Logger, m *metrics.Metrics) (*app.SimilarityUseCase, func(), error) {
	var progress domain.ProgressManager = service.NewNoopProgressManager()
	if !c.noProgress {
		progress = service.NewProgressManager()
	}

	fileReader := service.NewFileReader()
	loader := service.NewDocumentLoader(
		service.NewDocumentReader(fileReader),
		service.NewTokenizer(req.ShingleWidth, req.Stem),
		progress,
		log,
		req.Workers,
	).WithMetrics(m)

	executor := service.NewParallelExecutor()
	if progress.IsInteractive() {
		// one bar at a time
		executor.SetMaxConcurrency(1)
	}

	builder := app.NewSimilarityUseCaseBuilder().
		WithFileReader(fileReader).
		WithLoader(loader).
		WithService(service.NewSimilarityService(log, m)).
		WithFormatter(service.NewSimilarityFormatter()).
		WithOutputWriter(service.NewFileOutputWriter(os.Stderr)).
		WithExecutor(executor).
		WithLogger(log)

	cleanup := func() { progress.Close() }

	if req.HistoryPath != "" {
		history, err := service.OpenHistory(req.HistoryPath)
		if err != nil {
			return nil, nil, err
		}
		builder = builder.WithRecorder(history.ForRequest(req))
		cleanup = func() {
			progress.Close()
			if err := history.Close(); err != nil {
				log.Warn("failed to close history", zap.Error(err))
			}
		}
	}

	useCase, err := builder.Build()
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create scan use case: %w", err)
	}
	return useCase, cleanup, nil
}

// printSummary tells the user how many submissions were flagged per file name
func printSummary(w io.Writer, response *domain.SimilarityResponse) {
	for _, report := range response.Reports {
		if report.IsSkipped() {
			fmt.Fprintf(w, "%s: not clustered (%s)\n", report.FileName, report.SkipReason)
			continue
		}
		fmt.Fprintf(w, "%s: %d submissions have suspicious similarity\n", report.FileName, len(report.FlaggedLabels()))
	}
}

// NewScanCmd creates and returns the scan cobra command
func NewScanCmd() *cobra.Command {
	return NewScanCommand().CreateCobraCommand()
}
