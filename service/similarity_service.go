package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ludo-technologies/simscan/domain"
	"github.com/ludo-technologies/simscan/internal/cluster"
	"github.com/ludo-technologies/simscan/internal/logger"
	"github.com/ludo-technologies/simscan/internal/metrics"
	"github.com/ludo-technologies/simscan/internal/minhash"
)

// Reasons recorded on reports and skipped documents
const (
	SkipReasonSingleFile  = "cannot cluster a single file"
	SkipReasonNoDocuments = "no submissions found"
	SkipReasonNoShingles  = "fewer words than the shingle width"
	SkipReasonUnreadable  = "unreadable"
)

// SimilarityService implements the domain.SimilarityService interface
type SimilarityService struct {
	logger    *zap.Logger
	metrics   *metrics.Metrics
	assembler cluster.Assembler
}

// NewSimilarityService creates a new similarity service. log and m may be nil.
func NewSimilarityService(log *zap.Logger, m *metrics.Metrics) *SimilarityService {
	if m == nil {
		m = metrics.New()
	}
	return &SimilarityService{
		logger:  logger.OrNop(log),
		metrics: m,
	}
}

// WithAssembler replaces the pairwise cluster assembler
func (s *SimilarityService) WithAssembler(a cluster.Assembler) *SimilarityService {
	s.assembler = a
	return s
}

// Analyze signs docs, estimates the corpus threshold and collects every pair
// at or above it. Documents without shingles are skipped; fewer than two
// signable documents yield a report with SkipReason set and no clusters.
func (s *SimilarityService) Analyze(ctx context.Context, req *domain.SimilarityRequest, fileName string, docs []domain.Document) (*domain.SimilarityReport, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}
	if req == nil {
		return nil, fmt.Errorf("similarity request cannot be nil")
	}

	start := time.Now()
	seed := resolveSeed(req.Seed, start)
	log := s.logger.With(zap.String("file", fileName), zap.Int64("seed", seed))

	report := &domain.SimilarityReport{
		FileName:        fileName,
		TopSimilarities: []domain.DocumentSimilarity{},
		Clusters:        []domain.SimilarityCluster{},
		GeneratedAt:     start,
		Statistics: &domain.SimilarityStatistics{
			PermutationCount: req.PermutationCount,
			Seed:             seed,
			StdFactor:        req.StdFactor,
		},
	}

	builder := minhash.NewBuilder(minhash.NewSeededHashFamily(seed))
	builder.SetWorkers(req.Workers)

	signed := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Shingles) == 0 {
			log.Warn("skipping submission without shingles", zap.String("label", doc.Label), zap.String("path", doc.Path))
			report.Skipped = append(report.Skipped, domain.SkippedDocument{Label: doc.Label, Path: doc.Path, Reason: SkipReasonNoShingles})
			s.metrics.DocumentsSkipped.WithLabelValues(SkipReasonNoShingles).Inc()
			continue
		}
		if _, err := builder.AddDocument(minhash.NewTokenSet(doc.Shingles...)); err != nil {
			return nil, domain.FromCoreError(fmt.Sprintf("failed to register %s", doc.Path), err)
		}
		signed = append(signed, doc)
	}

	report.Statistics.DocumentCount = len(signed)
	report.Statistics.VocabularySize = builder.VocabularySize()

	if len(signed) < 2 {
		report.SkipReason = SkipReasonSingleFile
		if len(signed) == 0 {
			report.SkipReason = SkipReasonNoDocuments
		}
		log.Info("not clustering", zap.String("reason", report.SkipReason), zap.Int("documents", len(signed)))
		s.metrics.RunsTotal.WithLabelValues("skipped").Inc()
		report.Duration = time.Since(start).Milliseconds()
		return report, nil
	}

	signStart := time.Now()
	matrix, err := builder.Build(req.PermutationCount)
	if err != nil {
		s.metrics.RunsTotal.WithLabelValues("error").Inc()
		return nil, domain.FromCoreError("failed to build signatures", err)
	}
	s.metrics.ObservePhase(metrics.PhaseSign, signStart)
	log.Debug("signatures built",
		zap.Int("documents", matrix.DocumentCount()),
		zap.Int("vocabulary", report.Statistics.VocabularySize),
		zap.Int("permutations", matrix.PermutationCount()),
		zap.Duration("elapsed", time.Since(signStart)))

	labelOf := func(id minhash.DocumentID) string {
		return signed[id].Label
	}

	clusterStart := time.Now()
	result, err := cluster.Run(ctx, matrix, cluster.Options{
		StdFactor: req.StdFactor,
		Workers:   req.Workers,
		Assembler: s.assembler,
	}, labelOf)
	if err != nil {
		s.metrics.RunsTotal.WithLabelValues("error").Inc()
		return nil, domain.FromCoreError("failed to cluster submissions", err)
	}
	s.metrics.ObservePhase(metrics.PhaseCluster, clusterStart)

	fillReport(report, signed, result)
	report.Duration = time.Since(start).Milliseconds()

	s.metrics.DocumentsTotal.WithLabelValues(fileName).Add(float64(len(signed)))
	s.metrics.FlaggedPairs.WithLabelValues(fileName).Add(float64(report.Statistics.FlaggedPairs))
	s.metrics.Threshold.WithLabelValues(fileName).Set(result.Summary.Threshold)
	s.metrics.VocabularySize.WithLabelValues(fileName).Set(float64(report.Statistics.VocabularySize))
	s.metrics.RunsTotal.WithLabelValues("ok").Inc()

	log.Info("clustered submissions",
		zap.Int("documents", len(signed)),
		zap.Float64("mean", result.Summary.Mean),
		zap.Float64("std_dev", result.Summary.StdDev),
		zap.Float64("threshold", result.Summary.Threshold),
		zap.Int("flagged_pairs", report.Statistics.FlaggedPairs),
		zap.Int64("duration_ms", report.Duration))

	return report, nil
}

// resolveSeed returns seed, or a non-zero seed derived from now when seed is 0
func resolveSeed(seed int64, now time.Time) int64 {
	if seed != 0 {
		return seed
	}
	if drawn := now.UnixNano(); drawn != 0 {
		return drawn
	}
	return 1
}

func fillReport(report *domain.SimilarityReport, signed []domain.Document, result *cluster.Result) {
	stats := report.Statistics
	stats.Mean = result.Summary.Mean
	stats.StdDev = result.Summary.StdDev
	stats.StdFactor = result.Summary.StdFactor
	stats.Threshold = result.Summary.Threshold
	stats.Cutoff = result.Cutoff

	for i, v := range result.Sample {
		report.TopSimilarities = append(report.TopSimilarities, domain.DocumentSimilarity{
			Label:         signed[i].Label,
			Path:          signed[i].Path,
			MaxSimilarity: v,
		})
	}

	for _, label := range result.Clusters.Labels() {
		matches := result.Clusters.Matches(label)
		entry := domain.SimilarityCluster{
			Label:   label,
			Matches: make([]domain.SimilarityMatch, len(matches)),
		}
		for i, m := range matches {
			entry.Matches[i] = domain.SimilarityMatch{Label: m.Label, Similarity: m.Similarity}
		}
		stats.FlaggedPairs += len(matches)
		report.Clusters = append(report.Clusters, entry)
	}
}
