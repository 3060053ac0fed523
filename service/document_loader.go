package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"

	"github.com/ludo-technologies/simscan/domain"
	"github.com/ludo-technologies/simscan/internal/logger"
	"github.com/ludo-technologies/simscan/internal/metrics"
)

// DocumentLoaderImpl implements the DocumentLoader interface
type DocumentLoaderImpl struct {
	extractor domain.TextExtractor
	tokenizer domain.Tokenizer
	progress  domain.ProgressManager
	logger    *zap.Logger
	metrics   *metrics.Metrics
	workers   int
}

// NewDocumentLoader creates a loader. progress and log may be nil.
func NewDocumentLoader(extractor domain.TextExtractor, tokenizer domain.Tokenizer, progress domain.ProgressManager, log *zap.Logger, workers int) *DocumentLoaderImpl {
	if workers < 0 {
		workers = 0
	}
	return &DocumentLoaderImpl{
		extractor: extractor,
		tokenizer: tokenizer,
		progress:  progress,
		logger:    logger.OrNop(log),
		workers:   workers,
	}
}

// WithMetrics records the read phase duration and skipped files in m
func (l *DocumentLoaderImpl) WithMetrics(m *metrics.Metrics) *DocumentLoaderImpl {
	l.metrics = m
	return l
}

type loadResult struct {
	doc     domain.Document
	skipped *domain.SkippedDocument
}

// LoadDocuments labels, reads and tokenizes paths concurrently. Files that
// cannot be read are returned as skipped documents instead of failing the
// whole batch; the output keeps the order of paths.
func (l *DocumentLoaderImpl) LoadDocuments(ctx context.Context, paths []string) ([]domain.Document, []domain.SkippedDocument, error) {
	if ctx == nil {
		return nil, nil, fmt.Errorf("context cannot be nil")
	}
	if len(paths) == 0 {
		return nil, nil, nil
	}

	start := time.Now()
	labels := SubmissionLabels(paths)
	if l.progress != nil {
		l.progress.Initialize("Reading submissions", len(paths))
	}

	var processed atomic.Int64
	results := make([]loadResult, len(paths))
	readers := iter.Iterator[string]{MaxGoroutines: l.workers}
	readers.ForEachIdx(paths, func(i int, path *string) {
		results[i] = l.load(ctx, labels[i], *path)
		n := processed.Add(1)
		if l.progress != nil {
			l.progress.Update(int(n), len(paths))
		}
	})

	if l.progress != nil {
		l.progress.Complete(ctx.Err() == nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("loading documents cancelled: %w", err)
	}

	docs := make([]domain.Document, 0, len(results))
	var skipped []domain.SkippedDocument
	for _, r := range results {
		if r.skipped != nil {
			skipped = append(skipped, *r.skipped)
			if l.metrics != nil {
				l.metrics.DocumentsSkipped.WithLabelValues(SkipReasonUnreadable).Inc()
			}
			continue
		}
		docs = append(docs, r.doc)
	}
	if l.metrics != nil {
		l.metrics.ObservePhase(metrics.PhaseRead, start)
	}
	return docs, skipped, nil
}

func (l *DocumentLoaderImpl) load(ctx context.Context, label, path string) loadResult {
	text, err := l.extractor.ExtractText(ctx, path)
	if err != nil {
		l.logger.Warn("skipping unreadable submission", zap.String("path", path), zap.Error(err))
		return loadResult{skipped: &domain.SkippedDocument{Label: label, Path: path, Reason: err.Error()}}
	}

	shingles, err := l.tokenizer.Tokenize(ctx, path, text)
	if err != nil {
		l.logger.Warn("skipping untokenizable submission", zap.String("path", path), zap.Error(err))
		return loadResult{skipped: &domain.SkippedDocument{Label: label, Path: path, Reason: err.Error()}}
	}

	l.logger.Debug("loaded submission",
		zap.String("label", label),
		zap.String("path", path),
		zap.Int("shingles", len(shingles)))
	return loadResult{doc: domain.Document{Label: label, Path: path, Shingles: shingles}}
}
