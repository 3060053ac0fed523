package service

import (
	"context"
	"fmt"

	"github.com/ludo-technologies/simscan/domain"
	"github.com/ludo-technologies/simscan/internal/store"
)

// HistoryService records reports in the run history database and implements
// the RunRecorder interface
type HistoryService struct {
	store *store.Store
	root  string
	seed  int64
}

// OpenHistory opens the history database at path
func OpenHistory(path string) (*HistoryService, error) {
	s, err := store.Open(path)
	if err != nil {
		return nil, domain.NewStorageError(fmt.Sprintf("failed to open history %s", path), err)
	}
	return &HistoryService{store: s}, nil
}

// ForRequest returns a recorder that stamps runs with the request's root.
// The seed comes from the report statistics when the service resolved one.
func (h *HistoryService) ForRequest(req *domain.SimilarityRequest) *HistoryService {
	return &HistoryService{store: h.store, root: req.Root, seed: req.Seed}
}

// Close closes the database
func (h *HistoryService) Close() error {
	return h.store.Close()
}

// SaveReport stores the report and every flagged pair, returning the run id
func (h *HistoryService) SaveReport(ctx context.Context, report *domain.SimilarityReport) (int64, error) {
	run := store.Run{
		FileName:   report.FileName,
		Root:       h.root,
		Seed:       h.seed,
		SkipReason: report.SkipReason,
		CreatedAt:  report.GeneratedAt,
	}
	if st := report.Statistics; st != nil {
		run.Documents = st.DocumentCount
		run.Permutations = st.PermutationCount
		if st.Seed != 0 {
			run.Seed = st.Seed
		}
		run.Mean = st.Mean
		run.StdDev = st.StdDev
		run.StdFactor = st.StdFactor
		run.Threshold = st.Threshold
		run.Cutoff = st.Cutoff
	}

	var flags []store.Flag
	for _, c := range report.Clusters {
		for _, m := range c.Matches {
			flags = append(flags, store.Flag{Label: c.Label, Other: m.Label, Similarity: m.Similarity})
		}
	}

	id, err := h.store.SaveRun(ctx, run, flags)
	if err != nil {
		return 0, domain.NewStorageError("failed to record run", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs first
func (h *HistoryService) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	runs, err := h.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, domain.NewStorageError("failed to list runs", err)
	}
	return runs, nil
}

// Flags returns the flagged pairs of a run
func (h *HistoryService) Flags(ctx context.Context, runID int64) ([]store.Flag, error) {
	flags, err := h.store.FlagsForRun(ctx, runID)
	if err != nil {
		return nil, domain.NewStorageError(fmt.Sprintf("failed to load run %d", runID), err)
	}
	return flags, nil
}

var _ domain.RunRecorder = (*HistoryService)(nil)
