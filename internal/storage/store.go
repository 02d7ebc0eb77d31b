package storage

import (
	"context"

	"biomorph/internal/model"
)

// Store persists finished-run artifacts: the advanced-to genotypes, per-step
// fitness history, and lineage records. The live engine state never touches
// a Store; only completed runs are recorded.
type Store interface {
	Init(ctx context.Context) error
	SaveBiomorph(ctx context.Context, b model.Biomorph) error
	GetBiomorph(ctx context.Context, id string) (model.Biomorph, bool, error)
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error)
	SaveLineage(ctx context.Context, runID string, lineage []model.LineageRecord) error
	GetLineage(ctx context.Context, runID string) ([]model.LineageRecord, bool, error)
}

// Resetter is implemented by stores that can drop all recorded state.
type Resetter interface {
	Reset(ctx context.Context) error
}
