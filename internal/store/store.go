// Package store persists pipeline runs and their per-stage diagnostics.
package store

import (
	"context"

	"github.com/sells-group/vaxpanel/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for pipeline run history.
type Store interface {
	// Runs
	CreateRun(ctx context.Context) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string) error
	FailRun(ctx context.Context, runID string, cause string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Stages
	AddStage(ctx context.Context, runID, name, status string, durationMS int64, diagnostics string) (*model.RunStage, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
