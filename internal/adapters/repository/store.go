// Package repository defines the persistence collaborator for batch runs.
// All I/O lives behind the Store interface so the scoring and pricing
// domain packages stay pure.
package repository

import (
	"context"

	"github.com/birdieworks/fairway/internal/domain/model"
	"github.com/birdieworks/fairway/internal/domain/types"
)

// BreakdownUpdate addresses one result row's recomputed breakdown.
type BreakdownUpdate struct {
	GolferID     string
	TournamentID string
	Breakdown    model.PointBreakdown
}

// Store provides the read-everything / write-everything cycle a batch run
// needs. Writes are per-record: each row is internally consistent even if a
// run stops partway, and recomputation is idempotent so a partial run is
// safely re-runnable.
type Store interface {
	// Snapshot loads the full in-memory batch view: golfers, scored
	// results with legacy flags, rosters and new-format source rows.
	Snapshot(ctx context.Context) (*model.Snapshot, error)

	// SavePrices writes newly computed prices back to the golfer records.
	SavePrices(ctx context.Context, prices []types.GolferPrice) error

	// SaveBreakdowns writes recomputed point breakdowns per result row.
	SaveBreakdowns(ctx context.Context, updates []BreakdownUpdate) error

	// Close releases the underlying database.
	Close() error
}
