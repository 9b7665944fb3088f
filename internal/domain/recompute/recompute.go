// Package recompute re-derives point breakdowns in batch after the scoring
// formula's raw-input shape changes. The computation is pure and shared
// verbatim between preview and apply, so a preview is a true predictor of
// what apply will write.
package recompute

import (
	"fmt"
	"strings"
	"time"

	"github.com/birdieworks/fairway/internal/domain/model"
	"github.com/birdieworks/fairway/internal/domain/scoring"
)

// Mode selects whether a recomputation run writes its output.
type Mode string

const (
	// ModePreview computes and reports but writes nothing.
	ModePreview Mode = "preview"
	// ModeApply computes and writes. Re-running apply with unchanged
	// source data produces identical breakdowns, so a crashed run is
	// safely re-runnable.
	ModeApply Mode = "apply"
)

// Writes reports whether the mode persists its output.
func (m Mode) Writes() bool { return m == ModeApply }

// Summary carries the per-run counts an operator needs to judge a formula
// change before trusting it. Fallback rows are the subset of unmatched rows
// where the legacy flag substituted a numeric floor.
type Summary struct {
	Rows            int     `json:"rows"`
	Matched         int     `json:"matched"`
	Unmatched       int     `json:"unmatched"`
	FallbackApplied int     `json:"fallback_applied"`
	PointsBefore    float64 `json:"points_before"`
	PointsAfter     float64 `json:"points_after"`
}

// Drift is the aggregate multiplied-point movement caused by the run.
func (s Summary) Drift() float64 { return s.PointsAfter - s.PointsBefore }

// Outcome is the full result of one recomputation pass. Breakdowns is
// aligned index-for-index with the input records.
type Outcome struct {
	Breakdowns []model.PointBreakdown
	Summary    Summary
}

// Recomputer rebuilds breakdowns from stored results and new-format source
// rows using one versioned calculator.
type Recomputer struct {
	calc *scoring.Calculator
}

// New creates a recomputer bound to the given calculator.
func New(calc *scoring.Calculator) *Recomputer {
	return &Recomputer{calc: calc}
}

// Compute re-scores every stored result against the new-format source rows.
//
// Raw-score precedence per row: a source row matched by normalized date and
// participant name is authoritative; otherwise a numeric raw score already
// on the record survives; otherwise a legacy flag of true substitutes the
// floor of the lowest bonus tier for the row's format; otherwise the raw
// score stays unknown and earns no bonus.
//
// Unmatched rows are a warning-level condition surfaced through the
// summary counts, never a failure: the batch completes and the operator
// judges the drift.
func (r *Recomputer) Compute(records []model.ResultRecord, sources []model.SourceScore) (*Outcome, error) {
	bySourceKey := make(map[string]model.SourceScore, len(sources))
	for _, s := range sources {
		bySourceKey[matchKey(s.GolferName, s.PlayedOn)] = s
	}

	out := &Outcome{
		Breakdowns: make([]model.PointBreakdown, len(records)),
		Summary:    Summary{Rows: len(records)},
	}
	for i, rec := range records {
		res := rec.Result
		if src, ok := bySourceKey[matchKey(rec.GolferName, res.PlayedOn)]; ok {
			raw := src.RawScore
			res.RawScore = &raw
			out.Summary.Matched++
		} else {
			out.Summary.Unmatched++
			if res.RawScore == nil && rec.LegacyFlag != nil && *rec.LegacyFlag {
				floor := r.calc.LowestBonusFloor(res.Format)
				res.RawScore = &floor
				out.Summary.FallbackApplied++
			}
		}

		bd, err := r.calc.Score(res)
		if err != nil {
			return nil, fmt.Errorf("recompute row %d (golfer %s, tournament %s): %w",
				i, res.GolferID, res.TournamentID, err)
		}
		out.Breakdowns[i] = bd
		out.Summary.PointsBefore += rec.Breakdown.Multiplied
		out.Summary.PointsAfter += bd.Multiplied
	}
	return out, nil
}

// matchKey joins new-format source rows to stored results. The new feed
// carries no internal IDs, so the join is by normalized calendar date and
// participant name.
func matchKey(name string, playedOn time.Time) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(name)), " ")
	return playedOn.UTC().Format("2006-01-02") + "|" + normalized
}
