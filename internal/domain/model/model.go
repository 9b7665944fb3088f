// Package model contains domain models passed between layers.
package model

import "time"

// Format identifies the scoring format a tournament was played under.
type Format string

// Supported scoring formats.
const (
	FormatStableford Format = "stableford" // higher raw score is better
	FormatMedal      Format = "medal"      // lower raw score is better (strokes)
)

// Podium positions that earn base points.
const (
	PositionFirst  = 1
	PositionSecond = 2
	PositionThird  = 3
)

// Golfer is a priced participant in the league.
type Golfer struct {
	ID    string
	Name  string
	Price int64 // current market price in minor currency units
}

// Tournament is the competition metadata results are scored under.
type Tournament struct {
	ID         string
	Name       string
	PlayedOn   time.Time
	Format     Format
	Multiplier float64
}

// TournamentResult captures one golfer's raw outcome in one tournament.
// Position is nil unless the golfer finished 1st-3rd. RawScore is nil when
// no numeric performance score was recorded for the round.
type TournamentResult struct {
	GolferID     string
	TournamentID string
	PlayedOn     time.Time
	Participated bool
	Position     *int
	RawScore     *float64
	Format       Format
	Multiplier   float64 // tournament-level, e.g. majors count double; always > 0
}

// PointBreakdown is the scored view of a single TournamentResult.
// Invariant: Multiplied == (Base+Bonus)*multiplier when the golfer
// participated; all three fields are zero otherwise.
type PointBreakdown struct {
	Base       float64
	Bonus      float64
	Multiplied float64
}

// ScoredResult pairs a raw result with its point breakdown.
type ScoredResult struct {
	Result    TournamentResult
	Breakdown PointBreakdown
}

// PerformanceProfile aggregates a golfer's full scored history. It is
// rebuilt from scratch on every pricing run, never mutated incrementally.
type PerformanceProfile struct {
	GolferID        string
	TotalPoints     float64
	TimesPlayed     int
	Wins            int
	Podiums         int
	BonusRounds     int
	AveragePerEvent float64 // small-sample damped, see pricing
	Composite       float64
}

// Roster is an existing team: a fixed-size set of golfer IDs subject to the
// league salary cap.
type Roster struct {
	TeamID    string
	GolferIDs []string
}

// ResultRecord is a stored result row as loaded from persistence: the raw
// result, its persisted breakdown, and the legacy bonus flag kept around
// from before numeric raw scores existed. LegacyFlag is nil when the flag
// was never recorded, which is distinct from an explicit false.
type ResultRecord struct {
	Result     TournamentResult
	Breakdown  PointBreakdown
	GolferName string
	LegacyFlag *bool
}

// SourceScore is a new-format raw performance row to be matched against
// stored results during recomputation. Matching is by normalized date and
// participant name because the new feed carries no internal IDs.
type SourceScore struct {
	GolferName string
	PlayedOn   time.Time
	RawScore   float64
}

// Snapshot is the in-memory batch view a pricing or recompute run operates
// on. It is read once before computing and never refreshed mid-run.
type Snapshot struct {
	Golfers      []Golfer
	Results      []ResultRecord
	Rosters      []Roster
	SourceScores []SourceScore
}
