// Package types contains common types used across the application.
package types

// GolferPrice is the pricing engine's output for one golfer.
type GolferPrice struct {
	GolferID  string  `json:"golfer_id"`
	OldPrice  int64   `json:"old_price"`
	NewPrice  int64   `json:"new_price"`
	Composite float64 `json:"composite"`
}

// RankInversion records a pair of golfers whose relative price order
// flipped during a pricing run. Inversions are reported, never corrected.
type RankInversion struct {
	GolferA   string `json:"golfer_a"` // ranked above B before the run
	GolferB   string `json:"golfer_b"`
	PriceA    int64  `json:"price_a"` // new prices
	PriceB    int64  `json:"price_b"`
	PriorRank int    `json:"prior_rank"` // A's rank in the pre-run ordering
}

// RosterAudit flags a team whose roster total exceeds the salary cap at the
// newly computed prices. Over-cap rosters are enforced at the next transfer
// window, not here.
type RosterAudit struct {
	TeamID  string `json:"team_id"`
	Total   int64  `json:"total"`
	Cap     int64  `json:"cap"`
	Overrun int64  `json:"overrun"`
}

// Report is the structured integrity report produced by a batch run.
type Report struct {
	RankInversions    []RankInversion `json:"rank_inversions"`
	OverBudgetRosters []RosterAudit   `json:"over_budget_rosters"`
	PointDriftTotal   float64         `json:"point_drift_total"`
}
