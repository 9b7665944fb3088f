package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/birdieworks/fairway/internal/domain/model"
	"github.com/birdieworks/fairway/internal/domain/types"
	"github.com/birdieworks/fairway/pkg/metrics"
)

// dateLayout is the stored calendar-date format. Recomputation matches
// source rows at day granularity, so no time component is kept.
const dateLayout = "2006-01-02"

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and runs
// migrations.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenStore, err)
	}

	// WAL mode so operators can read reports while a batch run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: set WAL mode: %v", ErrOpenStore, err)
	}

	// Batch runs are single-threaded; one connection serializes stray callers.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS golfers (
			id    TEXT PRIMARY KEY,
			name  TEXT NOT NULL,
			price INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS tournaments (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			played_on  TEXT NOT NULL,
			format     TEXT NOT NULL,
			multiplier REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			golfer_id             TEXT NOT NULL,
			tournament_id         TEXT NOT NULL,
			participated          INTEGER NOT NULL,
			position              INTEGER,
			raw_score             REAL,
			legacy_over_threshold INTEGER,
			base_points           REAL NOT NULL DEFAULT 0,
			bonus_points          REAL NOT NULL DEFAULT 0,
			multiplied_points     REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (golfer_id, tournament_id)
		)`,
		`CREATE TABLE IF NOT EXISTS rosters (
			team_id   TEXT NOT NULL,
			golfer_id TEXT NOT NULL,
			PRIMARY KEY (team_id, golfer_id)
		)`,
		`CREATE TABLE IF NOT EXISTS source_scores (
			golfer_name TEXT NOT NULL,
			played_on   TEXT NOT NULL,
			raw_score   REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_golfer ON results(golfer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_source_scores_key ON source_scores(played_on, golfer_name)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("%w: %v", ErrMigrate, err)
		}
	}
	return nil
}

// Snapshot loads the complete batch view in one pass.
func (s *SQLiteStore) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	start := time.Now()
	snap := &model.Snapshot{}

	if err := s.loadGolfers(ctx, snap); err != nil {
		metrics.RecordStoreError()
		return nil, err
	}
	if err := s.loadResults(ctx, snap); err != nil {
		metrics.RecordStoreError()
		return nil, err
	}
	if err := s.loadRosters(ctx, snap); err != nil {
		metrics.RecordStoreError()
		return nil, err
	}
	if err := s.loadSourceScores(ctx, snap); err != nil {
		metrics.RecordStoreError()
		return nil, err
	}

	metrics.RecordStoreSnapshotDuration(time.Since(start))
	return snap, nil
}

func (s *SQLiteStore) loadGolfers(ctx context.Context, snap *model.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, price FROM golfers ORDER BY id`)
	if err != nil {
		return fmt.Errorf("load golfers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var g model.Golfer
		if err := rows.Scan(&g.ID, &g.Name, &g.Price); err != nil {
			return fmt.Errorf("scan golfer: %w", err)
		}
		snap.Golfers = append(snap.Golfers, g)
	}
	return rows.Err()
}

func (s *SQLiteStore) loadResults(ctx context.Context, snap *model.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.golfer_id, r.tournament_id, g.name, t.played_on, t.format, t.multiplier,
		       r.participated, r.position, r.raw_score, r.legacy_over_threshold,
		       r.base_points, r.bonus_points, r.multiplied_points
		FROM results r
		JOIN tournaments t ON t.id = r.tournament_id
		JOIN golfers g ON g.id = r.golfer_id
		ORDER BY r.golfer_id, r.tournament_id`)
	if err != nil {
		return fmt.Errorf("load results: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			rec          model.ResultRecord
			playedOn     string
			format       string
			participated int
			position     sql.NullInt64
			rawScore     sql.NullFloat64
			legacyFlag   sql.NullInt64
		)
		if err := rows.Scan(
			&rec.Result.GolferID, &rec.Result.TournamentID, &rec.GolferName,
			&playedOn, &format, &rec.Result.Multiplier,
			&participated, &position, &rawScore, &legacyFlag,
			&rec.Breakdown.Base, &rec.Breakdown.Bonus, &rec.Breakdown.Multiplied,
		); err != nil {
			return fmt.Errorf("scan result: %w", err)
		}
		ts, err := time.Parse(dateLayout, playedOn)
		if err != nil {
			return fmt.Errorf("parse played_on %q: %w", playedOn, err)
		}
		rec.Result.PlayedOn = ts
		rec.Result.Format = model.Format(format)
		rec.Result.Participated = participated != 0
		if position.Valid {
			p := int(position.Int64)
			rec.Result.Position = &p
		}
		if rawScore.Valid {
			v := rawScore.Float64
			rec.Result.RawScore = &v
		}
		if legacyFlag.Valid {
			f := legacyFlag.Int64 != 0
			rec.LegacyFlag = &f
		}
		snap.Results = append(snap.Results, rec)
	}
	return rows.Err()
}

func (s *SQLiteStore) loadRosters(ctx context.Context, snap *model.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `SELECT team_id, golfer_id FROM rosters ORDER BY team_id, golfer_id`)
	if err != nil {
		return fmt.Errorf("load rosters: %w", err)
	}
	defer rows.Close()
	byTeam := make(map[string]*model.Roster)
	var order []string
	for rows.Next() {
		var teamID, golferID string
		if err := rows.Scan(&teamID, &golferID); err != nil {
			return fmt.Errorf("scan roster: %w", err)
		}
		r, ok := byTeam[teamID]
		if !ok {
			r = &model.Roster{TeamID: teamID}
			byTeam[teamID] = r
			order = append(order, teamID)
		}
		r.GolferIDs = append(r.GolferIDs, golferID)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, teamID := range order {
		snap.Rosters = append(snap.Rosters, *byTeam[teamID])
	}
	return nil
}

func (s *SQLiteStore) loadSourceScores(ctx context.Context, snap *model.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `SELECT golfer_name, played_on, raw_score FROM source_scores`)
	if err != nil {
		return fmt.Errorf("load source scores: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			src      model.SourceScore
			playedOn string
		)
		if err := rows.Scan(&src.GolferName, &playedOn, &src.RawScore); err != nil {
			return fmt.Errorf("scan source score: %w", err)
		}
		ts, err := time.Parse(dateLayout, playedOn)
		if err != nil {
			return fmt.Errorf("parse played_on %q: %w", playedOn, err)
		}
		src.PlayedOn = ts
		snap.SourceScores = append(snap.SourceScores, src)
	}
	return rows.Err()
}

// SavePrices writes new prices one golfer at a time. There is no
// cross-record transaction: pricing runs are deterministic and re-runnable,
// and each golfer row stays internally consistent on its own.
func (s *SQLiteStore) SavePrices(ctx context.Context, prices []types.GolferPrice) error {
	start := time.Now()
	for _, p := range prices {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE golfers SET price = ? WHERE id = ?`, p.NewPrice, p.GolferID); err != nil {
			metrics.RecordStoreError()
			return fmt.Errorf("save price for golfer %s: %w", p.GolferID, err)
		}
	}
	metrics.RecordStoreWriteDuration(time.Since(start))
	return nil
}

// SaveBreakdowns writes recomputed breakdowns one result row at a time so
// the per-record invariant holds even if a run stops partway.
func (s *SQLiteStore) SaveBreakdowns(ctx context.Context, updates []BreakdownUpdate) error {
	start := time.Now()
	for _, u := range updates {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE results SET base_points = ?, bonus_points = ?, multiplied_points = ?
			 WHERE golfer_id = ? AND tournament_id = ?`,
			u.Breakdown.Base, u.Breakdown.Bonus, u.Breakdown.Multiplied,
			u.GolferID, u.TournamentID); err != nil {
			metrics.RecordStoreError()
			return fmt.Errorf("save breakdown for golfer %s, tournament %s: %w",
				u.GolferID, u.TournamentID, err)
		}
	}
	metrics.RecordStoreWriteDuration(time.Since(start))
	return nil
}

// UpsertGolfer inserts or updates one golfer record.
func (s *SQLiteStore) UpsertGolfer(ctx context.Context, g model.Golfer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO golfers (id, name, price) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, price = excluded.price`,
		g.ID, g.Name, g.Price)
	if err != nil {
		return fmt.Errorf("upsert golfer %s: %w", g.ID, err)
	}
	return nil
}

// UpsertTournament inserts or updates one tournament record.
func (s *SQLiteStore) UpsertTournament(ctx context.Context, t model.Tournament) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tournaments (id, name, played_on, format, multiplier) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, played_on = excluded.played_on,
			format = excluded.format, multiplier = excluded.multiplier`,
		t.ID, t.Name, t.PlayedOn.UTC().Format(dateLayout), string(t.Format), t.Multiplier)
	if err != nil {
		return fmt.Errorf("upsert tournament %s: %w", t.ID, err)
	}
	return nil
}

// UpsertResult inserts or updates one raw result row, including its stored
// breakdown and the legacy bonus flag.
func (s *SQLiteStore) UpsertResult(ctx context.Context, rec model.ResultRecord) error {
	var position, legacyFlag interface{}
	if rec.Result.Position != nil {
		position = *rec.Result.Position
	}
	if rec.LegacyFlag != nil {
		legacyFlag = boolToInt(*rec.LegacyFlag)
	}
	var rawScore interface{}
	if rec.Result.RawScore != nil {
		rawScore = *rec.Result.RawScore
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO results (golfer_id, tournament_id, participated, position, raw_score,
			legacy_over_threshold, base_points, bonus_points, multiplied_points)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(golfer_id, tournament_id) DO UPDATE SET
			participated = excluded.participated, position = excluded.position,
			raw_score = excluded.raw_score, legacy_over_threshold = excluded.legacy_over_threshold,
			base_points = excluded.base_points, bonus_points = excluded.bonus_points,
			multiplied_points = excluded.multiplied_points`,
		rec.Result.GolferID, rec.Result.TournamentID, boolToInt(rec.Result.Participated),
		position, rawScore, legacyFlag,
		rec.Breakdown.Base, rec.Breakdown.Bonus, rec.Breakdown.Multiplied)
	if err != nil {
		return fmt.Errorf("upsert result %s/%s: %w", rec.Result.GolferID, rec.Result.TournamentID, err)
	}
	return nil
}

// UpsertRoster replaces one team's roster membership.
func (s *SQLiteStore) UpsertRoster(ctx context.Context, r model.Roster) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rosters WHERE team_id = ?`, r.TeamID); err != nil {
		return fmt.Errorf("clear roster %s: %w", r.TeamID, err)
	}
	for _, id := range r.GolferIDs {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO rosters (team_id, golfer_id) VALUES (?, ?)`, r.TeamID, id); err != nil {
			return fmt.Errorf("insert roster %s member %s: %w", r.TeamID, id, err)
		}
	}
	return nil
}

// AddSourceScore appends one new-format raw performance row.
func (s *SQLiteStore) AddSourceScore(ctx context.Context, src model.SourceScore) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO source_scores (golfer_name, played_on, raw_score) VALUES (?, ?, ?)`,
		src.GolferName, src.PlayedOn.UTC().Format(dateLayout), src.RawScore)
	if err != nil {
		return fmt.Errorf("add source score: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
