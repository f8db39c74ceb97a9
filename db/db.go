package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"go.uber.org/zap"

	"github.com/padraicbc/juniortour/config"
	"github.com/padraicbc/juniortour/models"
)

// Setup opens a PostgreSQL connection using the provided config.
func Setup(cfg *config.Config) *bun.DB {
	db, err := Open(context.Background(), cfg.PostgresDSN(), cfg.Debug)
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}
	return db
}

// Open connects and pings.
func Open(ctx context.Context, dsn string, debug bool) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// CreateTables creates all tables in dependency order, then the unique
// keys the upserts rely on and the confirmed-totals view.
func CreateTables(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS pgcrypto`); err != nil {
		zap.L().Warn("pgcrypto extension", zap.Error(err))
	}

	tables := []interface{}{
		(*models.User)(nil),
		(*models.Tournament)(nil),
		(*models.TournamentHole)(nil),
		(*models.Registration)(nil),
		(*models.Flight)(nil),
		(*models.FlightPlayer)(nil),
		(*models.HoleEntry)(nil),
		(*models.ScorecardSignature)(nil),
		(*models.ScorecardDocument)(nil),
	}

	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", model, err)
		}
	}

	constraints := []struct{ name, table, cols string }{
		{"flights_round_number", "flights", "tournament_id, round, flight_number"},
		{"flight_players_seat", "flight_players", "flight_id, seat"},
		{"hole_entries_key", "hole_entries", "tournament_id, round, hole_number, entered_by, for_registration_id"},
		{"scorecard_signatures_key", "scorecard_signatures", "tournament_id, registration_id, round, role"},
	}
	for _, c := range constraints {
		stmt := fmt.Sprintf(`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN ALTER TABLE %s ADD CONSTRAINT %s UNIQUE (%s); END IF; END $$`,
			c.name, c.table, c.name, c.cols)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("constraint %s: %w", c.name, err)
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS registrations_tournament_idx ON registrations (tournament_id)`,
		`CREATE INDEX IF NOT EXISTS registrations_pin_idx ON registrations (player_pin)`,
		`CREATE INDEX IF NOT EXISTS flight_players_registration_idx ON flight_players (registration_id)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			zap.L().Warn("index", zap.String("stmt", stmt), zap.Error(err))
		}
	}

	if _, err := db.ExecContext(ctx, roundTotalsView); err != nil {
		return fmt.Errorf("creating view v_player_round_totals: %w", err)
	}
	return nil
}

// roundTotalsView sums the strokes of confirmed holes (self entry equal
// to the marker entry) per player round.
const roundTotalsView = `
CREATE OR REPLACE VIEW v_player_round_totals AS
SELECT
	f.tournament_id,
	f.round,
	fp.registration_id,
	SUM(s.strokes)::int AS total,
	COUNT(*)::int AS holes_confirmed
FROM flight_players fp
JOIN flights f ON f.id = fp.flight_id
JOIN registrations r ON r.id = fp.registration_id
JOIN hole_entries s
	ON s.tournament_id = f.tournament_id
	AND s.round = f.round
	AND s.for_registration_id = fp.registration_id
	AND s.entered_by = fp.registration_id
JOIN hole_entries m
	ON m.tournament_id = f.tournament_id
	AND m.round = f.round
	AND m.for_registration_id = fp.registration_id
	AND m.entered_by = fp.marker_registration_id
	AND m.hole_number = s.hole_number
	AND m.strokes = s.strokes
WHERE s.hole_number <= CASE WHEN r.holes = 9 THEN 9 ELSE 18 END
GROUP BY f.tournament_id, f.round, fp.registration_id`
