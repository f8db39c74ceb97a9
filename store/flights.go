package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/padraicbc/juniortour/flights"
	"github.com/padraicbc/juniortour/models"
)

// RoundTotals sums confirmed strokes per registration over rounds.
func (s *Store) RoundTotals(ctx context.Context, tournamentID uuid.UUID, rounds []int) (flights.Totals, error) {
	if len(rounds) == 0 {
		return flights.Totals{}, nil
	}
	var rows []struct {
		RegistrationID uuid.UUID `bun:"registration_id"`
		Total          float64   `bun:"total"`
	}
	err := s.db.NewRaw(`
		SELECT registration_id, SUM(total)::float8 AS total
		FROM v_player_round_totals
		WHERE tournament_id = ? AND round IN (?)
		GROUP BY registration_id`,
		tournamentID, bun.In(rounds),
	).Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("round totals: %w", err)
	}
	totals := make(flights.Totals, len(rows))
	for _, r := range rows {
		totals[r.RegistrationID] = r.Total
	}
	return totals, nil
}

// ReplaceFlights swaps every flight of a tournament round for plans in
// one transaction. An advisory lock on (tournament, round) serializes
// concurrent replaces so readers never see the empty intermediate state.
func (s *Store) ReplaceFlights(ctx context.Context, tournamentID uuid.UUID, round int, plans []flights.Plan) (ReplaceResult, error) {
	var res ReplaceResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext(?), ?)", tournamentID.String(), round); err != nil {
		return res, fmt.Errorf("lock round: %w", err)
	}

	roundFlights := tx.NewSelect().Model((*models.Flight)(nil)).
		Column("id").
		Where("tournament_id = ?", tournamentID).
		Where("round = ?", round)
	if _, err = tx.NewDelete().Model((*models.FlightPlayer)(nil)).
		Where("flight_id IN (?)", roundFlights).
		Exec(ctx); err != nil {
		return res, fmt.Errorf("delete flight players: %w", err)
	}
	if _, err = tx.NewDelete().Model((*models.Flight)(nil)).
		Where("tournament_id = ?", tournamentID).
		Where("round = ?", round).
		Exec(ctx); err != nil {
		return res, fmt.Errorf("delete flights: %w", err)
	}

	if len(plans) > 0 {
		rows := make([]models.Flight, len(plans))
		var players []models.FlightPlayer
		for i, p := range plans {
			rows[i] = models.Flight{
				ID:           uuid.New(),
				TournamentID: tournamentID,
				Round:        round,
				FlightNumber: p.Number,
				Gender:       p.Gender,
				Holes:        p.Holes,
			}
			for _, m := range p.Members {
				players = append(players, models.FlightPlayer{
					FlightID:             rows[i].ID,
					RegistrationID:       m.RegistrationID,
					Seat:                 m.Seat,
					MarkerRegistrationID: m.MarkerID,
				})
			}
		}

		r, err := tx.NewInsert().Model(&rows).Exec(ctx)
		if err != nil {
			return res, fmt.Errorf("insert flights: %w", err)
		}
		n, _ := r.RowsAffected()
		res.Flights = int(n)
		if res.Flights != len(plans) {
			return res, fmt.Errorf("%w: planned %d flights, inserted %d", ErrCountMismatch, len(plans), res.Flights)
		}

		r, err = tx.NewInsert().Model(&players).Exec(ctx)
		if err != nil {
			return res, fmt.Errorf("insert flight players: %w", err)
		}
		n, _ = r.RowsAffected()
		res.Players = int(n)
		if res.Players != len(players) {
			return res, fmt.Errorf("%w: planned %d seats, inserted %d", ErrCountMismatch, len(players), res.Players)
		}
	}

	if err = tx.Commit(); err != nil {
		return res, err
	}
	committed = true
	return res, nil
}

// Flights loads a round's flights by number, members by seat.
func (s *Store) Flights(ctx context.Context, tournamentID uuid.UUID, round int) ([]models.Flight, error) {
	var out []models.Flight
	err := s.db.NewSelect().Model(&out).
		Relation("Players", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("fp.seat ASC")
		}).
		Relation("Players.Registration").
		Where("f.tournament_id = ?", tournamentID).
		Where("f.round = ?", round).
		Order("f.flight_number ASC").
		Scan(ctx)
	return out, err
}

// PlayerFlight loads the flight a registration plays in for a round.
func (s *Store) PlayerFlight(ctx context.Context, tournamentID uuid.UUID, round int, registrationID uuid.UUID) (*models.Flight, error) {
	f := new(models.Flight)
	err := s.db.NewSelect().Model(f).
		Relation("Players", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("fp.seat ASC")
		}).
		Relation("Players.Registration").
		Where("f.tournament_id = ?", tournamentID).
		Where("f.round = ?", round).
		Where("f.id IN (?)", s.db.NewSelect().
			Model((*models.FlightPlayer)(nil)).
			Column("flight_id").
			Where("registration_id = ?", registrationID)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

// SetFlightStartTime updates an existing flight only. It reports false
// when no flight matched id, tournament and round.
func (s *Store) SetFlightStartTime(ctx context.Context, tournamentID uuid.UUID, round int, flightID uuid.UUID, at time.Time) (bool, error) {
	r, err := s.db.NewUpdate().Model((*models.Flight)(nil)).
		Set("start_time = ?", at).
		Where("id = ?", flightID).
		Where("tournament_id = ?", tournamentID).
		Where("round = ?", round).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, _ := r.RowsAffected()
	return n == 1, nil
}
