package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/padraicbc/juniortour/models"
)

func (s *Store) Tournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	t := new(models.Tournament)
	if err := s.db.NewSelect().Model(t).Where("t.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// Tournaments lists tournaments, newest start date first.
func (s *Store) Tournaments(ctx context.Context) ([]models.Tournament, error) {
	var out []models.Tournament
	err := s.db.NewSelect().Model(&out).
		OrderExpr("t.start_date DESC NULLS LAST").
		Order("t.name").
		Scan(ctx)
	return out, err
}

func (s *Store) CreateTournament(ctx context.Context, t *models.Tournament) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	_, err := s.db.NewInsert().Model(t).Returning("*").Exec(ctx)
	return err
}

// Pars maps hole number to par. Holes without a row are absent.
func (s *Store) Pars(ctx context.Context, tournamentID uuid.UUID) (map[int]int, error) {
	var holes []models.TournamentHole
	if err := s.db.NewSelect().Model(&holes).Where("th.tournament_id = ?", tournamentID).Scan(ctx); err != nil {
		return nil, err
	}
	pars := make(map[int]int, len(holes))
	for _, h := range holes {
		pars[h.Hole] = h.Par
	}
	return pars, nil
}

// SetPars upserts the given holes in one statement.
func (s *Store) SetPars(ctx context.Context, tournamentID uuid.UUID, pars map[int]int) error {
	if len(pars) == 0 {
		return nil
	}
	rows := make([]models.TournamentHole, 0, len(pars))
	for hole, par := range pars {
		rows = append(rows, models.TournamentHole{TournamentID: tournamentID, Hole: hole, Par: par})
	}
	_, err := s.db.NewInsert().Model(&rows).
		On("CONFLICT (tournament_id, hole) DO UPDATE").
		Set("par = EXCLUDED.par").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set pars: %w", err)
	}
	return nil
}

func (s *Store) Registrations(ctx context.Context, tournamentID uuid.UUID) ([]models.Registration, error) {
	var out []models.Registration
	err := s.db.NewSelect().Model(&out).
		Where("r.tournament_id = ?", tournamentID).
		Order("r.last_name", "r.first_name").
		Scan(ctx)
	return out, err
}

// Registration loads a registration scoped to its tournament.
func (s *Store) Registration(ctx context.Context, tournamentID, id uuid.UUID) (*models.Registration, error) {
	r := new(models.Registration)
	err := s.db.NewSelect().Model(r).
		Where("r.id = ?", id).
		Where("r.tournament_id = ?", tournamentID).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

func (s *Store) RegistrationByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	r := new(models.Registration)
	if err := s.db.NewSelect().Model(r).Where("r.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

// RegistrationByPIN finds a player by PIN. With a nil tournament id the
// newest matching registration of any tournament wins.
func (s *Store) RegistrationByPIN(ctx context.Context, tournamentID uuid.UUID, pin string) (*models.Registration, error) {
	r := new(models.Registration)
	q := s.db.NewSelect().Model(r).
		Where("r.player_pin = ?", pin).
		Order("r.created_at DESC").
		Limit(1)
	if tournamentID != uuid.Nil {
		q = q.Where("r.tournament_id = ?", tournamentID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

func (s *Store) CreateRegistration(ctx context.Context, r *models.Registration) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	_, err := s.db.NewInsert().Model(r).Returning("*").Exec(ctx)
	return err
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	u := new(models.User)
	if err := s.db.NewSelect().Model(u).Where("username = ?", username).Scan(ctx); err != nil {
		return nil, notFound(err)
	}
	return u, nil
}
