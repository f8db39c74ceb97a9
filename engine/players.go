package engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/padraicbc/juniortour/leaderboard"
	"github.com/padraicbc/juniortour/models"
	"github.com/padraicbc/juniortour/store"
)

var pinRe = regexp.MustCompile(`^\d{4}$`)

// PlayerLogin is the result of a PIN lookup.
type PlayerLogin struct {
	RegistrationID uuid.UUID `json:"registrationId"`
	TournamentID   uuid.UUID `json:"tournamentId"`
	Name           string    `json:"name"`
}

// LoginByPIN resolves a 4-digit player PIN, first within tournamentID
// (when set) and then across all tournaments, newest registration first.
func (s *Service) LoginByPIN(ctx context.Context, tournamentID uuid.UUID, pin string) (*PlayerLogin, error) {
	fields := []zap.Field{zap.String("tournament_id", tournamentID.String())}
	return withTelemetry(s, ctx, "pin_login", fields,
		func(ctx context.Context) (*PlayerLogin, error) {
			if !pinRe.MatchString(pin) {
				return nil, invalid("pin must be 4 digits")
			}
			var reg *models.Registration
			var err error
			if tournamentID != uuid.Nil {
				reg, err = s.repo.RegistrationByPIN(ctx, tournamentID, pin)
				if err != nil && !errors.Is(err, store.ErrNotFound) {
					return nil, storeErr("registration", err)
				}
			}
			if reg == nil {
				reg, err = s.repo.RegistrationByPIN(ctx, uuid.Nil, pin)
				if err != nil {
					return nil, storeErr("registration", err)
				}
			}
			return &PlayerLogin{RegistrationID: reg.ID, TournamentID: reg.TournamentID, Name: reg.FullName()}, nil
		})
}

// PlayerSummary is a registration with its derived age group.
type PlayerSummary struct {
	models.Registration
	AgeGroup  string             `json:"ageGroup"`
	Finalized map[int]*time.Time `json:"finalized"`
}

// Player returns a registration by id.
func (s *Service) Player(ctx context.Context, id uuid.UUID) (*PlayerSummary, error) {
	return withTelemetry(s, ctx, "player", []zap.Field{zap.String("registration_id", id.String())},
		func(ctx context.Context) (*PlayerSummary, error) {
			if id == uuid.Nil {
				return nil, invalid("registration id required")
			}
			reg, err := s.repo.RegistrationByID(ctx, id)
			if err != nil {
				return nil, storeErr("registration", err)
			}
			t, err := s.tournament(ctx, reg.TournamentID)
			if err != nil {
				return nil, err
			}
			out := &PlayerSummary{
				Registration: *reg,
				AgeGroup:     leaderboard.AgeGroupOn(reg.Birthdate, t.StartDate, reg.Holes),
				Finalized:    make(map[int]*time.Time, models.Rounds),
			}
			for r := 1; r <= models.Rounds; r++ {
				out.Finalized[r] = reg.FinalizedAt(r)
			}
			return out, nil
		})
}

// Tournaments lists all tournaments.
func (s *Service) Tournaments(ctx context.Context) ([]models.Tournament, error) {
	return withTelemetry(s, ctx, "tournaments", nil,
		func(ctx context.Context) ([]models.Tournament, error) {
			ts, err := s.repo.Tournaments(ctx)
			if err != nil {
				return nil, fmt.Errorf("%w: tournaments: %w", ErrUpstream, err)
			}
			if ts == nil {
				ts = []models.Tournament{}
			}
			return ts, nil
		})
}
