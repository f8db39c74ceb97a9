package engine

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/padraicbc/juniortour/models"
	"github.com/padraicbc/juniortour/store"
)

const (
	dateLayout  = "2006-01-02"
	pinAttempts = 20
	minPar      = 2
	maxPar      = 7
)

// Signin checks admin credentials.
func (s *Service) Signin(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	return withTelemetry(s, ctx, "signin", []zap.Field{zap.String("username", username)},
		func(ctx context.Context) (*models.User, error) {
			if username == "" || password == "" {
				return nil, invalid("username and password required")
			}
			u, err := s.repo.UserByUsername(ctx, username)
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%w: incorrect username or password", ErrUnauthorized)
			}
			if err != nil {
				return nil, storeErr("user", err)
			}
			if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
				return nil, fmt.Errorf("%w: incorrect username or password", ErrUnauthorized)
			}
			return u, nil
		})
}

// CreateTournamentInput describes a new tournament.
type CreateTournamentInput struct {
	Name      string
	StartDate string
	Location  string
}

// CreateTournament stores a tournament. The start date is YYYY-MM-DD.
func (s *Service) CreateTournament(ctx context.Context, in CreateTournamentInput) (*models.Tournament, error) {
	return withTelemetry(s, ctx, "create_tournament", []zap.Field{zap.String("name", in.Name)},
		func(ctx context.Context) (*models.Tournament, error) {
			t := &models.Tournament{
				Name:     strings.TrimSpace(in.Name),
				Location: strings.TrimSpace(in.Location),
			}
			if t.Name == "" {
				return nil, invalid("name required")
			}
			if in.StartDate != "" {
				d, err := time.Parse(dateLayout, in.StartDate)
				if err != nil {
					return nil, invalid("start date must be YYYY-MM-DD")
				}
				t.StartDate = d
			}
			if err := s.repo.CreateTournament(ctx, t); err != nil {
				return nil, storeErr("create tournament", err)
			}
			return t, nil
		})
}

// SetPars upserts hole pars and drops the cached copy.
func (s *Service) SetPars(ctx context.Context, tournamentID uuid.UUID, pars map[int]int) (map[int]int, error) {
	return withTelemetry(s, ctx, "set_pars", []zap.Field{zap.String("tournament_id", tournamentID.String())},
		func(ctx context.Context) (map[int]int, error) {
			if len(pars) == 0 {
				return nil, invalid("no pars given")
			}
			for hole, par := range pars {
				if hole < 1 || hole > 18 {
					return nil, invalid("hole %d out of range", hole)
				}
				if par < minPar || par > maxPar {
					return nil, invalid("par %d for hole %d out of range", par, hole)
				}
			}
			if _, err := s.tournament(ctx, tournamentID); err != nil {
				return nil, err
			}
			if err := s.repo.SetPars(ctx, tournamentID, pars); err != nil {
				return nil, storeErr("set pars", err)
			}
			s.pars.Delete(tournamentID)
			return s.tournamentPars(ctx, tournamentID)
		})
}

// RegistrationInput is an already validated sign-up.
type RegistrationInput struct {
	TournamentID uuid.UUID
	FirstName    string
	LastName     string
	Email        string
	Birthdate    string
	Nation       string
	Gender       string
	Hcp          *float64
	Holes        int
	HomeClub     string
}

// AddRegistration enters a player and assigns a PIN unique within the
// tournament.
func (s *Service) AddRegistration(ctx context.Context, in RegistrationInput) (*models.Registration, error) {
	return withTelemetry(s, ctx, "add_registration", []zap.Field{zap.String("tournament_id", in.TournamentID.String())},
		func(ctx context.Context) (*models.Registration, error) {
			gender, ok := models.ParseGender(in.Gender)
			if !ok {
				return nil, invalid("gender must be Boys or Girls")
			}
			if !models.ValidHoles(in.Holes) {
				return nil, invalid("holes must be 9 or 18")
			}
			r := &models.Registration{
				TournamentID: in.TournamentID,
				FirstName:    strings.TrimSpace(in.FirstName),
				LastName:     strings.TrimSpace(in.LastName),
				Email:        strings.TrimSpace(in.Email),
				Nation:       strings.TrimSpace(in.Nation),
				Gender:       gender,
				Hcp:          in.Hcp,
				Holes:        in.Holes,
				HomeClub:     strings.TrimSpace(in.HomeClub),
			}
			if r.FirstName == "" || r.LastName == "" {
				return nil, invalid("first and last name required")
			}
			if in.Birthdate != "" {
				d, err := time.Parse(dateLayout, in.Birthdate)
				if err != nil {
					return nil, invalid("birthdate must be YYYY-MM-DD")
				}
				r.Birthdate = d
			}
			if _, err := s.tournament(ctx, in.TournamentID); err != nil {
				return nil, err
			}

			pin, err := s.uniquePIN(ctx, in.TournamentID)
			if err != nil {
				return nil, err
			}
			r.PlayerPIN = pin
			if err := s.repo.CreateRegistration(ctx, r); err != nil {
				return nil, storeErr("create registration", err)
			}
			return r, nil
		})
}

func (s *Service) uniquePIN(ctx context.Context, tournamentID uuid.UUID) (string, error) {
	for range pinAttempts {
		n, err := rand.Int(rand.Reader, big.NewInt(10000))
		if err != nil {
			return "", err
		}
		pin := fmt.Sprintf("%04d", n.Int64())
		_, err = s.repo.RegistrationByPIN(ctx, tournamentID, pin)
		if errors.Is(err, store.ErrNotFound) {
			return pin, nil
		}
		if err != nil {
			return "", storeErr("pin lookup", err)
		}
	}
	return "", fmt.Errorf("%w: no free pin after %d attempts", ErrConflict, pinAttempts)
}
