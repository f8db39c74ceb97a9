// Package store persists tournaments, flights, hole entries and
// signatures in Postgres through bun.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/padraicbc/juniortour/flights"
	"github.com/padraicbc/juniortour/models"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrCountMismatch is returned when a replace wrote a different number
	// of rows than planned. The transaction is rolled back.
	ErrCountMismatch = errors.New("row count mismatch")
)

// ReplaceResult counts the rows written by ReplaceFlights.
type ReplaceResult struct {
	Flights int
	Players int
}

// Repository is every relational read and write the engine performs.
type Repository interface {
	Ping(ctx context.Context) error

	Tournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	Tournaments(ctx context.Context) ([]models.Tournament, error)
	CreateTournament(ctx context.Context, t *models.Tournament) error
	Pars(ctx context.Context, tournamentID uuid.UUID) (map[int]int, error)
	SetPars(ctx context.Context, tournamentID uuid.UUID, pars map[int]int) error

	Registrations(ctx context.Context, tournamentID uuid.UUID) ([]models.Registration, error)
	Registration(ctx context.Context, tournamentID, id uuid.UUID) (*models.Registration, error)
	RegistrationByID(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	RegistrationByPIN(ctx context.Context, tournamentID uuid.UUID, pin string) (*models.Registration, error)
	CreateRegistration(ctx context.Context, r *models.Registration) error

	RoundTotals(ctx context.Context, tournamentID uuid.UUID, rounds []int) (flights.Totals, error)
	ReplaceFlights(ctx context.Context, tournamentID uuid.UUID, round int, plans []flights.Plan) (ReplaceResult, error)
	Flights(ctx context.Context, tournamentID uuid.UUID, round int) ([]models.Flight, error)
	PlayerFlight(ctx context.Context, tournamentID uuid.UUID, round int, registrationID uuid.UUID) (*models.Flight, error)
	SetFlightStartTime(ctx context.Context, tournamentID uuid.UUID, round int, flightID uuid.UUID, at time.Time) (bool, error)

	UpsertHoleEntry(ctx context.Context, e *models.HoleEntry) error
	HoleEntries(ctx context.Context, tournamentID uuid.UUID, round int, forPlayer uuid.UUID) ([]models.HoleEntry, error)

	UpsertSignature(ctx context.Context, s *models.ScorecardSignature) (bool, error)
	Signatures(ctx context.Context, tournamentID, registrationID uuid.UUID, round int) ([]models.ScorecardSignature, error)
	MarkFinalized(ctx context.Context, tournamentID, registrationID uuid.UUID, round int, at time.Time) (bool, error)
	SaveDocument(ctx context.Context, doc *models.ScorecardDocument) error
	Document(ctx context.Context, id uuid.UUID) (*models.ScorecardDocument, error)

	UserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Store is the bun-backed Repository.
type Store struct {
	db *bun.DB
}

var _ Repository = (*Store)(nil)

// New wraps a bun database.
func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
