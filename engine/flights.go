package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/padraicbc/juniortour/flights"
	"github.com/padraicbc/juniortour/models"
	"github.com/padraicbc/juniortour/render"
	"github.com/padraicbc/juniortour/store"
)

// GenerateFlightsInput selects the round to schedule.
type GenerateFlightsInput struct {
	TournamentID uuid.UUID
	Round        int
	DirectorPIN  string
}

// GenerateFlightsResult counts what was written.
type GenerateFlightsResult struct {
	Round       int    `json:"round"`
	Flights     int    `json:"flights"`
	Memberships int    `json:"memberships"`
	FlightSize  int    `json:"flightSize"`
	Seeding     string `json:"seeding"`
}

// seedingRounds lists the rounds whose totals seed round.
func seedingRounds(round int) []int {
	switch round {
	case 2:
		return []int{1}
	case 3:
		return []int{1, 2}
	}
	return nil
}

// GenerateFlights replaces the flights of a round with a fresh seeding.
func (s *Service) GenerateFlights(ctx context.Context, in GenerateFlightsInput) (*GenerateFlightsResult, error) {
	return withTelemetry(s, ctx, "generate_flights", roundFields(in.TournamentID, in.Round),
		func(ctx context.Context) (*GenerateFlightsResult, error) {
			if err := checkRound(in.Round); err != nil {
				return nil, err
			}
			if err := s.authorizeDirector(in.DirectorPIN); err != nil {
				return nil, err
			}
			if _, err := s.tournament(ctx, in.TournamentID); err != nil {
				return nil, err
			}

			regs, err := s.repo.Registrations(ctx, in.TournamentID)
			if err != nil {
				return nil, storeErr("registrations", err)
			}
			totals := flights.Totals{}
			if rounds := seedingRounds(in.Round); len(rounds) > 0 {
				if totals, err = s.repo.RoundTotals(ctx, in.TournamentID, rounds); err != nil {
					return nil, storeErr("round totals", err)
				}
			}

			plans, err := flights.Build(in.Round, regs, totals)
			if err != nil {
				return nil, invalid("%v", err)
			}
			seats := flights.SeatCount(plans)
			if seats == 0 {
				return nil, invalid("no eligible registrations")
			}

			res, err := s.repo.ReplaceFlights(ctx, in.TournamentID, in.Round, plans)
			if err != nil {
				return nil, storeErr("replace flights", err)
			}
			if res.Flights != len(plans) || res.Players != seats {
				return nil, fmt.Errorf("%w: flight write count differs from plan", ErrInconsistent)
			}

			return &GenerateFlightsResult{
				Round:       in.Round,
				Flights:     res.Flights,
				Memberships: res.Players,
				FlightSize:  flights.Size,
				Seeding:     flights.SeedingRule(in.Round),
			}, nil
		})
}

// AssignStartTimesInput sets tee times from a wall-clock start.
type AssignStartTimesInput struct {
	TournamentID uuid.UUID
	Round        int
	StartTime    string
	// IntervalMinutes defaults to 10 when nil.
	IntervalMinutes *int
	Overwrite       bool
	DirectorPIN     string
}

// AssignStartTimesResult reports the written tee times.
type AssignStartTimesResult struct {
	Updated     int                  `json:"updated"`
	TimeZone    string               `json:"timeZone"`
	Base        time.Time            `json:"base"`
	Assignments []flights.Assignment `json:"assignments"`
}

// AssignStartTimes staggers tee times over a round's flights.
func (s *Service) AssignStartTimes(ctx context.Context, in AssignStartTimesInput) (*AssignStartTimesResult, error) {
	return withTelemetry(s, ctx, "assign_start_times", roundFields(in.TournamentID, in.Round),
		func(ctx context.Context) (*AssignStartTimesResult, error) {
			if err := checkRound(in.Round); err != nil {
				return nil, err
			}
			interval := flights.DefaultInterval
			if in.IntervalMinutes != nil {
				if *in.IntervalMinutes <= 0 {
					return nil, invalid("interval must be positive")
				}
				if *in.IntervalMinutes > flights.MaxIntervalMinutes {
					return nil, invalid("interval must be at most %d minutes", flights.MaxIntervalMinutes)
				}
				interval = time.Duration(*in.IntervalMinutes) * time.Minute
			}
			hour, minute, err := flights.ParseClock(in.StartTime)
			if err != nil {
				return nil, invalid("%v", err)
			}
			if err := s.authorizeDirector(in.DirectorPIN); err != nil {
				return nil, err
			}
			t, err := s.tournament(ctx, in.TournamentID)
			if err != nil {
				return nil, err
			}
			if !t.HasStartDate() {
				return nil, invalid("tournament has no start date")
			}

			fl, err := s.repo.Flights(ctx, in.TournamentID, in.Round)
			if err != nil {
				return nil, storeErr("flights", err)
			}

			base := flights.ZonedInstant(t.StartDate, hour, minute, s.opts.Location)
			plan := flights.Stagger(fl, base, interval, in.Overwrite)
			res := &AssignStartTimesResult{
				TimeZone:    s.opts.Location.String(),
				Base:        base,
				Assignments: []flights.Assignment{},
			}
			for _, a := range plan {
				ok, err := s.repo.SetFlightStartTime(ctx, in.TournamentID, in.Round, a.FlightID, a.StartTime)
				if err != nil {
					return nil, storeErr("set start time", err)
				}
				if !ok {
					s.logger.Warn("flight vanished during start time assignment",
						zap.String("flight_id", a.FlightID.String()))
					continue
				}
				res.Updated++
				res.Assignments = append(res.Assignments, a)
			}
			return res, nil
		})
}

// SeatView is a flight member with resolved names.
type SeatView struct {
	RegistrationID       uuid.UUID `json:"registrationId"`
	Seat                 int       `json:"seat"`
	Name                 string    `json:"name"`
	HomeClub             string    `json:"homeClub,omitempty"`
	Hcp                  *float64  `json:"hcp"`
	MarkerRegistrationID uuid.UUID `json:"markerRegistrationId"`
	MarkerName           string    `json:"markerName"`
}

// FlightView is a flight for the startlist.
type FlightView struct {
	ID           uuid.UUID     `json:"id"`
	FlightNumber int           `json:"flightNumber"`
	Gender       models.Gender `json:"gender"`
	Holes        int           `json:"holes"`
	StartTime    *time.Time    `json:"startTime"`
	Players      []SeatView    `json:"players"`
}

func flightView(f *models.Flight) FlightView {
	names := make(map[uuid.UUID]string, len(f.Players))
	for _, p := range f.Players {
		if p.Registration != nil {
			names[p.RegistrationID] = p.Registration.FullName()
		}
	}
	v := FlightView{
		ID:           f.ID,
		FlightNumber: f.FlightNumber,
		Gender:       f.Gender,
		Holes:        f.Holes,
		StartTime:    f.StartTime,
		Players:      make([]SeatView, 0, len(f.Players)),
	}
	for _, p := range f.Players {
		sv := SeatView{
			RegistrationID:       p.RegistrationID,
			Seat:                 p.Seat,
			Name:                 names[p.RegistrationID],
			MarkerRegistrationID: p.MarkerRegistrationID,
			MarkerName:           names[p.MarkerRegistrationID],
		}
		if p.Registration != nil {
			sv.HomeClub = p.Registration.HomeClub
			sv.Hcp = p.Registration.Hcp
		}
		v.Players = append(v.Players, sv)
	}
	return v
}

// ListFlights returns a round's flights in order.
func (s *Service) ListFlights(ctx context.Context, tournamentID uuid.UUID, round int) ([]FlightView, error) {
	return withTelemetry(s, ctx, "list_flights", roundFields(tournamentID, round),
		func(ctx context.Context) ([]FlightView, error) {
			if err := checkRound(round); err != nil {
				return nil, err
			}
			if tournamentID == uuid.Nil {
				return nil, invalid("tournament id required")
			}
			fl, err := s.repo.Flights(ctx, tournamentID, round)
			if err != nil {
				return nil, storeErr("flights", err)
			}
			out := make([]FlightView, 0, len(fl))
			for i := range fl {
				out = append(out, flightView(&fl[i]))
			}
			return out, nil
		})
}

// PlayerFlightView is a player's flight with both marking directions.
type PlayerFlightView struct {
	Flight   FlightView `json:"flight"`
	MarkedBy *SeatView  `json:"markedBy"`
	Marks    []SeatView `json:"marks"`
}

// PlayerFlight finds the flight of a registration.
func (s *Service) PlayerFlight(ctx context.Context, tournamentID uuid.UUID, round int, registrationID uuid.UUID) (*PlayerFlightView, error) {
	fields := append(roundFields(tournamentID, round), zap.String("registration_id", registrationID.String()))
	return withTelemetry(s, ctx, "player_flight", fields,
		func(ctx context.Context) (*PlayerFlightView, error) {
			if err := checkRound(round); err != nil {
				return nil, err
			}
			if tournamentID == uuid.Nil || registrationID == uuid.Nil {
				return nil, invalid("tournament and registration id required")
			}
			f, err := s.repo.PlayerFlight(ctx, tournamentID, round, registrationID)
			if err != nil {
				return nil, storeErr("flight", err)
			}
			v := &PlayerFlightView{Flight: flightView(f), Marks: []SeatView{}}
			byID := make(map[uuid.UUID]SeatView, len(v.Flight.Players))
			for _, p := range v.Flight.Players {
				byID[p.RegistrationID] = p
			}
			if me, ok := byID[registrationID]; ok {
				if marker, ok := byID[me.MarkerRegistrationID]; ok {
					v.MarkedBy = &marker
				}
			}
			for _, p := range v.Flight.Players {
				if p.MarkerRegistrationID == registrationID {
					v.Marks = append(v.Marks, p)
				}
			}
			return v, nil
		})
}

// markerOf resolves who marks a player in a round. A player without a
// flight has no marker.
func (s *Service) markerOf(ctx context.Context, tournamentID uuid.UUID, round int, registrationID uuid.UUID) (uuid.UUID, *models.Flight, error) {
	f, err := s.repo.PlayerFlight(ctx, tournamentID, round, registrationID)
	if errors.Is(err, store.ErrNotFound) {
		return uuid.Nil, nil, nil
	}
	if err != nil {
		return uuid.Nil, nil, storeErr("flight", err)
	}
	for _, p := range f.Players {
		if p.RegistrationID == registrationID {
			return p.MarkerRegistrationID, f, nil
		}
	}
	return uuid.Nil, f, nil
}

// Startlist exports a round's flights as a workbook.
func (s *Service) Startlist(ctx context.Context, tournamentID uuid.UUID, round int, directorPIN string) ([]byte, error) {
	return withTelemetry(s, ctx, "startlist", roundFields(tournamentID, round),
		func(ctx context.Context) ([]byte, error) {
			if err := checkRound(round); err != nil {
				return nil, err
			}
			if err := s.authorizeDirector(directorPIN); err != nil {
				return nil, err
			}
			t, err := s.tournament(ctx, tournamentID)
			if err != nil {
				return nil, err
			}
			fl, err := s.repo.Flights(ctx, tournamentID, round)
			if err != nil {
				return nil, storeErr("flights", err)
			}
			if len(fl) == 0 {
				return nil, fmt.Errorf("%w: no flights for round", ErrNotFound)
			}
			data, err := render.Startlist(t, round, fl, s.opts.Location)
			if err != nil {
				return nil, fmt.Errorf("%w: startlist: %w", ErrUpstream, err)
			}
			return data, nil
		})
}
