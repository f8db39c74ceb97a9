package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padraicbc/juniortour/flights"
	"github.com/padraicbc/juniortour/models"
	"github.com/padraicbc/juniortour/store"
)

func TestGenerateFlights(t *testing.T) {
	f := newFixture(t)
	a, b, c := f.trio(t)

	fl, err := f.svc.ListFlights(context.Background(), f.t.ID, 1)
	require.NoError(t, err)
	require.Len(t, fl, 1)
	assert.Equal(t, 1, fl[0].FlightNumber)
	assert.Equal(t, models.GenderBoys, fl[0].Gender)

	got := make([]uuid.UUID, 0, 3)
	markers := make(map[uuid.UUID]uuid.UUID)
	for _, p := range fl[0].Players {
		got = append(got, p.RegistrationID)
		markers[p.RegistrationID] = p.MarkerRegistrationID
	}
	assert.Equal(t, []uuid.UUID{a.ID, b.ID, c.ID}, got)
	assert.Equal(t, b.ID, markers[a.ID])
	assert.Equal(t, c.ID, markers[b.ID])
	assert.Equal(t, a.ID, markers[c.ID])
	assert.Equal(t, "Ben Bauer", fl[0].Players[0].MarkerName)
}

func TestGenerateFlightsResult(t *testing.T) {
	f := newFixture(t)
	for i, g := range []models.Gender{models.GenderBoys, models.GenderBoys, models.GenderGirls, models.GenderBoys} {
		f.register("P", string(rune('A'+i)), g, 18, hcp(float64(i)))
	}
	f.register("Nine", "Holer", models.GenderGirls, 9, nil)

	res, err := f.svc.GenerateFlights(context.Background(), GenerateFlightsInput{
		TournamentID: f.t.ID, Round: 1, DirectorPIN: testPIN,
	})
	require.NoError(t, err)
	assert.Equal(t, &GenerateFlightsResult{
		Round:       1,
		Flights:     3,
		Memberships: 5,
		FlightSize:  flights.Size,
		Seeding:     flights.SeedingRule(1),
	}, res)

	fl, err := f.svc.ListFlights(context.Background(), f.t.ID, 1)
	require.NoError(t, err)
	require.Len(t, fl, 3)
	assert.Equal(t, models.GenderBoys, fl[0].Gender)
	assert.Equal(t, models.GenderGirls, fl[1].Gender)
	assert.Equal(t, 9, fl[2].Holes)
}

func TestGenerateFlightsRejects(t *testing.T) {
	tests := []struct {
		name    string
		in      func(f *fixture) GenerateFlightsInput
		seed    bool
		wantErr error
	}{
		{
			name: "wrong pin",
			in: func(f *fixture) GenerateFlightsInput {
				return GenerateFlightsInput{TournamentID: f.t.ID, Round: 1, DirectorPIN: "nope"}
			},
			seed:    true,
			wantErr: ErrUnauthorized,
		},
		{
			name: "round out of range",
			in: func(f *fixture) GenerateFlightsInput {
				return GenerateFlightsInput{TournamentID: f.t.ID, Round: 4, DirectorPIN: testPIN}
			},
			seed:    true,
			wantErr: ErrValidation,
		},
		{
			name: "unknown tournament",
			in: func(f *fixture) GenerateFlightsInput {
				return GenerateFlightsInput{TournamentID: uuid.New(), Round: 1, DirectorPIN: testPIN}
			},
			seed:    true,
			wantErr: ErrNotFound,
		},
		{
			name: "no eligible registrations",
			in: func(f *fixture) GenerateFlightsInput {
				return GenerateFlightsInput{TournamentID: f.t.ID, Round: 1, DirectorPIN: testPIN}
			},
			wantErr: ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.seed {
				f.register("A", "One", models.GenderBoys, 18, hcp(4))
			}
			_, err := f.svc.GenerateFlights(context.Background(), tt.in(f))
			require.ErrorIs(t, err, tt.wantErr)
			assert.False(t, f.repo.Called("ReplaceFlights"))
		})
	}
}

func TestGenerateFlightsCountMismatch(t *testing.T) {
	f := newFixture(t)
	f.register("A", "One", models.GenderBoys, 18, hcp(4))
	f.register("B", "Two", models.GenderBoys, 18, hcp(5))

	f.repo.ReplaceFlightsFunc = func(context.Context, uuid.UUID, int, []flights.Plan) (store.ReplaceResult, error) {
		return store.ReplaceResult{Flights: 1, Players: 1}, nil
	}
	_, err := f.svc.GenerateFlights(context.Background(), GenerateFlightsInput{TournamentID: f.t.ID, Round: 1, DirectorPIN: testPIN})
	require.ErrorIs(t, err, ErrInconsistent)

	f.repo.ReplaceFlightsFunc = func(context.Context, uuid.UUID, int, []flights.Plan) (store.ReplaceResult, error) {
		return store.ReplaceResult{}, store.ErrCountMismatch
	}
	_, err = f.svc.GenerateFlights(context.Background(), GenerateFlightsInput{TournamentID: f.t.ID, Round: 1, DirectorPIN: testPIN})
	require.ErrorIs(t, err, ErrInconsistent)

	f.repo.ReplaceFlightsFunc = func(context.Context, uuid.UUID, int, []flights.Plan) (store.ReplaceResult, error) {
		return store.ReplaceResult{}, errors.New("connection reset")
	}
	_, err = f.svc.GenerateFlights(context.Background(), GenerateFlightsInput{TournamentID: f.t.ID, Round: 1, DirectorPIN: testPIN})
	require.ErrorIs(t, err, ErrUpstream)
}

func TestGenerateFlightsSeedsFromTotals(t *testing.T) {
	f := newFixture(t)
	a := f.register("A", "One", models.GenderBoys, 18, hcp(1))
	b := f.register("B", "Two", models.GenderBoys, 18, hcp(2))
	c := f.register("C", "Three", models.GenderBoys, 18, hcp(3))
	f.repo.Totals = flights.Totals{a.ID: 80, b.ID: 72}

	_, err := f.svc.GenerateFlights(context.Background(), GenerateFlightsInput{TournamentID: f.t.ID, Round: 2, DirectorPIN: testPIN})
	require.NoError(t, err)
	fl, err := f.svc.ListFlights(context.Background(), f.t.ID, 2)
	require.NoError(t, err)
	require.Len(t, fl, 1)
	ids := []uuid.UUID{fl[0].Players[0].RegistrationID, fl[0].Players[1].RegistrationID, fl[0].Players[2].RegistrationID}
	assert.Equal(t, []uuid.UUID{b.ID, a.ID, c.ID}, ids)

	_, err = f.svc.GenerateFlights(context.Background(), GenerateFlightsInput{TournamentID: f.t.ID, Round: 3, DirectorPIN: testPIN})
	require.NoError(t, err)
	fl, err = f.svc.ListFlights(context.Background(), f.t.ID, 3)
	require.NoError(t, err)
	ids = []uuid.UUID{fl[0].Players[0].RegistrationID, fl[0].Players[1].RegistrationID, fl[0].Players[2].RegistrationID}
	assert.Equal(t, []uuid.UUID{a.ID, b.ID, c.ID}, ids)
}

func TestAssignStartTimes(t *testing.T) {
	f := newFixture(t)
	for i := range 4 {
		f.register("P", string(rune('A'+i)), models.GenderBoys, 18, hcp(float64(i)))
	}
	_, err := f.svc.GenerateFlights(context.Background(), GenerateFlightsInput{TournamentID: f.t.ID, Round: 1, DirectorPIN: testPIN})
	require.NoError(t, err)

	res, err := f.svc.AssignStartTimes(context.Background(), AssignStartTimesInput{
		TournamentID: f.t.ID, Round: 1, StartTime: "08:00", DirectorPIN: testPIN,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Updated)
	assert.Equal(t, "Europe/Berlin", res.TimeZone)
	require.Len(t, res.Assignments, 2)
	assert.True(t, res.Assignments[0].StartTime.Equal(time.Date(2025, 6, 14, 6, 0, 0, 0, time.UTC)))
	assert.True(t, res.Assignments[1].StartTime.Equal(time.Date(2025, 6, 14, 6, 10, 0, 0, time.UTC)))

	res, err = f.svc.AssignStartTimes(context.Background(), AssignStartTimesInput{
		TournamentID: f.t.ID, Round: 1, StartTime: "09:00", DirectorPIN: testPIN,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Updated)
	assert.Empty(t, res.Assignments)

	interval := 8
	res, err = f.svc.AssignStartTimes(context.Background(), AssignStartTimesInput{
		TournamentID: f.t.ID, Round: 1, StartTime: "09:00", IntervalMinutes: &interval, Overwrite: true, DirectorPIN: testPIN,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Updated)
	assert.True(t, res.Assignments[1].StartTime.Equal(time.Date(2025, 6, 14, 7, 8, 0, 0, time.UTC)))

	fl, err := f.svc.ListFlights(context.Background(), f.t.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, fl[0].StartTime)
	assert.True(t, fl[0].StartTime.Equal(time.Date(2025, 6, 14, 7, 0, 0, 0, time.UTC)))
}

func TestAssignStartTimesRejects(t *testing.T) {
	zero := 0
	huge := 200_000_000
	dayPlus := flights.MaxIntervalMinutes + 1
	tests := []struct {
		name    string
		in      AssignStartTimesInput
		noDate  bool
		wantErr error
	}{
		{name: "bad clock", in: AssignStartTimesInput{Round: 1, StartTime: "8:00", DirectorPIN: testPIN}, wantErr: ErrValidation},
		{name: "zero interval", in: AssignStartTimesInput{Round: 1, StartTime: "08:00", IntervalMinutes: &zero, DirectorPIN: testPIN}, wantErr: ErrValidation},
		{name: "interval over a day", in: AssignStartTimesInput{Round: 1, StartTime: "08:00", IntervalMinutes: &dayPlus, DirectorPIN: testPIN}, wantErr: ErrValidation},
		{name: "interval overflowing duration", in: AssignStartTimesInput{Round: 1, StartTime: "08:00", IntervalMinutes: &huge, DirectorPIN: testPIN}, wantErr: ErrValidation},
		{name: "wrong pin", in: AssignStartTimesInput{Round: 1, StartTime: "08:00", DirectorPIN: "x"}, wantErr: ErrUnauthorized},
		{name: "missing start date", in: AssignStartTimesInput{Round: 1, StartTime: "08:00", DirectorPIN: testPIN}, noDate: true, wantErr: ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tid := f.t.ID
			if tt.noDate {
				tid = f.repo.AddTournament(models.Tournament{Name: "Undated"}).ID
			}
			tt.in.TournamentID = tid
			_, err := f.svc.AssignStartTimes(context.Background(), tt.in)
			require.ErrorIs(t, err, tt.wantErr)
			assert.False(t, f.repo.Called("SetFlightStartTime"))
		})
	}
}

func TestAssignStartTimesSkipsVanishedFlight(t *testing.T) {
	f := newFixture(t)
	f.trio(t)
	f.repo.SetFlightStartTimeFunc = func(context.Context, uuid.UUID, int, uuid.UUID, time.Time) (bool, error) {
		return false, nil
	}
	res, err := f.svc.AssignStartTimes(context.Background(), AssignStartTimesInput{
		TournamentID: f.t.ID, Round: 1, StartTime: "08:00", DirectorPIN: testPIN,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Updated)
}

func TestPlayerFlight(t *testing.T) {
	f := newFixture(t)
	a, b, c := f.trio(t)

	v, err := f.svc.PlayerFlight(context.Background(), f.t.ID, 1, a.ID)
	require.NoError(t, err)
	require.NotNil(t, v.MarkedBy)
	assert.Equal(t, b.ID, v.MarkedBy.RegistrationID)
	require.Len(t, v.Marks, 1)
	assert.Equal(t, c.ID, v.Marks[0].RegistrationID)

	_, err = f.svc.PlayerFlight(context.Background(), f.t.ID, 2, a.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStartlist(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Startlist(context.Background(), f.t.ID, 1, testPIN)
	require.ErrorIs(t, err, ErrNotFound)

	f.trio(t)
	data, err := f.svc.Startlist(context.Background(), f.t.ID, 1, testPIN)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	_, err = f.svc.Startlist(context.Background(), f.t.ID, 1, "")
	require.ErrorIs(t, err, ErrUnauthorized)
}
