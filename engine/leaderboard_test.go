package engine

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padraicbc/juniortour/leaderboard"
	"github.com/padraicbc/juniortour/models"
)

func TestLeaderboard(t *testing.T) {
	f := newFixture(t)
	a, b, c := f.trio(t)
	late := f.register("Zed", "Zorn", models.GenderGirls, 9, nil)
	ctx := context.Background()

	_, err := f.svc.SetPars(ctx, f.t.ID, map[int]int{1: 4, 2: 4})
	require.NoError(t, err)

	f.enter(t, 1, 1, a.ID, a.ID, 4)
	f.enter(t, 1, 1, b.ID, a.ID, 4)
	f.enter(t, 1, 1, b.ID, b.ID, 5)
	f.enter(t, 1, 1, c.ID, b.ID, 5)
	f.enter(t, 1, 2, b.ID, b.ID, 4)
	f.enter(t, 1, 2, c.ID, b.ID, 4)
	f.enter(t, 1, 1, c.ID, c.ID, 3)
	f.enter(t, 1, 1, a.ID, c.ID, 4)

	res, err := f.svc.Leaderboard(ctx, LeaderboardInput{TournamentID: f.t.ID, Round: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
	require.Len(t, res.Rows, 4)

	order := make([]uuid.UUID, 0, 4)
	for _, r := range res.Rows {
		order = append(order, r.RegistrationID)
	}
	assert.Equal(t, []uuid.UUID{a.ID, b.ID, c.ID, late.ID}, order)

	top := res.Rows[0]
	assert.Equal(t, 1, top.Position)
	require.NotNil(t, top.Score)
	assert.Equal(t, 4, *top.Score)
	require.NotNil(t, top.ToPar)
	assert.Equal(t, 0, *top.ToPar)
	assert.Equal(t, 1, top.Thru)
	assert.Equal(t, leaderboard.U14, top.AgeGroup)
	require.NotNil(t, top.FlightNumber)
	assert.Equal(t, 1, *top.FlightNumber)

	second := res.Rows[1]
	assert.Equal(t, 9, *second.Score)
	assert.Equal(t, 1, *second.ToPar)
	assert.Equal(t, 2, second.Thru)

	assert.Nil(t, res.Rows[2].Score)
	assert.Nil(t, res.Rows[3].FlightNumber)
	assert.Equal(t, leaderboard.U14, res.Rows[3].AgeGroup)
}

func TestLeaderboardFilterKeepsGlobalPositions(t *testing.T) {
	f := newFixture(t)
	f.trio(t)
	girl := f.register("Gina", "Gast", models.GenderGirls, 9, hcp(20))
	ctx := context.Background()

	res, err := f.svc.Leaderboard(ctx, LeaderboardInput{
		TournamentID: f.t.ID,
		Round:        1,
		Filter:       leaderboard.Filter{Gender: models.GenderGirls},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, girl.ID, res.Rows[0].RegistrationID)
	assert.Equal(t, 4, res.Rows[0].Position)

	res, err = f.svc.Leaderboard(ctx, LeaderboardInput{
		TournamentID: f.t.ID,
		Round:        1,
		Filter:       leaderboard.Filter{Holes: 18},
	})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 3)
}

func TestLeaderboardRejects(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Leaderboard(context.Background(), LeaderboardInput{TournamentID: f.t.ID, Round: 0})
	require.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.Leaderboard(context.Background(), LeaderboardInput{TournamentID: uuid.New(), Round: 1})
	require.ErrorIs(t, err, ErrNotFound)
}
