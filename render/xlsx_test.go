package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/padraicbc/juniortour/models"
	"github.com/padraicbc/juniortour/scoring"
)

func TestStartlist(t *testing.T) {
	a := &models.Registration{ID: uuid.New(), FirstName: "Ben", LastName: "Adler", HomeClub: "GC Nord"}
	b := &models.Registration{ID: uuid.New(), FirstName: "Tom", LastName: "Berg"}
	start := time.Date(2026, 6, 6, 6, 0, 0, 0, time.UTC)
	fl := []models.Flight{{
		FlightNumber: 1, Holes: 18, Gender: models.GenderBoys, StartTime: &start,
		Players: []*models.FlightPlayer{
			{RegistrationID: a.ID, Seat: 1, MarkerRegistrationID: b.ID, Registration: a},
			{RegistrationID: b.ID, Seat: 2, MarkerRegistrationID: a.ID, Registration: b},
		},
	}}
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	data, err := Startlist(&models.Tournament{Name: "Open"}, 1, fl, berlin)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Round 1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Flight", rows[0][0])
	assert.Equal(t, "08:00", rows[1][1])
	assert.Equal(t, "Ben Adler", rows[1][3])
	assert.Equal(t, "Tom Berg", rows[1][9])
	assert.Equal(t, "Ben Adler", rows[2][9])
}

func TestScorecards(t *testing.T) {
	five, four := 5, 4
	score, toPar := 9, 1
	cards := []Scorecard{{
		FirstName: "Ida", LastName: "Kern", Holes: 9,
		Card: scoring.Card{
			Score: &score, ToPar: &toPar, Thru: 2,
			Holes: []scoring.HoleStatus{
				{Hole: 1, Self: &five, Marker: &five, Confirmed: true},
				{Hole: 2, Self: &four, Marker: &four, Confirmed: true},
			},
		},
		Signatures: []Signature{{Role: models.RolePlayer, Name: "Ida Kern"}},
	}}

	data, err := Scorecards(2, map[int]int{1: 4, 2: 4}, cards)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Round 2")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Par", rows[1][0])
	assert.Equal(t, "4", rows[1][4])
	assert.Equal(t, "Ida Kern", rows[2][0])
	assert.Equal(t, "5", rows[2][4])
	assert.Equal(t, "9", rows[2][22])
	assert.Equal(t, "Ida Kern (player)", rows[2][26])
}
