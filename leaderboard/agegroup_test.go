package leaderboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestAgeOn(t *testing.T) {
	start := day(2026, 5, 10)
	assert.Equal(t, 12, AgeOn(day(2014, 5, 10), start), "birthday on start date")
	assert.Equal(t, 11, AgeOn(day(2014, 5, 11), start), "birthday tomorrow")
	assert.Equal(t, 11, AgeOn(day(2014, 6, 1), start), "birthday next month")
	assert.Equal(t, 12, AgeOn(day(2014, 1, 31), start))
}

func TestAgeGroup(t *testing.T) {
	tests := []struct {
		age, holes int
		want       string
	}{
		{7, 9, U8},
		{8, 9, U8},
		{9, 9, U10},
		{9, 18, U14},
		{12, 9, U12},
		{12, 18, U14},
		{13, 18, U14},
		{15, 18, U16},
		{18, 18, U18},
		{19, 18, U21},
		{25, 9, U21},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AgeGroup(tt.age, tt.holes), "age %d holes %d", tt.age, tt.holes)
	}
}

func TestAgeGroupOn_MissingDates(t *testing.T) {
	assert.Equal(t, "", AgeGroupOn(time.Time{}, day(2026, 1, 1), 18))
	assert.Equal(t, "", AgeGroupOn(day(2012, 1, 1), time.Time{}, 18))
	assert.Equal(t, U14, AgeGroupOn(day(2017, 1, 1), day(2026, 1, 1), 18))
}
