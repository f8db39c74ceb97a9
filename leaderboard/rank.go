package leaderboard

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/padraicbc/juniortour/models"
	"github.com/padraicbc/juniortour/scoring"
)

// missingHcp ranks players without a handicap behind everyone who has one.
const missingHcp = 999.0

// Row is one leaderboard line.
type Row struct {
	Position       int           `json:"position"`
	RegistrationID uuid.UUID     `json:"registrationId"`
	FirstName      string        `json:"firstName"`
	LastName       string        `json:"lastName"`
	Nation         string        `json:"nation"`
	HomeClub       string        `json:"homeClub"`
	Gender         models.Gender `json:"gender"`
	Holes          int           `json:"holes"`
	Hcp            *float64      `json:"hcp"`
	AgeGroup       string        `json:"ageGroup"`
	Score          *int          `json:"score"`
	Thru           int           `json:"thru"`
	ToPar          *int          `json:"toPar"`
	FlightNumber   *int          `json:"flightNumber"`
	StartTime      *time.Time    `json:"startTime"`
	Finalized      bool          `json:"finalized"`
}

// NewRow fills a row from a registration and its reconciled card.
func NewRow(r *models.Registration, card scoring.Card, start time.Time, round int) Row {
	return Row{
		RegistrationID: r.ID,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Nation:         r.Nation,
		HomeClub:       r.HomeClub,
		Gender:         r.Gender,
		Holes:          r.Holes,
		Hcp:            r.Hcp,
		AgeGroup:       AgeGroupOn(r.Birthdate, start, r.Holes),
		Score:          card.Score,
		Thru:           card.Thru,
		ToPar:          card.ToPar,
		Finalized:      r.FinalizedAt(round) != nil,
	}
}

// Rank sorts rows in place and numbers them 1..n.
func Rank(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool { return Compare(&rows[i], &rows[j]) < 0 })
	for i := range rows {
		rows[i].Position = i + 1
	}
}

// Compare orders by to-par, score, holes played (more first), handicap
// and finally surname then given name. Unknown values sort last.
func Compare(a, b *Row) int {
	if c := compareNullLast(a.ToPar, b.ToPar); c != 0 {
		return c
	}
	if c := compareNullLast(a.Score, b.Score); c != 0 {
		return c
	}
	if a.Thru != b.Thru {
		if a.Thru > b.Thru {
			return -1
		}
		return 1
	}
	ha, hb := hcpOrMissing(a.Hcp), hcpOrMissing(b.Hcp)
	if ha != hb {
		if ha < hb {
			return -1
		}
		return 1
	}
	return strings.Compare(sortName(a), sortName(b))
}

func compareNullLast(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}

func hcpOrMissing(h *float64) float64 {
	if h == nil {
		return missingHcp
	}
	return *h
}

func sortName(r *Row) string {
	return strings.ToLower(strings.TrimSpace(r.LastName + " " + r.FirstName))
}

// Filter selects a slice of the ranked list. Zero fields match all.
type Filter struct {
	Holes    int
	Gender   models.Gender
	AgeGroup string
}

// Apply keeps matching rows in their ranked order.
func (f Filter) Apply(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if f.Holes != 0 && r.Holes != f.Holes {
			continue
		}
		if f.Gender != "" && r.Gender != f.Gender {
			continue
		}
		if f.AgeGroup != "" && !strings.EqualFold(r.AgeGroup, f.AgeGroup) {
			continue
		}
		out = append(out, r)
	}
	return out
}
