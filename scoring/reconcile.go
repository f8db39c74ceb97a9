package scoring

import (
	"github.com/google/uuid"

	"github.com/padraicbc/juniortour/models"
)

type entryKey struct {
	by, forID uuid.UUID
	hole      int
}

// Ledger indexes the hole entries of one tournament round.
type Ledger map[entryKey]int

// NewLedger indexes entries. Later entries for the same key win.
func NewLedger(entries []models.HoleEntry) Ledger {
	l := make(Ledger, len(entries))
	for _, e := range entries {
		l.Put(e.EnteredBy, e.ForRegistrationID, e.HoleNumber, e.Strokes)
	}
	return l
}

// Put records strokes, overwriting any previous value for the key.
func (l Ledger) Put(recordedBy, forPlayer uuid.UUID, hole, strokes int) {
	l[entryKey{recordedBy, forPlayer, hole}] = strokes
}

// Strokes looks up one entry.
func (l Ledger) Strokes(recordedBy, forPlayer uuid.UUID, hole int) (int, bool) {
	v, ok := l[entryKey{recordedBy, forPlayer, hole}]
	return v, ok
}

// HoleStatus is the live confirmation state of one hole.
type HoleStatus struct {
	Hole      int  `json:"hole"`
	Self      *int `json:"self"`
	Marker    *int `json:"marker"`
	Confirmed bool `json:"confirmed"`
	Par       *int `json:"par,omitempty"`
}

// Status compares the self and marker entries of a hole. A zero marker
// means the player has no flight and no hole can confirm.
func (l Ledger) Status(player, marker uuid.UUID, hole int) HoleStatus {
	st := HoleStatus{Hole: hole}
	if v, ok := l.Strokes(player, player, hole); ok {
		st.Self = &v
	}
	if marker != uuid.Nil {
		if v, ok := l.Strokes(marker, player, hole); ok {
			st.Marker = &v
		}
	}
	st.Confirmed = st.Self != nil && st.Marker != nil && *st.Self == *st.Marker
	return st
}

// Card is the reconciled result of one player round.
type Card struct {
	Score *int         `json:"score"`
	Thru  int          `json:"thru"`
	ToPar *int         `json:"toPar"`
	Holes []HoleStatus `json:"holes"`
}

// HolesFor is the number of holes played in a format.
func HolesFor(format int) int {
	if format == 9 {
		return 9
	}
	return 18
}

// Reconcile scans holes 1..HolesFor(format). Each confirmed hole adds its
// strokes and known par and moves Thru to that hole, so Thru is the
// highest confirmed hole even when earlier holes are still open.
func Reconcile(l Ledger, player, marker uuid.UUID, format int, pars map[int]int) Card {
	n := HolesFor(format)
	card := Card{Holes: make([]HoleStatus, 0, n)}
	sum, parSum, confirmed := 0, 0, 0
	for h := 1; h <= n; h++ {
		st := l.Status(player, marker, h)
		if p, ok := pars[h]; ok {
			st.Par = &p
		}
		if st.Confirmed {
			confirmed++
			sum += *st.Self
			if st.Par != nil {
				parSum += *st.Par
			}
			card.Thru = h
		}
		card.Holes = append(card.Holes, st)
	}
	if confirmed > 0 {
		card.Score = &sum
		if parSum > 0 {
			diff := sum - parSum
			card.ToPar = &diff
		}
	}
	return card
}
