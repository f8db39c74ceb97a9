// Package flights builds the playing groups of a tournament round and
// computes their tee times.
package flights

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/padraicbc/juniortour/models"
)

// Size is the number of players per flight. The last flight of a pool
// may be smaller.
const Size = 3

// Totals maps a registration to a prior-round score used for seeding.
// Registrations without a confirmed total are absent.
type Totals map[uuid.UUID]float64

// Member is one seat of a planned flight.
type Member struct {
	RegistrationID uuid.UUID
	Seat           int
	MarkerID       uuid.UUID
	Key            *float64
}

// Plan is a flight before it is persisted.
type Plan struct {
	Number  int
	Gender  models.Gender
	Holes   int
	Members []Member
}

// Lead is the seeding key of the flight's first member.
func (p Plan) Lead() *float64 {
	if len(p.Members) == 0 {
		return nil
	}
	return p.Members[0].Key
}

// SeatCount is the total number of memberships across plans.
func SeatCount(plans []Plan) int {
	n := 0
	for _, p := range plans {
		n += len(p.Members)
	}
	return n
}

// SeedingRule describes how a round orders its pools.
func SeedingRule(round int) string {
	switch round {
	case 1:
		return "handicap ascending, missing last"
	case 2:
		return "round 1 total ascending, missing last"
	default:
		return "cumulative total descending, missing last"
	}
}

type seeded struct {
	id  uuid.UUID
	key *float64
}

type pool struct {
	holes  int
	gender models.Gender
}

// Build partitions registrations into flights for round. Totals is
// ignored for round 1. Registrations with an unknown gender or holes
// format are skipped. Flights are numbered 1..N with all 18-hole
// flights first.
func Build(round int, regs []models.Registration, totals Totals) ([]Plan, error) {
	if !models.ValidRound(round) {
		return nil, fmt.Errorf("round %d out of range", round)
	}

	pools := make(map[pool][]seeded)
	for i := range regs {
		r := &regs[i]
		if !models.ValidHoles(r.Holes) {
			continue
		}
		if r.Gender != models.GenderBoys && r.Gender != models.GenderGirls {
			continue
		}
		k := pool{holes: r.Holes, gender: r.Gender}
		pools[k] = append(pools[k], seeded{id: r.ID, key: seedKey(round, r, totals)})
	}

	var plans []Plan
	for _, holes := range []int{18, 9} {
		boys := chunk(order(round, pools[pool{holes, models.GenderBoys}]), holes, models.GenderBoys)
		girls := chunk(order(round, pools[pool{holes, models.GenderGirls}]), holes, models.GenderGirls)
		plans = append(plans, merge(boys, girls)...)
	}
	for i := range plans {
		plans[i].Number = i + 1
	}
	return plans, nil
}

func seedKey(round int, r *models.Registration, totals Totals) *float64 {
	if round == 1 {
		return r.Hcp
	}
	if t, ok := totals[r.ID]; ok {
		return &t
	}
	return nil
}

func order(round int, players []seeded) []seeded {
	sort.SliceStable(players, func(i, j int) bool {
		if round == 3 {
			return compareDesc(players[i].key, players[j].key) < 0
		}
		return compareAsc(players[i].key, players[j].key) < 0
	})
	return players
}

// chunk cuts a sorted pool into flights and wires the marker cycle:
// member i is marked by member (i+1) mod k.
func chunk(players []seeded, holes int, gender models.Gender) []Plan {
	var plans []Plan
	for start := 0; start < len(players); start += Size {
		end := min(start+Size, len(players))
		group := players[start:end]
		p := Plan{Gender: gender, Holes: holes, Members: make([]Member, len(group))}
		for i, s := range group {
			p.Members[i] = Member{
				RegistrationID: s.id,
				Seat:           i + 1,
				MarkerID:       group[(i+1)%len(group)].id,
				Key:            s.key,
			}
		}
		plans = append(plans, p)
	}
	return plans
}

// merge interleaves two flight sequences by the ascending key of each
// flight's lead member. Ties take from a first.
func merge(a, b []Plan) []Plan {
	out := make([]Plan, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if compareAsc(a[i].Lead(), b[j].Lead()) <= 0 {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

func compareAsc(a, b *float64) int {
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

func compareDesc(a, b *float64) int {
	if a == nil || b == nil {
		return compareAsc(a, b)
	}
	return compareAsc(b, a)
}
