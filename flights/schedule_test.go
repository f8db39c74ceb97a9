package flights

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padraicbc/juniortour/models"
)

func hcp(v float64) *float64 { return &v }

func newReg(gender models.Gender, holes int, h *float64) models.Registration {
	return models.Registration{ID: uuid.New(), Gender: gender, Holes: holes, Hcp: h}
}

func memberIDs(p Plan) []uuid.UUID {
	ids := make([]uuid.UUID, len(p.Members))
	for i, m := range p.Members {
		ids[i] = m.RegistrationID
	}
	return ids
}

func TestBuild_SevenBoysRoundOne(t *testing.T) {
	hcps := []float64{4, 9, 2, 15, 7, 1, 20}
	byHcp := make(map[float64]uuid.UUID)
	var regs []models.Registration
	for _, h := range hcps {
		r := newReg(models.GenderBoys, 18, hcp(h))
		byHcp[h] = r.ID
		regs = append(regs, r)
	}

	plans, err := Build(1, regs, nil)
	require.NoError(t, err)
	require.Len(t, plans, 3)

	want := [][]uuid.UUID{
		{byHcp[1], byHcp[2], byHcp[4]},
		{byHcp[7], byHcp[9], byHcp[15]},
		{byHcp[20]},
	}
	for i, p := range plans {
		assert.Equal(t, i+1, p.Number)
		assert.Equal(t, models.GenderBoys, p.Gender)
		assert.Equal(t, 18, p.Holes)
		if diff := cmp.Diff(want[i], memberIDs(p)); diff != "" {
			t.Errorf("flight %d members (-want +got):\n%s", p.Number, diff)
		}
	}

	first := plans[0].Members
	assert.Equal(t, first[1].RegistrationID, first[0].MarkerID, "seat 1 marked by seat 2")
	assert.Equal(t, first[2].RegistrationID, first[1].MarkerID, "seat 2 marked by seat 3")
	assert.Equal(t, first[0].RegistrationID, first[2].MarkerID, "seat 3 marked by seat 1")

	single := plans[2].Members[0]
	assert.Equal(t, single.RegistrationID, single.MarkerID)
	assert.Equal(t, 1, single.Seat)
}

func TestBuild_MarkerRelationIsSingleCycle(t *testing.T) {
	var regs []models.Registration
	for i := range 11 {
		g := models.GenderBoys
		if i%3 == 0 {
			g = models.GenderGirls
		}
		regs = append(regs, newReg(g, 18, hcp(float64(i))))
	}
	plans, err := Build(1, regs, nil)
	require.NoError(t, err)

	for _, p := range plans {
		next := make(map[uuid.UUID]uuid.UUID)
		for _, m := range p.Members {
			next[m.MarkerID] = m.RegistrationID
		}
		require.Len(t, next, len(p.Members))
		start := p.Members[0].RegistrationID
		cur, steps := start, 0
		for {
			cur = next[cur]
			steps++
			if cur == start {
				break
			}
			require.LessOrEqual(t, steps, len(p.Members))
		}
		assert.Equal(t, len(p.Members), steps, "flight %d", p.Number)
	}
}

func TestBuild_PartitionsNeverMix(t *testing.T) {
	var regs []models.Registration
	for i := range 20 {
		g := models.GenderBoys
		if i%2 == 0 {
			g = models.GenderGirls
		}
		holes := 18
		if i%5 == 0 {
			holes = 9
		}
		regs = append(regs, newReg(g, holes, hcp(float64(20-i))))
	}
	byID := make(map[uuid.UUID]models.Registration)
	for _, r := range regs {
		byID[r.ID] = r
	}

	plans, err := Build(1, regs, nil)
	require.NoError(t, err)
	assert.Equal(t, len(regs), SeatCount(plans))

	short := make(map[pool]int)
	seen18After9 := false
	sawNine := false
	for _, p := range plans {
		if p.Holes == 9 {
			sawNine = true
		} else if sawNine {
			seen18After9 = true
		}
		if len(p.Members) < Size {
			short[pool{p.Holes, p.Gender}]++
		}
		for _, m := range p.Members {
			r := byID[m.RegistrationID]
			assert.Equal(t, p.Gender, r.Gender)
			assert.Equal(t, p.Holes, r.Holes)
		}
	}
	assert.False(t, seen18After9, "18-hole flights come first")
	for k, n := range short {
		assert.LessOrEqual(t, n, 1, "pool %v", k)
	}
}

func TestBuild_InterleavesByLeadKey(t *testing.T) {
	var regs []models.Registration
	for _, h := range []float64{1, 2, 3, 10, 11, 12} {
		regs = append(regs, newReg(models.GenderBoys, 18, hcp(h)))
	}
	for _, h := range []float64{4, 5, 6} {
		regs = append(regs, newReg(models.GenderGirls, 18, hcp(h)))
	}

	plans, err := Build(1, regs, nil)
	require.NoError(t, err)
	require.Len(t, plans, 3)

	got := []models.Gender{plans[0].Gender, plans[1].Gender, plans[2].Gender}
	assert.Equal(t, []models.Gender{models.GenderBoys, models.GenderGirls, models.GenderBoys}, got)
}

func TestBuild_TieTakesBoysFirst(t *testing.T) {
	girl := newReg(models.GenderGirls, 18, hcp(5))
	boy := newReg(models.GenderBoys, 18, hcp(5))

	plans, err := Build(1, []models.Registration{girl, boy}, nil)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, models.GenderBoys, plans[0].Gender)
}

func TestBuild_EighteenBeforeNine(t *testing.T) {
	nine := newReg(models.GenderBoys, 9, hcp(0))
	eighteen := newReg(models.GenderGirls, 18, hcp(30))

	plans, err := Build(1, []models.Registration{nine, eighteen}, nil)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, 18, plans[0].Holes)
	assert.Equal(t, 9, plans[1].Holes)
}

func TestBuild_MissingHandicapSortsLast(t *testing.T) {
	none := newReg(models.GenderBoys, 18, nil)
	high := newReg(models.GenderBoys, 18, hcp(36))
	low := newReg(models.GenderBoys, 18, hcp(-1))

	plans, err := Build(1, []models.Registration{none, high, low}, nil)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, []uuid.UUID{low.ID, high.ID, none.ID}, memberIDs(plans[0]))
}

func TestBuild_SeedingByTotals(t *testing.T) {
	a := newReg(models.GenderBoys, 18, hcp(1))
	b := newReg(models.GenderBoys, 18, hcp(2))
	c := newReg(models.GenderBoys, 18, hcp(3))
	d := newReg(models.GenderBoys, 18, hcp(4))
	missing := newReg(models.GenderBoys, 18, hcp(0))
	regs := []models.Registration{a, b, c, d, missing}
	totals := Totals{a.ID: 70, b.ID: 80, c.ID: 75, d.ID: 90}

	tests := []struct {
		name  string
		round int
		want  [][]uuid.UUID
	}{
		{
			name:  "round two ascending",
			round: 2,
			want:  [][]uuid.UUID{{a.ID, c.ID, b.ID}, {d.ID, missing.ID}},
		},
		{
			name:  "round three descending, leaders last",
			round: 3,
			want:  [][]uuid.UUID{{d.ID, b.ID, c.ID}, {a.ID, missing.ID}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plans, err := Build(tt.round, append([]models.Registration(nil), regs...), totals)
			require.NoError(t, err)
			got := make([][]uuid.UUID, len(plans))
			for i, p := range plans {
				got[i] = memberIDs(p)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("flights (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuild_SkipsUnknownFormats(t *testing.T) {
	regs := []models.Registration{
		newReg(models.GenderBoys, 12, hcp(1)),
		newReg("Mixed", 18, hcp(1)),
		newReg(models.GenderGirls, 9, hcp(1)),
	}
	plans, err := Build(1, regs, nil)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, regs[2].ID, plans[0].Members[0].RegistrationID)
}

func TestBuild_RejectsRound(t *testing.T) {
	_, err := Build(4, nil, nil)
	assert.Error(t, err)
}
