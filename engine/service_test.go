package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/padraicbc/juniortour/metrics"
	"github.com/padraicbc/juniortour/models"
	"github.com/padraicbc/juniortour/notify"
	"github.com/padraicbc/juniortour/render"
	"github.com/padraicbc/juniortour/scoring"
	"github.com/padraicbc/juniortour/store/storetest"
)

const testPIN = "director-secret"

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeRenderer struct {
	mu    sync.Mutex
	cards []render.Scorecard
	err   error
}

func (r *fakeRenderer) Render(_ context.Context, card render.Scorecard) (*render.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards = append(r.cards, card)
	if r.err != nil {
		return nil, r.err
	}
	return &render.Document{
		Filename:    card.Filename(),
		ContentType: render.ContentTypePDF,
		Body:        []byte("%PDF-1.4 " + card.LastName),
	}, nil
}

func (r *fakeRenderer) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cards)
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (n *fakeNotifier) Notify(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

type fixture struct {
	svc      *Service
	repo     *storetest.FakeRepository
	renderer *fakeRenderer
	notifier *fakeNotifier
	now      time.Time
	t        models.Tournament
}

func newFixture(t *testing.T, mutate ...func(*Options)) *fixture {
	t.Helper()
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	f := &fixture{
		repo:     storetest.NewFakeRepository(),
		renderer: &fakeRenderer{},
		notifier: &fakeNotifier{},
		now:      time.Date(2025, 6, 14, 15, 30, 0, 0, time.UTC),
	}
	f.t = f.repo.AddTournament(models.Tournament{
		Name:      "Junior Open",
		StartDate: time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
		Location:  "Bad Griesbach",
	})
	opts := Options{
		DirectorPIN: testPIN,
		Location:    berlin,
		Recipients:  []string{"td@example.org"},
		MailFrom:    "scores@example.org",
		LookupTTL:   time.Minute,
		Logger:      zap.NewNop(),
		Metrics:     metrics.New(prometheus.NewRegistry()),
		Tracer:      noop.NewTracerProvider().Tracer("test"),
		Clock:       fixedClock{f.now},
	}
	for _, m := range mutate {
		m(&opts)
	}
	f.svc = New(f.repo, f.renderer, f.notifier, opts)
	return f
}

func hcp(v float64) *float64 { return &v }

func (f *fixture) register(first, last string, gender models.Gender, holes int, h *float64) models.Registration {
	return f.repo.AddRegistration(models.Registration{
		TournamentID: f.t.ID,
		FirstName:    first,
		LastName:     last,
		Gender:       gender,
		Holes:        holes,
		Hcp:          h,
		Birthdate:    time.Date(2012, 3, 1, 0, 0, 0, 0, time.UTC),
	})
}

// trio registers three boys whose round 1 flight is a, b, c with a
// marked by b, b by c and c by a.
func (f *fixture) trio(t *testing.T) (a, b, c models.Registration) {
	t.Helper()
	a = f.register("Anna", "Adler", models.GenderBoys, 18, hcp(1))
	b = f.register("Ben", "Bauer", models.GenderBoys, 18, hcp(2))
	c = f.register("Carl", "Crone", models.GenderBoys, 18, hcp(3))
	_, err := f.svc.GenerateFlights(context.Background(), GenerateFlightsInput{
		TournamentID: f.t.ID, Round: 1, DirectorPIN: testPIN,
	})
	require.NoError(t, err)
	return a, b, c
}

func (f *fixture) enter(t *testing.T, round, hole int, by, forID uuid.UUID, strokes int) {
	t.Helper()
	_, err := f.svc.SubmitHoleEntry(context.Background(), subFor(f.t.ID, round, hole, by, forID, strokes))
	require.NoError(t, err)
}

func subFor(tid uuid.UUID, round, hole int, by, forID uuid.UUID, strokes int) scoring.Submission {
	return scoring.Submission{
		TournamentID: tid,
		Round:        round,
		Hole:         hole,
		RecordedBy:   by,
		ForPlayer:    forID,
		Strokes:      strokes,
	}
}

func (f *fixture) sign(role string, reg models.Registration, round int) (*SignRoundResult, error) {
	in := SignRoundInput{
		TournamentID:   f.t.ID,
		RegistrationID: reg.ID,
		Round:          round,
		Role:           role,
		SignedName:     reg.FullName(),
	}
	if role == string(models.RoleTD) {
		in.DirectorPIN = testPIN
	}
	return f.svc.SignRound(context.Background(), in)
}

func TestClass(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{invalid("bad"), "validation"},
		{storeErr("x", errors.New("boom")), "upstream"},
		{errors.New("other"), "internal"},
		{ErrConflict, "conflict"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Class(tt.err))
	}
}

func TestAuthorizeDirectorFailsClosed(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.DirectorPIN = "" })
	require.ErrorIs(t, f.svc.authorizeDirector(""), ErrUnauthorized)
	require.ErrorIs(t, f.svc.authorizeDirector("anything"), ErrUnauthorized)

	f = newFixture(t)
	require.ErrorIs(t, f.svc.authorizeDirector("wrong"), ErrUnauthorized)
	require.NoError(t, f.svc.authorizeDirector(testPIN))
}

func TestTournamentIsCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for range 3 {
		_, err := f.svc.tournament(ctx, f.t.ID)
		require.NoError(t, err)
	}
	n := 0
	for _, step := range f.repo.Trace() {
		if step == "Tournament" {
			n++
		}
	}
	require.Equal(t, 1, n)

	_, err := f.svc.tournament(ctx, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPingMapsUpstream(t *testing.T) {
	f := newFixture(t)
	f.repo.PingFunc = func(context.Context) error { return errors.New("down") }
	require.ErrorIs(t, f.svc.Ping(context.Background()), ErrUpstream)
}
