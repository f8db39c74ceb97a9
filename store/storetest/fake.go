// Package storetest provides an in-memory store.Repository for tests.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/padraicbc/juniortour/flights"
	"github.com/padraicbc/juniortour/models"
	"github.com/padraicbc/juniortour/store"
)

type roundKey struct {
	tournament uuid.UUID
	round      int
}

type entryKey struct {
	tournament uuid.UUID
	round      int
	hole       int
	by, forID  uuid.UUID
}

type sigKey struct {
	tournament, registration uuid.UUID
	round                    int
	role                     models.SignatureRole
}

// FakeRepository keeps everything in maps. Any <Method>Func set
// replaces the in-memory behaviour of that method.
type FakeRepository struct {
	mu    sync.Mutex
	trace []string

	tournaments map[uuid.UUID]models.Tournament
	pars        map[uuid.UUID]map[int]int
	regs        map[uuid.UUID]models.Registration
	flights     map[roundKey][]models.Flight
	entries     map[entryKey]models.HoleEntry
	sigs        map[sigKey]models.ScorecardSignature
	docs        map[uuid.UUID]models.ScorecardDocument
	users       map[string]models.User

	// Totals is returned by RoundTotals.
	Totals flights.Totals

	PingFunc               func(ctx context.Context) error
	TournamentFunc         func(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	RegistrationsFunc      func(ctx context.Context, tournamentID uuid.UUID) ([]models.Registration, error)
	ReplaceFlightsFunc     func(ctx context.Context, tournamentID uuid.UUID, round int, plans []flights.Plan) (store.ReplaceResult, error)
	SetFlightStartTimeFunc func(ctx context.Context, tournamentID uuid.UUID, round int, flightID uuid.UUID, at time.Time) (bool, error)
	UpsertHoleEntryFunc    func(ctx context.Context, e *models.HoleEntry) error
	UpsertSignatureFunc    func(ctx context.Context, s *models.ScorecardSignature) (bool, error)
	MarkFinalizedFunc      func(ctx context.Context, tournamentID, registrationID uuid.UUID, round int, at time.Time) (bool, error)
	SaveDocumentFunc       func(ctx context.Context, doc *models.ScorecardDocument) error
}

var _ store.Repository = (*FakeRepository)(nil)

// NewFakeRepository returns an empty fake.
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{
		trace:       []string{},
		tournaments: make(map[uuid.UUID]models.Tournament),
		pars:        make(map[uuid.UUID]map[int]int),
		regs:        make(map[uuid.UUID]models.Registration),
		flights:     make(map[roundKey][]models.Flight),
		entries:     make(map[entryKey]models.HoleEntry),
		sigs:        make(map[sigKey]models.ScorecardSignature),
		docs:        make(map[uuid.UUID]models.ScorecardDocument),
		users:       make(map[string]models.User),
		Totals:      flights.Totals{},
	}
}

func (f *FakeRepository) record(step string) {
	f.mu.Lock()
	f.trace = append(f.trace, step)
	f.mu.Unlock()
}

// Trace lists the called methods in order.
func (f *FakeRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

// Called reports whether method was called.
func (f *FakeRepository) Called(method string) bool {
	for _, s := range f.Trace() {
		if s == method {
			return true
		}
	}
	return false
}

// --- seeding helpers ---

// AddTournament seeds a tournament.
func (f *FakeRepository) AddTournament(t models.Tournament) models.Tournament {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	f.tournaments[t.ID] = t
	return t
}

// AddRegistration seeds a registration.
func (f *FakeRepository) AddRegistration(r models.Registration) models.Registration {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	f.regs[r.ID] = r
	return r
}

// AddUser seeds an admin user.
func (f *FakeRepository) AddUser(u models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.Username] = u
}

// Entries returns every stored hole entry.
func (f *FakeRepository) Entries() []models.HoleEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.HoleEntry, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e)
	}
	return out
}

// Documents returns every stored scorecard document.
func (f *FakeRepository) Documents() []models.ScorecardDocument {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.ScorecardDocument, 0, len(f.docs))
	for _, d := range f.docs {
		out = append(out, d)
	}
	return out
}

// --- store.Repository ---

func (f *FakeRepository) Ping(ctx context.Context) error {
	f.record("Ping")
	if f.PingFunc != nil {
		return f.PingFunc(ctx)
	}
	return nil
}

func (f *FakeRepository) Tournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	f.record("Tournament")
	if f.TournamentFunc != nil {
		return f.TournamentFunc(ctx, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tournaments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (f *FakeRepository) Tournaments(ctx context.Context) ([]models.Tournament, error) {
	f.record("Tournaments")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Tournament, 0, len(f.tournaments))
	for _, t := range f.tournaments {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (f *FakeRepository) CreateTournament(ctx context.Context, t *models.Tournament) error {
	f.record("CreateTournament")
	*t = f.AddTournament(*t)
	return nil
}

func (f *FakeRepository) Pars(ctx context.Context, tournamentID uuid.UUID) (map[int]int, error) {
	f.record("Pars")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int]int)
	for h, p := range f.pars[tournamentID] {
		out[h] = p
	}
	return out, nil
}

func (f *FakeRepository) SetPars(ctx context.Context, tournamentID uuid.UUID, pars map[int]int) error {
	f.record("SetPars")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pars[tournamentID] == nil {
		f.pars[tournamentID] = make(map[int]int)
	}
	for h, p := range pars {
		f.pars[tournamentID][h] = p
	}
	return nil
}

func (f *FakeRepository) Registrations(ctx context.Context, tournamentID uuid.UUID) ([]models.Registration, error) {
	f.record("Registrations")
	if f.RegistrationsFunc != nil {
		return f.RegistrationsFunc(ctx, tournamentID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Registration
	for _, r := range f.regs {
		if r.TournamentID == tournamentID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}

func (f *FakeRepository) Registration(ctx context.Context, tournamentID, id uuid.UUID) (*models.Registration, error) {
	f.record("Registration")
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.regs[id]
	if !ok || r.TournamentID != tournamentID {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (f *FakeRepository) RegistrationByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	f.record("RegistrationByID")
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.regs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (f *FakeRepository) RegistrationByPIN(ctx context.Context, tournamentID uuid.UUID, pin string) (*models.Registration, error) {
	f.record("RegistrationByPIN")
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *models.Registration
	for _, r := range f.regs {
		if r.PlayerPIN != pin || (tournamentID != uuid.Nil && r.TournamentID != tournamentID) {
			continue
		}
		if best == nil || r.CreatedAt.After(best.CreatedAt) {
			r := r
			best = &r
		}
	}
	if best == nil {
		return nil, store.ErrNotFound
	}
	return best, nil
}

func (f *FakeRepository) CreateRegistration(ctx context.Context, r *models.Registration) error {
	f.record("CreateRegistration")
	*r = f.AddRegistration(*r)
	return nil
}

func (f *FakeRepository) RoundTotals(ctx context.Context, tournamentID uuid.UUID, rounds []int) (flights.Totals, error) {
	f.record("RoundTotals")
	return f.Totals, nil
}

func (f *FakeRepository) ReplaceFlights(ctx context.Context, tournamentID uuid.UUID, round int, plans []flights.Plan) (store.ReplaceResult, error) {
	f.record("ReplaceFlights")
	if f.ReplaceFlightsFunc != nil {
		return f.ReplaceFlightsFunc(ctx, tournamentID, round, plans)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var res store.ReplaceResult
	fl := make([]models.Flight, 0, len(plans))
	for _, p := range plans {
		flight := models.Flight{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Round:        round,
			FlightNumber: p.Number,
			Gender:       p.Gender,
			Holes:        p.Holes,
		}
		for _, m := range p.Members {
			fp := &models.FlightPlayer{
				FlightID:             flight.ID,
				RegistrationID:       m.RegistrationID,
				Seat:                 m.Seat,
				MarkerRegistrationID: m.MarkerID,
			}
			if r, ok := f.regs[m.RegistrationID]; ok {
				fp.Registration = &r
			}
			flight.Players = append(flight.Players, fp)
			res.Players++
		}
		fl = append(fl, flight)
		res.Flights++
	}
	f.flights[roundKey{tournamentID, round}] = fl
	return res, nil
}

func (f *FakeRepository) Flights(ctx context.Context, tournamentID uuid.UUID, round int) ([]models.Flight, error) {
	f.record("Flights")
	f.mu.Lock()
	defer f.mu.Unlock()
	src := f.flights[roundKey{tournamentID, round}]
	out := make([]models.Flight, len(src))
	copy(out, src)
	return out, nil
}

func (f *FakeRepository) PlayerFlight(ctx context.Context, tournamentID uuid.UUID, round int, registrationID uuid.UUID) (*models.Flight, error) {
	f.record("PlayerFlight")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fl := range f.flights[roundKey{tournamentID, round}] {
		for _, p := range fl.Players {
			if p.RegistrationID == registrationID {
				fl := fl
				return &fl, nil
			}
		}
	}
	return nil, store.ErrNotFound
}

func (f *FakeRepository) SetFlightStartTime(ctx context.Context, tournamentID uuid.UUID, round int, flightID uuid.UUID, at time.Time) (bool, error) {
	f.record("SetFlightStartTime")
	if f.SetFlightStartTimeFunc != nil {
		return f.SetFlightStartTimeFunc(ctx, tournamentID, round, flightID, at)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	fl := f.flights[roundKey{tournamentID, round}]
	for i := range fl {
		if fl[i].ID == flightID {
			t := at
			fl[i].StartTime = &t
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeRepository) UpsertHoleEntry(ctx context.Context, e *models.HoleEntry) error {
	f.record("UpsertHoleEntry")
	if f.UpsertHoleEntryFunc != nil {
		return f.UpsertHoleEntryFunc(ctx, e)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[entryKey{e.TournamentID, e.Round, e.HoleNumber, e.EnteredBy, e.ForRegistrationID}] = *e
	return nil
}

func (f *FakeRepository) HoleEntries(ctx context.Context, tournamentID uuid.UUID, round int, forPlayer uuid.UUID) ([]models.HoleEntry, error) {
	f.record("HoleEntries")
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.HoleEntry
	for k, e := range f.entries {
		if k.tournament != tournamentID || k.round != round {
			continue
		}
		if forPlayer != uuid.Nil && k.forID != forPlayer {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *FakeRepository) UpsertSignature(ctx context.Context, s *models.ScorecardSignature) (bool, error) {
	f.record("UpsertSignature")
	if f.UpsertSignatureFunc != nil {
		return f.UpsertSignatureFunc(ctx, s)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.regs[s.RegistrationID]
	if !ok || r.TournamentID != s.TournamentID || r.FinalizedAt(s.Round) != nil {
		return false, nil
	}
	if s.SignedAt.IsZero() {
		s.SignedAt = time.Now()
	}
	f.sigs[sigKey{s.TournamentID, s.RegistrationID, s.Round, s.Role}] = *s
	return true, nil
}

func (f *FakeRepository) Signatures(ctx context.Context, tournamentID, registrationID uuid.UUID, round int) ([]models.ScorecardSignature, error) {
	f.record("Signatures")
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ScorecardSignature
	for k, s := range f.sigs {
		if k.tournament == tournamentID && k.round == round && (registrationID == uuid.Nil || k.registration == registrationID) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out, nil
}

func (f *FakeRepository) MarkFinalized(ctx context.Context, tournamentID, registrationID uuid.UUID, round int, at time.Time) (bool, error) {
	f.record("MarkFinalized")
	if f.MarkFinalizedFunc != nil {
		return f.MarkFinalizedFunc(ctx, tournamentID, registrationID, round, at)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.regs[registrationID]
	if !ok || r.TournamentID != tournamentID || r.FinalizedAt(round) != nil {
		return false, nil
	}
	t := at
	switch round {
	case 1:
		r.R1FinalizedAt = &t
	case 2:
		r.R2FinalizedAt = &t
	case 3:
		r.R3FinalizedAt = &t
	}
	f.regs[registrationID] = r
	return true, nil
}

func (f *FakeRepository) SaveDocument(ctx context.Context, doc *models.ScorecardDocument) error {
	f.record("SaveDocument")
	if f.SaveDocumentFunc != nil {
		return f.SaveDocumentFunc(ctx, doc)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	f.docs[doc.ID] = *doc
	if r, ok := f.regs[doc.RegistrationID]; ok {
		id := doc.ID
		switch doc.Round {
		case 1:
			r.R1ScorecardRef = &id
		case 2:
			r.R2ScorecardRef = &id
		case 3:
			r.R3ScorecardRef = &id
		}
		f.regs[doc.RegistrationID] = r
	}
	return nil
}

func (f *FakeRepository) Document(ctx context.Context, id uuid.UUID) (*models.ScorecardDocument, error) {
	f.record("Document")
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (f *FakeRepository) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	f.record("UserByUsername")
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}
