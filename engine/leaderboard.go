package engine

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/padraicbc/juniortour/leaderboard"
	"github.com/padraicbc/juniortour/models"
	"github.com/padraicbc/juniortour/scoring"
)

// LeaderboardInput selects a round and an optional slice.
type LeaderboardInput struct {
	TournamentID uuid.UUID
	Round        int
	Filter       leaderboard.Filter
}

// LeaderboardResult is the ranked round.
type LeaderboardResult struct {
	TournamentID uuid.UUID         `json:"tournamentId"`
	Round        int               `json:"round"`
	Total        int               `json:"total"`
	Rows         []leaderboard.Row `json:"rows"`
}

// Leaderboard ranks every registration of a tournament for a round. The
// filter only subsets the global order; Position stays global.
func (s *Service) Leaderboard(ctx context.Context, in LeaderboardInput) (*LeaderboardResult, error) {
	fields := append(roundFields(in.TournamentID, in.Round),
		zap.Int("holes", in.Filter.Holes),
		zap.String("gender", string(in.Filter.Gender)),
		zap.String("age_group", in.Filter.AgeGroup),
	)
	return withTelemetry(s, ctx, "leaderboard", fields,
		func(ctx context.Context) (*LeaderboardResult, error) {
			if err := checkRound(in.Round); err != nil {
				return nil, err
			}
			t, err := s.tournament(ctx, in.TournamentID)
			if err != nil {
				return nil, err
			}
			regs, err := s.repo.Registrations(ctx, in.TournamentID)
			if err != nil {
				return nil, storeErr("registrations", err)
			}
			fl, err := s.repo.Flights(ctx, in.TournamentID, in.Round)
			if err != nil {
				return nil, storeErr("flights", err)
			}
			entries, err := s.repo.HoleEntries(ctx, in.TournamentID, in.Round, uuid.Nil)
			if err != nil {
				return nil, storeErr("hole entries", err)
			}
			pars, err := s.tournamentPars(ctx, in.TournamentID)
			if err != nil {
				return nil, err
			}

			type seat struct {
				marker uuid.UUID
				flight *models.Flight
			}
			seats := make(map[uuid.UUID]seat)
			for i := range fl {
				for _, p := range fl[i].Players {
					seats[p.RegistrationID] = seat{marker: p.MarkerRegistrationID, flight: &fl[i]}
				}
			}

			ledger := scoring.NewLedger(entries)
			rows := make([]leaderboard.Row, 0, len(regs))
			for i := range regs {
				r := &regs[i]
				st, seated := seats[r.ID]
				card := scoring.Reconcile(ledger, r.ID, st.marker, r.Holes, pars)
				row := leaderboard.NewRow(r, card, t.StartDate, in.Round)
				if seated {
					n := st.flight.FlightNumber
					row.FlightNumber = &n
					row.StartTime = st.flight.StartTime
				}
				rows = append(rows, row)
			}

			leaderboard.Rank(rows)
			out := in.Filter.Apply(rows)
			return &LeaderboardResult{
				TournamentID: in.TournamentID,
				Round:        in.Round,
				Total:        len(rows),
				Rows:         out,
			}, nil
		})
}
