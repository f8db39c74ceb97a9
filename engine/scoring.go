package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/padraicbc/juniortour/models"
	"github.com/padraicbc/juniortour/scoring"
)

// HoleEntryResult acknowledges a stored entry with the live hole state.
type HoleEntryResult struct {
	Accepted bool               `json:"accepted"`
	Status   scoring.HoleStatus `json:"status"`
}

// SubmitHoleEntry stores a stroke count. Entries for a finalized round
// are refused.
func (s *Service) SubmitHoleEntry(ctx context.Context, sub scoring.Submission) (*HoleEntryResult, error) {
	fields := append(roundFields(sub.TournamentID, sub.Round),
		zap.String("registration_id", sub.ForPlayer.String()),
		zap.String("recorded_by", sub.RecordedBy.String()),
		zap.Int("hole", sub.Hole),
	)
	return withTelemetry(s, ctx, "submit_hole_entry", fields,
		func(ctx context.Context) (*HoleEntryResult, error) {
			if err := sub.Validate(); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrValidation, err)
			}
			reg, err := s.registration(ctx, sub.TournamentID, sub.ForPlayer)
			if err != nil {
				return nil, err
			}
			if reg.FinalizedAt(sub.Round) != nil {
				return nil, fmt.Errorf("%w: round %d is finalized", ErrConflict, sub.Round)
			}

			if err := s.repo.UpsertHoleEntry(ctx, sub.Entry()); err != nil {
				return nil, storeErr("hole entry", err)
			}
			s.metrics.HoleEntry()

			st, err := s.holeStatus(ctx, sub.TournamentID, sub.Round, sub.Hole, sub.ForPlayer)
			if err != nil {
				return nil, err
			}
			return &HoleEntryResult{Accepted: true, Status: *st}, nil
		})
}

// HoleStatus reports whether one hole of a player is confirmed.
func (s *Service) HoleStatus(ctx context.Context, tournamentID uuid.UUID, round, hole int, registrationID uuid.UUID) (*scoring.HoleStatus, error) {
	fields := append(roundFields(tournamentID, round),
		zap.String("registration_id", registrationID.String()),
		zap.Int("hole", hole),
	)
	return withTelemetry(s, ctx, "hole_status", fields,
		func(ctx context.Context) (*scoring.HoleStatus, error) {
			if err := checkRound(round); err != nil {
				return nil, err
			}
			if hole < 1 || hole > scoring.MaxHole {
				return nil, invalid("hole %d out of range", hole)
			}
			if tournamentID == uuid.Nil {
				return nil, invalid("tournament id required")
			}
			if _, err := s.registration(ctx, tournamentID, registrationID); err != nil {
				return nil, err
			}
			return s.holeStatus(ctx, tournamentID, round, hole, registrationID)
		})
}

func (s *Service) holeStatus(ctx context.Context, tournamentID uuid.UUID, round, hole int, player uuid.UUID) (*scoring.HoleStatus, error) {
	marker, _, err := s.markerOf(ctx, tournamentID, round, player)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.HoleEntries(ctx, tournamentID, round, player)
	if err != nil {
		return nil, storeErr("hole entries", err)
	}
	st := scoring.NewLedger(entries).Status(player, marker, hole)
	if pars, err := s.tournamentPars(ctx, tournamentID); err == nil {
		if p, ok := pars[hole]; ok {
			st.Par = &p
		}
	}
	return &st, nil
}

// playerCard reconciles one player round together with its flight.
func (s *Service) playerCard(ctx context.Context, reg *models.Registration, round int) (scoring.Card, *models.Flight, error) {
	marker, f, err := s.markerOf(ctx, reg.TournamentID, round, reg.ID)
	if err != nil {
		return scoring.Card{}, nil, err
	}
	entries, err := s.repo.HoleEntries(ctx, reg.TournamentID, round, reg.ID)
	if err != nil {
		return scoring.Card{}, nil, storeErr("hole entries", err)
	}
	pars, err := s.tournamentPars(ctx, reg.TournamentID)
	if err != nil {
		return scoring.Card{}, nil, err
	}
	return scoring.Reconcile(scoring.NewLedger(entries), reg.ID, marker, reg.Holes, pars), f, nil
}

