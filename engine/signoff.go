package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/padraicbc/juniortour/leaderboard"
	"github.com/padraicbc/juniortour/models"
	"github.com/padraicbc/juniortour/notify"
	"github.com/padraicbc/juniortour/render"
	"github.com/padraicbc/juniortour/signoff"
	"github.com/padraicbc/juniortour/store"
)

// SignRoundInput is one signature on a player's round.
type SignRoundInput struct {
	TournamentID     uuid.UUID
	RegistrationID   uuid.UUID
	Round            int
	Role             string
	SignedName       string
	SignatureDataURL string
	DirectorPIN      string
	UserAgent        string
}

// SignRoundResult reports the state after the signature.
type SignRoundResult struct {
	Finalized   bool                   `json:"finalized"`
	FinalizedAt *time.Time             `json:"finalizedAt,omitempty"`
	Missing     []models.SignatureRole `json:"missing"`
	ScorecardID *uuid.UUID             `json:"scorecardId,omitempty"`
	Degraded    bool                   `json:"degraded"`
	Warnings    []string               `json:"warnings,omitempty"`
}

// SignRound records a signature and locks the round once the policy's
// roles are present. Only the caller whose stamp lands renders and
// dispatches the scorecard; failures there degrade the result.
func (s *Service) SignRound(ctx context.Context, in SignRoundInput) (*SignRoundResult, error) {
	fields := append(roundFields(in.TournamentID, in.Round),
		zap.String("registration_id", in.RegistrationID.String()),
		zap.String("role", in.Role),
	)
	return withTelemetry(s, ctx, "sign_round", fields,
		func(ctx context.Context) (*SignRoundResult, error) {
			if err := checkRound(in.Round); err != nil {
				return nil, err
			}
			role, err := signoff.ParseRole(in.Role)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrValidation, err)
			}
			name, err := signoff.ValidateName(in.SignedName)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrValidation, err)
			}
			if err := signoff.ValidateImage(in.SignatureDataURL); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrValidation, err)
			}
			if in.TournamentID == uuid.Nil {
				return nil, invalid("tournament id required")
			}
			if role == models.RoleTD {
				if err := s.authorizeDirector(in.DirectorPIN); err != nil {
					return nil, err
				}
			}

			reg, err := s.registration(ctx, in.TournamentID, in.RegistrationID)
			if err != nil {
				return nil, err
			}
			if signoff.StateOf(reg, in.Round) == signoff.StateFinalized {
				return nil, fmt.Errorf("%w: round %d already finalized", ErrConflict, in.Round)
			}

			sig := &models.ScorecardSignature{
				TournamentID:   in.TournamentID,
				RegistrationID: in.RegistrationID,
				Round:          in.Round,
				Role:           role,
				SignedName:     name,
			}
			if in.SignatureDataURL != "" {
				sig.SignatureDataURL = &in.SignatureDataURL
			}
			if in.UserAgent != "" {
				ua := in.UserAgent
				sig.UserAgent = &ua
			}
			written, err := s.repo.UpsertSignature(ctx, sig)
			if err != nil {
				return nil, storeErr("signature", err)
			}
			if !written {
				return nil, fmt.Errorf("%w: round %d already finalized", ErrConflict, in.Round)
			}

			sigs, err := s.repo.Signatures(ctx, in.TournamentID, in.RegistrationID, in.Round)
			if err != nil {
				return nil, storeErr("signatures", err)
			}
			res := &SignRoundResult{Missing: s.opts.Policy.Missing(signoff.Roles(sigs))}
			if len(res.Missing) > 0 {
				return res, nil
			}

			now := s.clock.Now().UTC()
			won, err := s.repo.MarkFinalized(ctx, in.TournamentID, in.RegistrationID, in.Round, now)
			if err != nil {
				return nil, storeErr("finalize", err)
			}
			res.Finalized = true
			if !won {
				return res, nil
			}
			res.FinalizedAt = &now
			s.metrics.Finalized()
			setFinalizedAt(reg, in.Round, now)

			docID, warnings := s.publishScorecard(ctx, reg, in.Round)
			res.ScorecardID = docID
			if len(warnings) > 0 {
				res.Degraded = true
				res.Warnings = warnings
				s.metrics.Degraded()
				s.logger.Warn("finalization side effects degraded",
					zap.String("registration_id", reg.ID.String()),
					zap.Int("round", in.Round),
					zap.Strings("warnings", warnings))
			}
			return res, nil
		})
}

func setFinalizedAt(r *models.Registration, round int, at time.Time) {
	switch round {
	case 1:
		r.R1FinalizedAt = &at
	case 2:
		r.R2FinalizedAt = &at
	case 3:
		r.R3FinalizedAt = &at
	}
}

// publishScorecard renders, stores and dispatches the official card.
// Every failure becomes a warning.
func (s *Service) publishScorecard(ctx context.Context, reg *models.Registration, round int) (*uuid.UUID, []string) {
	var warnings []string

	card, err := s.scorecard(ctx, reg, round)
	if err != nil {
		return nil, append(warnings, "scorecard: "+err.Error())
	}
	doc, err := s.renderer.Render(ctx, *card)
	if err != nil {
		return nil, append(warnings, "render: "+err.Error())
	}

	stored := &models.ScorecardDocument{
		TournamentID:   reg.TournamentID,
		RegistrationID: reg.ID,
		Round:          round,
		Filename:       doc.Filename,
		ContentType:    doc.ContentType,
		Body:           doc.Body,
	}
	var docID *uuid.UUID
	if err := s.repo.SaveDocument(ctx, stored); err != nil {
		warnings = append(warnings, "store document: "+err.Error())
	} else {
		docID = &stored.ID
	}

	if len(s.opts.Recipients) == 0 {
		return docID, warnings
	}
	msg := notify.Message{
		From:    s.opts.MailFrom,
		To:      s.opts.Recipients,
		Subject: fmt.Sprintf("Scorecard round %d: %s (%s)", round, reg.FullName(), card.TournamentName),
		Text: fmt.Sprintf("The round %d scorecard of %s was signed and finalized at %s.",
			round, reg.FullName(), card.FinalizedAt.Format(time.RFC3339)),
		Attachments: []notify.Attachment{{
			Filename:    doc.Filename,
			ContentType: doc.ContentType,
			Content:     doc.Body,
		}},
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		warnings = append(warnings, "notify: "+err.Error())
	}
	return docID, warnings
}

// scorecard gathers everything printed on a player's card.
func (s *Service) scorecard(ctx context.Context, reg *models.Registration, round int) (*render.Scorecard, error) {
	t, err := s.tournament(ctx, reg.TournamentID)
	if err != nil {
		return nil, err
	}
	card, f, err := s.playerCard(ctx, reg, round)
	if err != nil {
		return nil, err
	}
	sigs, err := s.repo.Signatures(ctx, reg.TournamentID, reg.ID, round)
	if err != nil {
		return nil, storeErr("signatures", err)
	}

	sc := &render.Scorecard{
		TournamentID:   t.ID.String(),
		TournamentName: t.Name,
		Location:       t.Location,
		Date:           t.StartDate,
		Round:          round,
		RegistrationID: reg.ID.String(),
		FirstName:      reg.FirstName,
		LastName:       reg.LastName,
		HomeClub:       reg.HomeClub,
		Nation:         reg.Nation,
		Hcp:            reg.Hcp,
		Holes:          reg.Holes,
		AgeGroup:       leaderboard.AgeGroupOn(reg.Birthdate, t.StartDate, reg.Holes),
		Card:           card,
		FinalizedAt:    reg.FinalizedAt(round),
	}
	if f != nil {
		n := f.FlightNumber
		sc.FlightNumber = &n
		var markerID uuid.UUID
		for _, p := range f.Players {
			if p.RegistrationID == reg.ID {
				markerID = p.MarkerRegistrationID
			}
		}
		for _, p := range f.Players {
			if p.RegistrationID == markerID && p.Registration != nil {
				sc.MarkerName = p.Registration.FullName()
			}
		}
	}
	for _, sig := range sigs {
		out := render.Signature{Role: sig.Role, Name: sig.SignedName, SignedAt: sig.SignedAt}
		if sig.SignatureDataURL != nil {
			out.Image = *sig.SignatureDataURL
		}
		sc.Signatures = append(sc.Signatures, out)
	}
	return sc, nil
}

// RenderScorecard returns the official document of a finalized round,
// rendering it when none is stored yet.
func (s *Service) RenderScorecard(ctx context.Context, tournamentID, registrationID uuid.UUID, round int) (*render.Document, error) {
	fields := append(roundFields(tournamentID, round), zap.String("registration_id", registrationID.String()))
	return withTelemetry(s, ctx, "render_scorecard", fields,
		func(ctx context.Context) (*render.Document, error) {
			if err := checkRound(round); err != nil {
				return nil, err
			}
			if tournamentID == uuid.Nil {
				return nil, invalid("tournament id required")
			}
			reg, err := s.registration(ctx, tournamentID, registrationID)
			if err != nil {
				return nil, err
			}
			if signoff.StateOf(reg, round) != signoff.StateFinalized {
				return nil, fmt.Errorf("%w: round %d is not finalized", ErrConflict, round)
			}

			if ref := reg.ScorecardRef(round); ref != nil {
				d, err := s.repo.Document(ctx, *ref)
				switch {
				case err == nil:
					return &render.Document{Filename: d.Filename, ContentType: d.ContentType, Body: d.Body}, nil
				case !errors.Is(err, store.ErrNotFound):
					return nil, storeErr("document", err)
				}
			}

			card, err := s.scorecard(ctx, reg, round)
			if err != nil {
				return nil, err
			}
			doc, err := s.renderer.Render(ctx, *card)
			if err != nil {
				return nil, fmt.Errorf("%w: render: %w", ErrUpstream, err)
			}
			stored := &models.ScorecardDocument{
				TournamentID:   tournamentID,
				RegistrationID: registrationID,
				Round:          round,
				Filename:       doc.Filename,
				ContentType:    doc.ContentType,
				Body:           doc.Body,
			}
			if err := s.repo.SaveDocument(ctx, stored); err != nil {
				s.logger.Warn("store rendered scorecard", zap.Error(err))
			}
			return doc, nil
		})
}

// RoundScorecards exports every finalized card of a round as a workbook.
func (s *Service) RoundScorecards(ctx context.Context, tournamentID uuid.UUID, round int, directorPIN string) ([]byte, error) {
	return withTelemetry(s, ctx, "round_scorecards", roundFields(tournamentID, round),
		func(ctx context.Context) ([]byte, error) {
			if err := checkRound(round); err != nil {
				return nil, err
			}
			if err := s.authorizeDirector(directorPIN); err != nil {
				return nil, err
			}
			if _, err := s.tournament(ctx, tournamentID); err != nil {
				return nil, err
			}
			regs, err := s.repo.Registrations(ctx, tournamentID)
			if err != nil {
				return nil, storeErr("registrations", err)
			}
			var cards []render.Scorecard
			for i := range regs {
				if regs[i].FinalizedAt(round) == nil {
					continue
				}
				sc, err := s.scorecard(ctx, &regs[i], round)
				if err != nil {
					return nil, err
				}
				cards = append(cards, *sc)
			}
			if len(cards) == 0 {
				return nil, fmt.Errorf("%w: no finalized scorecards for round %d", ErrNotFound, round)
			}
			pars, err := s.tournamentPars(ctx, tournamentID)
			if err != nil {
				return nil, err
			}
			data, err := render.Scorecards(round, pars, cards)
			if err != nil {
				return nil, fmt.Errorf("%w: scorecards workbook: %w", ErrUpstream, err)
			}
			return data, nil
		})
}
