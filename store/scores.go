package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/padraicbc/juniortour/models"
)

// UpsertHoleEntry writes an entry; the last write per key wins.
func (s *Store) UpsertHoleEntry(ctx context.Context, e *models.HoleEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := s.db.NewInsert().Model(e).
		On("CONFLICT (tournament_id, round, hole_number, entered_by, for_registration_id) DO UPDATE").
		Set("strokes = EXCLUDED.strokes").
		Set("rule_ball = EXCLUDED.rule_ball").
		Set("rule_note = EXCLUDED.rule_note").
		Set("updated_at = now()").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert hole entry: %w", err)
	}
	return nil
}

// HoleEntries loads a round's entries, for one player when forPlayer is set.
func (s *Store) HoleEntries(ctx context.Context, tournamentID uuid.UUID, round int, forPlayer uuid.UUID) ([]models.HoleEntry, error) {
	var out []models.HoleEntry
	q := s.db.NewSelect().Model(&out).
		Where("he.tournament_id = ?", tournamentID).
		Where("he.round = ?", round)
	if forPlayer != uuid.Nil {
		q = q.Where("he.for_registration_id = ?", forPlayer)
	}
	err := q.Order("he.hole_number").Scan(ctx)
	return out, err
}

// UpsertSignature writes one signature per role while the round is
// still open. It reports false when the registration is missing or the
// round is already finalized; nothing is written then.
func (s *Store) UpsertSignature(ctx context.Context, sig *models.ScorecardSignature) (bool, error) {
	if sig.ID == uuid.Nil {
		sig.ID = uuid.New()
	}
	r, err := s.db.ExecContext(ctx, `
		INSERT INTO scorecard_signatures
			(id, tournament_id, registration_id, round, role, signed_name, signature_data_url, user_agent, signed_at)
		SELECT ?::uuid, r.tournament_id, r.id, ?::int, ?, ?, ?, ?, now()
		FROM registrations AS r
		WHERE r.id = ? AND r.tournament_id = ? AND r.? IS NULL
		ON CONFLICT (tournament_id, registration_id, round, role) DO UPDATE SET
			signed_name = EXCLUDED.signed_name,
			signature_data_url = EXCLUDED.signature_data_url,
			user_agent = EXCLUDED.user_agent,
			signed_at = now()`,
		sig.ID, sig.Round, string(sig.Role), sig.SignedName, sig.SignatureDataURL, sig.UserAgent,
		sig.RegistrationID, sig.TournamentID, bun.Ident(models.FinalizedAtColumn(sig.Round)),
	)
	if err != nil {
		return false, fmt.Errorf("upsert signature: %w", err)
	}
	n, _ := r.RowsAffected()
	return n == 1, nil
}

// Signatures lists a player round's signatures. A nil registration id
// lists the whole round.
func (s *Store) Signatures(ctx context.Context, tournamentID, registrationID uuid.UUID, round int) ([]models.ScorecardSignature, error) {
	var out []models.ScorecardSignature
	q := s.db.NewSelect().Model(&out).
		Where("ss.tournament_id = ?", tournamentID).
		Where("ss.round = ?", round)
	if registrationID != uuid.Nil {
		q = q.Where("ss.registration_id = ?", registrationID)
	}
	err := q.Order("ss.signed_at").Scan(ctx)
	return out, err
}

// MarkFinalized stamps the round lock. Only the first caller gets true.
func (s *Store) MarkFinalized(ctx context.Context, tournamentID, registrationID uuid.UUID, round int, at time.Time) (bool, error) {
	col := models.FinalizedAtColumn(round)
	r, err := s.db.NewUpdate().Model((*models.Registration)(nil)).
		Set("? = ?", bun.Ident(col), at).
		Where("id = ?", registrationID).
		Where("tournament_id = ?", tournamentID).
		Where("? IS NULL", bun.Ident(col)).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("mark finalized: %w", err)
	}
	n, _ := r.RowsAffected()
	return n == 1, nil
}

// SaveDocument stores a rendered scorecard and points the registration at it.
func (s *Store) SaveDocument(ctx context.Context, doc *models.ScorecardDocument) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(doc).Exec(ctx); err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		_, err := tx.NewUpdate().Model((*models.Registration)(nil)).
			Set("? = ?", bun.Ident(models.ScorecardRefColumn(doc.Round)), doc.ID).
			Where("id = ?", doc.RegistrationID).
			Where("tournament_id = ?", doc.TournamentID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("set scorecard ref: %w", err)
		}
		return nil
	})
}

func (s *Store) Document(ctx context.Context, id uuid.UUID) (*models.ScorecardDocument, error) {
	d := new(models.ScorecardDocument)
	if err := s.db.NewSelect().Model(d).Where("sd.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err)
	}
	return d, nil
}
