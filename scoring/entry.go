// Package scoring validates stroke submissions and reconciles the self
// and marker entries of a player into a confirmed card.
package scoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/padraicbc/juniortour/models"
)

const (
	MaxHole    = 18
	MinStrokes = 1
	MaxStrokes = 25
	maxNoteLen = 500
)

// ErrInvalidEntry wraps every rejected submission.
var ErrInvalidEntry = errors.New("invalid hole entry")

// Submission is one stroke count sent by a recorder for a player.
type Submission struct {
	TournamentID uuid.UUID
	Round        int
	Hole         int
	RecordedBy   uuid.UUID
	ForPlayer    uuid.UUID
	Strokes      int
	RuleBall     bool
	RuleNote     string
}

// Validate rejects out-of-range or incomplete submissions.
func (s Submission) Validate() error {
	switch {
	case s.TournamentID == uuid.Nil:
		return fmt.Errorf("%w: tournament id required", ErrInvalidEntry)
	case s.RecordedBy == uuid.Nil:
		return fmt.Errorf("%w: recorded-by id required", ErrInvalidEntry)
	case s.ForPlayer == uuid.Nil:
		return fmt.Errorf("%w: player id required", ErrInvalidEntry)
	case !models.ValidRound(s.Round):
		return fmt.Errorf("%w: round %d out of range", ErrInvalidEntry, s.Round)
	case s.Hole < 1 || s.Hole > MaxHole:
		return fmt.Errorf("%w: hole %d out of range", ErrInvalidEntry, s.Hole)
	case s.Strokes < MinStrokes || s.Strokes > MaxStrokes:
		return fmt.Errorf("%w: strokes %d out of range", ErrInvalidEntry, s.Strokes)
	case len(s.RuleNote) > maxNoteLen:
		return fmt.Errorf("%w: rule note too long", ErrInvalidEntry)
	}
	return nil
}

// Entry converts the submission into its storage row.
func (s Submission) Entry() *models.HoleEntry {
	e := &models.HoleEntry{
		TournamentID:      s.TournamentID,
		Round:             s.Round,
		HoleNumber:        s.Hole,
		EnteredBy:         s.RecordedBy,
		ForRegistrationID: s.ForPlayer,
		Strokes:           s.Strokes,
		RuleBall:          s.RuleBall,
	}
	if note := strings.TrimSpace(s.RuleNote); note != "" {
		e.RuleNote = &note
	}
	return e
}
