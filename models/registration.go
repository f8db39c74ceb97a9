package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Gender is the competition pool of a registration.
type Gender string

const (
	GenderBoys  Gender = "Boys"
	GenderGirls Gender = "Girls"
)

// ParseGender accepts the two pool names, case-insensitively.
func ParseGender(s string) (Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "boys":
		return GenderBoys, true
	case "girls":
		return GenderGirls, true
	}
	return "", false
}

// Rounds is the number of rounds a tournament can have.
const Rounds = 3

// ValidRound reports whether round is 1, 2 or 3.
func ValidRound(round int) bool { return round >= 1 && round <= Rounds }

// ValidHoles reports whether holes is a supported format.
func ValidHoles(holes int) bool { return holes == 9 || holes == 18 }

// Registration is one player entered into one tournament.
type Registration struct {
	bun.BaseModel `bun:"table:registrations,alias:r"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	TournamentID uuid.UUID `bun:"tournament_id,notnull,type:uuid" json:"tournamentId"`
	FirstName    string    `bun:"first_name,notnull" json:"firstName"`
	LastName     string    `bun:"last_name,notnull" json:"lastName"`
	Email        string    `bun:"email,notnull,default:''" json:"email,omitempty"`
	Birthdate    time.Time `bun:"birthdate,type:date,nullzero" json:"birthdate"`
	Nation       string    `bun:"nation,notnull,default:''" json:"nation"`
	Gender       Gender    `bun:"gender,notnull" json:"gender"`
	Hcp          *float64  `bun:"hcp,type:double precision" json:"hcp"`
	Holes        int       `bun:"holes,notnull,default:18" json:"holes"`
	HomeClub     string    `bun:"home_club,notnull,default:''" json:"homeClub"`
	PlayerPIN    string    `bun:"player_pin,notnull,default:''" json:"-"`

	R1FinalizedAt  *time.Time `bun:"r1_finalized_at" json:"r1FinalizedAt,omitempty"`
	R2FinalizedAt  *time.Time `bun:"r2_finalized_at" json:"r2FinalizedAt,omitempty"`
	R3FinalizedAt  *time.Time `bun:"r3_finalized_at" json:"r3FinalizedAt,omitempty"`
	R1ScorecardRef *uuid.UUID `bun:"r1_scorecard_ref,type:uuid" json:"r1ScorecardRef,omitempty"`
	R2ScorecardRef *uuid.UUID `bun:"r2_scorecard_ref,type:uuid" json:"r2ScorecardRef,omitempty"`
	R3ScorecardRef *uuid.UUID `bun:"r3_scorecard_ref,type:uuid" json:"r3ScorecardRef,omitempty"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

// FullName is "First Last".
func (r *Registration) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// FinalizedAt returns the lock timestamp of a round, nil while open.
func (r *Registration) FinalizedAt(round int) *time.Time {
	switch round {
	case 1:
		return r.R1FinalizedAt
	case 2:
		return r.R2FinalizedAt
	case 3:
		return r.R3FinalizedAt
	}
	return nil
}

// ScorecardRef returns the stored scorecard document id of a round.
func (r *Registration) ScorecardRef(round int) *uuid.UUID {
	switch round {
	case 1:
		return r.R1ScorecardRef
	case 2:
		return r.R2ScorecardRef
	case 3:
		return r.R3ScorecardRef
	}
	return nil
}

// FinalizedAtColumn is the column holding the lock timestamp of round.
func FinalizedAtColumn(round int) string { return fmt.Sprintf("r%d_finalized_at", round) }

// ScorecardRefColumn is the column holding the document reference of round.
func ScorecardRefColumn(round int) string { return fmt.Sprintf("r%d_scorecard_ref", round) }
