package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// HoleEntry is one submitted stroke count. The self entry has
// EnteredBy == ForRegistrationID; the marker entry is recorded by the
// player's marker.
type HoleEntry struct {
	bun.BaseModel `bun:"table:hole_entries,alias:he"`

	ID                uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"-"`
	TournamentID      uuid.UUID `bun:"tournament_id,notnull,type:uuid" json:"tournamentId"`
	Round             int       `bun:"round,notnull" json:"round"`
	HoleNumber        int       `bun:"hole_number,notnull" json:"holeNumber"`
	EnteredBy         uuid.UUID `bun:"entered_by,notnull,type:uuid" json:"enteredBy"`
	ForRegistrationID uuid.UUID `bun:"for_registration_id,notnull,type:uuid" json:"forRegistrationId"`
	Strokes           int       `bun:"strokes,notnull" json:"strokes"`
	RuleBall          bool      `bun:"rule_ball,notnull,default:false" json:"ruleBall"`
	RuleNote          *string   `bun:"rule_note" json:"ruleNote,omitempty"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// SignatureRole is who signed a scorecard.
type SignatureRole string

const (
	RolePlayer SignatureRole = "player"
	RoleMarker SignatureRole = "marker"
	RoleTD     SignatureRole = "td"
)

// ScorecardSignature is one signature per (tournament, registration, round, role).
type ScorecardSignature struct {
	bun.BaseModel `bun:"table:scorecard_signatures,alias:ss"`

	ID               uuid.UUID     `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"-"`
	TournamentID     uuid.UUID     `bun:"tournament_id,notnull,type:uuid" json:"tournamentId"`
	RegistrationID   uuid.UUID     `bun:"registration_id,notnull,type:uuid" json:"registrationId"`
	Round            int           `bun:"round,notnull" json:"round"`
	Role             SignatureRole `bun:"role,notnull" json:"role"`
	SignedName       string        `bun:"signed_name,notnull" json:"signedName"`
	SignatureDataURL *string       `bun:"signature_data_url" json:"-"`
	UserAgent        *string       `bun:"user_agent" json:"-"`
	SignedAt         time.Time     `bun:"signed_at,nullzero,notnull,default:current_timestamp" json:"signedAt"`
}

// ScorecardDocument is a rendered official scorecard.
type ScorecardDocument struct {
	bun.BaseModel `bun:"table:scorecard_documents,alias:sd"`

	ID             uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	TournamentID   uuid.UUID `bun:"tournament_id,notnull,type:uuid" json:"tournamentId"`
	RegistrationID uuid.UUID `bun:"registration_id,notnull,type:uuid" json:"registrationId"`
	Round          int       `bun:"round,notnull" json:"round"`
	Filename       string    `bun:"filename,notnull" json:"filename"`
	ContentType    string    `bun:"content_type,notnull" json:"contentType"`
	Body           []byte    `bun:"body,type:bytea,notnull" json:"-"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}
