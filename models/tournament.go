package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Tournament owns registrations, flights and scores for up to three rounds.
type Tournament struct {
	bun.BaseModel `bun:"table:tournaments,alias:t"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	StartDate time.Time `bun:"start_date,type:date,nullzero" json:"startDate"`
	Location  string    `bun:"location,notnull,default:''" json:"location"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

// HasStartDate reports whether the civil start date is set.
func (t *Tournament) HasStartDate() bool { return !t.StartDate.IsZero() }

// TournamentHole is the par of one hole of the tournament course.
type TournamentHole struct {
	bun.BaseModel `bun:"table:tournament_holes,alias:th"`

	TournamentID uuid.UUID `bun:"tournament_id,pk,type:uuid" json:"tournamentId"`
	Hole         int       `bun:"hole,pk" json:"hole"`
	Par          int       `bun:"par,notnull" json:"par"`
}
