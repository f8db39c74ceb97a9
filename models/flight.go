package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Flight is an ordered playing group for one tournament round.
type Flight struct {
	bun.BaseModel `bun:"table:flights,alias:f"`

	ID           uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	TournamentID uuid.UUID  `bun:"tournament_id,notnull,type:uuid" json:"tournamentId"`
	Round        int        `bun:"round,notnull" json:"round"`
	FlightNumber int        `bun:"flight_number,notnull" json:"flightNumber"`
	Gender       Gender     `bun:"gender,notnull" json:"gender"`
	Holes        int        `bun:"holes,notnull" json:"holes"`
	StartTime    *time.Time `bun:"start_time" json:"startTime"`

	Players []*FlightPlayer `bun:"rel:has-many,join:id=flight_id" json:"players,omitempty"`
}

// FlightPlayer seats a registration in a flight. MarkerRegistrationID is
// the member who records this player's official score.
type FlightPlayer struct {
	bun.BaseModel `bun:"table:flight_players,alias:fp"`

	FlightID             uuid.UUID `bun:"flight_id,pk,type:uuid" json:"flightId"`
	RegistrationID       uuid.UUID `bun:"registration_id,pk,type:uuid" json:"registrationId"`
	Seat                 int       `bun:"seat,notnull" json:"seat"`
	MarkerRegistrationID uuid.UUID `bun:"marker_registration_id,notnull,type:uuid" json:"markerRegistrationId"`

	Registration *Registration `bun:"rel:belongs-to,join:registration_id=id" json:"-"`
}
