package flights

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/padraicbc/juniortour/models"
)

// DefaultInterval is the gap between consecutive tee times.
const DefaultInterval = 10 * time.Minute

// MaxIntervalMinutes caps the gap at one day.
const MaxIntervalMinutes = 24 * 60

var clockRe = regexp.MustCompile(`^(\d{2}):(\d{2})$`)

// ParseClock parses a wall-clock "HH:MM".
func ParseClock(s string) (hour, minute int, err error) {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("start time %q is not HH:MM", s)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("start time %q out of range", s)
	}
	return hour, minute, nil
}

// ZonedInstant resolves a civil date plus wall-clock time in loc to an
// absolute instant. It guesses UTC, formats the guess back into loc and
// corrects by the residual until the civil time matches.
func ZonedInstant(date time.Time, hour, minute int, loc *time.Location) time.Time {
	want := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC)
	guess := want
	for range 4 {
		l := guess.In(loc)
		got := time.Date(l.Year(), l.Month(), l.Day(), l.Hour(), l.Minute(), l.Second(), 0, time.UTC)
		diff := want.Sub(got)
		if diff == 0 {
			break
		}
		guess = guess.Add(diff)
	}
	return guess.UTC()
}

// Assignment is a tee time for one existing flight.
type Assignment struct {
	FlightID     uuid.UUID
	FlightNumber int
	StartTime    time.Time
}

// Stagger hands out base + i*interval to flights in number order. Unless
// overwrite is set, flights that already have a start time are skipped
// and do not consume a slot.
func Stagger(fl []models.Flight, base time.Time, interval time.Duration, overwrite bool) []Assignment {
	sorted := make([]models.Flight, len(fl))
	copy(sorted, fl)
	sortByNumber(sorted)

	var out []Assignment
	for _, f := range sorted {
		if !overwrite && f.StartTime != nil {
			continue
		}
		out = append(out, Assignment{
			FlightID:     f.ID,
			FlightNumber: f.FlightNumber,
			StartTime:    base.Add(time.Duration(len(out)) * interval),
		})
	}
	return out
}

func sortByNumber(fl []models.Flight) {
	sort.SliceStable(fl, func(i, j int) bool { return fl[i].FlightNumber < fl[j].FlightNumber })
}
