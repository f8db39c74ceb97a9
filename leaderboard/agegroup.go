// Package leaderboard ranks reconciled cards into the tournament order.
package leaderboard

import "time"

// Age groups by upper age bound.
const (
	U8  = "U8"
	U10 = "U10"
	U12 = "U12"
	U14 = "U14"
	U16 = "U16"
	U18 = "U18"
	U21 = "U21"
)

var buckets = []struct {
	max   int
	group string
}{
	{8, U8}, {10, U10}, {12, U12}, {14, U14}, {16, U16}, {18, U18},
}

// AgeOn is the age in whole years on day.
func AgeOn(birth, day time.Time) int {
	age := day.Year() - birth.Year()
	if day.Month() < birth.Month() || (day.Month() == birth.Month() && day.Day() < birth.Day()) {
		age--
	}
	return age
}

// AgeGroup buckets an age. Players of the 18-hole format never rank below U14.
func AgeGroup(age, holes int) string {
	group := U21
	for _, b := range buckets {
		if age <= b.max {
			group = b.group
			break
		}
	}
	if holes == 18 {
		switch group {
		case U8, U10, U12:
			return U14
		}
	}
	return group
}

// AgeGroupOn combines AgeOn and AgeGroup. Without a birthdate or start
// date the group is empty.
func AgeGroupOn(birth, start time.Time, holes int) string {
	if birth.IsZero() || start.IsZero() {
		return ""
	}
	return AgeGroup(AgeOn(birth, start), holes)
}
