// internal/domain/models/duration.go
package models

import "time"

// DurationCode is the closed set of membership durations a member can
// request. Values are the human-readable strings the API accepts and stores.
type DurationCode string

const (
	DurationOneWeek    DurationCode = "1 week"
	DurationOneMonth   DurationCode = "1 month"
	DurationThreeMonth DurationCode = "3 months"
	DurationSixMonth   DurationCode = "6 months"
	DurationOneYear    DurationCode = "1 year"
)

// AllDurations lists every valid duration code, in ascending length order.
var AllDurations = []DurationCode{
	DurationOneWeek,
	DurationOneMonth,
	DurationThreeMonth,
	DurationSixMonth,
	DurationOneYear,
}

// IsValidDuration reports whether code is one of the accepted duration codes.
func IsValidDuration(code DurationCode) bool {
	for _, d := range AllDurations {
		if d == code {
			return true
		}
	}
	return false
}

// MembershipEndDate computes the expiry for a membership starting at start.
// Month and year codes use calendar arithmetic (AddDate), so "1 month" from
// Jan 31 rolls over the way the calendar does rather than adding a fixed
// number of days. "1 week" is exactly seven days.
func MembershipEndDate(start time.Time, code DurationCode) time.Time {
	switch code {
	case DurationOneWeek:
		return start.AddDate(0, 0, 7)
	case DurationOneMonth:
		return start.AddDate(0, 1, 0)
	case DurationThreeMonth:
		return start.AddDate(0, 3, 0)
	case DurationSixMonth:
		return start.AddDate(0, 6, 0)
	case DurationOneYear:
		return start.AddDate(1, 0, 0)
	}
	return start
}

// NewMembership builds a Membership value starting now for the given code.
func NewMembership(code DurationCode, start time.Time) Membership {
	return Membership{
		Duration:  code,
		StartDate: start,
		EndDate:   MembershipEndDate(start, code),
	}
}
