package streaks

import (
	"time"

	pkgerrors "github.com/exhale-app/exhale-backend/pkg/errors"
)

const dateLayout = "2006-01-02"

// Summary is the derived view of the confirmation ledger. It is recomputed
// from the ledger on every read; the optimistic estimate held in the cache is
// a latency mask, never a source of truth.
type Summary struct {
	CurrentStreak  int     `json:"current_streak"`
	LongestStreak  int     `json:"longest_streak"`
	LastConfirmed  *string `json:"last_confirmed"`
	ConfirmedToday bool    `json:"confirmed_today"`
}

// LocalToday resolves the current calendar date in the given IANA timezone.
// The result is normalized to midnight UTC so ledger dates compare by day.
func LocalToday(timezone string, now time.Time) (time.Time, error) {
	if timezone == "" {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "timezone is required")
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid timezone")
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC), nil
}

// ComputeSummary derives the streak summary from ledger dates as of today.
//
// The current streak is the maximal run of consecutive calendar days ending
// at today or yesterday. A missed day in the past breaks the run; the first
// confirmation after a gap starts a new run at 1. The longest streak is the
// maximum run length anywhere in the ledger.
func ComputeSummary(dates []time.Time, today time.Time) Summary {
	today = truncateToDay(today)

	confirmed := make(map[string]struct{}, len(dates))
	var last time.Time
	for _, d := range dates {
		day := truncateToDay(d)
		confirmed[day.Format(dateLayout)] = struct{}{}
		if day.After(last) {
			last = day
		}
	}

	summary := Summary{}
	if len(confirmed) == 0 {
		return summary
	}

	lastStr := last.Format(dateLayout)
	summary.LastConfirmed = &lastStr
	_, summary.ConfirmedToday = confirmed[today.Format(dateLayout)]

	anchor := today
	if !has(confirmed, anchor) {
		anchor = today.AddDate(0, 0, -1)
	}
	for has(confirmed, anchor) {
		summary.CurrentStreak++
		anchor = anchor.AddDate(0, 0, -1)
	}

	summary.LongestStreak = longestRun(confirmed)
	return summary
}

func longestRun(confirmed map[string]struct{}) int {
	longest := 0
	for key := range confirmed {
		day, err := time.Parse(dateLayout, key)
		if err != nil {
			continue
		}
		// Only count runs from their first day.
		if has(confirmed, day.AddDate(0, 0, -1)) {
			continue
		}
		run := 0
		for has(confirmed, day) {
			run++
			day = day.AddDate(0, 0, 1)
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

func has(confirmed map[string]struct{}, day time.Time) bool {
	_, ok := confirmed[day.Format(dateLayout)]
	return ok
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
