package streaks

import (
	"testing"
	"time"
)

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func days(values ...string) []time.Time {
	out := make([]time.Time, 0, len(values))
	for _, v := range values {
		out = append(out, day(v))
	}
	return out
}

func TestComputeSummaryEmptyLedger(t *testing.T) {
	summary := ComputeSummary(nil, day("2026-03-10"))
	if summary.CurrentStreak != 0 || summary.LongestStreak != 0 {
		t.Fatalf("expected zero streaks, got current=%d longest=%d", summary.CurrentStreak, summary.LongestStreak)
	}
	if summary.LastConfirmed != nil {
		t.Fatalf("expected nil last confirmed, got %q", *summary.LastConfirmed)
	}
	if summary.ConfirmedToday {
		t.Fatal("expected confirmed_today false")
	}
}

func TestComputeSummaryRunEndingToday(t *testing.T) {
	summary := ComputeSummary(days("2026-03-08", "2026-03-09", "2026-03-10"), day("2026-03-10"))
	if summary.CurrentStreak != 3 {
		t.Fatalf("expected current streak 3, got %d", summary.CurrentStreak)
	}
	if summary.LongestStreak != 3 {
		t.Fatalf("expected longest streak 3, got %d", summary.LongestStreak)
	}
	if !summary.ConfirmedToday {
		t.Fatal("expected confirmed_today true")
	}
	if summary.LastConfirmed == nil || *summary.LastConfirmed != "2026-03-10" {
		t.Fatalf("unexpected last confirmed: %v", summary.LastConfirmed)
	}
}

func TestComputeSummaryRunEndingYesterdayStillCounts(t *testing.T) {
	// Yesterday's run survives until the end of today; only a full missed day
	// breaks it.
	summary := ComputeSummary(days("2026-03-08", "2026-03-09"), day("2026-03-10"))
	if summary.CurrentStreak != 2 {
		t.Fatalf("expected current streak 2, got %d", summary.CurrentStreak)
	}
	if summary.ConfirmedToday {
		t.Fatal("expected confirmed_today false")
	}
}

func TestComputeSummaryGapResetsCurrentRun(t *testing.T) {
	summary := ComputeSummary(days("2026-03-05", "2026-03-06", "2026-03-07", "2026-03-10"), day("2026-03-10"))
	if summary.CurrentStreak != 1 {
		t.Fatalf("expected current streak 1 after gap, got %d", summary.CurrentStreak)
	}
	if summary.LongestStreak != 3 {
		t.Fatalf("expected longest streak 3, got %d", summary.LongestStreak)
	}
}

func TestComputeSummaryOldRunIsBroken(t *testing.T) {
	summary := ComputeSummary(days("2026-03-01", "2026-03-02"), day("2026-03-10"))
	if summary.CurrentStreak != 0 {
		t.Fatalf("expected current streak 0, got %d", summary.CurrentStreak)
	}
	if summary.LongestStreak != 2 {
		t.Fatalf("expected longest streak 2, got %d", summary.LongestStreak)
	}
	if summary.LastConfirmed == nil || *summary.LastConfirmed != "2026-03-02" {
		t.Fatalf("unexpected last confirmed: %v", summary.LastConfirmed)
	}
}

func TestComputeSummaryLongestIsHistoricalMax(t *testing.T) {
	dates := days(
		"2026-02-01", "2026-02-02", "2026-02-03", "2026-02-04", "2026-02-05",
		"2026-03-09", "2026-03-10",
	)
	summary := ComputeSummary(dates, day("2026-03-10"))
	if summary.CurrentStreak != 2 {
		t.Fatalf("expected current streak 2, got %d", summary.CurrentStreak)
	}
	if summary.LongestStreak != 5 {
		t.Fatalf("expected longest streak 5, got %d", summary.LongestStreak)
	}
}

func TestComputeSummaryUnorderedInput(t *testing.T) {
	summary := ComputeSummary(days("2026-03-10", "2026-03-08", "2026-03-09"), day("2026-03-10"))
	if summary.CurrentStreak != 3 {
		t.Fatalf("expected current streak 3, got %d", summary.CurrentStreak)
	}
}

func TestLocalTodayResolvesTimezone(t *testing.T) {
	// 2026-03-10 03:00 UTC is still 2026-03-09 in Los Angeles.
	now := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)

	today, err := LocalToday("America/Los_Angeles", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := today.Format("2006-01-02"); got != "2026-03-09" {
		t.Fatalf("expected 2026-03-09, got %s", got)
	}

	today, err = LocalToday("Asia/Tokyo", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := today.Format("2006-01-02"); got != "2026-03-10" {
		t.Fatalf("expected 2026-03-10, got %s", got)
	}
}

func TestLocalTodayRejectsInvalidTimezone(t *testing.T) {
	if _, err := LocalToday("Not/AZone", time.Now()); err == nil {
		t.Fatal("expected error for invalid timezone")
	}
	if _, err := LocalToday("", time.Now()); err == nil {
		t.Fatal("expected error for empty timezone")
	}
}
