package enums

import "fmt"

// Mood labels a journal entry.
type Mood string

const (
	MoodGreat      Mood = "great"
	MoodGood       Mood = "good"
	MoodOkay       Mood = "okay"
	MoodLow        Mood = "low"
	MoodStruggling Mood = "struggling"
)

var validMoods = []Mood{MoodGreat, MoodGood, MoodOkay, MoodLow, MoodStruggling}

// String implements fmt.Stringer.
func (m Mood) String() string {
	return string(m)
}

// IsValid reports whether the value is known.
func (m Mood) IsValid() bool {
	for _, candidate := range validMoods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMood converts raw input into a Mood.
func ParseMood(value string) (Mood, error) {
	for _, candidate := range validMoods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid mood %q", value)
}
