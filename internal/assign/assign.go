// Package assign holds the overdue arithmetic and display formatting for
// the last-assigned instant. Everything here is pure so both the API and
// the sweeper can share it.
package assign

import (
	"fmt"
	"strings"
	"time"
)

// Threshold is how long after an assignment a user is considered overdue.
const Threshold = 30 * time.Hour

const UnassignedText = "Not assigned yet"

type Status string

const (
	StatusUnassigned Status = "unassigned"
	StatusOverdue    Status = "overdue"
	StatusOnTime     Status = "onTime"
)

var displayZone = loadDisplayZone()

func loadDisplayZone() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")

	if err != nil {
		// containers without tzdata still get a deterministic rendering
		return time.FixedZone("IST", 5*3600+30*60)
	}

	return loc
}

// FormatDisplay renders the instant in the fixed dashboard timezone.
func FormatDisplay(t *time.Time) string {
	if t == nil {
		return UnassignedText
	}

	return t.In(displayZone).Format("Mon, 02 Jan 2006, 15:04") + " IST"
}

// IsOverdue reports whether the assignment is strictly older than Threshold.
// A never-assigned user is not overdue.
func IsOverdue(t *time.Time, now time.Time) bool {
	if t == nil {
		return false
	}

	return now.Sub(*t) > Threshold
}

func Classify(t *time.Time, now time.Time) Status {
	if t == nil {
		return StatusUnassigned
	}

	if IsOverdue(t, now) {
		return StatusOverdue
	}

	return StatusOnTime
}

// RemainingText renders the time left until the threshold as "{h}h {m}m",
// with a leading "-" once the threshold has passed.
func RemainingText(t time.Time, now time.Time) string {
	remaining := Threshold - now.Sub(t)

	sign := ""

	if remaining < 0 {
		sign = "-"
		remaining = -remaining
	}

	hours := int(remaining / time.Hour)
	minutes := int((remaining % time.Hour) / time.Minute)

	return fmt.Sprintf("%s%dh %dm", sign, hours, minutes)
}

// manualLayouts covers RFC3339 plus the zoneless forms an HTML
// datetime-local input produces. Zoneless input is taken as UTC.
var manualLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func ParseManualInput(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	for _, layout := range manualLayouts {
		t, err := time.Parse(layout, s)

		if err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized datetime %q", s)
}

func IsValidManualInput(s string) bool {
	_, err := ParseManualInput(s)

	return err == nil
}
