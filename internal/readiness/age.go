package readiness

import (
	"fmt"
	"time"
)

// dateFormats are the accepted document date encodings: bare calendar dates
// and full RFC 3339 timestamps.
var dateFormats = []string{"2006-01-02", time.RFC3339}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// midnight truncates t to its own calendar date at UTC midnight, so that
// day differences are calendar-day subtraction rather than 24h buckets.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// wholeDays returns the calendar-day difference to − from.
func wholeDays(from, to time.Time) int {
	return int(midnight(to).Sub(midnight(from)).Hours() / 24)
}

// DocumentAge returns the document's age in whole days relative to now, or
// nil when the date is empty or unparsable. The result is negative for
// future dates; classifiers decide what to do with that.
func DocumentAge(date string, now time.Time) *int {
	if date == "" {
		return nil
	}
	t, ok := parseDate(date)
	if !ok {
		return nil
	}
	d := wholeDays(t, now)
	return &d
}

// DaysUntil returns target − now in whole days, or nil when the date is
// empty or unparsable. Negative means the target has passed.
func DaysUntil(date string, now time.Time) *int {
	if date == "" {
		return nil
	}
	t, ok := parseDate(date)
	if !ok {
		return nil
	}
	d := wholeDays(now, t)
	return &d
}

// FormatAge renders an age for display: "Today", "1 day", "N days" under a
// month, then months and remainder days ("1 month", "2mo 5d").
func FormatAge(age *int) string {
	if age == nil || *age < 0 {
		return "N/A"
	}
	switch n := *age; {
	case n == 0:
		return "Today"
	case n == 1:
		return "1 day"
	case n < 30:
		return fmt.Sprintf("%d days", n)
	default:
		months, days := n/30, n%30
		if days == 0 {
			if months == 1 {
				return "1 month"
			}
			return fmt.Sprintf("%d months", months)
		}
		return fmt.Sprintf("%dmo %dd", months, days)
	}
}
