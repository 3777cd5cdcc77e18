package pricing

import (
	"fmt"
	"time"
)

// All business date arithmetic happens in WIB (UTC+7). Jakarta has no DST,
// so a fixed zone keeps the computation deterministic without tzdata.
var businessZone = time.FixedZone("WIB", 7*60*60)

const (
	dateLayout = "2006-01-02"
	dayMillis  = 24 * 60 * 60 * 1000
)

func parseDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, date, businessZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t, nil
}

// StartOfDay parses a calendar date and returns 00:00:00.000 local.
func StartOfDay(date string) (time.Time, error) {
	return parseDate(date)
}

// EndOfDay parses a calendar date and returns 23:59:59.999 local.
func EndOfDay(date string) (time.Time, error) {
	t, err := parseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	return endOfDay(t), nil
}

func endOfDay(startOfDay time.Time) time.Time {
	return startOfDay.Add(dayMillis*time.Millisecond - time.Millisecond)
}

// AddDays returns the expiry instant of a days-long validity window that
// counts the start date as day 1: the end of the calendar date days-1 days
// after the given one. days=1 yields a same-day expiry.
func AddDays(date string, days int) (time.Time, error) {
	t, err := parseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	return endOfDay(t.AddDate(0, 0, days-1)), nil
}

// RemainingDays reports ceil((expiry-now)/24h) in whole days. Zero means the
// window expires today; a negative value means it already expired.
func RemainingDays(now, expiry time.Time) int {
	diff := expiry.Sub(now).Milliseconds()
	if diff > 0 {
		return int((diff + dayMillis - 1) / dayMillis)
	}
	// integer division truncates toward zero, which is ceil for negatives
	return int(diff / dayMillis)
}

// FormatDate renders an instant as a calendar date in the business timezone.
func FormatDate(t time.Time) string {
	return t.In(businessZone).Format(dateLayout)
}
