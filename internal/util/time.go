package util

import "time"

// Date and time layouts used for display. Storage always uses RFC3339.
const (
	DateLayout     = "02.01.2006"
	DateTimeLayout = "02.01.2006 15:04"
)

// FormatDate renders a time as a display date, or "—" for zero times.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format(DateLayout)
}

// FormatDateTime renders a time with the time-of-day component.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format(DateTimeLayout)
}

// FormatDatePtr renders an optional time, "—" when nil.
func FormatDatePtr(t *time.Time) string {
	if t == nil {
		return "—"
	}
	return FormatDate(*t)
}

// ParseDate parses a display-format date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
