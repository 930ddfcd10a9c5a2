// Package week implements Monday-anchored week keys. A week key is the ISO
// date (YYYY-MM-DD) of the Monday that starts the week; it is the sole
// identity for a grid column.
package week

import (
	"fmt"
	"time"
)

const Layout = "2006-01-02"

// Monday returns the Monday of t's week, truncated to midnight UTC.
func Monday(t time.Time) time.Time {
	t = t.UTC()
	wd := int(t.Weekday())
	// time.Sunday is 0; shift so Monday is the week start.
	if wd == 0 {
		wd = 7
	}
	t = t.AddDate(0, 0, 1-wd)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Key formats t's Monday as a week key.
func Key(t time.Time) string {
	return Monday(t).Format(Layout)
}

// Parse validates a week key and returns its Monday. Keys naming a day other
// than Monday are rejected.
func Parse(key string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, key, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid week key %q: %w", key, err)
	}
	if t.Weekday() != time.Monday {
		return time.Time{}, fmt.Errorf("week key %q is not a Monday", key)
	}
	return t, nil
}

// Next returns the key of the week after key. Invalid keys return "".
func Next(key string) string {
	t, err := Parse(key)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, 7).Format(Layout)
}

// Prev returns the key of the week before key. Invalid keys return "".
func Prev(key string) string {
	t, err := Parse(key)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -7).Format(Layout)
}

// Horizon returns n consecutive week keys starting at the week containing
// start.
func Horizon(start time.Time, n int) []string {
	if n <= 0 {
		return nil
	}
	keys := make([]string, 0, n)
	t := Monday(start)
	for i := 0; i < n; i++ {
		keys = append(keys, t.Format(Layout))
		t = t.AddDate(0, 0, 7)
	}
	return keys
}
