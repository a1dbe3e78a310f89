// Package datetime handles the wire formats used for workouts (DD-MM-YYYY
// dates and 24h HH:MM times) and the single timezone every comparison runs in.
package datetime

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	DateLayout = "02-01-2006"
	TimeLayout = "15:04"

	FirstSlotHour = 8
	LastSlotHour  = 20
)

var (
	ErrInvalidDate = errors.New("date must be in DD-MM-YYYY format")
	ErrInvalidTime = errors.New("time must be in 24-hour HH:MM format")
)

var (
	dateRe = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	timeRe = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)
)

// ParseDate parses a DD-MM-YYYY string as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if !dateRe.MatchString(s) {
		return time.Time{}, ErrInvalidDate
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		// 31-02-2030 and friends
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, s)
	}
	return t, nil
}

// ParseClock returns hour and minute of an HH:MM (or H:MM) string.
func ParseClock(s string) (hour, minute int, err error) {
	m := timeRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, ErrInvalidTime
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	return hour, minute, nil
}

// NormalizeTime rewrites a valid time as zero-padded HH:MM.
func NormalizeTime(s string) (string, error) {
	h, m, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", h, m), nil
}

// Combine returns the instant of date+time in loc.
func Combine(date, clock string, loc *time.Location) (time.Time, error) {
	day, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	h, m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, loc), nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays shifts a DD-MM-YYYY date by n calendar days (n may be negative).
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date, time.UTC)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// DaysBetween counts calendar days from a to b. DST shifts do not matter
// because both ends are projected onto UTC dates first.
func DaysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// SlotTemplate is the fixed daily schedule: one slot per hour 08:00..20:00.
func SlotTemplate() []string {
	slots := make([]string, 0, LastSlotHour-FirstSlotHour+1)
	for h := FirstSlotHour; h <= LastSlotHour; h++ {
		slots = append(slots, fmt.Sprintf("%02d:00", h))
	}
	return slots
}

func IsTemplateSlot(clock string) bool {
	h, m, err := ParseClock(clock)
	if err != nil {
		return false
	}
	return m == 0 && h >= FirstSlotHour && h <= LastSlotHour
}
