// Package recurrence expands recurring rehearsal requests into concrete
// calendar days.
package recurrence

import (
	"errors"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Frequency represents supported recurrence intervals.
type Frequency int

const (
	// FrequencyUnspecified indicates the frequency is not set.
	FrequencyUnspecified Frequency = iota
	// FrequencyWeekly generates an occurrence every 7 days.
	FrequencyWeekly
	// FrequencyBiweekly generates an occurrence every 14 days.
	FrequencyBiweekly
)

// ErrInvalidFrequency indicates the recurrence frequency is not supported.
var ErrInvalidFrequency = errors.New("recurrence: invalid frequency")

// ErrInvalidDuration indicates the series duration is not positive.
var ErrInvalidDuration = errors.New("recurrence: duration must be at least one month")

// ErrInvalidWeekday indicates an unrecognized weekday name.
var ErrInvalidWeekday = errors.New("recurrence: invalid weekday")

// ParseFrequency maps a request string onto a Frequency.
func ParseFrequency(value string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "weekly":
		return FrequencyWeekly, nil
	case "biweekly":
		return FrequencyBiweekly, nil
	default:
		return FrequencyUnspecified, ErrInvalidFrequency
	}
}

// ParseWeekday maps a case-insensitive weekday name onto time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	default:
		return time.Sunday, ErrInvalidWeekday
	}
}

// Rule describes one recurring creation request.
type Rule struct {
	// Start is the anchor calendar day.
	Start time.Time
	// Frequency selects the 7 or 14 day step.
	Frequency Frequency
	// DurationMonths bounds the series: each month contributes a four week
	// window starting at the anchor day.
	DurationMonths int
	// Weekday, when set, advances Start forward to the next matching weekday
	// (zero days if it already matches) before expansion.
	Weekday *time.Weekday
}

// Engine expands recurrence rules into calendar days.
type Engine struct{}

// NewEngine constructs an Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Expand produces every candidate day of the series, normalized to midnight
// UTC, ordered ascending. One month of recurrence covers four calendar weeks,
// so a weekly series with DurationMonths=1 yields exactly four occurrences
// starting at the anchor day.
func (e *Engine) Expand(rule Rule) ([]time.Time, error) {
	if rule.DurationMonths <= 0 {
		return nil, ErrInvalidDuration
	}

	var interval int
	switch rule.Frequency {
	case FrequencyWeekly:
		interval = 1
	case FrequencyBiweekly:
		interval = 2
	default:
		return nil, ErrInvalidFrequency
	}

	start := normalizeDay(rule.Start)
	if rule.Weekday != nil {
		start = NextWeekday(start, *rule.Weekday)
	}
	// Inclusive final day of the window: four weeks per month from the
	// (possibly weekday-advanced) anchor.
	until := start.AddDate(0, 0, 28*rule.DurationMonths-1)

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.WEEKLY,
		Interval: interval,
		Dtstart:  start,
		Until:    until,
	})
	if err != nil {
		return nil, err
	}

	return r.All(), nil
}

// NextWeekday returns the first day on or after date that falls on the given
// weekday.
func NextWeekday(date time.Time, day time.Weekday) time.Time {
	offset := (int(day) - int(date.Weekday()) + 7) % 7
	return date.AddDate(0, 0, offset)
}

func normalizeDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
