package types

import (
	"errors"
	"time"
)

// PeriodType identifies the date range a budget covers. Half-month
// periods ("quincenas") are the smallest unit; longer periods are
// prorated into them.
type PeriodType string

const (
	PeriodHalfMonth1 PeriodType = "half-month-1" // Day 1 to day 15
	PeriodHalfMonth2 PeriodType = "half-month-2" // Day 16 to the last day of the month
	PeriodMonthly    PeriodType = "monthly"
	PeriodQuarterly  PeriodType = "quarterly"
	PeriodYearly     PeriodType = "yearly"
)

// PeriodTypes is a list of all period types.
var PeriodTypes = []PeriodType{PeriodHalfMonth1, PeriodHalfMonth2, PeriodMonthly, PeriodQuarterly, PeriodYearly}

var (
	ErrUnknownPeriodType = errors.New("the period type is not one of half-month-1, half-month-2, monthly, quarterly, yearly")
	ErrUnknownFrequency  = errors.New("the recurrence frequency is not one of monthly, quarterly, yearly")
)

// Valid reports whether the period type is known.
func (p PeriodType) Valid() bool {
	for _, t := range PeriodTypes {
		if p == t {
			return true
		}
	}

	return false
}

// IsHalfMonth reports whether the period type is one of the two
// half-month types. Half-month budgets are never prorated further.
func (p PeriodType) IsHalfMonth() bool {
	return p == PeriodHalfMonth1 || p == PeriodHalfMonth2
}

// RecurrenceFrequency determines how far a recurring budget's period
// is advanced once it has elapsed.
type RecurrenceFrequency string

const (
	FrequencyMonthly   RecurrenceFrequency = "monthly"
	FrequencyQuarterly RecurrenceFrequency = "quarterly"
	FrequencyYearly    RecurrenceFrequency = "yearly"
)

// Valid reports whether the recurrence frequency is known.
func (f RecurrenceFrequency) Valid() bool {
	return f == FrequencyMonthly || f == FrequencyQuarterly || f == FrequencyYearly
}

// Period is a date range with inclusive start and end.
type Period struct {
	Start Date
	End   Date
}

// ComputePeriod returns the canonical period of the given type that
// contains the reference date.
//
// Quarters are fixed calendar quarters, so a quarter never spans a
// year boundary.
func ComputePeriod(periodType PeriodType, reference time.Time) (Period, error) {
	year, month, _ := reference.In(time.UTC).Date()

	switch periodType {
	case PeriodHalfMonth1:
		return Period{
			Start: NewDate(year, month, 1),
			End:   NewDate(year, month, 15),
		}, nil
	case PeriodHalfMonth2:
		return Period{
			Start: NewDate(year, month, 16),
			End:   lastDayOfMonth(year, month),
		}, nil
	case PeriodMonthly:
		return Period{
			Start: NewDate(year, month, 1),
			End:   lastDayOfMonth(year, month),
		}, nil
	case PeriodQuarterly:
		first := quarterFirstMonth(month)
		return Period{
			Start: NewDate(year, first, 1),
			End:   lastDayOfMonth(year, first+2),
		}, nil
	case PeriodYearly:
		return Period{
			Start: NewDate(year, time.January, 1),
			End:   NewDate(year, time.December, 31),
		}, nil
	}

	return Period{}, ErrUnknownPeriodType
}

// Advance shifts both period bounds by the recurrence frequency.
//
// Unlike ComputePeriod this can cross a year boundary, e.g. when a
// monthly budget for December recurs into January.
func (p Period) Advance(frequency RecurrenceFrequency) (Period, error) {
	switch frequency {
	case FrequencyMonthly:
		return Period{Start: p.Start.AddDate(0, 1, 0), End: p.End.AddDate(0, 1, 0)}, nil
	case FrequencyQuarterly:
		return Period{Start: p.Start.AddDate(0, 3, 0), End: p.End.AddDate(0, 3, 0)}, nil
	case FrequencyYearly:
		return Period{Start: p.Start.AddDate(1, 0, 0), End: p.End.AddDate(1, 0, 0)}, nil
	}

	return Period{}, ErrUnknownFrequency
}

// Contains reports whether the time instant falls inside the period.
func (p Period) Contains(t time.Time) bool {
	d := DateOf(t).Time()
	return !d.Before(p.Start.Time()) && !d.After(p.End.Time())
}

// quarterFirstMonth returns the first month of the fixed calendar
// quarter containing the month.
func quarterFirstMonth(month time.Month) time.Month {
	return time.Month((int(month)-1)/3*3 + 1)
}

// lastDayOfMonth relies on the day 0 normalization of the following
// month.
func lastDayOfMonth(year int, month time.Month) Date {
	return DateOf(time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC))
}
