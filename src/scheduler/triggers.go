package scheduler

import (
	"fmt"
	"time"
)

// Trigger is one recurring wall-clock condition. Due reports whether the
// trigger's instant for the current period has been reached; PeriodKey
// identifies that period so a fire can be recorded exactly once per key.
type Trigger interface {
	Name() string
	Due(now time.Time) bool
	PeriodKey(now time.Time) string
}

// WeeklyTrigger fires on the configured weekday once the configured time
// of day has passed. Level-triggered: any poll later the same day still
// fires if the period has not been recorded yet.
type WeeklyTrigger struct {
	Weekday time.Weekday
	Hour    int
	Minute  int
}

func (t WeeklyTrigger) Name() string { return "weekly" }

func (t WeeklyTrigger) Due(now time.Time) bool {
	if now.Weekday() != t.Weekday {
		return false
	}
	if now.Hour() != t.Hour {
		return now.Hour() > t.Hour
	}
	return now.Minute() >= t.Minute
}

func (t WeeklyTrigger) PeriodKey(now time.Time) string {
	year, week := now.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// MonthlyTrigger fires on the configured day of the month once the
// configured hour has been reached.
type MonthlyTrigger struct {
	Day  int
	Hour int
}

func (t MonthlyTrigger) Name() string { return "monthly" }

func (t MonthlyTrigger) Due(now time.Time) bool {
	return now.Day() == t.Day && now.Hour() >= t.Hour
}

func (t MonthlyTrigger) PeriodKey(now time.Time) string {
	return now.Format("2006-01")
}
