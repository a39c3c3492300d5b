package attendance

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout        = "2006-01-02"
	timeLayout        = "15:04:05"
	shortTimeLayout   = "15:04"
	invalidDateFormat = "date must use YYYY-MM-DD"
	invalidTimeFormat = "time must use HH:MM or HH:MM:SS"
)

// Date is a calendar day without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(value string) (Date, error) {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return Date{}, fmt.Errorf("%s: %w", invalidDateFormat, err)
	}
	return Date{Year: parsed.Year(), Month: parsed.Month(), Day: parsed.Day()}, nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Before reports whether d is an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay parses HH:MM or HH:MM:SS.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	trimmed := strings.TrimSpace(value)
	layout := timeLayout
	if strings.Count(trimmed, ":") == 1 {
		layout = shortTimeLayout
	}
	parsed, err := time.Parse(layout, trimmed)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%s: %w", invalidTimeFormat, err)
	}
	return TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute(), Second: parsed.Second()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Before reports whether t is earlier in the day than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.seconds() < other.seconds()
}

func (t TimeOfDay) seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

// DatePtr is a convenience for building optional dates.
func DatePtr(year int, month time.Month, day int) *Date {
	return &Date{Year: year, Month: month, Day: day}
}

// TimePtr is a convenience for building optional times of day.
func TimePtr(hour, minute, second int) *TimeOfDay {
	return &TimeOfDay{Hour: hour, Minute: minute, Second: second}
}
