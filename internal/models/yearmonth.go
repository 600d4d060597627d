package models

import (
	"fmt"
	"regexp"
	"time"
)

// YearMonth identifies one monthly ledger document, format YYYY-MM.
type YearMonth string

var yearMonthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Validate checks the YYYY-MM format
func (ym YearMonth) Validate() error {
	if !yearMonthPattern.MatchString(string(ym)) {
		return fmt.Errorf("invalid year-month %q, want YYYY-MM", string(ym))
	}
	return nil
}

// Time returns midnight on the first day of the month, UTC
func (ym YearMonth) Time() (time.Time, error) {
	if err := ym.Validate(); err != nil {
		return time.Time{}, err
	}
	return time.Parse("2006-01", string(ym))
}

// YearMonthOf derives the key for the month containing t
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth(t.Format("2006-01"))
}

// PeriodKey addresses one of the two halves of a monthly ledger
type PeriodKey string

const (
	Period1 PeriodKey = "q1"
	Period2 PeriodKey = "q2"
)

// ValidPeriod reports whether k is q1 or q2
func ValidPeriod(k PeriodKey) bool {
	return k == Period1 || k == Period2
}

// PeriodForDay maps a calendar day to its half-month period: days 1-15
// fall in the first period, the rest in the second.
func PeriodForDay(day int) PeriodKey {
	if day <= 15 {
		return Period1
	}
	return Period2
}
