package report

import (
	"time"
)

// Period is the reporting interval printed on the court report
type Period struct {
	Start time.Time
	End   time.Time
}

// ReportingPeriod returns the one-year cycle that ends with reportMonth.
// Start is the first day of reportMonth last year; End is the day before the
// first day of reportMonth this year. This holds whether or not that day has
// already passed.
// TODO: confirm with the court-filing owners whether a report month still
// ahead of today should yield the cycle ending last year instead.
func ReportingPeriod(reportMonth int, today time.Time) Period {
	anchor := time.Date(today.Year(), time.Month(reportMonth), 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Start: time.Date(today.Year()-1, time.Month(reportMonth), 1, 0, 0, 0, 0, time.UTC),
		End:   anchor.AddDate(0, 0, -1),
	}
}

// dateOnly keeps the calendar date of t as UTC midnight.
// Spreadsheet serial dates have no zone; a non-UTC midnight would shift a day.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
