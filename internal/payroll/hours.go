package payroll

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// LogEntry is the slice of a time log needed for hours computation.
type LogEntry struct {
	Type string // enum.TimeLogClockIn / enum.TimeLogClockOut
	At   time.Time
}

// HoursSummary is the system-calculated side of a pay run.
type HoursSummary struct {
	TotalHours    decimal.Decimal
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	// OpenSession is true when the last clockIn has no matching clockOut.
	// Its hours are excluded; the shift is still running.
	OpenSession bool
}

const clockIn = "clockIn"

// PairLogs pairs one staff member's clock events chronologically per calendar
// day and sums worked durations. Hours beyond 8 within a single day count as
// overtime. Dangling clockOuts are dropped; a trailing unmatched clockIn marks
// an active session.
func PairLogs(logs []LogEntry) HoursSummary {
	sorted := make([]LogEntry, len(logs))
	copy(sorted, logs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })

	perDay := make(map[string]time.Duration)
	var dayKeys []string
	var sum HoursSummary

	var open *LogEntry
	for i := range sorted {
		e := sorted[i]
		if e.Type == clockIn {
			// A second clockIn abandons the previous unclosed one.
			open = &sorted[i]
			continue
		}
		if open == nil {
			continue // clockOut with no open session
		}
		day := open.At.Format("2006-01-02")
		if _, seen := perDay[day]; !seen {
			dayKeys = append(dayKeys, day)
		}
		perDay[day] += e.At.Sub(open.At)
		open = nil
	}
	sum.OpenSession = open != nil

	total := decimal.Zero
	regular := decimal.Zero
	overtime := decimal.Zero
	for _, day := range dayKeys {
		hours := decimal.NewFromFloat(perDay[day].Hours())
		total = total.Add(hours)
		if hours.GreaterThan(hoursPerDay) {
			regular = regular.Add(hoursPerDay)
			overtime = overtime.Add(hours.Sub(hoursPerDay))
		} else {
			regular = regular.Add(hours)
		}
	}

	sum.TotalHours = total
	sum.RegularHours = regular
	sum.OvertimeHours = overtime
	return sum
}
