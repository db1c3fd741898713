// Package payroll computes pay from logged hours and a daily rate. All
// arithmetic is decimal; intermediate components keep full precision for the
// breakdown display and only the final net pay is rounded.
package payroll

import "github.com/shopspring/decimal"

// A standard working day is 8 paid hours; the hourly rate derives from it.
var hoursPerDay = decimal.NewFromInt(8)

var (
	overtimeMultiplier = decimal.NewFromFloat(1.25)
	minutesPerHour     = decimal.NewFromInt(60)
)

// Inputs are the resolved figures a pay run is computed from. Malformed or
// negative values are neutralized to zero rather than propagated: one bad
// record must not crash a payroll generation.
type Inputs struct {
	DailyRate     decimal.Decimal
	TotalHours    decimal.Decimal
	OvertimeHours decimal.Decimal
	Allowances    decimal.Decimal
	LateMinutes   decimal.Decimal
	Absences      int32
}

// Override carries explicit manual corrections for incomplete time-log data.
// Fields are pointers so an intentional zero-hour override is distinguishable
// from "no override provided".
type Override struct {
	TotalHours    *decimal.Decimal
	OvertimeHours *decimal.Decimal
}

// Breakdown is the full pay computation, component by component.
type Breakdown struct {
	HourlyRate       decimal.Decimal
	RegularHours     decimal.Decimal
	RegularPay       decimal.Decimal
	OvertimePay      decimal.Decimal
	Allowances       decimal.Decimal
	LateDeduction    decimal.Decimal
	AbsenceDeduction decimal.Decimal
	NetPay           decimal.Decimal // rounded to 2 decimals, the only rounded field
}

// Resolve merges computed hours with a manual override. An override field
// that is present wins even when it is zero; absent fields keep the
// system-calculated value.
func Resolve(total, overtime decimal.Decimal, ov *Override) (decimal.Decimal, decimal.Decimal) {
	if ov != nil {
		if ov.TotalHours != nil {
			total = *ov.TotalHours
		}
		if ov.OvertimeHours != nil {
			overtime = *ov.OvertimeHours
		}
	}
	return total, overtime
}

// Compute turns Inputs into a pay Breakdown:
//
//	hourlyRate  = dailyRate / 8
//	regularPay  = max(0, totalHours - overtimeHours) * hourlyRate
//	overtimePay = overtimeHours * hourlyRate * 1.25
//	net         = regularPay + overtimePay + allowances
//	              - lateMinutes*(hourlyRate/60) - absences*dailyRate
func Compute(in Inputs) Breakdown {
	in = sanitize(in)

	hourlyRate := in.DailyRate.Div(hoursPerDay)

	regularHours := in.TotalHours.Sub(in.OvertimeHours)
	if regularHours.IsNegative() {
		regularHours = decimal.Zero
	}

	regularPay := regularHours.Mul(hourlyRate)
	overtimePay := in.OvertimeHours.Mul(hourlyRate).Mul(overtimeMultiplier)
	lateDeduction := in.LateMinutes.Mul(hourlyRate.Div(minutesPerHour))
	absenceDeduction := decimal.NewFromInt32(in.Absences).Mul(in.DailyRate)

	net := regularPay.Add(overtimePay).Add(in.Allowances).
		Sub(lateDeduction).Sub(absenceDeduction)

	return Breakdown{
		HourlyRate:       hourlyRate,
		RegularHours:     regularHours,
		RegularPay:       regularPay,
		OvertimePay:      overtimePay,
		Allowances:       in.Allowances,
		LateDeduction:    lateDeduction,
		AbsenceDeduction: absenceDeduction,
		NetPay:           net.Round(2),
	}
}

// sanitize zeroes out nonsensical figures instead of failing.
func sanitize(in Inputs) Inputs {
	if in.DailyRate.IsNegative() {
		in.DailyRate = decimal.Zero
	}
	if in.TotalHours.IsNegative() {
		in.TotalHours = decimal.Zero
	}
	if in.OvertimeHours.IsNegative() {
		in.OvertimeHours = decimal.Zero
	}
	if in.OvertimeHours.GreaterThan(in.TotalHours) {
		in.OvertimeHours = in.TotalHours
	}
	if in.Allowances.IsNegative() {
		in.Allowances = decimal.Zero
	}
	if in.LateMinutes.IsNegative() {
		in.LateMinutes = decimal.Zero
	}
	if in.Absences < 0 {
		in.Absences = 0
	}
	return in
}
