// Package amortization turns a principal, an annual rate and a tenure into a
// fixed monthly installment and its due dates.
package amortization

import (
	"errors"
	"time"

	"flexemi-backend/internal/domain/installment"
	"flexemi-backend/pkg/calendar"

	"github.com/shopspring/decimal"
)

var (
	ErrPrincipal = errors.New("principal must be greater than 0")
	ErrRate      = errors.New("interest rate must not be negative")
	ErrTenure    = errors.New("tenure must be at least one month")

	// the installment would round to 0.00
	ErrAmountTooSmall = errors.New("principal is too small for the tenure")
)

var (
	monthsTimesPercent = decimal.NewFromInt(1200)
	one                = decimal.NewFromInt(1)
)

// divPrecision is the number of decimal places kept before the final
// rounding to currency.
const divPrecision = 16

type Schedule struct {
	Amount   decimal.Decimal
	DueDates []time.Time
}

// Compute builds the schedule. Every installment carries the same amount
// rounded to 2 places; the residual from rounding is not folded into the
// last installment. Due date i is start advanced i months, clamped to the
// end of shorter months.
func Compute(principal, annualRate decimal.Decimal, tenure int, start time.Time) (Schedule, error) {
	switch {
	case !principal.IsPositive():
		return Schedule{}, ErrPrincipal
	case annualRate.IsNegative():
		return Schedule{}, ErrRate
	case tenure < 1:
		return Schedule{}, ErrTenure
	}

	n := decimal.NewFromInt(int64(tenure))
	var amount decimal.Decimal
	if annualRate.IsZero() {
		amount = principal.DivRound(n, divPrecision)
	} else {
		// P * r * (1+r)^n / ((1+r)^n - 1)
		r := annualRate.DivRound(monthsTimesPercent, divPrecision)
		factor := one.Add(r).Pow(n)
		amount = principal.Mul(r).Mul(factor).DivRound(factor.Sub(one), divPrecision)
	}

	amount = amount.Round(2)
	if !amount.IsPositive() {
		return Schedule{}, ErrAmountTooSmall
	}

	due := make([]time.Time, tenure)
	for i := range due {
		due[i] = calendar.AddMonthsClamped(start, i+1)
	}
	return Schedule{Amount: amount, DueDates: due}, nil
}

// Total is what the borrower repays over the whole schedule.
func (s Schedule) Total() decimal.Decimal {
	return s.Amount.Mul(decimal.NewFromInt(int64(len(s.DueDates))))
}

// Installments materializes the schedule as PENDING installments of loanID,
// drawing public identifiers from newID.
func (s Schedule) Installments(loanID uint64, newID func() string) []installment.Installment {
	out := make([]installment.Installment, len(s.DueDates))
	for i, d := range s.DueDates {
		out[i] = installment.Installment{
			InstallmentID: newID(),
			LoanID:        loanID,
			Sequence:      i + 1,
			Amount:        s.Amount,
			DueDate:       d,
			Status:        installment.StatusPending,
		}
	}
	return out
}
