package loan

import (
	"context"
	"sort"
	"time"

	"flexemi-backend/internal/domain/errs"
	"flexemi-backend/internal/domain/installment"
	"flexemi-backend/internal/domain/loan"
	"flexemi-backend/internal/domain/user"
	"flexemi-backend/pkg/calendar"

	"github.com/shopspring/decimal"
)

const upcomingLimit = 5

func overdue(it *installment.Installment, today time.Time) bool {
	return it.Status == installment.StatusOverdue ||
		(it.Status == installment.StatusPending && it.PastDue(today))
}

// LenderSummary computes the lender dashboard as of now. Totals cover every
// loan; month figures, overdue and upcoming skip archived loans.
func (u *Usecase) LenderSummary(ctx context.Context, actor user.Actor, now time.Time) (*SummaryDTO, error) {
	if !actor.Is(user.RoleLender) {
		return nil, errs.ErrUnauthorized
	}
	fetch := func() ([]loan.Loan, error) { return u.loans.ListByLender(ctx, actor.UserID) }
	loans, err := fetch()
	if err != nil {
		return nil, err
	}
	if loans, err = u.swept(ctx, now, loans, fetch); err != nil {
		return nil, err
	}

	today := calendar.Date(now, u.loc)
	out := &SummaryDTO{
		MonthExpected: decimal.Zero,
		MonthReceived: decimal.Zero,
		MonthPending:  decimal.Zero,
		TotalOverdue:  decimal.Zero,
		TotalLent:     decimal.Zero,
		Upcoming:      []UpcomingDTO{},
	}
	borrowers := make(map[string]struct{})
	var open []UpcomingDTO
	for i := range loans {
		l := &loans[i]
		out.TotalLent = out.TotalLent.Add(l.Principal)
		if l.Status == loan.StatusActive {
			out.ActiveLoans++
		}
		borrowers[l.BorrowerID] = struct{}{}
		if l.Archived {
			continue
		}
		for j := range l.Installments {
			it := &l.Installments[j]
			if calendar.SameMonth(it.DueDate, today) {
				out.MonthExpected = out.MonthExpected.Add(it.Amount)
				if it.Status != installment.StatusPaid {
					out.MonthPending = out.MonthPending.Add(it.Amount)
				}
			}
			if it.Status == installment.StatusPaid && it.PaidAt != nil &&
				calendar.SameMonth(calendar.Date(*it.PaidAt, u.loc), today) {
				out.MonthReceived = out.MonthReceived.Add(it.Amount)
			}
			late := overdue(it, today)
			if late {
				out.TotalOverdue = out.TotalOverdue.Add(it.Amount)
			}
			if it.Status != installment.StatusPaid {
				borrower := ""
				if l.Borrower != nil {
					borrower = l.Borrower.DisplayName()
				}
				open = append(open, UpcomingDTO{
					InstallmentID: it.InstallmentID,
					LoanID:        l.LoanID,
					LoanName:      l.DisplayName(),
					BorrowerName:  borrower,
					Amount:        it.Amount,
					DueDate:       calendar.Format(it.DueDate),
					Status:        it.Status,
					Overdue:       late,
				})
			}
		}
	}
	out.Borrowers = len(borrowers)

	// YYYY-MM-DD sorts chronologically
	sort.SliceStable(open, func(i, j int) bool { return open[i].DueDate < open[j].DueDate })
	if len(open) > upcomingLimit {
		open = open[:upcomingLimit]
	}
	out.Upcoming = append(out.Upcoming, open...)
	return out, nil
}
