package loan

import (
	"time"

	"flexemi-backend/internal/domain/charge"
	"flexemi-backend/internal/domain/installment"
	"flexemi-backend/internal/domain/loan"
	"flexemi-backend/internal/domain/user"
	"flexemi-backend/internal/infrastructure/export"
	"flexemi-backend/pkg/calendar"

	"github.com/shopspring/decimal"
)

func toParty(u *user.User) PartyDTO {
	if u == nil {
		return PartyDTO{}
	}
	return PartyDTO{UserID: u.UserID, Name: u.DisplayName(), Email: u.Email}
}

func toChargeDTO(c *charge.Charge) ChargeDTO {
	out := ChargeDTO{
		ChargeID:  c.ChargeID,
		Kind:      c.Kind,
		Amount:    c.Amount,
		Reason:    c.Reason,
		ChargedOn: calendar.Format(c.ChargedOn),
	}
	if c.DueDate != nil {
		out.DueDate = calendar.Format(*c.DueDate)
	}
	return out
}

func emi(l *loan.Loan) decimal.Decimal {
	if len(l.Installments) > 0 {
		return l.Installments[0].Amount
	}
	return decimal.Zero
}

func toDTO(l *loan.Loan) LoanDTO {
	fees := charge.LateFeesByDueDate(l.Charges)
	out := LoanDTO{
		LoanID:       l.LoanID,
		Name:         l.DisplayName(),
		Lender:       toParty(l.Lender),
		Borrower:     toParty(l.Borrower),
		Principal:    l.Principal,
		InterestRate: l.InterestRate,
		Tenure:       l.Tenure,
		StartDate:    calendar.Format(l.StartDate),
		EMI:          emi(l),
		LateFee:      l.LateFee,
		Status:       l.Status,
		Archived:     l.Archived,
		AmountPaid:   decimal.Zero,
		AmountDue:    decimal.Zero,
		TotalCharges: decimal.Zero,
		CreatedAt:    l.CreatedAt,
		Installments: make([]InstallmentDTO, 0, len(l.Installments)),
		Charges:      make([]ChargeDTO, 0, len(l.Charges)),
	}
	for _, it := range l.Installments {
		due := calendar.Format(it.DueDate)
		out.Installments = append(out.Installments, InstallmentDTO{
			InstallmentID: it.InstallmentID,
			Sequence:      it.Sequence,
			Amount:        it.Amount,
			DueDate:       due,
			Status:        it.Status,
			PaidAt:        it.PaidAt,
			LateFee:       fees[due],
		})
		if it.Status == installment.StatusPaid {
			out.PaidCount++
			out.AmountPaid = out.AmountPaid.Add(it.Amount)
		} else {
			out.AmountDue = out.AmountDue.Add(it.Amount)
		}
	}
	for i := range l.Charges {
		out.Charges = append(out.Charges, toChargeDTO(&l.Charges[i]))
		out.TotalCharges = out.TotalCharges.Add(l.Charges[i].Amount)
	}
	if l.Tenure > 0 {
		out.Progress = int(decimal.NewFromInt(int64(out.PaidCount*100)).
			DivRound(decimal.NewFromInt(int64(l.Tenure)), 0).IntPart())
	}
	return out
}

func renderStatement(l *loan.Loan) ([]byte, error) {
	dto := toDTO(l)
	s := export.Statement{
		LoanID:       dto.LoanID,
		LoanName:     dto.Name,
		Lender:       dto.Lender.Name,
		Borrower:     dto.Borrower.Name,
		Principal:    dto.Principal,
		InterestRate: dto.InterestRate,
		Tenure:       dto.Tenure,
		EMI:          dto.EMI,
		Status:       string(dto.Status),
		Paid:         dto.PaidCount,
	}
	for _, it := range dto.Installments {
		row := export.ScheduleRow{
			Sequence: it.Sequence,
			DueDate:  it.DueDate,
			Amount:   it.Amount,
			Status:   string(it.Status),
			LateFee:  it.LateFee,
		}
		if it.PaidAt != nil {
			row.PaidAt = it.PaidAt.UTC().Format(time.DateOnly)
		}
		s.Rows = append(s.Rows, row)
	}
	for _, c := range dto.Charges {
		s.Charges = append(s.Charges, export.ChargeRow{
			Date:   c.ChargedOn,
			Kind:   string(c.Kind),
			Amount: c.Amount,
			Reason: c.Reason,
		})
	}
	return export.Render(s)
}
