package uow

import (
	"context"

	"flexemi-backend/internal/domain/charge"
	"flexemi-backend/internal/domain/installment"
	"flexemi-backend/internal/domain/loan"
	"flexemi-backend/internal/domain/user"
)

// Repos are bound to the transaction they were handed out by.
type Repos struct {
	Users        user.Repository
	Loans        loan.Repository
	Installments installment.Repository
	Charges      charge.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the loan row first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
