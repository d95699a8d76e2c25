package loan

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	Save(ctx context.Context, l *Loan) error
	// GetByLoanID loads the loan with parties, installments (due-date order) and charges.
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// GetByID loads the loan with its parties only.
	GetByID(ctx context.Context, id uint64) (*Loan, error)
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	ListByLender(ctx context.Context, lenderID string) ([]Loan, error)
	ListByBorrower(ctx context.Context, borrowerID string) ([]Loan, error)
	ListActiveLoanIDs(ctx context.Context) ([]string, error)
	Totals(ctx context.Context) (count int64, principal decimal.Decimal, err error)
}
