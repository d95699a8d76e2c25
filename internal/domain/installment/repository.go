package installment

import (
	"context"
	"time"
)

type Repository interface {
	CreateBatch(ctx context.Context, items []Installment) error
	GetByInstallmentID(ctx context.Context, installmentID string) (*Installment, error)
	ListByLoan(ctx context.Context, loanID uint64) ([]Installment, error)
	// Transition is a compare-and-set on status: it only updates the row when it
	// is still in `from`, and reports whether it did.
	Transition(ctx context.Context, id uint64, from, to Status, paidAt *time.Time) (bool, error)
	CountNotPaid(ctx context.Context, loanID uint64) (int64, error)
}
