package charge

import "context"

type Repository interface {
	Create(ctx context.Context, c *Charge) error
	// CreateIfAbsent inserts c unless a charge with the same (loan, kind, due date)
	// exists, reporting whether a row was written.
	CreateIfAbsent(ctx context.Context, c *Charge) (bool, error)
	ListByLoan(ctx context.Context, loanID uint64) ([]Charge, error)
}
