package chargemock

import (
	"context"

	domain "flexemi-backend/internal/domain/charge"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn         func(ctx context.Context, c *domain.Charge) error
	CreateIfAbsentFn func(ctx context.Context, c *domain.Charge) (bool, error)
	ListByLoanFn     func(ctx context.Context, loanID uint64) ([]domain.Charge, error)
}

func (m *Repo) Create(ctx context.Context, c *domain.Charge) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, c)
	}
	return nil
}

func (m *Repo) CreateIfAbsent(ctx context.Context, c *domain.Charge) (bool, error) {
	if m.CreateIfAbsentFn != nil {
		return m.CreateIfAbsentFn(ctx, c)
	}
	return true, nil
}

func (m *Repo) ListByLoan(ctx context.Context, loanID uint64) ([]domain.Charge, error) {
	if m.ListByLoanFn != nil {
		return m.ListByLoanFn(ctx, loanID)
	}
	return nil, context.Canceled
}
