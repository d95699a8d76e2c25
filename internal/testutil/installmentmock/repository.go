package installmentmock

import (
	"context"
	"time"

	domain "flexemi-backend/internal/domain/installment"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateBatchFn        func(ctx context.Context, items []domain.Installment) error
	GetByInstallmentIDFn func(ctx context.Context, installmentID string) (*domain.Installment, error)
	ListByLoanFn         func(ctx context.Context, loanID uint64) ([]domain.Installment, error)
	TransitionFn         func(ctx context.Context, id uint64, from, to domain.Status, paidAt *time.Time) (bool, error)
	CountNotPaidFn       func(ctx context.Context, loanID uint64) (int64, error)
}

func (m *Repo) CreateBatch(ctx context.Context, items []domain.Installment) error {
	if m.CreateBatchFn != nil {
		return m.CreateBatchFn(ctx, items)
	}
	return nil
}

func (m *Repo) GetByInstallmentID(ctx context.Context, installmentID string) (*domain.Installment, error) {
	if m.GetByInstallmentIDFn != nil {
		return m.GetByInstallmentIDFn(ctx, installmentID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByLoan(ctx context.Context, loanID uint64) ([]domain.Installment, error) {
	if m.ListByLoanFn != nil {
		return m.ListByLoanFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) Transition(ctx context.Context, id uint64, from, to domain.Status, paidAt *time.Time) (bool, error) {
	if m.TransitionFn != nil {
		return m.TransitionFn(ctx, id, from, to, paidAt)
	}
	return false, context.Canceled
}

func (m *Repo) CountNotPaid(ctx context.Context, loanID uint64) (int64, error) {
	if m.CountNotPaidFn != nil {
		return m.CountNotPaidFn(ctx, loanID)
	}
	return 0, context.Canceled
}
