// Package uowmock provides a function-backed uow.UnitOfWork plus helpers for
// the two shapes tests need: a fixed set of repositories, or a real unit of
// work with some repositories swapped out.
package uowmock

import (
	"context"
	"errors"

	"flexemi-backend/internal/domain/errs"
	"flexemi-backend/internal/domain/loan"
	"flexemi-backend/internal/domain/uow"
)

var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW forwards to its function fields; unset ones return errUnimplemented.
type UoW struct {
	WithinTxFn     func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinLoanTxFn func(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error
}

// Fixed runs every transaction against repos. WithinLoanTx hands out the
// matching loan from loans, or errs.ErrNotFound.
func Fixed(repos uow.Repos, loans ...*loan.Loan) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error { return fn(repos) },
		WithinLoanTxFn: func(_ context.Context, loanID string, fn func(uow.Repos, *loan.Loan) error) error {
			for _, l := range loans {
				if l.LoanID == loanID {
					return fn(repos, l)
				}
			}
			return errs.ErrNotFound
		},
	}
}

// Intercept runs transactions on inner but lets swap replace repositories first,
// e.g. to inject a failing write half way through.
func Intercept(inner uow.UnitOfWork, swap func(uow.Repos) uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(ctx context.Context, fn func(uow.Repos) error) error {
			return inner.WithinTx(ctx, func(r uow.Repos) error { return fn(swap(r)) })
		},
		WithinLoanTxFn: func(ctx context.Context, loanID string, fn func(uow.Repos, *loan.Loan) error) error {
			return inner.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error { return fn(swap(r), l) })
		},
	}
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	if m.WithinLoanTxFn != nil {
		return m.WithinLoanTxFn(ctx, loanID, fn)
	}
	return errUnimplemented
}
