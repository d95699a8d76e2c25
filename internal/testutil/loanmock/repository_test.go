package loanmock

import (
	"context"
	"errors"
	"testing"

	domain "flexemi-backend/internal/domain/loan"
)

func TestRepo_Create(t *testing.T) {
	ctx := context.Background()
	l := &domain.Loan{LoanID: "LN-1"}

	// Uses provided func
	called := false
	wantErr := errors.New("boom")
	m := &Repo{
		CreateFn: func(gotCtx context.Context, got *domain.Loan) error {
			called = true
			if gotCtx != ctx {
				t.Fatalf("Create ctx mismatch")
			}
			if got != l {
				t.Fatalf("Create arg mismatch")
			}
			return wantErr
		},
	}
	if err := m.Create(ctx, l); !errors.Is(err, wantErr) {
		t.Fatalf("Create: want %v, got %v", wantErr, err)
	}
	if !called {
		t.Fatalf("CreateFn not called")
	}

	// Default (nil func) → no-op, nil error
	m = &Repo{}
	if err := m.Create(ctx, l); err != nil {
		t.Fatalf("Create default: want nil, got %v", err)
	}
}

func TestRepo_GetByLoanID(t *testing.T) {
	ctx := context.Background()
	want := &domain.Loan{LoanID: "LN-2"}

	m := &Repo{
		GetByLoanIDFn: func(_ context.Context, loanID string) (*domain.Loan, error) {
			if loanID != "LN-2" {
				t.Fatalf("GetByLoanID loanID mismatch: got %s", loanID)
			}
			return want, nil
		},
	}
	got, err := m.GetByLoanID(ctx, "LN-2")
	if err != nil || got != want {
		t.Fatalf("GetByLoanID: got %+v, %v", got, err)
	}

	// Default (nil func) → context.Canceled
	m = &Repo{}
	got, err = m.GetByLoanID(ctx, "LN-2")
	if err != context.Canceled || got != nil {
		t.Fatalf("GetByLoanID default: got %+v, %v", got, err)
	}
}

func TestRepo_GetByLoanIDForUpdate(t *testing.T) {
	ctx := context.Background()
	want := &domain.Loan{LoanID: "LN-5"}

	m := &Repo{
		GetByLoanIDForUpdateFn: func(context.Context, string) (*domain.Loan, error) { return want, nil },
	}
	if got, err := m.GetByLoanIDForUpdate(ctx, "LN-5"); err != nil || got != want {
		t.Fatalf("GetByLoanIDForUpdate: got %+v, %v", got, err)
	}

	m = &Repo{}
	if _, err := m.GetByLoanIDForUpdate(ctx, "LN-5"); err != context.Canceled {
		t.Fatalf("GetByLoanIDForUpdate default: want context.Canceled, got %v", err)
	}
}

func TestRepo_Defaults(t *testing.T) {
	ctx := context.Background()
	m := &Repo{}
	if err := m.Save(ctx, &domain.Loan{}); err != nil {
		t.Fatalf("Save default: %v", err)
	}
	if _, err := m.GetByID(ctx, 1); err != context.Canceled {
		t.Fatalf("GetByID default: %v", err)
	}
	if _, err := m.ListByLender(ctx, "x"); err != context.Canceled {
		t.Fatalf("ListByLender default: %v", err)
	}
	if _, err := m.ListByBorrower(ctx, "x"); err != context.Canceled {
		t.Fatalf("ListByBorrower default: %v", err)
	}
	if _, err := m.ListActiveLoanIDs(ctx); err != context.Canceled {
		t.Fatalf("ListActiveLoanIDs default: %v", err)
	}
	if _, _, err := m.Totals(ctx); err != context.Canceled {
		t.Fatalf("Totals default: %v", err)
	}
}
