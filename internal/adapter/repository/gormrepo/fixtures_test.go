package gormrepo

import (
	"context"
	"testing"
	"time"

	"flexemi-backend/internal/domain/amortization"
	instDomain "flexemi-backend/internal/domain/installment"
	loanDomain "flexemi-backend/internal/domain/loan"
	userDomain "flexemi-backend/internal/domain/user"
	"flexemi-backend/internal/testutil/testdb"
	"flexemi-backend/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, db *gorm.DB, email string, role userDomain.Role) *userDomain.User {
	t.Helper()
	u := &userDomain.User{UserID: id.NewID32(), Email: email, Name: email, Role: role, PasswordHash: "x"}
	if err := NewUserRepository(db).Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func makeLoan(lender, borrower *userDomain.User) *loanDomain.Loan {
	return &loanDomain.Loan{
		LoanID:       id.NewID32(),
		LenderID:     lender.UserID,
		BorrowerID:   borrower.UserID,
		Principal:    decimal.NewFromInt(12000),
		InterestRate: decimal.Zero,
		Tenure:       3,
		StartDate:    start,
		LateFee:      loanDomain.DefaultLateFee,
		Status:       loanDomain.StatusActive,
	}
}

// seedLoan writes a loan with its schedule; installments come back ordered by due date.
func seedLoan(t *testing.T, db *gorm.DB) (*loanDomain.Loan, []instDomain.Installment) {
	t.Helper()
	ctx := context.Background()
	lender := seedUser(t, db, id.NewSecret()+"@lender.test", userDomain.RoleLender)
	borrower := seedUser(t, db, id.NewSecret()+"@borrower.test", userDomain.RoleBorrower)

	l := makeLoan(lender, borrower)
	if err := NewLoanRepository(db).Create(ctx, l); err != nil {
		t.Fatalf("seed loan: %v", err)
	}
	sched, err := amortization.Compute(l.Principal, l.InterestRate, l.Tenure, l.StartDate)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	items := sched.Installments(l.ID, id.NewID32)
	if err := NewInstallmentRepository(db).CreateBatch(ctx, items); err != nil {
		t.Fatalf("seed installments: %v", err)
	}
	got, err := NewInstallmentRepository(db).ListByLoan(ctx, l.ID)
	if err != nil {
		t.Fatalf("list installments: %v", err)
	}
	return l, got
}

func openTestDB(t *testing.T) *gorm.DB { return testdb.Open(t) }
