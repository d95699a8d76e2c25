// Package fixture seeds users and loans into a migrated SQLite database for
// usecase tests.
package fixture

import (
	"context"
	"testing"
	"time"

	"flexemi-backend/internal/adapter/repository/gormrepo"
	"flexemi-backend/internal/domain/amortization"
	"flexemi-backend/internal/domain/charge"
	"flexemi-backend/internal/domain/installment"
	"flexemi-backend/internal/domain/loan"
	"flexemi-backend/internal/domain/user"
	"flexemi-backend/internal/testutil/testdb"
	"flexemi-backend/pkg/calendar"
	"flexemi-backend/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Env struct {
	DB           *gorm.DB
	UoW          *gormrepo.GormUoW
	Users        *gormrepo.UserRepository
	Loans        *gormrepo.LoanRepository
	Installments *gormrepo.InstallmentRepository
	Charges      *gormrepo.ChargeRepository
}

func New(t *testing.T) *Env {
	t.Helper()
	return Wrap(testdb.Open(t))
}

// Wrap builds an Env over an already migrated database.
func Wrap(db *gorm.DB) *Env {
	return &Env{
		DB:           db,
		UoW:          gormrepo.NewGormUoW(db),
		Users:        gormrepo.NewUserRepository(db),
		Loans:        gormrepo.NewLoanRepository(db),
		Installments: gormrepo.NewInstallmentRepository(db),
		Charges:      gormrepo.NewChargeRepository(db),
	}
}

func (e *Env) User(t *testing.T, email string, role user.Role) *user.User {
	t.Helper()
	u := &user.User{UserID: id.NewID32(), Email: email, Name: email, Role: role, PasswordHash: "x"}
	if err := e.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

func (e *Env) Actor(u *user.User) user.Actor { return user.Actor{UserID: u.UserID, Role: u.Role} }

type LoanSpec struct {
	Principal string
	Rate      string
	Tenure    int
	Start     string
	LateFee   string
	Name      string
}

// Loan writes a loan and its computed schedule.
func (e *Env) Loan(t *testing.T, lender, borrower *user.User, s LoanSpec) *loan.Loan {
	t.Helper()
	ctx := context.Background()
	start, err := calendar.ParseDate(s.Start)
	if err != nil {
		t.Fatalf("start date: %v", err)
	}
	fee := loan.DefaultLateFee
	if s.LateFee != "" {
		fee = decimal.RequireFromString(s.LateFee)
	}
	rate := decimal.Zero
	if s.Rate != "" {
		rate = decimal.RequireFromString(s.Rate)
	}
	l := &loan.Loan{
		LoanID:       id.NewID32(),
		LenderID:     lender.UserID,
		BorrowerID:   borrower.UserID,
		Name:         s.Name,
		Principal:    decimal.RequireFromString(s.Principal),
		InterestRate: rate,
		Tenure:       s.Tenure,
		StartDate:    start,
		LateFee:      fee,
		Status:       loan.StatusActive,
	}
	sched, err := amortization.Compute(l.Principal, l.InterestRate, l.Tenure, l.StartDate)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := e.Loans.Create(ctx, l); err != nil {
		t.Fatalf("seed loan: %v", err)
	}
	if err := e.Installments.CreateBatch(ctx, sched.Installments(l.ID, id.NewID32)); err != nil {
		t.Fatalf("seed installments: %v", err)
	}
	return l
}

// Schedule returns the loan's installments in due-date order.
func (e *Env) Schedule(t *testing.T, l *loan.Loan) []installment.Installment {
	t.Helper()
	items, err := e.Installments.ListByLoan(context.Background(), l.ID)
	if err != nil {
		t.Fatalf("list installments: %v", err)
	}
	return items
}

func (e *Env) ChargesOf(t *testing.T, l *loan.Loan) []charge.Charge {
	t.Helper()
	out, err := e.Charges.ListByLoan(context.Background(), l.ID)
	if err != nil {
		t.Fatalf("list charges: %v", err)
	}
	return out
}

// SetStatus forces an installment's status, bypassing the state machine.
func (e *Env) SetStatus(t *testing.T, it installment.Installment, s installment.Status) {
	t.Helper()
	if err := e.DB.Model(&installment.Installment{}).Where("id = ?", it.ID).Update("status", s).Error; err != nil {
		t.Fatalf("set status: %v", err)
	}
}

func (e *Env) Reload(t *testing.T, l *loan.Loan) *loan.Loan {
	t.Helper()
	got, err := e.Loans.GetByLoanID(context.Background(), l.LoanID)
	if err != nil {
		t.Fatalf("reload loan: %v", err)
	}
	return got
}

// At is noon UTC on the given day.
func At(t *testing.T, day string) time.Time {
	t.Helper()
	d, err := calendar.ParseDate(day)
	if err != nil {
		t.Fatalf("date %q: %v", day, err)
	}
	return d.Add(12 * time.Hour)
}
