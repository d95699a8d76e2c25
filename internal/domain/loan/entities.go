package loan

import (
	"fmt"
	"time"

	"flexemi-backend/internal/domain/charge"
	"flexemi-backend/internal/domain/errs"
	"flexemi-backend/internal/domain/installment"
	"flexemi-backend/internal/domain/user"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
)

// DefaultLateFee applies when the lender does not configure one.
var DefaultLateFee = decimal.NewFromInt(500)

// MaxAmount bounds principals, fees and charges so that every derived
// installment still fits the decimal(18,2) money columns.
var MaxAmount = decimal.RequireFromString("999999999999999.99")

var (
	ErrNotFound         = fmt.Errorf("loan %w", errs.ErrNotFound)
	ErrSelfLending      = errs.Invalid("borrower_email", "you cannot lend money to yourself")
	ErrBorrowerNotFound = errs.Invalid("borrower_email", "no borrower registered with that email")
	ErrBorrowerExists   = errs.Invalid("borrower_email", "an account with that email already exists")
	ErrNotBorrowerRole  = errs.Invalid("borrower_email", "that account is not a borrower")
	ErrScheduleMismatch = fmt.Errorf("installment schedule does not match tenure: %w", errs.ErrConflict)
)

type Loan struct {
	ID           uint64                    `gorm:"primaryKey;column:id" json:"-"`
	LoanID       string                    `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	LenderID     string                    `gorm:"size:32;not null;index:idx_loans_lender" json:"lender_id"`
	BorrowerID   string                    `gorm:"size:32;not null;index:idx_loans_borrower" json:"borrower_id"`
	Name         string                    `gorm:"size:255" json:"name,omitempty"`
	Principal    decimal.Decimal           `gorm:"type:decimal(18,2);not null" json:"principal"`
	InterestRate decimal.Decimal           `gorm:"type:decimal(6,2);not null" json:"interest_rate"`
	Tenure       int                       `gorm:"not null" json:"tenure"`
	StartDate    time.Time                 `gorm:"type:date;not null" json:"start_date"`
	LateFee      decimal.Decimal           `gorm:"type:decimal(18,2);not null" json:"late_fee"`
	Status       Status                    `gorm:"size:16;not null;default:ACTIVE;index" json:"status"`
	Archived     bool                      `gorm:"not null;default:false" json:"archived"`
	Lender       *user.User                `gorm:"foreignKey:LenderID;references:UserID" json:"-"`
	Borrower     *user.User                `gorm:"foreignKey:BorrowerID;references:UserID" json:"-"`
	Installments []installment.Installment `gorm:"foreignKey:LoanID" json:"-"`
	Charges      []charge.Charge           `gorm:"foreignKey:LoanID" json:"-"`
	CreatedAt    time.Time                 `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time                 `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt            `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

func (l *Loan) IsLender(a user.Actor) bool { return a.Authenticated() && a.UserID == l.LenderID }

func (l *Loan) IsBorrower(a user.Actor) bool { return a.Authenticated() && a.UserID == l.BorrowerID }

// VisibleTo reports whether a may read the loan.
func (l *Loan) VisibleTo(a user.Actor) bool {
	return l.IsLender(a) || l.IsBorrower(a) || a.Is(user.RoleAdmin)
}

// Settle sets the status from the number of installments not yet paid and
// reports whether it changed. A reopened installment moves a completed loan
// back to ACTIVE.
func (l *Loan) Settle(notPaid int64) bool {
	want := StatusActive
	if notPaid == 0 {
		want = StatusCompleted
	}
	if l.Status == want {
		return false
	}
	l.Status = want
	return true
}

// DisplayName is the loan name, or the borrower's name when unnamed.
func (l *Loan) DisplayName() string {
	if l.Name != "" {
		return l.Name
	}
	if l.Borrower != nil {
		return l.Borrower.DisplayName()
	}
	return "Loan " + l.LoanID
}
