package installment

import (
	"fmt"
	"time"

	"flexemi-backend/internal/domain/errs"

	"github.com/shopspring/decimal"
)

var ErrNotFound = fmt.Errorf("installment %w", errs.ErrNotFound)

type Installment struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	InstallmentID string          `gorm:"size:32;uniqueIndex:ux_installments_installment_id" json:"installment_id"`
	LoanID        uint64          `gorm:"not null;index:idx_installments_loan_due,priority:1" json:"-"`
	Sequence      int             `gorm:"not null" json:"sequence"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	DueDate       time.Time       `gorm:"type:date;not null;index:idx_installments_loan_due,priority:2" json:"due_date"`
	Status        Status          `gorm:"size:24;not null;default:PENDING;index" json:"status"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Installment) TableName() string { return "installments" }

// Apply runs event through the state machine. On a guard failure the
// installment is left untouched.
func (i *Installment) Apply(ev Event, now time.Time) error {
	next, err := Next(i.Status, ev)
	if err != nil {
		return err
	}
	i.Status = next
	switch {
	case next == StatusPaid:
		t := now.UTC()
		i.PaidAt = &t
	case i.PaidAt != nil:
		i.PaidAt = nil
	}
	return nil
}

// PastDue reports whether the due date is strictly before today.
func (i *Installment) PastDue(today time.Time) bool { return i.DueDate.Before(today) }
