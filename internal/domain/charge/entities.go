package charge

import (
	"time"

	"flexemi-backend/pkg/calendar"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindLateFee Kind = "LATE_FEE"
	KindAdhoc   Kind = "ADHOC"
)

// Charge is a debit against a loan. Late fees carry the due date of the
// installment they were charged for; (loan_id, kind, due_date) is unique.
type Charge struct {
	ID        uint64          `gorm:"primaryKey;column:id" json:"-"`
	ChargeID  string          `gorm:"size:32;uniqueIndex:ux_charges_charge_id" json:"charge_id"`
	LoanID    uint64          `gorm:"not null;uniqueIndex:ux_charges_loan_kind_due,priority:1" json:"-"`
	Kind      Kind            `gorm:"size:16;not null;uniqueIndex:ux_charges_loan_kind_due,priority:2" json:"kind"`
	DueDate   *time.Time      `gorm:"type:date;uniqueIndex:ux_charges_loan_kind_due,priority:3" json:"due_date,omitempty"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Reason    string          `gorm:"size:255;not null" json:"reason"`
	ChargedOn time.Time       `gorm:"type:date;not null" json:"charged_on"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Charge) TableName() string { return "charges" }

// LateFeeReason is the display text for a late fee; deterministic for a due date.
func LateFeeReason(due time.Time) string {
	return "Late fee for installment due on " + calendar.Format(due)
}

// NewLateFee builds the late-fee charge for the installment due on `due`.
func NewLateFee(id string, loanID uint64, due time.Time, amount decimal.Decimal, today time.Time) *Charge {
	d := due
	return &Charge{
		ChargeID:  id,
		LoanID:    loanID,
		Kind:      KindLateFee,
		DueDate:   &d,
		Amount:    amount,
		Reason:    LateFeeReason(due),
		ChargedOn: today,
	}
}

// LateFeesByDueDate indexes late-fee charges by the due date they cover.
func LateFeesByDueDate(charges []Charge) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, c := range charges {
		if c.Kind == KindLateFee && c.DueDate != nil {
			k := calendar.Format(*c.DueDate)
			out[k] = out[k].Add(c.Amount)
		}
	}
	return out
}
