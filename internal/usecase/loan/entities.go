package loan

import (
	"time"

	"flexemi-backend/internal/domain/charge"
	"flexemi-backend/internal/domain/installment"
	"flexemi-backend/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type CreateLoanInput struct {
	BorrowerEmail string           `json:"borrower_email"`
	NewBorrower   bool             `json:"new_borrower"`
	BorrowerName  string           `json:"borrower_name"`
	Name          string           `json:"name"`
	Principal     decimal.Decimal  `json:"principal"`
	InterestRate  decimal.Decimal  `json:"interest_rate"`
	Tenure        int              `json:"tenure"`
	StartDate     string           `json:"start_date"`
	LateFee       *decimal.Decimal `json:"late_fee,omitempty"`
}

type AddChargeInput struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
}

type PartyDTO struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

type InstallmentDTO struct {
	InstallmentID string             `json:"installment_id"`
	Sequence      int                `json:"sequence"`
	Amount        decimal.Decimal    `json:"amount"`
	DueDate       string             `json:"due_date"`
	Status        installment.Status `json:"status"`
	PaidAt        *time.Time         `json:"paid_at,omitempty"`
	LateFee       decimal.Decimal    `json:"late_fee"`
}

type ChargeDTO struct {
	ChargeID  string          `json:"charge_id"`
	Kind      charge.Kind     `json:"kind"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
	DueDate   string          `json:"due_date,omitempty"`
	ChargedOn string          `json:"charged_on"`
}

type LoanDTO struct {
	LoanID       string           `json:"loan_id"`
	Name         string           `json:"name"`
	Lender       PartyDTO         `json:"lender"`
	Borrower     PartyDTO         `json:"borrower"`
	Principal    decimal.Decimal  `json:"principal"`
	InterestRate decimal.Decimal  `json:"interest_rate"`
	Tenure       int              `json:"tenure"`
	StartDate    string           `json:"start_date"`
	EMI          decimal.Decimal  `json:"emi"`
	LateFee      decimal.Decimal  `json:"late_fee"`
	Status       loan.Status      `json:"status"`
	Archived     bool             `json:"archived"`
	PaidCount    int              `json:"paid_count"`
	Progress     int              `json:"progress"`
	AmountPaid   decimal.Decimal  `json:"amount_paid"`
	AmountDue    decimal.Decimal  `json:"amount_due"`
	TotalCharges decimal.Decimal  `json:"total_charges"`
	CreatedAt    time.Time        `json:"created_at"`
	Installments []InstallmentDTO `json:"installments"`
	Charges      []ChargeDTO      `json:"charges"`
}

type UpcomingDTO struct {
	InstallmentID string             `json:"installment_id"`
	LoanID        string             `json:"loan_id"`
	LoanName      string             `json:"loan_name"`
	BorrowerName  string             `json:"borrower_name"`
	Amount        decimal.Decimal    `json:"amount"`
	DueDate       string             `json:"due_date"`
	Status        installment.Status `json:"status"`
	Overdue       bool               `json:"overdue"`
}

// SummaryDTO backs the lender dashboard. Month figures cover the current
// calendar month and skip archived loans.
type SummaryDTO struct {
	MonthExpected decimal.Decimal `json:"month_expected"`
	MonthReceived decimal.Decimal `json:"month_received"`
	MonthPending  decimal.Decimal `json:"month_pending"`
	TotalOverdue  decimal.Decimal `json:"total_overdue"`
	TotalLent     decimal.Decimal `json:"total_lent"`
	ActiveLoans   int             `json:"active_loans"`
	Borrowers     int             `json:"borrowers"`
	Upcoming      []UpcomingDTO   `json:"upcoming"`
}

type StatementFile struct {
	FileName string
	Data     []byte
}
