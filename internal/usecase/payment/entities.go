package payment

import (
	"time"

	"flexemi-backend/internal/domain/installment"
	"flexemi-backend/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type InstallmentDTO struct {
	InstallmentID string             `json:"installment_id"`
	LoanID        string             `json:"loan_id"`
	Sequence      int                `json:"sequence"`
	Amount        decimal.Decimal    `json:"amount"`
	DueDate       string             `json:"due_date"`
	Status        installment.Status `json:"status"`
	PaidAt        *time.Time         `json:"paid_at,omitempty"`
	LoanStatus    loan.Status        `json:"loan_status"`
}

type RejectInput struct {
	Reason string `json:"reason"`
}
