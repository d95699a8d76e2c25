package notification

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func LoanCreated(to, lenderName, loanName string, principal, emi decimal.Decimal, tenure int, firstDue string) Message {
	return Message{
		To:      to,
		Subject: "New loan recorded - FlexEMI",
		Body: fmt.Sprintf("%s recorded a loan \"%s\" of ₹%s for you: %d monthly installments of ₹%s, first due on %s.",
			lenderName, loanName, principal.StringFixed(2), tenure, emi.StringFixed(2), firstDue),
	}
}

func BorrowerWelcome(to, lenderName, tempPassword string) Message {
	return Message{
		To:      to,
		Subject: "Your FlexEMI account",
		Body: fmt.Sprintf("%s created a FlexEMI borrower account for %s. Sign in with the temporary password %s and change it.",
			lenderName, to, tempPassword),
	}
}

func PaymentSubmitted(to, borrowerName, loanName string, amount decimal.Decimal, due string) Message {
	return Message{
		To:      to,
		Subject: "Payment awaiting your approval - FlexEMI",
		Body: fmt.Sprintf("%s reported a payment of ₹%s for the installment due on %s of loan \"%s\".",
			borrowerName, amount.StringFixed(2), due, loanName),
	}
}

func PaymentApproved(to, loanName string, amount decimal.Decimal, due string) Message {
	return Message{
		To:      to,
		Subject: "Payment approved - FlexEMI",
		Body:    fmt.Sprintf("Your payment of ₹%s for the installment due on %s of loan \"%s\" was approved.", amount.StringFixed(2), due, loanName),
	}
}

func PaymentRejected(to, loanName, due, reason string) Message {
	body := fmt.Sprintf("Your payment for the installment due on %s of loan \"%s\" was rejected.", due, loanName)
	if reason != "" {
		body += " Reason: " + reason
	}
	return Message{To: to, Subject: "Payment rejected - FlexEMI", Body: body}
}

func MarkedUnpaid(to, loanName, due string) Message {
	return Message{
		To:      to,
		Subject: "Installment reopened - FlexEMI",
		Body:    fmt.Sprintf("The installment due on %s of loan \"%s\" was marked unpaid by your lender.", due, loanName),
	}
}

func LoanCompleted(to, loanName string) Message {
	return Message{
		To:      to,
		Subject: "Loan completed - FlexEMI",
		Body:    fmt.Sprintf("All installments of loan \"%s\" are paid. The loan is complete.", loanName),
	}
}
