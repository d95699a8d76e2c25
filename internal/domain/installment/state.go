package installment

import (
	"fmt"

	"flexemi-backend/internal/domain/errs"
)

type Status string

const (
	StatusPending          Status = "PENDING"
	StatusOverdue          Status = "OVERDUE"
	StatusAwaitingApproval Status = "AWAITING_APPROVAL"
	StatusPaid             Status = "PAID"
)

type Event string

const (
	EventMarkOverdue Event = "mark_overdue"
	EventSubmit      Event = "submit"
	EventApprove     Event = "approve"
	EventReject      Event = "reject"
	EventMarkUnpaid  Event = "mark_unpaid"
)

type edge struct {
	from Status
	ev   Event
}

var transitions = map[edge]Status{
	{StatusPending, EventMarkOverdue}:      StatusOverdue,
	{StatusPending, EventSubmit}:           StatusAwaitingApproval,
	{StatusOverdue, EventSubmit}:           StatusAwaitingApproval,
	{StatusAwaitingApproval, EventApprove}: StatusPaid,
	{StatusAwaitingApproval, EventReject}:  StatusPending,
	{StatusPaid, EventMarkUnpaid}:          StatusPending,
}

// GuardError names the precondition an attempted transition failed.
type GuardError struct {
	Event  Event
	From   Status
	Reason string
}

func (e *GuardError) Error() string { return e.Reason }

func (e *GuardError) Unwrap() error { return errs.ErrGuard }

// Next returns the status reached from `from` on ev, or a *GuardError.
func Next(from Status, ev Event) (Status, error) {
	if to, ok := transitions[edge{from, ev}]; ok {
		return to, nil
	}
	return from, &GuardError{Event: ev, From: from, Reason: reason(from, ev)}
}

// Accrues reports whether an installment in s still accrues late fees.
func (s Status) Accrues() bool { return s == StatusPending || s == StatusOverdue }

func reason(from Status, ev Event) string {
	switch ev {
	case EventSubmit:
		switch from {
		case StatusAwaitingApproval:
			return "payment already submitted and awaiting approval"
		case StatusPaid:
			return "installment already paid"
		}
	case EventApprove:
		return fmt.Sprintf("installment is %s, only payments awaiting approval can be approved", from)
	case EventReject:
		return fmt.Sprintf("installment is %s, only payments awaiting approval can be rejected", from)
	case EventMarkUnpaid:
		return fmt.Sprintf("installment is %s, only paid installments can be marked unpaid", from)
	case EventMarkOverdue:
		return fmt.Sprintf("installment is %s, only pending installments become overdue", from)
	}
	return fmt.Sprintf("cannot %s installment in status %s", ev, from)
}
