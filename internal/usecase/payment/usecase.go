package payment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"flexemi-backend/internal/domain/errs"
	"flexemi-backend/internal/domain/installment"
	"flexemi-backend/internal/domain/loan"
	"flexemi-backend/internal/domain/notification"
	"flexemi-backend/internal/domain/uow"
	"flexemi-backend/internal/domain/user"
	"flexemi-backend/internal/infrastructure/metrics"
	"flexemi-backend/pkg/calendar"
)

type Usecase struct {
	loans        loan.Repository
	installments installment.Repository
	uow          uow.UnitOfWork
	notifier     notification.Notifier
	log          *slog.Logger
	now          func() time.Time
}

type Option func(*Usecase)

func WithLogger(l *slog.Logger) Option { return func(u *Usecase) { u.log = l } }

func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

func NewUsecase(loans loan.Repository, installments installment.Repository, tx uow.UnitOfWork, n notification.Notifier, opts ...Option) *Usecase {
	u := &Usecase{loans: loans, installments: installments, uow: tx, notifier: n, log: slog.Default(), now: time.Now}
	if u.notifier == nil {
		u.notifier = notification.Nop{}
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// Submit records that the borrower paid; the lender still has to approve.
func (u *Usecase) Submit(ctx context.Context, installmentID string, actor user.Actor) (*InstallmentDTO, error) {
	out, err := u.apply(ctx, installmentID, actor, installment.EventSubmit)
	if err != nil {
		return nil, err
	}
	l := out.loan
	if l.Lender != nil {
		u.notifier.Notify(ctx, notification.PaymentSubmitted(l.Lender.Email, l.Borrower.DisplayName(), l.DisplayName(), out.item.Amount, out.dto.DueDate))
	}
	return out.dto, nil
}

func (u *Usecase) Approve(ctx context.Context, installmentID string, actor user.Actor) (*InstallmentDTO, error) {
	out, err := u.apply(ctx, installmentID, actor, installment.EventApprove)
	if err != nil {
		return nil, err
	}
	l := out.loan
	if l.Borrower != nil {
		u.notifier.Notify(ctx, notification.PaymentApproved(l.Borrower.Email, l.DisplayName(), out.item.Amount, out.dto.DueDate))
	}
	if out.completed {
		for _, p := range []*user.User{l.Borrower, l.Lender} {
			if p != nil {
				u.notifier.Notify(ctx, notification.LoanCompleted(p.Email, l.DisplayName()))
			}
		}
	}
	return out.dto, nil
}

// Reject sends the payment back to PENDING. The reason is only relayed to the borrower.
func (u *Usecase) Reject(ctx context.Context, installmentID string, actor user.Actor, in RejectInput) (*InstallmentDTO, error) {
	out, err := u.apply(ctx, installmentID, actor, installment.EventReject)
	if err != nil {
		return nil, err
	}
	l := out.loan
	if l.Borrower != nil {
		u.notifier.Notify(ctx, notification.PaymentRejected(l.Borrower.Email, l.DisplayName(), out.dto.DueDate, strings.TrimSpace(in.Reason)))
	}
	return out.dto, nil
}

// MarkUnpaid reopens a paid installment, e.g. after a bounced transfer.
func (u *Usecase) MarkUnpaid(ctx context.Context, installmentID string, actor user.Actor) (*InstallmentDTO, error) {
	out, err := u.apply(ctx, installmentID, actor, installment.EventMarkUnpaid)
	if err != nil {
		return nil, err
	}
	l := out.loan
	if l.Borrower != nil {
		u.notifier.Notify(ctx, notification.MarkedUnpaid(l.Borrower.Email, l.DisplayName(), out.dto.DueDate))
	}
	return out.dto, nil
}

// borrower submits; lender approves, rejects, reopens
func allowed(ev installment.Event, l *loan.Loan, a user.Actor) bool {
	if ev == installment.EventSubmit {
		return a.Is(user.RoleBorrower) && l.IsBorrower(a)
	}
	return a.Is(user.RoleLender) && l.IsLender(a)
}

type outcome struct {
	loan      *loan.Loan
	item      *installment.Installment
	dto       *InstallmentDTO
	completed bool
}

func (u *Usecase) apply(ctx context.Context, installmentID string, actor user.Actor, ev installment.Event) (*outcome, error) {
	if !actor.Authenticated() {
		return nil, errs.ErrUnauthorized
	}
	it, err := u.installments.GetByInstallmentID(ctx, installmentID)
	if err != nil {
		return nil, err
	}
	l, err := u.loans.GetByID(ctx, it.LoanID)
	if err != nil {
		return nil, err
	}
	if !allowed(ev, l, actor) {
		return nil, errs.ErrUnauthorized
	}

	out := &outcome{loan: l}
	err = u.uow.WithinLoanTx(ctx, l.LoanID, func(r uow.Repos, locked *loan.Loan) error {
		// re-read under the loan lock; the copy read above may be stale
		cur, err := r.Installments.GetByInstallmentID(ctx, installmentID)
		if err != nil {
			return err
		}
		prev := cur.Status
		if err := cur.Apply(ev, u.now()); err != nil {
			return err
		}
		ok, err := r.Installments.Transition(ctx, cur.ID, prev, cur.Status, cur.PaidAt)
		if err != nil {
			return fmt.Errorf("update installment: %w", err)
		}
		if !ok {
			return &installment.GuardError{Event: ev, From: prev, Reason: "installment was changed by another request, reload and retry"}
		}

		notPaid, err := r.Installments.CountNotPaid(ctx, locked.ID)
		if err != nil {
			return fmt.Errorf("count unpaid: %w", err)
		}
		if locked.Settle(notPaid) {
			if err := r.Loans.Save(ctx, locked); err != nil {
				return fmt.Errorf("update loan status: %w", err)
			}
			out.completed = locked.Status == loan.StatusCompleted
		}
		l.Status = locked.Status
		out.item = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.PaymentTransitions.WithLabelValues(string(ev)).Inc()
	u.log.InfoContext(ctx, "installment transition",
		"event", ev, "installment_id", installmentID, "loan_id", l.LoanID,
		"status", out.item.Status, "loan_status", l.Status, "actor", actor.UserID)

	out.dto = &InstallmentDTO{
		InstallmentID: out.item.InstallmentID,
		LoanID:        l.LoanID,
		Sequence:      out.item.Sequence,
		Amount:        out.item.Amount,
		DueDate:       calendar.Format(out.item.DueDate),
		Status:        out.item.Status,
		PaidAt:        out.item.PaidAt,
		LoanStatus:    l.Status,
	}
	return out, nil
}
