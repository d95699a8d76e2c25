// Package latefee marks past-due installments OVERDUE and charges each one a
// single late fee. Every sweep is safe to repeat and to run concurrently.
package latefee

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"flexemi-backend/internal/domain/charge"
	"flexemi-backend/internal/domain/errs"
	"flexemi-backend/internal/domain/installment"
	"flexemi-backend/internal/domain/loan"
	"flexemi-backend/internal/domain/uow"
	"flexemi-backend/internal/domain/user"
	"flexemi-backend/internal/infrastructure/metrics"
	"flexemi-backend/pkg/calendar"
	"flexemi-backend/pkg/id"
)

// Gate debounces repeated sweeps of one loan on one day.
type Gate interface {
	Acquire(ctx context.Context, loanID, day string) bool
	Release(ctx context.Context, loanID, day string)
}

type Result struct {
	LoansScanned  int `json:"loans_scanned"`
	Skipped       int `json:"skipped"`
	MarkedOverdue int `json:"marked_overdue"`
	ChargesAdded  int `json:"charges_added"`
	Failed        int `json:"failed"`
}

func (r *Result) add(o Result) {
	r.LoansScanned += o.LoansScanned
	r.Skipped += o.Skipped
	r.MarkedOverdue += o.MarkedOverdue
	r.ChargesAdded += o.ChargesAdded
	r.Failed += o.Failed
}

type Engine struct {
	loans loan.Repository
	uow   uow.UnitOfWork
	gate  Gate
	loc   *time.Location
	log   *slog.Logger
	newID func() string
}

type Option func(*Engine)

func WithGate(g Gate) Option { return func(e *Engine) { e.gate = g } }

// WithLocation sets the timezone "today" is taken in.
func WithLocation(loc *time.Location) Option { return func(e *Engine) { e.loc = loc } }

func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.log = l } }

func NewEngine(loans loan.Repository, tx uow.UnitOfWork, opts ...Option) *Engine {
	e := &Engine{loans: loans, uow: tx, loc: time.UTC, log: slog.Default(), newID: id.NewID32}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Today is the calendar day of now in the engine's timezone.
func (e *Engine) Today(now time.Time) time.Time { return calendar.Date(now, e.loc) }

// SweepLoans sweeps the given loans, skipping any already swept through the
// gate today. Used on read paths.
func (e *Engine) SweepLoans(ctx context.Context, loanIDs []string, now time.Time) Result {
	return e.sweep(ctx, loanIDs, now, e.gate)
}

// SweepAll sweeps every active, non-archived loan, bypassing the gate.
func (e *Engine) SweepAll(ctx context.Context, now time.Time) (Result, error) {
	ids, err := e.loans.ListActiveLoanIDs(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list active loans: %w", err)
	}
	return e.sweep(ctx, ids, now, nil), nil
}

// SweepForLender sweeps the actor's own active loans, bypassing the gate.
func (e *Engine) SweepForLender(ctx context.Context, actor user.Actor, now time.Time) (Result, error) {
	if !actor.Is(user.RoleLender) {
		return Result{}, errs.ErrUnauthorized
	}
	loans, err := e.loans.ListByLender(ctx, actor.UserID)
	if err != nil {
		return Result{}, fmt.Errorf("list lender loans: %w", err)
	}
	return e.sweep(ctx, Sweepable(loans), now, nil), nil
}

// Sweepable returns the IDs of loans that can still accrue fees.
func Sweepable(loans []loan.Loan) []string {
	ids := make([]string, 0, len(loans))
	for i := range loans {
		if !loans[i].Archived && loans[i].Status == loan.StatusActive {
			ids = append(ids, loans[i].LoanID)
		}
	}
	return ids
}

func (e *Engine) sweep(ctx context.Context, loanIDs []string, now time.Time, gate Gate) Result {
	today := e.Today(now)
	day := calendar.Format(today)

	var total Result
	for _, loanID := range loanIDs {
		if gate != nil && !gate.Acquire(ctx, loanID, day) {
			total.Skipped++
			continue
		}
		r, err := e.sweepLoan(ctx, loanID, today)
		total.add(r)
		total.LoansScanned++
		if err != nil {
			total.Failed++
			metrics.SweepFailures.Inc()
			e.log.ErrorContext(ctx, "late fee sweep failed", "loan_id", loanID, "err", err)
			if gate != nil {
				gate.Release(ctx, loanID, day)
			}
		}
	}
	if total.MarkedOverdue > 0 || total.ChargesAdded > 0 {
		e.log.InfoContext(ctx, "late fee sweep",
			"day", day, "loans", total.LoansScanned,
			"marked_overdue", total.MarkedOverdue, "charges_added", total.ChargesAdded)
	}
	return total
}

// sweepLoan runs under the loan row lock. Counts only reflect a committed tx.
func (e *Engine) sweepLoan(ctx context.Context, loanID string, today time.Time) (Result, error) {
	var res Result
	err := e.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		res = Result{}
		items, err := r.Installments.ListByLoan(ctx, l.ID)
		if err != nil {
			return fmt.Errorf("list installments: %w", err)
		}
		for i := range items {
			it := &items[i]
			if it.Status == installment.StatusPending && it.PastDue(today) {
				next, err := installment.Next(it.Status, installment.EventMarkOverdue)
				if err != nil {
					return err
				}
				ok, err := r.Installments.Transition(ctx, it.ID, it.Status, next, nil)
				if err != nil {
					return fmt.Errorf("mark overdue %s: %w", it.InstallmentID, err)
				}
				if !ok {
					continue
				}
				it.Status = next
				res.MarkedOverdue++
			}
			if it.Status != installment.StatusOverdue || !l.LateFee.IsPositive() {
				continue
			}
			created, err := r.Charges.CreateIfAbsent(ctx, charge.NewLateFee(e.newID(), l.ID, it.DueDate, l.LateFee, today))
			if err != nil {
				return fmt.Errorf("charge late fee %s: %w", it.InstallmentID, err)
			}
			if created {
				res.ChargesAdded++
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	metrics.InstallmentsMarkedOverdue.Add(float64(res.MarkedOverdue))
	metrics.LateFeesCharged.Add(float64(res.ChargesAdded))
	return res, nil
}
