package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"flexemi-backend/internal/domain/amortization"
	"flexemi-backend/internal/domain/charge"
	"flexemi-backend/internal/domain/errs"
	"flexemi-backend/internal/domain/loan"
	"flexemi-backend/internal/domain/notification"
	"flexemi-backend/internal/domain/uow"
	"flexemi-backend/internal/domain/user"
	"flexemi-backend/internal/infrastructure/auth"
	"flexemi-backend/internal/usecase/latefee"
	"flexemi-backend/pkg/calendar"
	"flexemi-backend/pkg/id"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	MaxTenure  = 600
	maxNameLen = 255
)

var maxRate = decimal.NewFromInt(100)

// Sweeper brings late fees up to date before loans are read.
type Sweeper interface {
	SweepLoans(ctx context.Context, loanIDs []string, now time.Time) latefee.Result
}

type Usecase struct {
	loans    loan.Repository
	uow      uow.UnitOfWork
	sweeper  Sweeper
	notifier notification.Notifier
	validate *validator.Validate
	log      *slog.Logger
	loc      *time.Location
	lateFee  decimal.Decimal
	now      func() time.Time
	hash     func(string) (string, error)
}

type Option func(*Usecase)

func WithLogger(l *slog.Logger) Option { return func(u *Usecase) { u.log = l } }

func WithLocation(loc *time.Location) Option { return func(u *Usecase) { u.loc = loc } }

func WithDefaultLateFee(d decimal.Decimal) Option { return func(u *Usecase) { u.lateFee = d } }

func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

func WithPasswordHasher(h func(string) (string, error)) Option {
	return func(u *Usecase) { u.hash = h }
}

func NewUsecase(loans loan.Repository, tx uow.UnitOfWork, sweeper Sweeper, n notification.Notifier, opts ...Option) *Usecase {
	u := &Usecase{
		loans:    loans,
		uow:      tx,
		sweeper:  sweeper,
		notifier: n,
		validate: validator.New(),
		log:      slog.Default(),
		loc:      time.UTC,
		lateFee:  loan.DefaultLateFee,
		now:      time.Now,
		hash:     auth.HashPassword,
	}
	if u.notifier == nil {
		u.notifier = notification.Nop{}
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

func (u *Usecase) today() time.Time { return calendar.Date(u.now(), u.loc) }

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (u *Usecase) validateCreate(in CreateLoanInput) (time.Time, error) {
	ve := &errs.ValidationError{}
	if err := u.validate.Var(in.BorrowerEmail, "required,email"); err != nil {
		ve.Add("borrower_email", "must be a valid email address")
	}
	if len(in.BorrowerName) > maxNameLen {
		ve.Add("borrower_name", fmt.Sprintf("must be at most %d characters", maxNameLen))
	}
	if len(in.Name) > maxNameLen {
		ve.Add("name", fmt.Sprintf("must be at most %d characters", maxNameLen))
	}
	switch {
	case !in.Principal.IsPositive():
		ve.Add("principal", "must be greater than 0")
	case !in.Principal.Equal(in.Principal.Round(2)):
		ve.Add("principal", "must have at most 2 decimal places")
	case in.Principal.GreaterThan(loan.MaxAmount):
		ve.Add("principal", "must be at most "+loan.MaxAmount.StringFixed(2))
	}
	switch {
	case in.InterestRate.IsNegative():
		ve.Add("interest_rate", "must not be negative")
	case in.InterestRate.GreaterThan(maxRate):
		ve.Add("interest_rate", "must be at most 100")
	}
	if in.Tenure < 1 || in.Tenure > MaxTenure {
		ve.Add("tenure", fmt.Sprintf("must be between 1 and %d months", MaxTenure))
	}
	start, err := calendar.ParseDate(in.StartDate)
	if err != nil {
		ve.Add("start_date", "must be a date in YYYY-MM-DD format")
	}
	if in.LateFee != nil {
		switch {
		case in.LateFee.IsNegative():
			ve.Add("late_fee", "must not be negative")
		case in.LateFee.GreaterThan(loan.MaxAmount):
			ve.Add("late_fee", "must be at most "+loan.MaxAmount.StringFixed(2))
		}
	}
	return start, ve.OrNil()
}

// Create records a loan for the acting lender. The borrower account (when
// provisioned), the loan and its whole schedule are written in one transaction.
func (u *Usecase) Create(ctx context.Context, actor user.Actor, in CreateLoanInput) (*LoanDTO, error) {
	if !actor.Is(user.RoleLender) {
		return nil, errs.ErrUnauthorized
	}
	start, err := u.validateCreate(in)
	if err != nil {
		return nil, err
	}
	sched, err := amortization.Compute(in.Principal, in.InterestRate, in.Tenure, start)
	switch {
	case errors.Is(err, amortization.ErrAmountTooSmall):
		return nil, errs.Invalid("principal", "too small for the tenure")
	case err != nil:
		return nil, errs.Invalid("principal", err.Error())
	}
	fee := u.lateFee
	if in.LateFee != nil {
		fee = *in.LateFee
	}
	email := normalizeEmail(in.BorrowerEmail)

	var (
		l            *loan.Loan
		lender       *user.User
		borrower     *user.User
		tempPassword string
	)
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		lender, err = r.Users.GetByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return errs.ErrUnauthorized
			}
			return err
		}
		if normalizeEmail(lender.Email) == email {
			return loan.ErrSelfLending
		}

		existing, err := r.Users.GetByEmail(ctx, email)
		switch {
		case err != nil && !errors.Is(err, user.ErrNotFound):
			return err
		case in.NewBorrower && err == nil:
			return loan.ErrBorrowerExists
		case !in.NewBorrower && err != nil:
			return loan.ErrBorrowerNotFound
		case !in.NewBorrower:
			if existing.Role != user.RoleBorrower {
				return loan.ErrNotBorrowerRole
			}
			borrower = existing
		default:
			tempPassword = id.NewSecret()
			hash, err := u.hash(tempPassword)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			borrower = &user.User{
				UserID:       id.NewID32(),
				Email:        email,
				Name:         strings.TrimSpace(in.BorrowerName),
				Role:         user.RoleBorrower,
				PasswordHash: hash,
			}
			if err := r.Users.Create(ctx, borrower); err != nil {
				return fmt.Errorf("create borrower: %w", err)
			}
		}
		if borrower.UserID == lender.UserID {
			return loan.ErrSelfLending
		}

		l = &loan.Loan{
			LoanID:       id.NewID32(),
			LenderID:     lender.UserID,
			BorrowerID:   borrower.UserID,
			Name:         strings.TrimSpace(in.Name),
			Principal:    in.Principal,
			InterestRate: in.InterestRate,
			Tenure:       in.Tenure,
			StartDate:    start,
			LateFee:      fee,
			Status:       loan.StatusActive,
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return fmt.Errorf("create loan: %w", err)
		}
		items := sched.Installments(l.ID, id.NewID32)
		if len(items) != l.Tenure {
			return loan.ErrScheduleMismatch
		}
		if err := r.Installments.CreateBatch(ctx, items); err != nil {
			return fmt.Errorf("create installments: %w", err)
		}
		l.Installments = items
		l.Lender, l.Borrower = lender, borrower
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.InfoContext(ctx, "loan created",
		"loan_id", l.LoanID, "lender_id", l.LenderID, "borrower_id", l.BorrowerID,
		"tenure", l.Tenure, "emi", sched.Amount.String(), "provisioned", tempPassword != "")
	if tempPassword != "" {
		u.notifier.Notify(ctx, notification.BorrowerWelcome(borrower.Email, lender.DisplayName(), tempPassword))
	}
	u.notifier.Notify(ctx, notification.LoanCreated(borrower.Email, lender.DisplayName(), l.DisplayName(),
		l.Principal, sched.Amount, l.Tenure, calendar.Format(sched.DueDates[0])))

	dto := toDTO(l)
	return &dto, nil
}

// ListForLender sweeps the lender's open loans, then returns all of them newest first.
func (u *Usecase) ListForLender(ctx context.Context, actor user.Actor) ([]LoanDTO, error) {
	if !actor.Is(user.RoleLender) {
		return nil, errs.ErrUnauthorized
	}
	return u.list(ctx, func() ([]loan.Loan, error) { return u.loans.ListByLender(ctx, actor.UserID) })
}

func (u *Usecase) ListForBorrower(ctx context.Context, actor user.Actor) ([]LoanDTO, error) {
	if !actor.Is(user.RoleBorrower) {
		return nil, errs.ErrUnauthorized
	}
	return u.list(ctx, func() ([]loan.Loan, error) { return u.loans.ListByBorrower(ctx, actor.UserID) })
}

func (u *Usecase) list(ctx context.Context, fetch func() ([]loan.Loan, error)) ([]LoanDTO, error) {
	loans, err := fetch()
	if err != nil {
		return nil, err
	}
	if loans, err = u.swept(ctx, u.now(), loans, fetch); err != nil {
		return nil, err
	}
	out := make([]LoanDTO, len(loans))
	for i := range loans {
		out[i] = toDTO(&loans[i])
	}
	return out, nil
}

// swept runs the late-fee sweep over loans and reloads them through refetch
// when the sweep wrote anything.
func (u *Usecase) swept(ctx context.Context, now time.Time, loans []loan.Loan, refetch func() ([]loan.Loan, error)) ([]loan.Loan, error) {
	ids := latefee.Sweepable(loans)
	if len(ids) == 0 || u.sweeper == nil {
		return loans, nil
	}
	res := u.sweeper.SweepLoans(ctx, ids, now)
	if res.MarkedOverdue == 0 && res.ChargesAdded == 0 {
		return loans, nil
	}
	return refetch()
}

// Get returns a loan its lender, its borrower or an admin may see. Everyone
// else gets ErrUnauthorized, whether or not the loan exists.
func (u *Usecase) Get(ctx context.Context, actor user.Actor, loanID string) (*LoanDTO, error) {
	l, err := u.visible(ctx, actor, loanID)
	if err != nil {
		return nil, err
	}
	dto := toDTO(l)
	return &dto, nil
}

func (u *Usecase) visible(ctx context.Context, actor user.Actor, loanID string) (*loan.Loan, error) {
	if !actor.Authenticated() {
		return nil, errs.ErrUnauthorized
	}
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) && !actor.Is(user.RoleAdmin) {
			return nil, errs.ErrUnauthorized
		}
		return nil, err
	}
	if !l.VisibleTo(actor) {
		return nil, errs.ErrUnauthorized
	}
	loans, err := u.swept(ctx, u.now(), []loan.Loan{*l}, func() ([]loan.Loan, error) {
		fresh, err := u.loans.GetByLoanID(ctx, loanID)
		if err != nil {
			return nil, err
		}
		return []loan.Loan{*fresh}, nil
	})
	if err != nil {
		return nil, err
	}
	return &loans[0], nil
}

// ToggleArchive flips the archived flag; only the loan's lender may.
func (u *Usecase) ToggleArchive(ctx context.Context, actor user.Actor, loanID string) (*LoanDTO, error) {
	if !actor.Is(user.RoleLender) {
		return nil, errs.ErrUnauthorized
	}
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if !l.IsLender(actor) {
			return errs.ErrUnauthorized
		}
		l.Archived = !l.Archived
		return r.Loans.Save(ctx, l)
	})
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return u.Get(ctx, actor, loanID)
}

// AddCharge records an ad-hoc debit against the loan.
func (u *Usecase) AddCharge(ctx context.Context, actor user.Actor, loanID string, in AddChargeInput) (*ChargeDTO, error) {
	if !actor.Is(user.RoleLender) {
		return nil, errs.ErrUnauthorized
	}
	ve := &errs.ValidationError{}
	switch {
	case !in.Amount.IsPositive():
		ve.Add("amount", "must be greater than 0")
	case in.Amount.GreaterThan(loan.MaxAmount):
		ve.Add("amount", "must be at most "+loan.MaxAmount.StringFixed(2))
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		ve.Add("reason", "is required")
	} else if len(reason) > maxNameLen {
		ve.Add("reason", fmt.Sprintf("must be at most %d characters", maxNameLen))
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	var c *charge.Charge
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if !l.IsLender(actor) {
			return errs.ErrUnauthorized
		}
		c = &charge.Charge{
			ChargeID:  id.NewID32(),
			LoanID:    l.ID,
			Kind:      charge.KindAdhoc,
			Amount:    in.Amount.Round(2),
			Reason:    reason,
			ChargedOn: u.today(),
		}
		return r.Charges.Create(ctx, c)
	})
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	dto := toChargeDTO(c)
	return &dto, nil
}

// Statement renders the loan as an XLSX workbook.
func (u *Usecase) Statement(ctx context.Context, actor user.Actor, loanID string) (*StatementFile, error) {
	l, err := u.visible(ctx, actor, loanID)
	if err != nil {
		return nil, err
	}
	data, err := renderStatement(l)
	if err != nil {
		return nil, fmt.Errorf("render statement: %w", err)
	}
	return &StatementFile{
		FileName: fmt.Sprintf("statement_%s_%s.xlsx", l.LoanID, u.now().In(u.loc).Format("20060102")),
		Data:     data,
	}, nil
}
