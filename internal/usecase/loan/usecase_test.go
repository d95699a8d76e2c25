package loan

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"flexemi-backend/internal/domain/charge"
	"flexemi-backend/internal/domain/errs"
	"flexemi-backend/internal/domain/installment"
	domain "flexemi-backend/internal/domain/loan"
	"flexemi-backend/internal/domain/uow"
	"flexemi-backend/internal/domain/user"
	"flexemi-backend/internal/infrastructure/export"
	"flexemi-backend/internal/infrastructure/logging"
	"flexemi-backend/internal/testutil/fixture"
	"flexemi-backend/internal/testutil/installmentmock"
	"flexemi-backend/internal/testutil/notifymock"
	"flexemi-backend/internal/testutil/uowmock"
	"flexemi-backend/internal/usecase/latefee"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var clock = time.Date(2024, 2, 3, 9, 0, 0, 0, time.UTC)

type world struct {
	*fixture.Env
	lender, borrower *user.User
	sent             *notifymock.Recorder
	uc               *Usecase
}

func fakeHash(p string) (string, error) { return "hashed:" + p, nil }

func newWorld(t *testing.T, tx ...uow.UnitOfWork) *world {
	env := fixture.New(t)
	w := &world{
		Env:      env,
		lender:   env.User(t, "lender@x.test", user.RoleLender),
		borrower: env.User(t, "borrower@x.test", user.RoleBorrower),
		sent:     &notifymock.Recorder{},
	}
	var unit uow.UnitOfWork = env.UoW
	if len(tx) > 0 {
		unit = tx[0]
	}
	engine := latefee.NewEngine(env.Loans, env.UoW, latefee.WithLogger(logging.Discard()))
	w.uc = NewUsecase(env.Loans, unit, engine, w.sent,
		WithLogger(logging.Discard()),
		WithClock(func() time.Time { return clock }),
		WithPasswordHasher(fakeHash))
	return w
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decEq(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("%s = %s, want %s", what, got, want)
	}
}

func input(email string) CreateLoanInput {
	return CreateLoanInput{
		BorrowerEmail: email,
		Principal:     dec("12000"),
		InterestRate:  decimal.Zero,
		Tenure:        12,
		StartDate:     "2024-01-01",
	}
}

func TestCreate_ZeroRateSchedule(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	dto, err := w.uc.Create(ctx, w.Actor(w.lender), input(" Borrower@X.test "))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Status != domain.StatusActive || dto.Tenure != 12 {
		t.Fatalf("unexpected loan %+v", dto)
	}
	decEq(t, "emi", dto.EMI, "1000")
	decEq(t, "late fee", dto.LateFee, "500")
	if dto.Borrower.UserID != w.borrower.UserID || dto.Lender.UserID != w.lender.UserID {
		t.Fatalf("parties = %+v / %+v", dto.Lender, dto.Borrower)
	}

	stored, err := w.Loans.GetByLoanID(ctx, dto.LoanID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Installments) != 12 {
		t.Fatalf("installments = %d, want 12", len(stored.Installments))
	}
	for i, it := range stored.Installments {
		want := time.Date(2024, time.Month(2+i), 1, 0, 0, 0, 0, time.UTC)
		if !it.DueDate.Equal(want) {
			t.Fatalf("installment %d due %s, want %s", i+1, it.DueDate, want)
		}
		if it.Sequence != i+1 || it.Status != installment.StatusPending {
			t.Fatalf("installment %d: %+v", i+1, it)
		}
		decEq(t, "amount", it.Amount, "1000")
	}
	if last := stored.Installments[11].DueDate; last.Format("2006-01-02") != "2025-01-01" {
		t.Fatalf("last due = %s", last)
	}

	if got := w.sent.To(w.borrower.Email); len(got) != 1 || !strings.HasPrefix(got[0], "New loan recorded") {
		t.Fatalf("borrower notices = %v", got)
	}
}

func TestCreate_InterestBearingEMI(t *testing.T) {
	w := newWorld(t)
	in := input(w.borrower.Email)
	in.Principal = dec("100000")
	in.InterestRate = dec("12")
	fee := dec("250")
	in.LateFee = &fee
	in.Name = "Home repair"

	dto, err := w.uc.Create(context.Background(), w.Actor(w.lender), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	decEq(t, "emi", dto.EMI, "8884.88")
	decEq(t, "late fee", dto.LateFee, "250")
	if dto.Name != "Home repair" || len(dto.Installments) != 12 {
		t.Fatalf("unexpected loan %+v", dto)
	}
}

func TestCreate_ProvisionsBorrower(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	in := input("new@x.test")
	in.NewBorrower = true
	in.BorrowerName = "Nina"

	dto, err := w.uc.Create(ctx, w.Actor(w.lender), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	u, err := w.Users.GetByEmail(ctx, "new@x.test")
	if err != nil {
		t.Fatalf("borrower not provisioned: %v", err)
	}
	if u.Role != user.RoleBorrower || u.Name != "Nina" || dto.Borrower.UserID != u.UserID {
		t.Fatalf("provisioned %+v", u)
	}
	if !strings.HasPrefix(u.PasswordHash, "hashed:") {
		t.Fatalf("password not hashed: %q", u.PasswordHash)
	}

	msgs := w.sent.Messages()
	if len(msgs) != 2 {
		t.Fatalf("notices = %d, want welcome + loan", len(msgs))
	}
	temp := strings.TrimPrefix(u.PasswordHash, "hashed:")
	if !strings.Contains(msgs[0].Body, temp) {
		t.Fatalf("welcome does not carry the temporary password: %q", msgs[0].Body)
	}
}

func TestCreate_Guards(t *testing.T) {
	w := newWorld(t)
	w.User(t, "other-lender@x.test", user.RoleLender)

	cases := []struct {
		name string
		mut  func(*CreateLoanInput)
		want error
	}{
		{"self", func(in *CreateLoanInput) { in.BorrowerEmail = "LENDER@x.test" }, domain.ErrSelfLending},
		{"self provisioned", func(in *CreateLoanInput) { in.BorrowerEmail = "lender@x.test"; in.NewBorrower = true }, domain.ErrSelfLending},
		{"unknown borrower", func(in *CreateLoanInput) { in.BorrowerEmail = "ghost@x.test" }, domain.ErrBorrowerNotFound},
		{"existing as new", func(in *CreateLoanInput) { in.NewBorrower = true }, domain.ErrBorrowerExists},
		{"not a borrower", func(in *CreateLoanInput) { in.BorrowerEmail = "other-lender@x.test" }, domain.ErrNotBorrowerRole},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := input(w.borrower.Email)
			c.mut(&in)
			_, err := w.uc.Create(context.Background(), w.Actor(w.lender), in)
			if !errors.Is(err, c.want) {
				t.Fatalf("err = %v, want %v", err, c.want)
			}
			if !errors.Is(err, errs.ErrValidation) {
				t.Fatalf("guard must be a validation error, got %v", err)
			}
		})
	}

	loans, err := w.Loans.ListByLender(context.Background(), w.lender.UserID)
	if err != nil || len(loans) != 0 {
		t.Fatalf("no loan may be written, got %d (%v)", len(loans), err)
	}
	if len(w.sent.Messages()) != 0 {
		t.Fatal("nothing may be sent")
	}
}

func TestCreate_Validation(t *testing.T) {
	w := newWorld(t)
	neg := dec("-1")
	in := CreateLoanInput{
		BorrowerEmail: "not-an-email",
		Principal:     dec("10.005"),
		InterestRate:  dec("101"),
		Tenure:        0,
		StartDate:     "01/02/2024",
		LateFee:       &neg,
		Name:          strings.Repeat("n", 256),
	}
	_, err := w.uc.Create(context.Background(), w.Actor(w.lender), in)
	var ve *errs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	got := map[string]bool{}
	for _, f := range ve.Fields {
		got[f.Field] = true
	}
	for _, f := range []string{"borrower_email", "principal", "interest_rate", "tenure", "start_date", "late_fee", "name"} {
		if !got[f] {
			t.Errorf("missing field error for %s (got %v)", f, ve.Fields)
		}
	}

	in = input(w.borrower.Email)
	in.Principal = decimal.Zero
	in.Tenure = MaxTenure + 1
	_, err = w.uc.Create(context.Background(), w.Actor(w.lender), in)
	if !errors.As(err, &ve) || len(ve.Fields) != 2 {
		t.Fatalf("want principal and tenure errors, got %v", err)
	}

	cases := []struct {
		name      string
		principal string
		tenure    int
		lateFee   string
		field     string
		msg       string
	}{
		{"installment rounds to zero", "1.00", MaxTenure, "", "principal", "too small for the tenure"},
		{"principal beyond money column", "1000000000000000.00", 12, "", "principal", "must be at most 999999999999999.99"},
		{"late fee beyond money column", "1200", 12, "1000000000000000", "late_fee", "must be at most"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := input(w.borrower.Email)
			in.Principal = dec(tc.principal)
			in.Tenure = tc.tenure
			if tc.lateFee != "" {
				fee := dec(tc.lateFee)
				in.LateFee = &fee
			}
			_, err := w.uc.Create(context.Background(), w.Actor(w.lender), in)
			var ve *errs.ValidationError
			if !errors.As(err, &ve) || len(ve.Fields) != 1 {
				t.Fatalf("want one field error, got %v", err)
			}
			if ve.Fields[0].Field != tc.field || !strings.Contains(ve.Fields[0].Message, tc.msg) {
				t.Fatalf("field error = %+v", ve.Fields[0])
			}
		})
	}
	if loans, _ := w.Loans.ListByLender(context.Background(), w.lender.UserID); len(loans) != 0 {
		t.Fatalf("rejected loans were stored: %d", len(loans))
	}
}

func TestCreate_RequiresLender(t *testing.T) {
	w := newWorld(t)
	for _, a := range []user.Actor{w.Actor(w.borrower), {}, {UserID: "root", Role: user.RoleAdmin}} {
		if _, err := w.uc.Create(context.Background(), a, input(w.borrower.Email)); !errors.Is(err, errs.ErrUnauthorized) {
			t.Fatalf("actor %+v: err = %v", a, err)
		}
	}
}

func TestCreate_AllOrNothing(t *testing.T) {
	env := fixture.New(t)
	boom := errors.New("disk full")
	tx := uowmock.Intercept(env.UoW, func(r uow.Repos) uow.Repos {
		r.Installments = &installmentmock.Repo{
			CreateBatchFn: func(context.Context, []installment.Installment) error { return boom },
		}
		return r
	})
	lender := env.User(t, "lender@x.test", user.RoleLender)
	sent := &notifymock.Recorder{}
	uc := NewUsecase(env.Loans, tx, nil, sent, WithLogger(logging.Discard()), WithPasswordHasher(fakeHash))

	in := input("fresh@x.test")
	in.NewBorrower = true
	_, err := uc.Create(context.Background(), env.Actor(lender), in)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	if _, err := env.Users.GetByEmail(context.Background(), "fresh@x.test"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("borrower must be rolled back, got %v", err)
	}
	if loans, _ := env.Loans.ListByLender(context.Background(), lender.UserID); len(loans) != 0 {
		t.Fatalf("loan must be rolled back, got %d", len(loans))
	}
	if len(sent.Messages()) != 0 {
		t.Fatal("no notification after rollback")
	}
}

// seed loan: 3000 over 3 months from 2023-12-15; at clock the first installment is late.
func (w *world) seed(t *testing.T) *domain.Loan {
	return w.Loan(t, w.lender, w.borrower, fixture.LoanSpec{Principal: "3000", Tenure: 3, Start: "2023-12-15", Name: "Bike"})
}

func TestList_SweepsFirst(t *testing.T) {
	w := newWorld(t)
	w.seed(t)
	ctx := context.Background()

	got, err := w.uc.ListForLender(ctx, w.Actor(w.lender))
	if err != nil || len(got) != 1 {
		t.Fatalf("list: %v (%d)", err, len(got))
	}
	l := got[0]
	if l.Installments[0].Status != installment.StatusOverdue || l.Installments[1].Status != installment.StatusPending {
		t.Fatalf("statuses = %s, %s", l.Installments[0].Status, l.Installments[1].Status)
	}
	decEq(t, "late fee", l.Installments[0].LateFee, "500")
	decEq(t, "no fee", l.Installments[1].LateFee, "0")
	decEq(t, "total charges", l.TotalCharges, "500")
	decEq(t, "amount due", l.AmountDue, "3000")
	if len(l.Charges) != 1 || l.Charges[0].Kind != charge.KindLateFee || l.Charges[0].DueDate != "2024-01-15" {
		t.Fatalf("charges = %+v", l.Charges)
	}

	mine, err := w.uc.ListForBorrower(ctx, w.Actor(w.borrower))
	if err != nil || len(mine) != 1 || len(mine[0].Charges) != 1 {
		t.Fatalf("borrower list: %v %+v", err, mine)
	}
	if mine[0].Lender.Email != w.lender.Email {
		t.Fatalf("counterpart = %+v", mine[0].Lender)
	}
}

func TestList_RoleChecked(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	if _, err := w.uc.ListForLender(ctx, w.Actor(w.borrower)); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("borrower listing lender loans: %v", err)
	}
	if _, err := w.uc.ListForBorrower(ctx, w.Actor(w.lender)); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("lender listing borrower loans: %v", err)
	}
	got, err := w.uc.ListForLender(ctx, w.Actor(w.lender))
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("empty list = %v %v", got, err)
	}
}

func TestList_NewestFirstWithProgress(t *testing.T) {
	w := newWorld(t)
	first := w.Loan(t, w.lender, w.borrower, fixture.LoanSpec{Principal: "400", Tenure: 4, Start: "2024-02-01", Name: "first"})
	w.Loan(t, w.lender, w.borrower, fixture.LoanSpec{Principal: "100", Tenure: 1, Start: "2024-02-01", Name: "second"})
	items := w.Schedule(t, first)
	w.SetStatus(t, items[0], installment.StatusPaid)

	got, err := w.uc.ListForLender(context.Background(), w.Actor(w.lender))
	if err != nil || len(got) != 2 {
		t.Fatalf("list: %v", err)
	}
	if got[0].Name != "second" || got[1].Name != "first" {
		t.Fatalf("order = %s, %s", got[0].Name, got[1].Name)
	}
	if got[1].PaidCount != 1 || got[1].Progress != 25 {
		t.Fatalf("progress = %d/%d%%", got[1].PaidCount, got[1].Progress)
	}
	decEq(t, "paid", got[1].AmountPaid, "100")
	decEq(t, "due", got[1].AmountDue, "300")
}

func TestGet_Visibility(t *testing.T) {
	w := newWorld(t)
	l := w.seed(t)
	stranger := w.User(t, "stranger@x.test", user.RoleLender)
	admin := w.User(t, "admin@x.test", user.RoleAdmin)
	ctx := context.Background()

	for _, a := range []user.Actor{w.Actor(w.lender), w.Actor(w.borrower), w.Actor(admin)} {
		dto, err := w.uc.Get(ctx, a, l.LoanID)
		if err != nil || dto.LoanID != l.LoanID {
			t.Fatalf("actor %s: %v", a.Role, err)
		}
	}
	if _, err := w.uc.Get(ctx, w.Actor(stranger), l.LoanID); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("stranger: %v", err)
	}
	if _, err := w.uc.Get(ctx, w.Actor(w.lender), "missing"); !errors.Is(err, errs.ErrUnauthorized) || errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("missing loan must not leak for lender: %v", err)
	}
	if _, err := w.uc.Get(ctx, w.Actor(admin), "missing"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("admin sees not found: %v", err)
	}
	if _, err := w.uc.Get(ctx, user.Actor{}, l.LoanID); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("anonymous: %v", err)
	}
}

func TestGet_ShowsSweptState(t *testing.T) {
	w := newWorld(t)
	l := w.seed(t)

	dto, err := w.uc.Get(context.Background(), w.Actor(w.borrower), l.LoanID)
	if err != nil {
		t.Fatal(err)
	}
	if dto.Installments[0].Status != installment.StatusOverdue {
		t.Fatalf("status = %s", dto.Installments[0].Status)
	}
	decEq(t, "fee", dto.Installments[0].LateFee, "500")
	if n := len(w.ChargesOf(t, l)); n != 1 {
		t.Fatalf("charges = %d", n)
	}
}

func TestToggleArchive(t *testing.T) {
	w := newWorld(t)
	l := w.seed(t)
	ctx := context.Background()

	dto, err := w.uc.ToggleArchive(ctx, w.Actor(w.lender), l.LoanID)
	if err != nil || !dto.Archived {
		t.Fatalf("archive: %v %+v", err, dto)
	}
	// archived loans are not swept
	if _, err := w.uc.ListForLender(ctx, w.Actor(w.lender)); err != nil {
		t.Fatal(err)
	}
	if n := len(w.ChargesOf(t, l)); n != 0 {
		t.Fatalf("archived loan accrued %d charges", n)
	}

	dto, err = w.uc.ToggleArchive(ctx, w.Actor(w.lender), l.LoanID)
	if err != nil || dto.Archived {
		t.Fatalf("unarchive: %v %+v", err, dto)
	}

	other := w.User(t, "other@x.test", user.RoleLender)
	for name, a := range map[string]user.Actor{"borrower": w.Actor(w.borrower), "other lender": w.Actor(other)} {
		if _, err := w.uc.ToggleArchive(ctx, a, l.LoanID); !errors.Is(err, errs.ErrUnauthorized) {
			t.Fatalf("%s: %v", name, err)
		}
	}
	if _, err := w.uc.ToggleArchive(ctx, w.Actor(w.lender), "missing"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("missing: %v", err)
	}
}

func TestAddCharge(t *testing.T) {
	w := newWorld(t)
	l := w.Loan(t, w.lender, w.borrower, fixture.LoanSpec{Principal: "1200", Tenure: 12, Start: "2024-02-01"})
	ctx := context.Background()

	c, err := w.uc.AddCharge(ctx, w.Actor(w.lender), l.LoanID, AddChargeInput{Amount: dec("75.5"), Reason: " Courier "})
	if err != nil {
		t.Fatalf("add charge: %v", err)
	}
	if c.Kind != charge.KindAdhoc || c.Reason != "Courier" || c.ChargedOn != "2024-02-03" || c.DueDate != "" {
		t.Fatalf("charge = %+v", c)
	}
	// two ad-hoc charges never collide
	if _, err := w.uc.AddCharge(ctx, w.Actor(w.lender), l.LoanID, AddChargeInput{Amount: dec("10"), Reason: "Stamp"}); err != nil {
		t.Fatalf("second charge: %v", err)
	}
	if n := len(w.ChargesOf(t, l)); n != 2 {
		t.Fatalf("charges = %d", n)
	}

	var ve *errs.ValidationError
	if _, err := w.uc.AddCharge(ctx, w.Actor(w.lender), l.LoanID, AddChargeInput{Amount: decimal.Zero}); !errors.As(err, &ve) || len(ve.Fields) != 2 {
		t.Fatalf("validation: %v", err)
	}
	huge := domain.MaxAmount.Add(dec("0.01"))
	if _, err := w.uc.AddCharge(ctx, w.Actor(w.lender), l.LoanID, AddChargeInput{Amount: huge, Reason: "x"}); !errors.As(err, &ve) || ve.Fields[0].Field != "amount" {
		t.Fatalf("oversized charge: %v", err)
	}
	if _, err := w.uc.AddCharge(ctx, w.Actor(w.borrower), l.LoanID, AddChargeInput{Amount: dec("1"), Reason: "x"}); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("borrower: %v", err)
	}
	if _, err := w.uc.AddCharge(ctx, w.Actor(w.lender), "missing", AddChargeInput{Amount: dec("1"), Reason: "x"}); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("missing: %v", err)
	}
}

func TestLenderSummary(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	bike := w.seed(t)
	second := w.User(t, "second@x.test", user.RoleBorrower)
	shelved := w.Loan(t, w.lender, second, fixture.LoanSpec{Principal: "6000", Tenure: 2, Start: "2024-01-10"})
	if _, err := w.uc.ToggleArchive(ctx, w.Actor(w.lender), shelved.LoanID); err != nil {
		t.Fatal(err)
	}

	// January's installment was paid on 2 February
	items := w.Schedule(t, bike)
	paidAt := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)
	if err := w.DB.Model(&installment.Installment{}).Where("id = ?", items[0].ID).
		Updates(map[string]any{"status": installment.StatusPaid, "paid_at": paidAt}).Error; err != nil {
		t.Fatal(err)
	}

	s, err := w.uc.LenderSummary(ctx, w.Actor(w.lender), clock)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	decEq(t, "expected", s.MonthExpected, "1000")
	decEq(t, "received", s.MonthReceived, "1000")
	decEq(t, "pending", s.MonthPending, "1000")
	decEq(t, "overdue", s.TotalOverdue, "0")
	decEq(t, "lent", s.TotalLent, "9000")
	if s.ActiveLoans != 2 || s.Borrowers != 2 {
		t.Fatalf("active=%d borrowers=%d", s.ActiveLoans, s.Borrowers)
	}
	if len(s.Upcoming) != 2 || s.Upcoming[0].DueDate != "2024-02-15" || s.Upcoming[1].DueDate != "2024-03-15" {
		t.Fatalf("upcoming = %+v", s.Upcoming)
	}
	if s.Upcoming[0].LoanName != "Bike" || s.Upcoming[0].BorrowerName != w.borrower.DisplayName() {
		t.Fatalf("upcoming labels = %+v", s.Upcoming[0])
	}
}

func TestLenderSummary_OverdueAndLimit(t *testing.T) {
	w := newWorld(t)
	l := w.seed(t)
	w.Loan(t, w.lender, w.borrower, fixture.LoanSpec{Principal: "1200", Tenure: 12, Start: "2024-03-01"})

	s, err := w.uc.LenderSummary(context.Background(), w.Actor(w.lender), clock)
	if err != nil {
		t.Fatal(err)
	}
	decEq(t, "overdue", s.TotalOverdue, "1000")
	if len(s.Upcoming) != upcomingLimit {
		t.Fatalf("upcoming = %d", len(s.Upcoming))
	}
	if !s.Upcoming[0].Overdue || s.Upcoming[0].Status != installment.StatusOverdue || s.Upcoming[0].DueDate != "2024-01-15" {
		t.Fatalf("first upcoming = %+v", s.Upcoming[0])
	}
	if n := len(w.ChargesOf(t, l)); n != 1 {
		t.Fatalf("summary must sweep first, charges = %d", n)
	}

	if _, err := w.uc.LenderSummary(context.Background(), w.Actor(w.borrower), clock); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("borrower: %v", err)
	}
}

func TestStatement(t *testing.T) {
	w := newWorld(t)
	l := w.seed(t)
	ctx := context.Background()

	f, err := w.uc.Statement(ctx, w.Actor(w.borrower), l.LoanID)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if f.FileName != "statement_"+l.LoanID+"_20240203.xlsx" {
		t.Fatalf("file name = %s", f.FileName)
	}
	book, err := excelize.OpenReader(bytes.NewReader(f.Data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer book.Close()
	rows, err := book.GetRows(export.SheetSchedule)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("schedule rows = %d, want header + 3", len(rows))
	}
	if rows[1][3] != string(installment.StatusOverdue) {
		t.Fatalf("first row = %v", rows[1])
	}

	stranger := w.User(t, "stranger@x.test", user.RoleBorrower)
	if _, err := w.uc.Statement(ctx, w.Actor(stranger), l.LoanID); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("stranger: %v", err)
	}
}
