package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"flexemi-backend/internal/domain/errs"
	"flexemi-backend/internal/domain/user"
	"flexemi-backend/internal/infrastructure/logging"
	"flexemi-backend/internal/testutil/fixture"
	"flexemi-backend/internal/testutil/loanmock"
	"flexemi-backend/internal/testutil/usermock"
	"flexemi-backend/internal/usecase/latefee"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 2, 3, 8, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Usecase, *fixture.Env) {
	env := fixture.New(t)
	engine := latefee.NewEngine(env.Loans, env.UoW, latefee.WithLogger(logging.Discard()))
	return NewUsecase(env.Users, env.Loans, engine, logging.Discard()), env
}

func TestStats(t *testing.T) {
	uc, env := setup(t)
	admin := env.User(t, "admin@x.test", user.RoleAdmin)
	lender := env.User(t, "lender@x.test", user.RoleLender)
	borrower := env.User(t, "borrower@x.test", user.RoleBorrower)
	env.Loan(t, lender, borrower, fixture.LoanSpec{Principal: "1000", Tenure: 2, Start: "2024-01-01"})
	env.Loan(t, lender, borrower, fixture.LoanSpec{Principal: "2500.50", Tenure: 5, Start: "2024-01-01"})

	s, err := uc.Stats(context.Background(), env.Actor(admin))
	require.NoError(t, err)
	assert.EqualValues(t, 3, s.TotalUsers)
	assert.EqualValues(t, 2, s.TotalLoans)
	assert.True(t, s.TotalLent.Equal(decimal.RequireFromString("3500.50")), "total lent = %s", s.TotalLent)
	assert.Len(t, s.RecentUsers, 3)

	_, err = uc.Stats(context.Background(), env.Actor(lender))
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestStats_StoreError(t *testing.T) {
	boom := errors.New("db down")
	uc := NewUsecase(&usermock.Repo{CountFn: func(context.Context) (int64, error) { return 0, boom }}, &loanmock.Repo{}, nil, logging.Discard())
	_, err := uc.Stats(context.Background(), user.Actor{UserID: "root", Role: user.RoleAdmin})
	assert.ErrorIs(t, err, boom)
}

func TestSweepLateFees_Scope(t *testing.T) {
	uc, env := setup(t)
	admin := env.User(t, "admin@x.test", user.RoleAdmin)
	a := env.User(t, "a@x.test", user.RoleLender)
	b := env.User(t, "b@x.test", user.RoleLender)
	borrower := env.User(t, "borrower@x.test", user.RoleBorrower)
	spec := fixture.LoanSpec{Principal: "3000", Tenure: 3, Start: "2023-12-15"}
	env.Loan(t, a, borrower, spec)
	env.Loan(t, b, borrower, spec)
	ctx := context.Background()

	res, err := uc.SweepLateFees(ctx, env.Actor(a), now)
	require.NoError(t, err)
	assert.Equal(t, 1, res.LoansScanned)
	assert.Equal(t, 1, res.ChargesAdded)

	res, err = uc.SweepLateFees(ctx, env.Actor(admin), now)
	require.NoError(t, err)
	assert.Equal(t, 2, res.LoansScanned)
	assert.Equal(t, 1, res.ChargesAdded, "lender a's loan was already charged")

	_, err = uc.SweepLateFees(ctx, env.Actor(borrower), now)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}
