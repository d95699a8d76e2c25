// Package admin serves the operator views: platform totals and manual
// late-fee sweeps.
package admin

import (
	"context"
	"log/slog"
	"time"

	"flexemi-backend/internal/domain/errs"
	"flexemi-backend/internal/domain/loan"
	"flexemi-backend/internal/domain/user"
	"flexemi-backend/internal/usecase/latefee"
	userUC "flexemi-backend/internal/usecase/user"

	"github.com/shopspring/decimal"
)

const recentUsers = 5

type StatsDTO struct {
	TotalUsers  int64            `json:"total_users"`
	TotalLoans  int64            `json:"total_loans"`
	TotalLent   decimal.Decimal  `json:"total_lent"`
	RecentUsers []userUC.UserDTO `json:"recent_users"`
}

// Sweeper is the part of the late-fee engine the admin views drive.
type Sweeper interface {
	SweepAll(ctx context.Context, now time.Time) (latefee.Result, error)
	SweepForLender(ctx context.Context, actor user.Actor, now time.Time) (latefee.Result, error)
}

type Usecase struct {
	users   user.Repository
	loans   loan.Repository
	sweeper Sweeper
	log     *slog.Logger
}

func NewUsecase(users user.Repository, loans loan.Repository, sweeper Sweeper, log *slog.Logger) *Usecase {
	if log == nil {
		log = slog.Default()
	}
	return &Usecase{users: users, loans: loans, sweeper: sweeper, log: log}
}

func (u *Usecase) Stats(ctx context.Context, actor user.Actor) (*StatsDTO, error) {
	if !actor.Is(user.RoleAdmin) {
		return nil, errs.ErrUnauthorized
	}
	users, err := u.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	loans, lent, err := u.loans.Totals(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := u.users.ListRecent(ctx, recentUsers)
	if err != nil {
		return nil, err
	}
	out := &StatsDTO{TotalUsers: users, TotalLoans: loans, TotalLent: lent, RecentUsers: make([]userUC.UserDTO, 0, len(recent))}
	for i := range recent {
		out.RecentUsers = append(out.RecentUsers, userUC.ToDTO(&recent[i]))
	}
	return out, nil
}

// SweepLateFees runs the sweep over every active loan for admins, or over
// the caller's own loans for lenders.
func (u *Usecase) SweepLateFees(ctx context.Context, actor user.Actor, now time.Time) (*latefee.Result, error) {
	var (
		res latefee.Result
		err error
	)
	switch {
	case actor.Is(user.RoleAdmin):
		res, err = u.sweeper.SweepAll(ctx, now)
	case actor.Is(user.RoleLender):
		res, err = u.sweeper.SweepForLender(ctx, actor, now)
	default:
		return nil, errs.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	u.log.InfoContext(ctx, "late fee sweep",
		"actor_id", actor.UserID, "role", actor.Role,
		"loans", res.LoansScanned, "overdue", res.MarkedOverdue, "charges", res.ChargesAdded, "failed", res.Failed)
	return &res, nil
}
