package http

import (
	"log/slog"
	"time"

	"flexemi-backend/internal/adapter/middleware"
	"flexemi-backend/internal/infrastructure/metrics"
	"flexemi-backend/internal/usecase/admin"
	"flexemi-backend/internal/usecase/loan"
	"flexemi-backend/internal/usecase/payment"
	userUC "flexemi-backend/internal/usecase/user"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

var nowFn = time.Now

type Deps struct {
	Users    *userUC.Usecase
	Loans    *loan.Usecase
	Payments *payment.Usecase
	Admin    *admin.Usecase
	Tokens   middleware.TokenParser
	Redis    *redis.Client
	IdempTTL time.Duration
	Log      *slog.Logger
}

// Register mounts every route on e.
func Register(e *echo.Echo, d Deps) {
	if e.Validator == nil {
		e.Validator = NewValidator()
	}

	h := NewHandler()
	authH := NewAuthHandler(d.Users)
	loanH := NewLoanHandler(d.Loans)
	payH := NewPaymentHandler(d.Payments)
	adminH := NewAdminHandler(d.Admin)

	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	e.POST("/auth/register", authH.Register)
	e.POST("/auth/login", authH.Login)

	mw := []echo.MiddlewareFunc{middleware.JWTAuth(d.Tokens)}
	if d.Redis != nil {
		var opts []middleware.IdempotencyOption
		if d.Log != nil {
			opts = append(opts, middleware.WithIdempotencyLogger(d.Log))
		}
		mw = append(mw, middleware.Idempotency(d.Redis, d.IdempTTL, opts...))
	}
	api := e.Group("", mw...)

	api.POST("/loans", loanH.CreateLoan)
	api.GET("/lender/loans", loanH.ListLender)
	api.GET("/lender/summary", loanH.Summary)
	api.GET("/borrower/loans", loanH.ListBorrower)
	api.GET("/loans/:loan_id", loanH.GetLoan)
	api.GET("/loans/:loan_id/statement", loanH.Statement)
	api.POST("/loans/:loan_id/archive", loanH.ToggleArchive)
	api.POST("/loans/:loan_id/charges", loanH.AddCharge)

	api.POST("/installments/:installment_id/submit", payH.Submit)
	api.POST("/installments/:installment_id/approve", payH.Approve)
	api.POST("/installments/:installment_id/reject", payH.Reject)
	api.POST("/installments/:installment_id/unpaid", payH.MarkUnpaid)

	api.GET("/admin/stats", adminH.Stats)
	api.POST("/admin/late-fees/sweep", adminH.SweepLateFees)
}
