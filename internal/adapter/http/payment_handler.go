package http

import (
	"context"
	"net/http"

	"flexemi-backend/internal/domain/user"
	"flexemi-backend/internal/usecase/payment"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct{ uc *payment.Usecase }

func NewPaymentHandler(uc *payment.Usecase) *PaymentHandler { return &PaymentHandler{uc: uc} }

type rejectReq struct {
	Reason string `json:"reason" validate:"max=500"`
}

type transition func(ctx context.Context, installmentID string, a user.Actor) (*payment.InstallmentDTO, error)

func (h *PaymentHandler) run(c echo.Context, fn transition) error {
	id, ok := idParam(c, "installment_id")
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	}
	dto, err := fn(c.Request().Context(), id, actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *PaymentHandler) Submit(c echo.Context) error { return h.run(c, h.uc.Submit) }

func (h *PaymentHandler) Approve(c echo.Context) error { return h.run(c, h.uc.Approve) }

func (h *PaymentHandler) MarkUnpaid(c echo.Context) error { return h.run(c, h.uc.MarkUnpaid) }

func (h *PaymentHandler) Reject(c echo.Context) error {
	var req rejectReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	return h.run(c, func(ctx context.Context, id string, a user.Actor) (*payment.InstallmentDTO, error) {
		return h.uc.Reject(ctx, id, a, payment.RejectInput(req))
	})
}
