package http

import (
	"net/http"

	"flexemi-backend/internal/usecase/loan"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type createLoanReq struct {
	BorrowerEmail string           `json:"borrower_email" validate:"required,email,max=255"`
	NewBorrower   bool             `json:"new_borrower"`
	BorrowerName  string           `json:"borrower_name"  validate:"max=255"`
	Name          string           `json:"name"           validate:"max=255"`
	Principal     decimal.Decimal  `json:"principal"      validate:"gt=0,dec2"`
	InterestRate  decimal.Decimal  `json:"interest_rate"  validate:"gte=0,lte=100,dec2"`
	Tenure        int              `json:"tenure"         validate:"gte=1,lte=600"`
	StartDate     string           `json:"start_date"     validate:"required,datetime=2006-01-02"`
	LateFee       *decimal.Decimal `json:"late_fee"       validate:"omitempty,gte=0,dec2"`
}

type addChargeReq struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0,dec2"`
	Reason string          `json:"reason" validate:"required,max=255"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Create(c.Request().Context(), actor(c), loan.CreateLoanInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) ListLender(c echo.Context) error {
	out, err := h.uc.ListForLender(c.Request().Context(), actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) ListBorrower(c echo.Context) error {
	out, err := h.uc.ListForBorrower(c.Request().Context(), actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) Summary(c echo.Context) error {
	out, err := h.uc.LenderSummary(c.Request().Context(), actor(c), nowFn())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	loanID, ok := idParam(c, "loan_id")
	if !ok {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	}
	dto, err := h.uc.Get(c.Request().Context(), actor(c), loanID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Statement(c echo.Context) error {
	loanID, ok := idParam(c, "loan_id")
	if !ok {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	}
	f, err := h.uc.Statement(c.Request().Context(), actor(c), loanID)
	if err != nil {
		return writeError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+f.FileName+`"`)
	return c.Blob(http.StatusOK, mimeXLSX, f.Data)
}

func (h *LoanHandler) ToggleArchive(c echo.Context) error {
	loanID, ok := idParam(c, "loan_id")
	if !ok {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	}
	dto, err := h.uc.ToggleArchive(c.Request().Context(), actor(c), loanID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) AddCharge(c echo.Context) error {
	loanID, ok := idParam(c, "loan_id")
	if !ok {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	}
	var req addChargeReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.AddCharge(c.Request().Context(), actor(c), loanID, loan.AddChargeInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}
