package http

import (
	"errors"
	"net/http"

	"flexemi-backend/internal/domain/user"
	userUC "flexemi-backend/internal/usecase/user"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct{ uc *userUC.Usecase }

func NewAuthHandler(uc *userUC.Usecase) *AuthHandler { return &AuthHandler{uc: uc} }

type registerReq struct {
	Email    string    `json:"email"    validate:"required,email,max=255"`
	Name     string    `json:"name"     validate:"max=255"`
	Password string    `json:"password" validate:"required,min=8,max=72"`
	Role     user.Role `json:"role"     validate:"required,oneof=LENDER BORROWER"`
}

type loginReq struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Register(c.Request().Context(), userUC.RegisterInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	session, err := h.uc.Login(c.Request().Context(), userUC.LoginInput(req))
	if errors.Is(err, user.ErrInvalidCredentials) {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid email or password"})
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}
