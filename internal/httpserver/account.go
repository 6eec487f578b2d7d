package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type AccountHTTP struct {
	Svc *service.AccountService
}

func (h *AccountHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.signup")

	var req transport.CredentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	u, err := h.Svc.Signup(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("signup_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrConflict):
			l.Warn("signup_error", "status", 409, "error", err)
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		}
		l.Error("signup_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create account")
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *AccountHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.login")

	var req transport.CredentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			l.Warn("login_error", "status", 401, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		}
		l.Error("login_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot log in")
	}

	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, res.AccessToken, "/", res.AccessExp))
	return c.JSON(http.StatusOK, res.Shopper)
}

func (h *AccountHTTP) Logout(c echo.Context) error {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *AccountHTTP) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.profile")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("profile_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	p, err := h.Svc.Profile(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("profile_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "shopper not found")
		}
		l.Error("profile_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load profile")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AccountHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.profile_update")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("profile_update_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.ProfileRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("profile_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, err := h.Svc.UpdateProfile(ctx, userID, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("profile_update_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "shopper not found")
		}
		l.Error("profile_update_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update profile")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AccountHTTP) SetDefaultShipping(c echo.Context) error {
	return h.addressAction(c, "set_default_shipping", h.Svc.SetDefaultAddress)
}

func (h *AccountHTTP) DeleteAddress(c echo.Context) error {
	return h.addressAction(c, "delete_address", h.Svc.DeleteAddress)
}

func (h *AccountHTTP) addressAction(c echo.Context, op string, action func(ctx context.Context, userID, addressID uuid.UUID) error) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account."+op)

	userID, err := GetID(c)
	if err != nil {
		l.Warn(op+"_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	addressID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn(op+"_error", "status", 400, "reason", "id not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id not a uuid")
	}

	if err := action(ctx, userID, addressID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn(op+"_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "address not found")
		}
		l.Error(op+"_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update address")
	}

	return c.Redirect(http.StatusSeeOther, "/account/profile")
}

func (h *AccountHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.orders")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("get_orders_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	orders, err := h.Svc.Orders(ctx, userID)
	if err != nil {
		l.Error("get_orders_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list orders")
	}
	return c.JSON(http.StatusOK, orders)
}
