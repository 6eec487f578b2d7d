package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// maxWebhookBody caps the notification body read into memory.
const maxWebhookBody = 65536

type CheckoutHTTP struct {
	Svc           *service.CheckoutService
	Webhooks      *service.WebhookService
	PublicBaseURL string
}

func (h *CheckoutHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.create")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("checkout_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	base := baseURL(c, h.PublicBaseURL)
	session, err := h.Svc.CreateSession(ctx, userID, service.RedirectURLs{
		Success: base + "/store/checkout/success",
		Cancel:  base + "/store/cart",
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("checkout_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNotFound):
			l.Warn("checkout_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "shopper not found")
		}
		l.Error("checkout_error", "status", 502, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "cannot open checkout session")
	}

	return c.Redirect(http.StatusSeeOther, session.URL)
}

func (h *CheckoutHTTP) Success(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "payment received, thank you for your order"})
}

func (h *CheckoutHTTP) StripeWebhook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.webhook")

	payload, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			l.Warn("webhook_error", "status", 413, "reason", "body too large", "limit", tooLarge.Limit)
			return c.NoContent(http.StatusRequestEntityTooLarge)
		}
		l.Warn("webhook_error", "status", 400, "reason", "cannot read body", "error", err)
		return c.NoContent(http.StatusBadRequest)
	}

	outcome, err := h.Webhooks.Handle(ctx, payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrValidation):
			l.Warn("webhook_error", "status", 400, "error", err)
			return c.NoContent(http.StatusBadRequest)
		case errors.Is(err, service.ErrNotFound):
			l.Warn("webhook_error", "status", 404, "error", err)
			return c.String(http.StatusNotFound, "Invalid user email")
		}
		l.Error("webhook_error", "status", 500, "error", err)
		return c.NoContent(http.StatusInternalServerError)
	}

	l.Debug("webhook_done", "outcome", outcome)
	return c.NoContent(http.StatusOK)
}
