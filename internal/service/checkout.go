package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/payments"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type RedirectURLs struct {
	Success string
	Cancel  string
}

type CheckoutService struct {
	Repo     *repo.GormRepo
	Payments payments.Processor
}

// CreateSession opens a hosted checkout for the user's cart. The cart is
// left as is; it is cleared when the processor reports the payment.
func (s *CheckoutService) CreateSession(ctx context.Context, userID uuid.UUID, urls RedirectURLs) (*payments.CheckoutSession, error) {
	l := logging.FromContext(ctx).With("svc", "checkout.create", "user_id", userID)

	u, err := s.Repo.GetShopperByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("shopper %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}

	cart, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no cart: %w", ErrValidation)
		}
		return nil, err
	}
	if len(cart.Orders) == 0 {
		return nil, fmt.Errorf("cart is empty: %w", ErrValidation)
	}

	req := payments.CheckoutRequest{
		LineItems:  make([]payments.LineItem, 0, len(cart.Orders)),
		SuccessURL: urls.Success,
		CancelURL:  urls.Cancel,
	}
	for _, o := range cart.Orders {
		if o.Product.StripeID == "" {
			return nil, fmt.Errorf("product %q has no price id: %w", o.Product.Slug, ErrValidation)
		}
		req.LineItems = append(req.LineItems, payments.LineItem{
			PriceID:  o.Product.StripeID,
			Quantity: int64(o.Quantity),
		})
	}
	if u.StripeID != "" {
		req.CustomerID = u.StripeID
	} else {
		req.CustomerEmail = u.Email
	}

	session, err := s.Payments.CreateCheckoutSession(ctx, req)
	if err != nil {
		return nil, err
	}
	l.Info("checkout session created", "session_id", session.ID, "lines", len(req.LineItems))
	return session, nil
}
