package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

type CartLine struct {
	ID       uuid.UUID       `json:"id"`
	Product  models.Product  `json:"product"`
	Quantity uint            `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}

type CartView struct {
	Lines []CartLine      `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// AddToCart puts one unit of the product into the user's cart, merging with
// an existing line for the same product.
func (s *CartService) AddToCart(ctx context.Context, userID uuid.UUID, productSlug string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add", "user_id", userID, "slug", productSlug)

	p, err := s.Repo.GetProductBySlug(ctx, productSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %q: %w", productSlug, ErrNotFound)
		}
		return nil, err
	}

	line, err := s.Repo.AddToCart(ctx, userID, p.ID)
	if err != nil {
		return nil, err
	}
	metrics.CartAdditions.Inc()

	s.publish(ctx, userID, events.CartEvent{
		Type:        "add_to_cart",
		UserID:      userID.String(),
		ProductSlug: p.Slug,
		Quantity:    line.Quantity,
		OccurredAt:  time.Now().UTC(),
	})
	l.Info("product added to cart", "quantity", line.Quantity)
	return line, nil
}

// GetCart returns an empty view when the user has no cart.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	cart, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CartView{Lines: []CartLine{}, Total: decimal.Zero}, nil
		}
		return nil, err
	}

	v := &CartView{Lines: make([]CartLine, 0, len(cart.Orders)), Total: decimal.Zero}
	for _, o := range cart.Orders {
		total := o.Product.Price.Mul(decimal.NewFromInt(int64(o.Quantity)))
		v.Lines = append(v.Lines, CartLine{ID: o.ID, Product: o.Product, Quantity: o.Quantity, Total: total})
		v.Total = v.Total.Add(total)
	}
	return v, nil
}

func (s *CartService) UpdateQuantities(ctx context.Context, userID uuid.UUID, quantities map[uuid.UUID]uint) error {
	if len(quantities) == 0 {
		return fmt.Errorf("no lines to update: %w", ErrValidation)
	}
	for id, q := range quantities {
		if q < 1 {
			return fmt.Errorf("quantity of %s must be at least 1: %w", id, ErrValidation)
		}
	}

	if err := s.Repo.UpdateQuantities(ctx, userID, quantities); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("cart line: %w", ErrNotFound)
		}
		return err
	}
	return nil
}

// DeleteCart drops the user's cart, leaving its lines as ordered history.
func (s *CartService) DeleteCart(ctx context.Context, userID uuid.UUID) error {
	_, deleted, err := s.Repo.DeleteCart(ctx, userID)
	if err != nil {
		return err
	}
	if deleted {
		s.publish(ctx, userID, events.CartEvent{
			Type:       "cart_deleted",
			UserID:     userID.String(),
			OccurredAt: time.Now().UTC(),
		})
	}
	return nil
}

func (s *CartService) publish(ctx context.Context, userID uuid.UUID, ev events.CartEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishEvent(ctx, events.CartTopic, userID.String(), ev); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "svc", "cart", "type", ev.Type, "error", err)
	}
}
