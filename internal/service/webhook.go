package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/dedup"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payments"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
)

const (
	OutcomeProcessed = "processed"
	OutcomeIgnored   = "ignored"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
)

type WebhookService struct {
	Repo     *repo.GormRepo
	Payments payments.Processor
	Dedup    dedup.Deduper
	Events   events.Publisher
}

// Handle verifies and applies one processor notification and reports what
// was done with it. Errors wrap ErrUnauthenticated for a bad signature,
// ErrValidation for an unusable payload and ErrNotFound for an unknown
// customer.
func (s *WebhookService) Handle(ctx context.Context, payload []byte, signature string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "webhook")

	ev, err := s.Payments.ConstructEvent(payload, signature)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", OutcomeRejected).Inc()
		if errors.Is(err, payments.ErrSignature) {
			return OutcomeRejected, fmt.Errorf("%v: %w", err, ErrUnauthenticated)
		}
		return OutcomeRejected, fmt.Errorf("%v: %w", err, ErrValidation)
	}
	l = l.With("event_id", ev.ID, "type", ev.Type)

	outcome, err := s.handleEvent(ctx, ev)
	metrics.WebhookEvents.WithLabelValues(ev.Type, outcome).Inc()
	if err != nil {
		return outcome, err
	}
	l.Info("webhook handled", "outcome", outcome)
	return outcome, nil
}

func (s *WebhookService) handleEvent(ctx context.Context, ev *payments.Event) (string, error) {
	if ev.Type != payments.EventCheckoutSessionCompleted {
		return OutcomeIgnored, nil
	}

	if s.Dedup != nil {
		seen, err := s.Dedup.Seen(ctx, ev.ID)
		if err != nil {
			logging.FromContext(ctx).Warn("dedup_error", "svc", "webhook", "error", err)
		} else if seen {
			return OutcomeDuplicate, nil
		}
	}
	done, err := s.Repo.EventProcessed(ctx, ev.ID)
	if err != nil {
		return OutcomeRejected, err
	}
	if done {
		return OutcomeDuplicate, nil
	}

	session, err := payments.ParseCompletedSession(ev.Object)
	if err != nil {
		if errors.Is(err, payments.ErrMissingEmail) {
			return OutcomeRejected, fmt.Errorf("invalid user email: %w", ErrNotFound)
		}
		return OutcomeRejected, fmt.Errorf("%v: %w", err, ErrValidation)
	}

	u, err := s.Repo.GetShopperByEmail(ctx, normalizeEmail(session.CustomerEmail))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OutcomeRejected, fmt.Errorf("shopper %q: %w", session.CustomerEmail, ErrNotFound)
		}
		return OutcomeRejected, err
	}

	shipping, err := session.ShippingAddress()
	if err != nil {
		return OutcomeRejected, fmt.Errorf("%v: %w", err, ErrValidation)
	}

	orderIDs, err := s.completeOrder(ctx, ev, u, session.CustomerID, shipping)
	if errors.Is(err, errEventProcessed) {
		return OutcomeDuplicate, nil
	}
	if err != nil {
		return OutcomeRejected, err
	}

	if s.Dedup != nil {
		if _, err := s.Dedup.Mark(ctx, ev.ID); err != nil {
			logging.FromContext(ctx).Warn("dedup_error", "svc", "webhook", "error", err)
		}
	}

	if s.Events != nil {
		ids := make([]string, len(orderIDs))
		for i, id := range orderIDs {
			ids[i] = id.String()
		}
		oc := events.OrderCompleted{
			Type:       "order_completed",
			UserID:     u.ID.String(),
			CustomerID: session.CustomerID,
			EventID:    ev.ID,
			OrderIDs:   ids,
			OccurredAt: time.Now().UTC(),
		}
		if err := s.Events.PublishEvent(ctx, events.OrderTopic, u.ID.String(), oc); err != nil {
			logging.FromContext(ctx).Warn("publish_event_error", "svc", "webhook", "error", err)
		}
	}
	return OutcomeProcessed, nil
}

var errEventProcessed = errors.New("event already processed")

// completeOrder records the event id, stores the processor customer id,
// detaches the cart lines and records the shipping address in one
// transaction. It returns errEventProcessed and changes nothing when the
// event id is already recorded.
func (s *WebhookService) completeOrder(ctx context.Context, ev *payments.Event, u *models.Shopper, customerID string, a payments.ShippingAddress) ([]uuid.UUID, error) {
	var orderIDs []uuid.UUID
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		fresh, err := tx.RecordEvent(ctx, ev.ID, ev.Type)
		if err != nil {
			return err
		}
		if !fresh {
			return errEventProcessed
		}

		if customerID != "" {
			if err := tx.SetStripeID(ctx, u.ID, customerID); err != nil {
				return err
			}
		}

		ids, _, err := tx.DeleteCart(ctx, u.ID)
		if err != nil {
			return err
		}
		orderIDs = ids

		_, err = tx.GetOrCreateAddress(ctx, &models.ShippingAddress{
			UserID:   u.ID,
			Name:     a.Name,
			City:     a.City,
			Country:  a.Country,
			Address1: a.Address1,
			Address2: a.Address2,
			ZipCode:  a.ZipCode,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return orderIDs, nil
}
