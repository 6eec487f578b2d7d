package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/dedup"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payments"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/pkg/events"
)

const webhookSecret = "whsec_test"

func completedEvent(t *testing.T, id string, object map[string]any) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"id":     id,
		"object": "event",
		"type":   payments.EventCheckoutSessionCompleted,
		"data":   map[string]any{"object": object},
	})
	require.NoError(t, err)
	return b
}

func sessionObject(email string) map[string]any {
	return map[string]any{
		"object":           "checkout.session",
		"customer":         "cus_123",
		"customer_details": map[string]any{"email": email},
		"shipping_details": map[string]any{
			"name": "Patrick",
			"address": map[string]any{
				"city":        "Paris",
				"country":     "FR",
				"line1":       "1 rue de Rivoli",
				"line2":       nil,
				"postal_code": "75001",
			},
		},
	}
}

type webhookEnv struct {
	db   *gorm.DB
	svc  *WebhookService
	pub  *recordingPublisher
	user *models.Shopper
}

func newWebhookEnv(t *testing.T) *webhookEnv {
	t.Helper()
	r, db := newRepo(t)
	pub := &recordingPublisher{}
	svc := &WebhookService{
		Repo:     r,
		Payments: &payments.Recorder{Secret: webhookSecret},
		Dedup:    dedup.NewMemory(),
		Events:   pub,
	}

	u := testutil.CreateShopper(t, db, "test@gmail.com")
	testutil.CreateProduct(t, db, "Sneakers", 10, "price_1")
	_, err := (&CartService{Repo: r}).AddToCart(context.Background(), u.ID, "sneakers")
	require.NoError(t, err)

	return &webhookEnv{db: db, svc: svc, pub: pub, user: u}
}

func (e *webhookEnv) handle(t *testing.T, payload []byte) (string, error) {
	t.Helper()
	return e.svc.Handle(context.Background(), payload, payments.SignPayload(payload, webhookSecret))
}

func (e *webhookEnv) assertUntouched(t *testing.T) {
	t.Helper()
	var carts, addrs int64
	require.NoError(t, e.db.Model(&models.Cart{}).Count(&carts).Error)
	require.NoError(t, e.db.Model(&models.ShippingAddress{}).Count(&addrs).Error)
	assert.EqualValues(t, 1, carts)
	assert.Zero(t, addrs)

	var u models.Shopper
	require.NoError(t, e.db.First(&u, "id = ?", e.user.ID).Error)
	assert.Empty(t, u.StripeID)
}

func TestWebhook_CompletedSession(t *testing.T) {
	env := newWebhookEnv(t)

	outcome, err := env.handle(t, completedEvent(t, "evt_1", sessionObject("test@gmail.com")))
	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, outcome)

	var u models.Shopper
	require.NoError(t, env.db.First(&u, "id = ?", env.user.ID).Error)
	assert.Equal(t, "cus_123", u.StripeID)

	var carts int64
	require.NoError(t, env.db.Model(&models.Cart{}).Count(&carts).Error)
	assert.Zero(t, carts)

	var o models.Order
	require.NoError(t, env.db.First(&o, "user_id = ?", env.user.ID).Error)
	assert.True(t, o.Ordered)
	assert.Nil(t, o.CartID)
	assert.Nil(t, o.OrderedDate)

	var addrs []models.ShippingAddress
	require.NoError(t, env.db.Find(&addrs).Error)
	require.Len(t, addrs, 1)
	assert.Equal(t, "fr", addrs[0].Country)
	assert.Equal(t, "", addrs[0].Address2)
	assert.Equal(t, "75001", addrs[0].ZipCode)

	evs := env.pub.all()
	require.Len(t, evs, 1)
	assert.Equal(t, events.OrderTopic, evs[0].Topic)
	oc := evs[0].Event.(events.OrderCompleted)
	assert.Equal(t, "evt_1", oc.EventID)
	assert.Equal(t, []string{o.ID.String()}, oc.OrderIDs)
}

func TestWebhook_DuplicateDelivery(t *testing.T) {
	env := newWebhookEnv(t)
	payload := completedEvent(t, "evt_1", sessionObject("test@gmail.com"))

	_, err := env.handle(t, payload)
	require.NoError(t, err)

	outcome, err := env.handle(t, payload)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)
	assert.Len(t, env.pub.all(), 1)
}

func TestWebhook_RedeliveryKeepsNewCart(t *testing.T) {
	env := newWebhookEnv(t)
	env.svc.Dedup = dedup.Nop{}
	ctx := context.Background()
	payload := completedEvent(t, "evt_1", sessionObject("test@gmail.com"))

	outcome, err := env.handle(t, payload)
	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, outcome)

	testutil.CreateProduct(t, env.db, "Boots", 40, "price_2")
	line, err := (&CartService{Repo: env.svc.Repo}).AddToCart(ctx, env.user.ID, "boots")
	require.NoError(t, err)

	outcome, err = env.handle(t, payload)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)

	var carts int64
	require.NoError(t, env.db.Model(&models.Cart{}).Count(&carts).Error)
	assert.EqualValues(t, 1, carts)

	var boots models.Order
	require.NoError(t, env.db.First(&boots, "id = ?", line.ID).Error)
	assert.False(t, boots.Ordered)
	assert.NotNil(t, boots.CartID)

	var addrs int64
	require.NoError(t, env.db.Model(&models.ShippingAddress{}).Count(&addrs).Error)
	assert.EqualValues(t, 1, addrs)
	assert.Len(t, env.pub.all(), 1)
}

func TestWebhook_RejectedEventNotRecorded(t *testing.T) {
	env := newWebhookEnv(t)
	env.svc.Dedup = dedup.Nop{}

	_, err := env.handle(t, completedEvent(t, "evt_1", sessionObject("ghost@gmail.com")))
	require.ErrorIs(t, err, ErrNotFound)

	done, err := env.svc.Repo.EventProcessed(context.Background(), "evt_1")
	require.NoError(t, err)
	assert.False(t, done)

	outcome, err := env.handle(t, completedEvent(t, "evt_1", sessionObject("test@gmail.com")))
	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, outcome)
}

func TestWebhook_BadSignature(t *testing.T) {
	env := newWebhookEnv(t)
	payload := completedEvent(t, "evt_1", sessionObject("test@gmail.com"))

	outcome, err := env.svc.Handle(context.Background(), payload, payments.SignPayload(payload, "whsec_other"))
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, OutcomeRejected, outcome)
	env.assertUntouched(t)
}

func TestWebhook_MissingEmail(t *testing.T) {
	env := newWebhookEnv(t)
	obj := sessionObject("test@gmail.com")
	delete(obj, "customer_details")

	_, err := env.handle(t, completedEvent(t, "evt_1", obj))
	assert.ErrorIs(t, err, ErrNotFound)
	env.assertUntouched(t)
}

func TestWebhook_UnknownShopper(t *testing.T) {
	env := newWebhookEnv(t)

	_, err := env.handle(t, completedEvent(t, "evt_1", sessionObject("ghost@gmail.com")))
	assert.ErrorIs(t, err, ErrNotFound)
	env.assertUntouched(t)
}

func TestWebhook_IncompleteShipping(t *testing.T) {
	env := newWebhookEnv(t)
	obj := sessionObject("test@gmail.com")
	delete(obj["shipping_details"].(map[string]any)["address"].(map[string]any), "city")

	_, err := env.handle(t, completedEvent(t, "evt_1", obj))
	assert.ErrorIs(t, err, ErrValidation)
	env.assertUntouched(t)
}

func TestWebhook_OtherEventIgnored(t *testing.T) {
	env := newWebhookEnv(t)
	payload, err := json.Marshal(map[string]any{
		"id":     "evt_2",
		"object": "event",
		"type":   "payment_intent.created",
		"data":   map[string]any{"object": map[string]any{"object": "payment_intent"}},
	})
	require.NoError(t, err)

	outcome, err := env.handle(t, payload)
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)
	env.assertUntouched(t)
}
