package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payments"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

func TestCheckout_RedirectsToProcessor(t *testing.T) {
	env := newTestEnv(t)
	u := testutil.CreateShopper(t, env.DB, "test@gmail.com")
	testutil.CreateProduct(t, env.DB, "Sneakers", 10, "price_1")
	ck := env.cookieFor(t, u)

	rec := env.do(t, http.MethodPost, "/store/checkout", nil, ck)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.Equal(t, http.StatusSeeOther, env.do(t, http.MethodPost, "/store/products/sneakers/add-to-cart", nil, ck).Code)

	rec = env.do(t, http.MethodPost, "/store/checkout", nil, ck)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, testCheckoutURL, rec.Header().Get("Location"))

	reqs := env.Proc.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "http://shop.local/store/checkout/success", reqs[0].SuccessURL)
	assert.Equal(t, "http://shop.local/store/cart", reqs[0].CancelURL)
	assert.Equal(t, []payments.LineItem{{PriceID: "price_1", Quantity: 1}}, reqs[0].LineItems)
	assert.Equal(t, "test@gmail.com", reqs[0].CustomerEmail)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/store/checkout/success", nil).Code)
}

func webhookPayload(t *testing.T, object map[string]any) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"id":     "evt_1",
		"object": "event",
		"type":   payments.EventCheckoutSessionCompleted,
		"data":   map[string]any{"object": object},
	})
	require.NoError(t, err)
	return b
}

func (env *testEnv) postWebhook(t *testing.T, payload []byte, secret string) int {
	t.Helper()
	req := map[string]string{"Stripe-Signature": payments.SignPayload(payload, secret)}
	rec := env.doWithHeaders(t, "/store/stripe-webhook", payload, req)
	return rec.Code
}

func completedObject(email string, address map[string]any) map[string]any {
	obj := map[string]any{
		"customer":         "cus_123",
		"shipping_details": map[string]any{"name": "Patrick", "address": address},
	}
	if email != "" {
		obj["customer_details"] = map[string]any{"email": email}
	}
	return obj
}

func fullAddress() map[string]any {
	return map[string]any{"city": "Paris", "country": "FR", "line1": "1 rue de Rivoli", "postal_code": "75001"}
}

func TestStripeWebhook(t *testing.T) {
	env := newTestEnv(t)
	u := testutil.CreateShopper(t, env.DB, "test@gmail.com")
	testutil.CreateProduct(t, env.DB, "Sneakers", 10, "price_1")
	ck := env.cookieFor(t, u)
	require.Equal(t, http.StatusSeeOther, env.do(t, http.MethodPost, "/store/products/sneakers/add-to-cart", nil, ck).Code)

	countCarts := func() int64 {
		var n int64
		require.NoError(t, env.DB.Model(&models.Cart{}).Count(&n).Error)
		return n
	}
	countAddrs := func() int64 {
		var n int64
		require.NoError(t, env.DB.Model(&models.ShippingAddress{}).Count(&n).Error)
		return n
	}

	good := webhookPayload(t, completedObject("test@gmail.com", fullAddress()))
	assert.Equal(t, http.StatusBadRequest, env.postWebhook(t, good, "whsec_wrong"))
	assert.EqualValues(t, 1, countCarts())

	assert.Equal(t, http.StatusNotFound, env.postWebhook(t, webhookPayload(t, completedObject("", fullAddress())), testWebhookSecret))
	assert.EqualValues(t, 1, countCarts())

	incomplete := fullAddress()
	delete(incomplete, "line1")
	assert.Equal(t, http.StatusBadRequest, env.postWebhook(t, webhookPayload(t, completedObject("test@gmail.com", incomplete)), testWebhookSecret))
	assert.EqualValues(t, 1, countCarts())
	assert.Zero(t, countAddrs())

	assert.Equal(t, http.StatusOK, env.postWebhook(t, good, testWebhookSecret))
	assert.Zero(t, countCarts())
	assert.EqualValues(t, 1, countAddrs())

	var stored models.Shopper
	require.NoError(t, env.DB.First(&stored, "id = ?", u.ID).Error)
	assert.Equal(t, "cus_123", stored.StripeID)

	assert.Equal(t, http.StatusOK, env.postWebhook(t, good, testWebhookSecret))
	assert.EqualValues(t, 1, countAddrs())
}

func TestStripeWebhook_BodyTooLarge(t *testing.T) {
	env := newTestEnv(t)
	u := testutil.CreateShopper(t, env.DB, "test@gmail.com")
	testutil.CreateProduct(t, env.DB, "Sneakers", 10, "price_1")
	ck := env.cookieFor(t, u)
	require.Equal(t, http.StatusSeeOther, env.do(t, http.MethodPost, "/store/products/sneakers/add-to-cart", nil, ck).Code)

	obj := completedObject("test@gmail.com", fullAddress())
	obj["metadata"] = map[string]any{"padding": string(bytes.Repeat([]byte("x"), maxWebhookBody))}
	payload := webhookPayload(t, obj)
	require.Greater(t, len(payload), maxWebhookBody)

	assert.Equal(t, http.StatusRequestEntityTooLarge, env.postWebhook(t, payload, testWebhookSecret))

	var carts int64
	require.NoError(t, env.DB.Model(&models.Cart{}).Count(&carts).Error)
	assert.EqualValues(t, 1, carts)
}
