package payments

import (
	"context"
	"sync"
	"time"

	"github.com/stripe/stripe-go/v76/webhook"
)

// Recorder is an in-memory Processor. Sessions are recorded and events are
// verified with the stripe signature scheme against Secret.
type Recorder struct {
	Secret string
	URL    string
	Err    error

	mu       sync.Mutex
	requests []CheckoutRequest
}

func (r *Recorder) CreateCheckoutSession(_ context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	r.requests = append(r.requests, req)
	return &CheckoutSession{ID: "cs_test", URL: r.URL}, nil
}

func (r *Recorder) ConstructEvent(payload []byte, signature string) (*Event, error) {
	return (&StripeProcessor{webhookSecret: r.Secret}).ConstructEvent(payload, signature)
}

func (r *Recorder) Requests() []CheckoutRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]CheckoutRequest(nil), r.requests...)
}

// SignPayload returns a Stripe-Signature header value for payload.
func SignPayload(payload []byte, secret string) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	}).Header
}
