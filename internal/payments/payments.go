// Package payments talks to the hosted payment processor: it opens checkout
// sessions and verifies the notifications the processor sends back.
package payments

import (
	"context"
	"encoding/json"
	"errors"
)

const EventCheckoutSessionCompleted = "checkout.session.completed"

var (
	ErrSignature      = errors.New("payments: invalid signature")
	ErrInvalidPayload = errors.New("payments: invalid payload")
	ErrMissingEmail   = errors.New("payments: missing customer email")
	ErrMissingField   = errors.New("payments: missing required field")
)

type LineItem struct {
	PriceID  string
	Quantity int64
}

type CheckoutRequest struct {
	LineItems     []LineItem
	SuccessURL    string
	CancelURL     string
	CustomerID    string
	CustomerEmail string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Event is a verified processor notification. Object holds data.object verbatim.
type Event struct {
	ID     string
	Type   string
	Object json.RawMessage
}

type Processor interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	ConstructEvent(payload []byte, signature string) (*Event, error)
}
