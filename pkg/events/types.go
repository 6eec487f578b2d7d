package events

import "time"

type CartEvent struct {
	Type        string    `json:"type"`
	UserID      string    `json:"userID"`
	ProductSlug string    `json:"productSlug,omitempty"`
	Quantity    uint      `json:"quantity,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

type OrderCompleted struct {
	Type       string    `json:"type"`
	UserID     string    `json:"userID"`
	CustomerID string    `json:"customerID"`
	EventID    string    `json:"eventID"`
	OrderIDs   []string  `json:"orderIDs"`
	OccurredAt time.Time `json:"occurredAt"`
}
