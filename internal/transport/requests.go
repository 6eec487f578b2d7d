package transport

import "github.com/shopspring/decimal"

type CreateProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       uint            `json:"stock"`
	StripeID    string          `json:"stripe_id"`
	Thumbnail   string          `json:"thumbnail"`
}

// UpdateCartRequest maps order line ids to their new quantity.
type UpdateCartRequest struct {
	Quantities map[string]uint `json:"quantities"`
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
