package payments

import (
	"encoding/json"
	"fmt"
	"strings"
)

type payloadAddress struct {
	City       *string `json:"city"`
	Country    *string `json:"country"`
	Line1      *string `json:"line1"`
	Line2      *string `json:"line2"`
	PostalCode *string `json:"postal_code"`
	ZipCode    *string `json:"zip_code"`
}

type payloadShipping struct {
	Name    *string         `json:"name"`
	Address *payloadAddress `json:"address"`
}

type sessionPayload struct {
	Customer        *string `json:"customer"`
	CustomerDetails *struct {
		Email *string `json:"email"`
	} `json:"customer_details"`
	Shipping        *payloadShipping `json:"shipping"`
	ShippingDetails *payloadShipping `json:"shipping_details"`
}

type ShippingAddress struct {
	Name     string
	City     string
	Country  string
	Address1 string
	Address2 string
	ZipCode  string
}

// CompletedSession is the part of a completed checkout session the store acts on.
type CompletedSession struct {
	CustomerID    string
	CustomerEmail string

	shipping *payloadShipping
}

// ParseCompletedSession decodes a checkout.session.completed object. A
// missing customer email yields ErrMissingEmail. Shipping is validated
// separately by ShippingAddress.
func ParseCompletedSession(object []byte) (*CompletedSession, error) {
	var p sessionPayload
	if err := json.Unmarshal(object, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if p.CustomerDetails == nil || empty(p.CustomerDetails.Email) {
		return nil, ErrMissingEmail
	}
	out := &CompletedSession{CustomerEmail: *p.CustomerDetails.Email, shipping: p.ShippingDetails}
	if p.Customer != nil {
		out.CustomerID = *p.Customer
	}
	if out.shipping == nil {
		out.shipping = p.Shipping
	}
	return out, nil
}

// ShippingAddress returns the collected address or ErrMissingField. Country
// is lower-cased and an absent line2 becomes "".
func (s *CompletedSession) ShippingAddress() (ShippingAddress, error) {
	shipping := s.shipping
	if shipping == nil || shipping.Address == nil {
		return ShippingAddress{}, fmt.Errorf("%w: shipping", ErrMissingField)
	}
	a := shipping.Address
	zip := a.ZipCode
	if empty(zip) {
		zip = a.PostalCode
	}

	required := []struct {
		name  string
		value *string
	}{
		{"shipping.name", shipping.Name},
		{"shipping.address.city", a.City},
		{"shipping.address.country", a.Country},
		{"shipping.address.line1", a.Line1},
		{"shipping.address.zip_code", zip},
	}
	for _, f := range required {
		if empty(f.value) {
			return ShippingAddress{}, fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}

	out := ShippingAddress{
		Name:     *shipping.Name,
		City:     *a.City,
		Country:  strings.ToLower(*a.Country),
		Address1: *a.Line1,
		ZipCode:  *zip,
	}
	if a.Line2 != nil {
		out.Address2 = *a.Line2
	}
	return out, nil
}

// empty reports a missing or blank value.
func empty(s *string) bool {
	return s == nil || *s == ""
}
