package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/hash"
)

const Password = "123456"

func CreateProduct(t *testing.T, db *gorm.DB, name string, price int64, stripeID string) *models.Product {
	t.Helper()

	p := &models.Product{
		Name:        name,
		Price:       decimal.NewFromInt(price),
		Stock:       10,
		Description: "De superbes chaussures",
		StripeID:    stripeID,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func CreateShopper(t *testing.T, db *gorm.DB, email string) *models.Shopper {
	t.Helper()

	h, err := hash.HashPassword(Password)
	require.NoError(t, err)
	u := &models.Shopper{Email: email, PasswordHash: h, Role: "user"}
	require.NoError(t, db.Create(u).Error)
	return u
}
