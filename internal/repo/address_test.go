package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

func TestGetOrCreateAddress_Idempotent(t *testing.T) {
	db := testutil.NewDB(t)
	r := &GormRepo{DB: db}
	ctx := context.Background()

	u := testutil.CreateShopper(t, db, "test@gmail.com")
	addr := func() *models.ShippingAddress {
		return &models.ShippingAddress{
			UserID:   u.ID,
			Name:     "Patrick",
			City:     "Paris",
			Country:  "fr",
			Address1: "1 rue de Rivoli",
			ZipCode:  "75001",
		}
	}

	a1 := addr()
	created, err := r.GetOrCreateAddress(ctx, a1)
	require.NoError(t, err)
	assert.True(t, created)

	a2 := addr()
	created, err = r.GetOrCreateAddress(ctx, a2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, a1.ID, a2.ID)

	var count int64
	require.NoError(t, db.Model(&models.ShippingAddress{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSetDefaultAddress_OnlyOneDefault(t *testing.T) {
	db := testutil.NewDB(t)
	r := &GormRepo{DB: db}
	ctx := context.Background()

	u := testutil.CreateShopper(t, db, "test@gmail.com")
	home := &models.ShippingAddress{UserID: u.ID, Name: "Home", City: "Paris", Country: "fr", Address1: "1 rue", ZipCode: "75001"}
	work := &models.ShippingAddress{UserID: u.ID, Name: "Work", City: "Lyon", Country: "fr", Address1: "2 rue", ZipCode: "69001"}
	_, err := r.GetOrCreateAddress(ctx, home)
	require.NoError(t, err)
	_, err = r.GetOrCreateAddress(ctx, work)
	require.NoError(t, err)

	require.NoError(t, r.SetDefaultAddress(ctx, u.ID, home.ID))
	require.NoError(t, r.SetDefaultAddress(ctx, u.ID, work.ID))

	items, err := r.ListAddresses(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, a := range items {
		assert.Equal(t, a.ID == work.ID, a.Default, a.Name)
	}
}

func TestDeleteAddress_OtherUser(t *testing.T) {
	db := testutil.NewDB(t)
	r := &GormRepo{DB: db}
	ctx := context.Background()

	u := testutil.CreateShopper(t, db, "test@gmail.com")
	other := testutil.CreateShopper(t, db, "other@gmail.com")
	a := &models.ShippingAddress{UserID: u.ID, Name: "Home", City: "Paris", Country: "fr", Address1: "1 rue", ZipCode: "75001"}
	_, err := r.GetOrCreateAddress(ctx, a)
	require.NoError(t, err)

	assert.ErrorIs(t, r.DeleteAddress(ctx, other.ID, a.ID), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, r.SetDefaultAddress(ctx, other.ID, a.ID), gorm.ErrRecordNotFound)
	require.NoError(t, r.DeleteAddress(ctx, u.ID, a.ID))

	items, err := r.ListAddresses(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
