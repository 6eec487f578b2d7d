package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/pkg/events"
)

func TestCartService_AddToCart_Twice(t *testing.T) {
	r, db := newRepo(t)
	pub := &recordingPublisher{}
	svc := &CartService{Repo: r, Events: pub}
	ctx := context.Background()

	u := testutil.CreateShopper(t, db, "test@gmail.com")
	testutil.CreateProduct(t, db, "Sneakers de Erevan", 10, "price_123")

	_, err := svc.AddToCart(ctx, u.ID, "sneakers-de-erevan")
	require.NoError(t, err)
	line, err := svc.AddToCart(ctx, u.ID, "sneakers-de-erevan")
	require.NoError(t, err)
	assert.EqualValues(t, 2, line.Quantity)

	view, err := svc.GetCart(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.EqualValues(t, 2, view.Lines[0].Quantity)
	assert.True(t, decimal.NewFromInt(20).Equal(view.Total), view.Total.String())

	evs := pub.all()
	require.Len(t, evs, 2)
	assert.Equal(t, events.CartTopic, evs[1].Topic)
	ce, ok := evs[1].Event.(events.CartEvent)
	require.True(t, ok)
	assert.Equal(t, "add_to_cart", ce.Type)
	assert.EqualValues(t, 2, ce.Quantity)
}

func TestCartService_AddToCart_UnknownProduct(t *testing.T) {
	r, db := newRepo(t)
	svc := &CartService{Repo: r}

	u := testutil.CreateShopper(t, db, "test@gmail.com")
	_, err := svc.AddToCart(context.Background(), u.ID, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	var carts int64
	require.NoError(t, db.Model(&models.Cart{}).Count(&carts).Error)
	assert.Zero(t, carts)
}

func TestCartService_GetCart_NoCart(t *testing.T) {
	r, _ := newRepo(t)
	svc := &CartService{Repo: r}

	view, err := svc.GetCart(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.True(t, view.Total.IsZero())
}

func TestCartService_UpdateQuantities(t *testing.T) {
	r, db := newRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	u := testutil.CreateShopper(t, db, "test@gmail.com")
	testutil.CreateProduct(t, db, "Sneakers", 10, "price_1")
	line, err := svc.AddToCart(ctx, u.ID, "sneakers")
	require.NoError(t, err)

	err = svc.UpdateQuantities(ctx, u.ID, map[uuid.UUID]uint{line.ID: 0})
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.UpdateQuantities(ctx, u.ID, map[uuid.UUID]uint{uuid.New(): 2})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.UpdateQuantities(ctx, u.ID, map[uuid.UUID]uint{line.ID: 3}))
	view, err := svc.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, view.Lines[0].Quantity)
}

func TestCartService_DeleteCart(t *testing.T) {
	r, db := newRepo(t)
	pub := &recordingPublisher{}
	svc := &CartService{Repo: r, Events: pub}
	ctx := context.Background()

	u := testutil.CreateShopper(t, db, "test@gmail.com")
	require.NoError(t, svc.DeleteCart(ctx, u.ID))
	assert.Empty(t, pub.all())

	testutil.CreateProduct(t, db, "Sneakers", 10, "price_1")
	_, err := svc.AddToCart(ctx, u.ID, "sneakers")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCart(ctx, u.ID))

	evs := pub.all()
	require.Len(t, evs, 2)
	assert.Equal(t, "cart_deleted", evs[1].Event.(events.CartEvent).Type)

	var o models.Order
	require.NoError(t, db.Where("user_id = ?", u.ID).First(&o).Error)
	assert.True(t, o.Ordered)
	assert.Nil(t, o.OrderedDate)
}
