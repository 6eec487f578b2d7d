package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
)

var ErrShopperAlreadyExist = errors.New("shopper already exist")

func (r *GormRepo) CreateShopperIfNotExists(ctx context.Context, u *models.Shopper) error {
	tx := r.DB.WithContext(ctx).Where("email = ?", u.Email).FirstOrCreate(u)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrShopperAlreadyExist
	}
	return nil
}

func (r *GormRepo) GetShopperByEmail(ctx context.Context, email string) (*models.Shopper, error) {
	var u models.Shopper
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) GetShopperByID(ctx context.Context, id uuid.UUID) (*models.Shopper, error) {
	var u models.Shopper
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName string) (*models.Shopper, error) {
	res := r.DB.WithContext(ctx).Model(&models.Shopper{}).
		Where("id = ?", id).
		Updates(map[string]any{"first_name": firstName, "last_name": lastName})
	if res.Error != nil {
		return nil, res.Error
	}
	return r.GetShopperByID(ctx, id)
}

func (r *GormRepo) SetStripeID(ctx context.Context, id uuid.UUID, stripeID string) error {
	return r.DB.WithContext(ctx).Model(&models.Shopper{}).
		Where("id = ?", id).
		Update("stripe_id", stripeID).Error
}
