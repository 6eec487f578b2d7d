package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

// GetOrCreateAddress matches on every field of a, including empty ones.
func (r *GormRepo) GetOrCreateAddress(ctx context.Context, a *models.ShippingAddress) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where(map[string]any{
			"user_id":   a.UserID,
			"name":      a.Name,
			"city":      a.City,
			"country":   a.Country,
			"address_1": a.Address1,
			"address_2": a.Address2,
			"zip_code":  a.ZipCode,
		}).
		FirstOrCreate(a)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.ShippingAddress, error) {
	var items []models.ShippingAddress
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) SetDefaultAddress(ctx context.Context, userID, id uuid.UUID) error {
	return r.Transaction(ctx, func(tx *GormRepo) error {
		var a models.ShippingAddress
		if err := tx.DB.Where("id = ? AND user_id = ?", id, userID).First(&a).Error; err != nil {
			return err
		}
		if err := tx.DB.Model(&models.ShippingAddress{}).
			Where("user_id = ?", userID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.DB.Model(&a).Update("is_default", true).Error
	})
}

func (r *GormRepo) DeleteAddress(ctx context.Context, userID, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.ShippingAddress{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
