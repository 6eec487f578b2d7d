package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

// GetOrCreateCart must run inside Transaction when combined with other writes.
func (r *GormRepo) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).Where(models.Cart{UserID: userID}).FirstOrCreate(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddToCart increments the cart line for productID or creates it with quantity one.
func (r *GormRepo) AddToCart(ctx context.Context, userID, productID uuid.UUID) (*models.Order, error) {
	var line models.Order
	err := r.Transaction(ctx, func(tx *GormRepo) error {
		cart, err := tx.GetOrCreateCart(ctx, userID)
		if err != nil {
			return err
		}

		res := tx.DB.Model(&models.Order{}).
			Where("cart_id = ? AND product_id = ? AND ordered = ?", cart.ID, productID, false).
			Update("quantity", gorm.Expr("quantity + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.DB.Where("cart_id = ? AND product_id = ? AND ordered = ?", cart.ID, productID, false).First(&line).Error
		}

		line = models.Order{
			UserID:    userID,
			ProductID: productID,
			Quantity:  1,
			CartID:    &cart.ID,
		}
		return tx.DB.Create(&line).Error
	})
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *GormRepo) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB.WithContext(ctx).
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("orders.created_at ASC, orders.id ASC") }).
		Preload("Orders.Product").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateQuantities sets quantities on lines still attached to the user's cart.
// An id that is not such a line yields gorm.ErrRecordNotFound and nothing is written.
func (r *GormRepo) UpdateQuantities(ctx context.Context, userID uuid.UUID, quantities map[uuid.UUID]uint) error {
	return r.Transaction(ctx, func(tx *GormRepo) error {
		for id, qty := range quantities {
			res := tx.DB.Model(&models.Order{}).
				Where("id = ? AND user_id = ? AND cart_id IS NOT NULL", id, userID).
				Update("quantity", qty)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
}

// DeleteCart removes the user's cart; its lines are detached by Cart.BeforeDelete.
// It returns the ids of the detached lines and false when the user had no cart.
func (r *GormRepo) DeleteCart(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, bool, error) {
	var ids []uuid.UUID
	deleted := false
	err := r.Transaction(ctx, func(tx *GormRepo) error {
		var cart models.Cart
		if err := tx.DB.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.DB.Model(&models.Order{}).Where("cart_id = ?", cart.ID).Order("created_at ASC, id ASC").Pluck("id", &ids).Error; err != nil {
			return err
		}
		if err := tx.DB.Delete(&cart).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return ids, deleted, nil
}

// ListOrderedLines returns the lines the user has already ordered.
func (r *GormRepo) ListOrderedLines(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var lines []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("user_id = ? AND ordered = ?", userID, true).
		Order("created_at ASC, id ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}
