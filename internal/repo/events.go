package repo

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) EventProcessed(ctx context.Context, eventID string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.ProcessedEvent{}).Where("event_id = ?", eventID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// RecordEvent inserts eventID and reports false when it was already recorded.
// Inside a transaction a concurrent insert of the same id waits on the
// primary key until the other transaction ends.
func (r *GormRepo) RecordEvent(ctx context.Context, eventID, eventType string) (bool, error) {
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ProcessedEvent{EventID: eventID, Type: eventType})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
