package repository

import (
	"context"
	"errors"

	"runclub-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubscriptionRepository stores push subscriptions, one row per endpoint.
type SubscriptionRepository interface {
	Upsert(ctx context.Context, userID uuid.UUID, endpoint string, keys models.SubscriptionKeys) error
	Remove(ctx context.Context, userID uuid.UUID, endpoint string) error
	Exists(ctx context.Context, userID uuid.UUID, endpoint string) (bool, error)
	ListAll(ctx context.Context) ([]models.PushSubscription, error)
}

type gormSubscriptionRepo struct {
	db *gorm.DB
}

func NewGormSubscriptionRepo(db *gorm.DB) SubscriptionRepository {
	return &gormSubscriptionRepo{db: db}
}

// Upsert inserts a subscription, or refreshes the keys when the endpoint is
// already known. A browser resubscribing with rotated keys must not
// produce a second row.
func (r *gormSubscriptionRepo) Upsert(ctx context.Context, userID uuid.UUID, endpoint string, keys models.SubscriptionKeys) error {
	var existing models.PushSubscription
	err := r.db.WithContext(ctx).Where("endpoint = ?", endpoint).First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		sub := &models.PushSubscription{
			UserID:   userID,
			Endpoint: endpoint,
			P256dh:   keys.P256dh,
			Auth:     keys.Auth,
		}
		return r.db.WithContext(ctx).Create(sub).Error
	}
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Model(&models.PushSubscription{}).
		Where("endpoint = ?", endpoint).
		Updates(map[string]interface{}{
			"user_id": userID,
			"p256dh":  keys.P256dh,
			"auth":    keys.Auth,
		}).Error
}

// Remove deletes the matching row. Absence is not an error.
func (r *gormSubscriptionRepo) Remove(ctx context.Context, userID uuid.UUID, endpoint string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Delete(&models.PushSubscription{}).Error
}

func (r *gormSubscriptionRepo) Exists(ctx context.Context, userID uuid.UUID, endpoint string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PushSubscription{}).
		Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Count(&count).Error
	return count > 0, err
}

// ListAll is the dispatch fan-out snapshot read.
func (r *gormSubscriptionRepo) ListAll(ctx context.Context) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	if err := r.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}
