package repository

import (
	"context"
	"errors"

	"runclub-backend/errs"
	"runclub-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventRepository interface {
	Create(ctx context.Context, event *models.ClubEvent) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ClubEvent, error)
	FindAll(ctx context.Context) ([]models.ClubEvent, error)
}

type gormEventRepo struct {
	db *gorm.DB
}

func NewGormEventRepo(db *gorm.DB) EventRepository {
	return &gormEventRepo{db: db}
}

func (r *gormEventRepo) Create(ctx context.Context, event *models.ClubEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *gormEventRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.ClubEvent, error) {
	var event models.ClubEvent
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("event not found")
		}
		return nil, err
	}
	return &event, nil
}

func (r *gormEventRepo) FindAll(ctx context.Context) ([]models.ClubEvent, error) {
	var events []models.ClubEvent
	err := r.db.WithContext(ctx).Order("starts_at ASC").Find(&events).Error
	return events, err
}
