package repository

import (
	"context"
	"errors"
	"time"

	"runclub-backend/errs"
	"runclub-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegistrationRepository holds the denormalized registration/attendee rows
// whose payment_status projects the transaction ledger.
type RegistrationRepository interface {
	CreateRegistration(ctx context.Context, reg *models.EventRegistration) error
	FindRegistration(ctx context.Context, eventID, memberID uuid.UUID) (*models.EventRegistration, error)
	UpdateMemberPaymentStatus(ctx context.Context, eventID, memberID uuid.UUID, status string) error

	CreateAttendee(ctx context.Context, att *models.Attendee) error
	FindAttendeeByID(ctx context.Context, id uuid.UUID) (*models.Attendee, error)
	UpdateAttendeePaymentStatus(ctx context.Context, eventID, attendeeID uuid.UUID, status string) error
	CheckInAttendee(ctx context.Context, id uuid.UUID) (*models.Attendee, error)
}

type gormRegistrationRepo struct {
	db *gorm.DB
}

func NewGormRegistrationRepo(db *gorm.DB) RegistrationRepository {
	return &gormRegistrationRepo{db: db}
}

func (r *gormRegistrationRepo) CreateRegistration(ctx context.Context, reg *models.EventRegistration) error {
	return r.db.WithContext(ctx).Create(reg).Error
}

func (r *gormRegistrationRepo) FindRegistration(ctx context.Context, eventID, memberID uuid.UUID) (*models.EventRegistration, error) {
	var reg models.EventRegistration
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND member_id = ?", eventID, memberID).
		First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("registration not found")
		}
		return nil, err
	}
	return &reg, nil
}

func (r *gormRegistrationRepo) UpdateMemberPaymentStatus(ctx context.Context, eventID, memberID uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&models.EventRegistration{}).
		Where("event_id = ? AND member_id = ?", eventID, memberID).
		Update("payment_status", status).Error
}

func (r *gormRegistrationRepo) CreateAttendee(ctx context.Context, att *models.Attendee) error {
	return r.db.WithContext(ctx).Create(att).Error
}

func (r *gormRegistrationRepo) FindAttendeeByID(ctx context.Context, id uuid.UUID) (*models.Attendee, error) {
	var att models.Attendee
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&att).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("attendee not found")
		}
		return nil, err
	}
	return &att, nil
}

func (r *gormRegistrationRepo) UpdateAttendeePaymentStatus(ctx context.Context, eventID, attendeeID uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&models.Attendee{}).
		Where("event_id = ? AND id = ?", eventID, attendeeID).
		Update("payment_status", status).Error
}

// CheckInAttendee touches only the check-in fields. Payment state is owned
// by the projector and never changes here.
func (r *gormRegistrationRepo) CheckInAttendee(ctx context.Context, id uuid.UUID) (*models.Attendee, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Attendee{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.AttendeeCheckedIn,
			"checked_in_at": &now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errs.NotFound("attendee not found")
	}
	return r.FindAttendeeByID(ctx, id)
}
