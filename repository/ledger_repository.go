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

// TransactionLedger is the append-mostly record of payment attempts.
// Status is the single mutable field; transitions go through conditional
// single-row updates so concurrent callers cannot race past each other.
type TransactionLedger interface {
	RecordAttempt(ctx context.Context, eventID uuid.UUID, payer models.Payer, amount int64, currency, processorRef string) (*models.PaymentTransaction, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentTransaction, error)
	MarkSucceeded(ctx context.Context, processorRef string) (*models.PaymentTransaction, error)
	MarkFailed(ctx context.Context, processorRef string) error
	MarkRefunded(ctx context.Context, id uuid.UUID, reason string) error
}

type gormTransactionLedger struct {
	db *gorm.DB
}

func NewGormTransactionLedger(db *gorm.DB) TransactionLedger {
	return &gormTransactionLedger{db: db}
}

func (r *gormTransactionLedger) RecordAttempt(ctx context.Context, eventID uuid.UUID, payer models.Payer, amount int64, currency, processorRef string) (*models.PaymentTransaction, error) {
	tx := &models.PaymentTransaction{
		StripePaymentID: processorRef,
		Amount:          amount,
		Currency:        currency,
		Status:          models.TxPending,
		EventID:         eventID,
	}
	switch payer.Kind {
	case models.PayerMember:
		id := payer.ID
		tx.MemberID = &id
	case models.PayerGuest:
		id := payer.ID
		tx.AttendeeID = &id
	}
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return nil, err
	}
	return tx, nil
}

func (r *gormTransactionLedger) FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentTransaction, error) {
	var tx models.PaymentTransaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("transaction not found")
		}
		return nil, err
	}
	return &tx, nil
}

// MarkSucceeded flips a pending transaction to succeeded. Invoking it again
// for the same processor reference is a no-op: the conditional update only
// matches pending rows, and a row already past pending is left untouched.
func (r *gormTransactionLedger) MarkSucceeded(ctx context.Context, processorRef string) (*models.PaymentTransaction, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.PaymentTransaction{}).
		Where("stripe_payment_id = ? AND status = ?", processorRef, models.TxPending).
		Updates(map[string]interface{}{
			"status":       models.TxSucceeded,
			"succeeded_at": &now,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	var tx models.PaymentTransaction
	if err := r.db.WithContext(ctx).Where("stripe_payment_id = ?", processorRef).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("no transaction for processor reference")
		}
		return nil, err
	}
	return &tx, nil
}

func (r *gormTransactionLedger) MarkFailed(ctx context.Context, processorRef string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.PaymentTransaction{}).
		Where("stripe_payment_id = ? AND status = ?", processorRef, models.TxPending).
		Updates(map[string]interface{}{
			"status":    models.TxFailed,
			"failed_at": &now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("no pending transaction for processor reference")
	}
	return nil
}

// MarkRefunded is the double-refund guard: the status transition is a single
// atomic conditional write, so of two concurrent refunds at most one can
// observe status=succeeded and win.
func (r *gormTransactionLedger) MarkRefunded(ctx context.Context, id uuid.UUID, reason string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.PaymentTransaction{}).
		Where("id = ? AND status = ?", id, models.TxSucceeded).
		Updates(map[string]interface{}{
			"status":        models.TxRefunded,
			"refund_reason": reason,
			"refunded_at":   &now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	// Zero rows: distinguish a missing row from a bad state.
	var tx models.PaymentTransaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("transaction not found")
		}
		return err
	}
	return errs.InvalidState("transaction is " + tx.Status + ", only succeeded transactions can be refunded")
}
