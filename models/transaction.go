package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	TxPending   = "pending"
	TxSucceeded = "succeeded"
	TxRefunded  = "refunded"
	TxFailed    = "failed"
)

type PaymentTransaction struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StripePaymentID string     `gorm:"uniqueIndex;not null" json:"stripe_payment_id"`
	Amount          int64      `gorm:"not null" json:"amount"` // smallest currency unit
	Currency        string     `gorm:"type:varchar(10);not null" json:"currency"`
	Status          string     `gorm:"type:varchar(20);not null" json:"status"`
	RefundReason    *string    `gorm:"type:varchar(255)" json:"refund_reason,omitempty"`
	EventID         uuid.UUID  `gorm:"type:uuid;index;not null" json:"event_id"`
	MemberID        *uuid.UUID `gorm:"type:uuid;index" json:"member_id,omitempty"`
	AttendeeID      *uuid.UUID `gorm:"type:uuid;index" json:"attendee_id,omitempty"`
	SucceededAt     *time.Time `json:"succeeded_at,omitempty"`
	FailedAt        *time.Time `json:"failed_at,omitempty"`
	RefundedAt      *time.Time `json:"refunded_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Payer returns the tagged payer variant for this transaction.
// Exactly one of MemberID / AttendeeID is set at creation time.
func (t *PaymentTransaction) Payer() Payer {
	if t.MemberID != nil {
		return MemberPayer(*t.MemberID)
	}
	return GuestPayer(*t.AttendeeID)
}
