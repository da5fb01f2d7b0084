package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"

	AttendeePending   = "pending"
	AttendeeCheckedIn = "checked_in"
)

// EventRegistration is a member's registration for an event. Its
// payment_status is a projection of the transaction ledger.
type EventRegistration struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EventID       uuid.UUID `gorm:"type:uuid;index;not null" json:"event_id"`
	MemberID      uuid.UUID `gorm:"type:uuid;index;not null" json:"member_id"`
	PaymentStatus string    `gorm:"type:varchar(20);not null" json:"payment_status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Attendee is a guest (non-member) on an event's roster. Check-in fields
// are staff-managed and independent of payment state.
type Attendee struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EventID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"event_id"`
	Name          string     `gorm:"type:varchar(255);not null" json:"name"`
	Contact       string     `gorm:"type:varchar(255)" json:"contact"`
	PaymentStatus string     `gorm:"type:varchar(20);not null" json:"payment_status"`
	Status        string     `gorm:"type:varchar(20);not null" json:"status"`
	CheckedInAt   *time.Time `json:"checked_in_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
