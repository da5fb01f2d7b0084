package models

import (
	"time"

	"github.com/google/uuid"
)

// ClubEvent is a run or race members can register for.
type ClubEvent struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Location    string    `gorm:"type:varchar(255)" json:"location"`
	StartsAt    time.Time `gorm:"index;not null" json:"starts_at"`
	Price       int64     `gorm:"not null" json:"price"` // smallest currency unit, 0 = free
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// EventCreatedMessage is the Kafka payload published when a new event is
// created, consumed by the push dispatch worker.
type EventCreatedMessage struct {
	EventID   string    `json:"event_id"`
	Title     string    `json:"title"`
	Location  string    `json:"location"`
	StartsAt  time.Time `json:"starts_at"`
	Timestamp time.Time `json:"timestamp"`
}
