package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ticket is one identity's claim on one event. The unique index over
// (event_id, holder_id) is what makes the duplicate-claim guard hold
// under concurrent requests.
type Ticket struct {
	gorm.Model
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	EventID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tickets_event_holder" json:"eventId"`
	HolderID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tickets_event_holder" json:"holderId"`
	Claimed  bool      `gorm:"not null;default:false" json:"claimed"`
	QRCode   string    `json:"qrCode"`
}

func (ticket *Ticket) BeforeCreate(tx *gorm.DB) (err error) {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	return
}
