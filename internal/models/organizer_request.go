package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

type OrganizerRequest struct {
	gorm.Model
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	Message string    `gorm:"not null" json:"message"`
	Status  string    `gorm:"not null;default:'pending'" json:"status"`
}

func (request *OrganizerRequest) BeforeCreate(tx *gorm.DB) (err error) {
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	if request.Status == "" {
		request.Status = RequestPending
	}
	return
}
