package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleStudent   = "student"
	RoleOrganizer = "organizer"
	RoleAdmin     = "admin"
)

// ValidRole reports whether name is one of the three known roles.
func ValidRole(name string) bool {
	switch name {
	case RoleStudent, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	gorm.Model
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	StudentID string    `json:"studentId"`
	Role      string    `gorm:"not null;default:'student'" json:"role"`
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = RoleStudent
	}
	return
}
