package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EventTypePaid = "paid"
	EventTypeFree = "free"
)

// Event dates are stored as strings in these layouts, matching the
// document shape the SPA submits. Analytics skips events whose date
// does not parse.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Event struct {
	gorm.Model
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"not null" json:"description"`
	Date        string     `gorm:"not null" json:"date"`
	Time        string     `json:"time,omitempty"`
	Location    string     `gorm:"not null" json:"location"`
	OrganizerID uuid.UUID  `gorm:"type:uuid;not null;index" json:"organizerId"`
	Type        string     `gorm:"not null" json:"type"`
	Capacity    int        `gorm:"not null;default:0" json:"capacity"`
	IssuedCount int        `gorm:"not null;default:0" json:"issuedCount"`
	AttendeeIDs StringList `gorm:"type:text" json:"attendeeIds"`
	Tags        StringList `gorm:"type:text" json:"tags"`
	ImageURL    string     `json:"imageUrl,omitempty"`
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return
}

// TicketCount is the number of tickets attributed to the event:
// the issued counter when set, otherwise the attendee list length.
func (event *Event) TicketCount() int {
	if event.IssuedCount > 0 {
		return event.IssuedCount
	}
	return len(event.AttendeeIDs)
}
