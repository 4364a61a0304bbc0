package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"concoevents/internal/helpers"
	"concoevents/internal/models"
)

type ExportHandler struct {
	db *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{db: db}
}

// ExportAttendees streams the event's attendee list as CSV. Profile
// fields that are missing fall back to the attendee id for the name
// and "N/A" for the rest, so a row always comes out per attendee.
func (h *ExportHandler) ExportAttendees(c *gin.Context) {
	eventID := c.Param("eventId")

	var event models.Event
	if err := h.db.Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	records := [][]string{{"name", "studentId", "email"}}
	for _, attendeeID := range event.AttendeeIDs {
		name, studentID, email := attendeeID, "N/A", "N/A"

		var user models.User
		if err := h.db.Where("id = ?", attendeeID).First(&user).Error; err == nil {
			if trimmed := strings.TrimSpace(user.Name); trimmed != "" {
				name = trimmed
			}
			if trimmed := strings.TrimSpace(user.StudentID); trimmed != "" {
				studentID = trimmed
			}
			if trimmed := strings.TrimSpace(user.Email); trimmed != "" {
				email = trimmed
			}
		}

		records = append(records, []string{name, studentID, email})
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(records); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to build CSV.")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "event-"+eventID+"-attendees.csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
