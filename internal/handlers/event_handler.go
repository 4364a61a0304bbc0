package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"concoevents/internal/helpers"
	"concoevents/internal/middleware"
	"concoevents/internal/models"
)

type EventHandler struct {
	db *gorm.DB
}

func NewEventHandler(db *gorm.DB) *EventHandler {
	return &EventHandler{db: db}
}

type EventRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Location    string   `json:"location"`
	Type        string   `json:"type"`
	Capacity    int      `json:"capacity"`
	Tags        []string `json:"tags"`
	ImageURL    string   `json:"imageUrl"`
}

func validateEvent(req *EventRequest) []string {
	var errs []string

	if strings.TrimSpace(req.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(req.Description) == "" {
		errs = append(errs, "description is required")
	}
	if strings.TrimSpace(req.Date) == "" {
		errs = append(errs, "date is required")
	} else if _, err := time.Parse(models.DateLayout, req.Date); err != nil {
		errs = append(errs, "date must be a valid YYYY-MM-DD date")
	}
	if req.Time != "" {
		if _, err := time.Parse(models.TimeLayout, req.Time); err != nil {
			errs = append(errs, "time must be a valid HH:MM time")
		}
	}
	if strings.TrimSpace(req.Location) == "" {
		errs = append(errs, "location is required")
	}
	if req.Type != models.EventTypePaid && req.Type != models.EventTypeFree {
		errs = append(errs, `type must be either "paid" or "free"`)
	}
	if req.Capacity < 0 {
		errs = append(errs, "capacity cannot be negative")
	}

	return errs
}

// CreateEvent creates an event owned by the caller. The organizer/admin
// role gate runs as route middleware.
func (h *EventHandler) CreateEvent(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	if errs := validateEvent(&req); len(errs) > 0 {
		helpers.RespondWithErrorDetails(c, http.StatusBadRequest, "Validation failed", strings.Join(errs, ", "))
		return
	}

	event := models.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
		OrganizerID: userID,
		Type:        req.Type,
		Capacity:    req.Capacity,
		Tags:        models.StringList(req.Tags),
		ImageURL:    req.ImageURL,
	}

	if err := h.db.Create(&event).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create event.")
		return
	}

	helpers.RespondWithData(c, http.StatusCreated, event, "Event created successfully.")
}

func (h *EventHandler) ListEvents(c *gin.Context) {
	page := c.DefaultQuery("page", "1")
	limit := c.DefaultQuery("limit", "20")

	pageNum, err := helpers.StringToInt(page)
	if err != nil || pageNum < 1 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid page number.")
		return
	}

	limitNum, err := helpers.StringToInt(limit)
	if err != nil || limitNum < 1 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}

	query := h.db.Model(&models.Event{})
	if eventType := c.Query("type"); eventType != "" {
		query = query.Where("type = ?", eventType)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving events.")
		return
	}

	var events []models.Event
	offset := (pageNum - 1) * limitNum
	err = query.Offset(offset).Limit(limitNum).Order("date ASC, created_at ASC").Find(&events).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving events.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, gin.H{
		"events":      events,
		"total":       totalCount,
		"page":        pageNum,
		"limit":       limitNum,
		"total_pages": (totalCount + int64(limitNum) - 1) / int64(limitNum),
	}, "")
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	eventID := c.Param("id")

	var event models.Event
	if err := h.db.Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, event, "")
}

// DeleteEvent removes an event and all of its tickets in one
// transaction. Only the owning organizer may delete.
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	eventID := c.Param("id")

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.Where("id = ?", eventID).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errEventNotFound
			}
			return err
		}

		if event.OrganizerID != userID {
			return errNotEventOwner
		}

		if err := tx.Where("event_id = ?", event.ID).Delete(&models.Ticket{}).Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})

	switch {
	case err == nil:
	case errors.Is(err, errEventNotFound):
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		return
	case errors.Is(err, errNotEventOwner):
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to delete this event.")
		return
	default:
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete event.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, nil, "Event deleted successfully.")
}

var errNotEventOwner = errors.New("not the event organizer")
