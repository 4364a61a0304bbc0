package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"concoevents/internal/helpers"
	"concoevents/internal/middleware"
	"concoevents/internal/models"
)

type OrganizerRequestHandler struct {
	db *gorm.DB
}

func NewOrganizerRequestHandler(db *gorm.DB) *OrganizerRequestHandler {
	return &OrganizerRequestHandler{db: db}
}

type OrganizerRequestBody struct {
	Message string `json:"message" binding:"required"`
}

// Submit files a request to be promoted to organizer. One pending
// request per user at a time.
func (h *OrganizerRequestHandler) Submit(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	var req OrganizerRequestBody
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, "Message is required.")
		return
	}

	var pending int64
	if err := h.db.Model(&models.OrganizerRequest{}).
		Where("user_id = ? AND status = ?", userID, models.RequestPending).
		Count(&pending).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to submit request.")
		return
	}
	if pending > 0 {
		helpers.RespondWithError(c, http.StatusBadRequest, "You already have a pending organizer request.")
		return
	}

	request := models.OrganizerRequest{
		UserID:  userID,
		Message: strings.TrimSpace(req.Message),
		Status:  models.RequestPending,
	}
	if err := h.db.Create(&request).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to submit request.")
		return
	}

	helpers.RespondWithData(c, http.StatusCreated, request, "Organizer request submitted.")
}

// List returns all requests, pending first. Admin-only by middleware.
func (h *OrganizerRequestHandler) List(c *gin.Context) {
	var requests []models.OrganizerRequest
	if err := h.db.Order("status ASC, created_at ASC").Find(&requests).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve requests.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, requests, "")
}

// Approve marks the request approved and promotes the requester to
// organizer in the same transaction, so the two cannot diverge.
func (h *OrganizerRequestHandler) Approve(c *gin.Context) {
	h.review(c, models.RequestApproved)
}

// Reject marks the request rejected.
func (h *OrganizerRequestHandler) Reject(c *gin.Context) {
	h.review(c, models.RequestRejected)
}

var errRequestNotPending = errors.New("request already reviewed")

func (h *OrganizerRequestHandler) review(c *gin.Context, status string) {
	requestID := c.Param("id")

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var request models.OrganizerRequest
		if err := tx.Where("id = ?", requestID).First(&request).Error; err != nil {
			return err
		}

		if request.Status != models.RequestPending {
			return errRequestNotPending
		}

		if err := tx.Model(&request).Update("status", status).Error; err != nil {
			return err
		}

		if status != models.RequestApproved {
			return nil
		}
		return tx.Model(&models.User{}).
			Where("id = ?", request.UserID).
			Update("role", models.RoleOrganizer).Error
	})

	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		helpers.RespondWithError(c, http.StatusNotFound, "Request not found.")
		return
	case errors.Is(err, errRequestNotPending):
		helpers.RespondWithError(c, http.StatusBadRequest, "Request has already been reviewed.")
		return
	default:
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to review request.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, gin.H{"status": status}, "Request reviewed.")
}
