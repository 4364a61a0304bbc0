package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"concoevents/internal/helpers"
	"concoevents/internal/middleware"
	"concoevents/internal/models"
)

type RoleHandler struct {
	db *gorm.DB
}

func NewRoleHandler(db *gorm.DB) *RoleHandler {
	return &RoleHandler{db: db}
}

type UpdateRoleRequest struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
	Role   string    `json:"role" binding:"required"`
}

// GetRole returns the caller's stored role.
func (h *RoleHandler) GetRole(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	var user models.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "User role not found. Please contact support.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve user role.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, gin.H{
		"role":  user.Role,
		"uid":   user.ID,
		"email": user.Email,
	}, "User role retrieved successfully.")
}

// UpdateRole sets another user's role. Admin-only by route middleware;
// the organizer-request flow is the self-service path to promotion.
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	if !models.ValidRole(req.Role) {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid role. Must be admin, organizer, or student.")
		return
	}

	result := h.db.Model(&models.User{}).Where("id = ?", req.UserID).Update("role", req.Role)
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update user role.")
		return
	}
	if result.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, gin.H{
		"uid":  req.UserID,
		"role": req.Role,
	}, "User role updated successfully.")
}
