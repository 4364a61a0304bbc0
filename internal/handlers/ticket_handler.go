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

type TicketHandler struct {
	db *gorm.DB
}

func NewTicketHandler(db *gorm.DB) *TicketHandler {
	return &TicketHandler{db: db}
}

var (
	errEventNotFound    = errors.New("event not found")
	errTicketNotFound   = errors.New("ticket not found")
	errDuplicateClaim   = errors.New("you already have a ticket for this event")
	errCapacityExceeded = errors.New("event is at full capacity")
	errAlreadyCheckedIn = errors.New("ticket has already been checked in")
)

type ClaimRequest struct {
	EventID uuid.UUID `json:"eventId" binding:"required"`
}

type CheckInRequest struct {
	TicketID uuid.UUID `json:"ticketId" binding:"required"`
}

// ClaimTicket issues exactly one ticket per (event, holder) pair,
// subject to capacity. The whole workflow runs in one transaction:
// the duplicate guard is backed by the unique index on tickets, and
// capacity is enforced with a guarded increment, so the read-then-check
// race of naive implementations cannot oversell the event.
func (h *TicketHandler) ClaimTicket(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Missing or invalid eventId.")
		return
	}

	var ticket models.Ticket
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.Where("id = ?", req.EventID).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errEventNotFound
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.Ticket{}).
			Where("event_id = ? AND holder_id = ?", event.ID, userID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return errDuplicateClaim
		}

		if event.Capacity > 0 && event.IssuedCount >= event.Capacity {
			return errCapacityExceeded
		}

		ticket = models.Ticket{
			EventID:  event.ID,
			HolderID: userID,
		}
		if err := tx.Create(&ticket).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errDuplicateClaim
			}
			return err
		}

		qrCode, err := helpers.TicketQRCode(ticket.ID)
		if err != nil {
			return err
		}
		if err := tx.Model(&ticket).Update("qr_code", qrCode).Error; err != nil {
			return err
		}
		ticket.QRCode = qrCode

		// The WHERE clause re-checks capacity at write time. If another
		// claim got in first, RowsAffected is 0 and the transaction
		// rolls back, ticket included.
		result := tx.Model(&models.Event{}).
			Where("id = ? AND (capacity = 0 OR issued_count < capacity)", event.ID).
			Update("issued_count", gorm.Expr("issued_count + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errCapacityExceeded
		}

		// The attendee list must be re-read here, not taken from the
		// event loaded above: the guarded increment holds the row lock,
		// so this read sees every append committed by earlier claims
		// instead of a snapshot from before the lock was acquired.
		var current models.Event
		if err := tx.Where("id = ?", event.ID).First(&current).Error; err != nil {
			return err
		}
		return tx.Model(&models.Event{}).
			Where("id = ?", event.ID).
			Update("attendee_ids", append(current.AttendeeIDs, userID.String())).Error
	})

	switch {
	case err == nil:
	case errors.Is(err, errEventNotFound):
		helpers.RespondWithError(c, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, errDuplicateClaim), errors.Is(err, errCapacityExceeded):
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	default:
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create ticket.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, gin.H{
		"ticketId": ticket.ID,
		"qrCode":   ticket.QRCode,
	}, "Ticket created with QR.")
}

// AdminCheckIn marks a ticket as used and repairs the event's attendee
// list if the holder is missing from it. Admin role is enforced by the
// route middleware.
func (h *TicketHandler) AdminCheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Missing or invalid ticketId.")
		return
	}

	var ticket models.Ticket
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", req.TicketID).First(&ticket).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errTicketNotFound
			}
			return err
		}

		// The claimed guard lives in the WHERE clause, not in an
		// in-memory test: two concurrent check-ins can both read
		// claimed=false, but only one can flip the row.
		result := tx.Model(&models.Ticket{}).
			Where("id = ? AND claimed = ?", ticket.ID, false).
			Update("claimed", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errAlreadyCheckedIn
		}
		ticket.Claimed = true

		var event models.Event
		if err := tx.Where("id = ?", ticket.EventID).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errEventNotFound
			}
			return err
		}

		if event.AttendeeIDs.Contains(ticket.HolderID.String()) {
			return nil
		}
		return tx.Model(&event).
			Update("attendee_ids", append(event.AttendeeIDs, ticket.HolderID.String())).Error
	})

	switch {
	case err == nil:
	case errors.Is(err, errTicketNotFound), errors.Is(err, errEventNotFound):
		helpers.RespondWithError(c, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, errAlreadyCheckedIn):
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	default:
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to check in ticket.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, gin.H{
		"ticketId": ticket.ID,
		"claimed":  ticket.Claimed,
	}, "Ticket checked in successfully.")
}

// ListMyTickets returns the caller's tickets in claim order.
func (h *TicketHandler) ListMyTickets(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	var tickets []models.Ticket
	if err := h.db.Where("holder_id = ?", userID).Order("created_at ASC").Find(&tickets).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving tickets.")
		return
	}

	helpers.RespondWithData(c, http.StatusOK, tickets, "")
}

// GetTicket returns a single ticket to its holder or to an admin.
func (h *TicketHandler) GetTicket(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	ticketID := c.Param("id")

	var ticket models.Ticket
	if err := h.db.Where("id = ?", ticketID).First(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving ticket.")
		return
	}

	if ticket.HolderID != userID {
		var caller models.User
		if err := h.db.Where("id = ?", userID).First(&caller).Error; err != nil || caller.Role != models.RoleAdmin {
			helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to view this ticket.")
			return
		}
	}

	helpers.RespondWithData(c, http.StatusOK, ticket, "")
}
