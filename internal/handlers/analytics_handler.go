package handlers

import (
	"errors"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"concoevents/internal/helpers"
	"concoevents/internal/middleware"
	"concoevents/internal/models"
)

type AnalyticsHandler struct {
	db *gorm.DB
}

func NewAnalyticsHandler(db *gorm.DB) *AnalyticsHandler {
	return &AnalyticsHandler{db: db}
}

type TopEvent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	TicketCount int    `json:"ticketCount"`
}

type ParticipationTrend struct {
	Period      string     `json:"period"`
	TicketCount int        `json:"ticketCount"`
	EventCount  int        `json:"eventCount"`
	TopEvents   []TopEvent `json:"topEvents"`
}

type AnalyticsSummary struct {
	TotalEvents         int                  `json:"totalEvents"`
	TotalTicketsIssued  int                  `json:"totalTicketsIssued"`
	ParticipationTrends []ParticipationTrend `json:"participationTrends"`
}

type EventStats struct {
	EventID           string  `json:"eventId"`
	TicketsIssued     int     `json:"ticketsIssued"`
	AttendedCount     int     `json:"attendedCount"`
	AttendanceRate    float64 `json:"attendanceRate"`
	RemainingCapacity int     `json:"remainingCapacity"` // -1 when capacity is unlimited
}

const topEventsPerPeriod = 3

// Summary folds every event into monthly buckets keyed by event date
// and ranks the top events inside each bucket by ticket count. Events
// whose date does not parse are counted in the totals but excluded
// from the trend buckets.
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	var events []models.Event
	if err := h.db.Find(&events).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve analytics.")
		return
	}

	summary := AnalyticsSummary{
		TotalEvents:         len(events),
		ParticipationTrends: []ParticipationTrend{},
	}

	buckets := make(map[string]*ParticipationTrend)
	for _, event := range events {
		tickets := event.TicketCount()
		summary.TotalTicketsIssued += tickets

		date, err := time.Parse(models.DateLayout, event.Date)
		if err != nil {
			continue
		}

		period := date.Format("2006-01")
		trend, ok := buckets[period]
		if !ok {
			trend = &ParticipationTrend{Period: period}
			buckets[period] = trend
		}
		trend.TicketCount += tickets
		trend.EventCount++
		trend.TopEvents = append(trend.TopEvents, TopEvent{
			ID:          event.ID.String(),
			Title:       event.Title,
			TicketCount: tickets,
		})
	}

	for _, trend := range buckets {
		sort.SliceStable(trend.TopEvents, func(i, j int) bool {
			return trend.TopEvents[i].TicketCount > trend.TopEvents[j].TicketCount
		})
		if len(trend.TopEvents) > topEventsPerPeriod {
			trend.TopEvents = trend.TopEvents[:topEventsPerPeriod]
		}
		summary.ParticipationTrends = append(summary.ParticipationTrends, *trend)
	}

	sort.Slice(summary.ParticipationTrends, func(i, j int) bool {
		return summary.ParticipationTrends[i].Period < summary.ParticipationTrends[j].Period
	})

	helpers.RespondWithData(c, http.StatusOK, summary, "")
}

// Stats reports issued/checked-in counts and the attendance rate for
// one event. Visible to admins and to the event's organizer.
func (h *AnalyticsHandler) Stats(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

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

	var caller models.User
	if err := h.db.Where("id = ?", userID).First(&caller).Error; err != nil {
		helpers.RespondWithError(c, http.StatusForbidden, "Role not found.")
		return
	}
	if caller.Role != models.RoleAdmin && event.OrganizerID != userID {
		helpers.RespondWithError(c, http.StatusForbidden, "Not authorized to view this event's analytics.")
		return
	}

	var attended int64
	if err := h.db.Model(&models.Ticket{}).
		Where("event_id = ? AND claimed = ?", event.ID, true).
		Count(&attended).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving tickets.")
		return
	}

	issued := event.TicketCount()

	rate := 0.0
	if issued > 0 {
		rate = math.Round(float64(attended)/float64(issued)*100*100) / 100
	}

	remaining := -1
	if event.Capacity > 0 {
		remaining = event.Capacity - issued
	}

	helpers.RespondWithData(c, http.StatusOK, EventStats{
		EventID:           event.ID.String(),
		TicketsIssued:     issued,
		AttendedCount:     int(attended),
		AttendanceRate:    rate,
		RemainingCapacity: remaining,
	}, "")
}
