package handlers_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concoevents/internal/models"
)

func TestExportAttendees(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	organizer := createUser(t, db, "Olga Organizer", "olga@school.edu", models.RoleOrganizer)

	t.Run("zero attendees yields exactly the header row", func(t *testing.T) {
		event := seedEvent(t, db, organizer.ID, 0)

		w := doRequest(r, http.MethodGet, "/events/"+event.ID.String()+"/export-attendees", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "name,studentId,email\n", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	})

	t.Run("fields with commas are quoted and missing profiles fall back", func(t *testing.T) {
		withProfile := createUser(t, db, "Doe, Jane", "jane@school.edu", models.RoleStudent)
		require.NoError(t, db.Model(&models.User{}).Where("id = ?", withProfile.ID).
			Update("student_id", "S1234567").Error)
		ghost := uuid.NewString()

		event := seedEvent(t, db, organizer.ID, 0)
		require.NoError(t, db.Model(&models.Event{}).Where("id = ?", event.ID).
			Update("attendee_ids", models.StringList{withProfile.ID.String(), ghost}).Error)

		w := doRequest(r, http.MethodGet, "/events/"+event.ID.String()+"/export-attendees", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		expected := "name,studentId,email\n" +
			"\"Doe, Jane\",S1234567,jane@school.edu\n" +
			ghost + ",N/A,N/A\n"
		assert.Equal(t, expected, w.Body.String())
	})

	t.Run("unknown event is not found", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/events/"+uuid.NewString()+"/export-attendees", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
