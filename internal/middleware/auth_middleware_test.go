package middleware_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"concoevents/config"
	"concoevents/internal/middleware"
	"concoevents/internal/models"
)

const secret = "test-secret"

func newDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJWTAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	userID := uuid.New()

	r := gin.New()
	r.GET("/protected", middleware.JWTAuth(secret), func(c *gin.Context) {
		id, ok := middleware.UserID(c)
		require.True(t, ok)
		c.String(http.StatusOK, id.String())
	})

	testCases := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{
			name:           "valid token",
			header:         "Bearer " + signToken(t, secret, jwt.MapClaims{"sub": userID.String(), "exp": time.Now().Add(time.Hour).Unix()}),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing header",
			header:         "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "not a bearer header",
			header:         "Basic abcdef",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "garbage token",
			header:         "Bearer not.a.token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong signing key",
			header:         "Bearer " + signToken(t, "other-secret", jwt.MapClaims{"sub": userID.String(), "exp": time.Now().Add(time.Hour).Unix()}),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "expired token",
			header:         "Bearer " + signToken(t, secret, jwt.MapClaims{"sub": userID.String(), "exp": time.Now().Add(-time.Hour).Unix()}),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "subject is not a uuid",
			header:         "Bearer " + signToken(t, secret, jwt.MapClaims{"sub": "42", "exp": time.Now().Add(time.Hour).Unix()}),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.expectedStatus, w.Code)

			if tc.expectedStatus == http.StatusOK {
				assert.Equal(t, userID.String(), w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newDB(t)

	organizer := models.User{Name: "Olga", Email: "olga@school.edu", Password: "x", Role: models.RoleOrganizer}
	require.NoError(t, db.Create(&organizer).Error)
	student := models.User{Name: "Sam", Email: "sam@school.edu", Password: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)

	r := gin.New()
	r.GET("/gated",
		middleware.JWTAuth(secret),
		middleware.RequireRole(db, models.RoleOrganizer, models.RoleAdmin),
		func(c *gin.Context) {
			role, ok := middleware.Role(c)
			require.True(t, ok)
			c.String(http.StatusOK, role)
		})

	request := func(userID uuid.UUID) *httptest.ResponseRecorder {
		token := signToken(t, secret, jwt.MapClaims{"sub": userID.String(), "exp": time.Now().Add(time.Hour).Unix()})
		req := httptest.NewRequest(http.MethodGet, "/gated", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("allowed role passes and is exposed in context", func(t *testing.T) {
		w := request(organizer.ID)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.RoleOrganizer, w.Body.String())
	})

	t.Run("role outside the allow-list is forbidden", func(t *testing.T) {
		w := request(student.ID)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("identity without a profile row is forbidden, not defaulted", func(t *testing.T) {
		w := request(uuid.New())
		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "Role not found")
	})
}
