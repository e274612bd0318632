package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskflow-api/internal/constants"
	"github.com/yukikurage/taskflow-api/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func withUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user != nil {
			c.Set(constants.ContextKeyCurrentUser, user)
		}
		c.Next()
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name     string
		user     *models.User
		status   int
		redirect string
	}{
		{"admin passes", &models.User{ID: "a", Role: models.RoleAdmin}, http.StatusOK, ""},
		{"employee redirected home", &models.User{ID: "e", Role: models.RoleEmployee}, http.StatusForbidden, "/employee"},
		{"anonymous redirected to login", nil, http.StatusUnauthorized, "/login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/admin-only", withUser(tt.user), RequireAdmin(), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin-only", nil))

			assert.Equal(t, tt.status, w.Code)
			if tt.redirect != "" {
				body := decodeBody(t, w)
				details := body["details"].(map[string]interface{})
				assert.Equal(t, tt.redirect, details["redirect"])
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
	assert.Equal(t, "An unexpected error occurred", body["message"])
}

func TestGetCurrentUser(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetCurrentUser(c)
	assert.False(t, ok)

	c.Set(constants.ContextKeyCurrentUser, &models.User{ID: "u1"})
	user, ok := GetCurrentUser(c)
	assert.True(t, ok)
	assert.Equal(t, "u1", user.ID)
}
