package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskflow-api/internal/constants"
	"github.com/yukikurage/taskflow-api/internal/dto"
	apierrors "github.com/yukikurage/taskflow-api/internal/errors"
	"github.com/yukikurage/taskflow-api/internal/models"
)

func newAuthRouter(env *testEnv) *gin.Engine {
	handler := NewAuthHandler(env.authService)

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	r.POST("/api/auth/signup", handler.Signup)
	r.POST("/api/auth/login", handler.Login)
	r.POST("/api/auth/logout", handler.Logout)
	r.GET("/api/auth/landing", handler.Landing)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, payload interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Signup(t *testing.T) {
	env := newTestEnv(t)
	r := newAuthRouter(env)

	w := postJSON(t, r, "/api/auth/signup", map[string]string{
		"email":     "New.User@Example.com",
		"password":  "supersecret",
		"full_name": "New User",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "new.user@example.com", response.Email)
	assert.Equal(t, "New User", response.FullName)
	assert.Equal(t, models.RoleEmployee, response.Role)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestAuthHandler_SignupValidation(t *testing.T) {
	env := newTestEnv(t)
	r := newAuthRouter(env)

	tests := []struct {
		name    string
		payload map[string]string
		status  int
	}{
		{"missing email", map[string]string{"password": "supersecret", "full_name": "A"}, http.StatusBadRequest},
		{"bad email", map[string]string{"email": "nope", "password": "supersecret", "full_name": "A"}, http.StatusBadRequest},
		{"short password", map[string]string{"email": "a@example.com", "password": "123", "full_name": "A"}, http.StatusBadRequest},
		{"unknown role", map[string]string{"email": "a@example.com", "password": "supersecret", "full_name": "A", "role": "root"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, r, "/api/auth/signup", tt.payload)
			assert.Equal(t, tt.status, w.Code)

			var apiErr apierrors.APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
			assert.Equal(t, apierrors.ErrCodeInvalidInput, apiErr.Code)
		})
	}
}

func TestAuthHandler_SignupDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "taken@example.com", "Taken", models.RoleEmployee)
	r := newAuthRouter(env)

	w := postJSON(t, r, "/api/auth/signup", map[string]string{
		"email":     "taken@example.com",
		"password":  "supersecret",
		"full_name": "Again",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_LoginRedirectsByRole(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "admin@example.com", "Admin", models.RoleAdmin)
	env.seedUser(t, "emp@example.com", "Employee", models.RoleEmployee)
	r := newAuthRouter(env)

	tests := []struct {
		email    string
		redirect string
	}{
		{"admin@example.com", constants.RouteAdminHome},
		{"emp@example.com", constants.RouteEmployeeHome},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			w := postJSON(t, r, "/api/auth/login", map[string]string{
				"email":    tt.email,
				"password": "supersecret",
			})
			require.Equal(t, http.StatusOK, w.Code)

			var response struct {
				User     dto.UserDTO `json:"user"`
				Redirect string      `json:"redirect"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.email, response.User.Email)
			assert.Equal(t, tt.redirect, response.Redirect)
			assert.NotEmpty(t, w.Result().Cookies(), "expected session cookie to be set")
		})
	}
}

func TestAuthHandler_LoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "emp@example.com", "Employee", models.RoleEmployee)
	r := newAuthRouter(env)

	w := postJSON(t, r, "/api/auth/login", map[string]string{
		"email":    "emp@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var apiErr apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, apierrors.ErrCodeInvalidCredentials, apiErr.Code)
}

func TestAuthHandler_LandingFollowsSession(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "admin@example.com", "Admin", models.RoleAdmin)
	r := newAuthRouter(env)

	landing := func(cookies ...*http.Cookie) string {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/landing", nil)
		for _, ck := range cookies {
			req.AddCookie(ck)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var response map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		return response["redirect"]
	}

	assert.Equal(t, constants.RouteLogin, landing())

	login := postJSON(t, r, "/api/auth/login", map[string]string{
		"email":    "admin@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, login.Code)
	cookies := login.Result().Cookies()

	assert.Equal(t, constants.RouteAdminHome, landing(cookies...))

	logout := postJSON(t, r, "/api/auth/logout", map[string]string{}, cookies...)
	require.Equal(t, http.StatusOK, logout.Code)
	assert.Equal(t, constants.RouteLogin, landing(logout.Result().Cookies()...))
}

func TestAuthHandler_GetCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "current@example.com", "Current", models.RoleEmployee)
	handler := NewAuthHandler(env.authService)

	c, w := createAuthContext(http.MethodGet, "/api/auth/me", nil, user)
	handler.GetCurrentUser(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, user.ID, response.ID)
	assert.Equal(t, "Current", response.FullName)
}

func TestAuthHandler_GetCurrentUserUnauthenticated(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAuthHandler(env.authService)

	c, w := createAuthContext(http.MethodGet, "/api/auth/me", nil, nil)
	handler.GetCurrentUser(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), constants.RouteLogin)
}

func TestUserHandler_ListAndDelete(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin@example.com", "Admin", models.RoleAdmin)
	emp := env.seedUser(t, "emp@example.com", "Employee", models.RoleEmployee)
	handler := NewUserHandler(env.authService)

	c, w := createAuthContext(http.MethodGet, "/api/users?role=employee", nil, admin)
	handler.ListUsers(c)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Users []dto.UserDTO `json:"users"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Users, 1)
	assert.Equal(t, emp.ID, list.Users[0].ID)

	c, w = createAuthContext(http.MethodDelete, "/api/users/"+admin.ID, nil, admin)
	c.Params = gin.Params{{Key: "id", Value: admin.ID}}
	handler.DeleteUser(c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	c, w = createAuthContext(http.MethodDelete, "/api/users/"+emp.ID, nil, admin)
	c.Params = gin.Params{{Key: "id", Value: emp.ID}}
	handler.DeleteUser(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = createAuthContext(http.MethodGet, "/api/users/"+emp.ID, nil, admin)
	c.Params = gin.Params{{Key: "id", Value: emp.ID}}
	handler.GetUser(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
