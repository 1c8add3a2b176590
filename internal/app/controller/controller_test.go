package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/blog-backend/internal/app/service"
	"github.com/inkpress/blog-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHealthController_Health(t *testing.T) {
	ctrl := NewHealthController("testing")
	ctrl.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	router := gin.New()
	router.GET("/health", ctrl.Health)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","timestamp":"2026-01-02T03:04:05Z","environment":"testing"}`, w.Body.String())
}

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		locale     string
		wantStatus int
		wantCode   string
		wantField  string
		wantText   string
	}{
		{name: "Lockout", err: &service.TooManyAttemptsError{RetryAfter: 299500 * time.Millisecond}, wantStatus: 422, wantCode: "AUTH_TOO_MANY_ATTEMPTS", wantField: "email", wantText: "300 seconds"},
		{name: "Invalid credentials", err: service.ErrInvalidCredentials, wantStatus: 422, wantCode: "AUTH_INVALID_CREDENTIALS", wantField: "email"},
		{name: "Invalid credentials in Japanese", err: service.ErrInvalidCredentials, locale: "ja", wantStatus: 422, wantCode: "AUTH_INVALID_CREDENTIALS", wantField: "email", wantText: "正しくありません"},
		{name: "Email taken", err: service.ErrEmailAlreadyExists, wantStatus: 422, wantCode: "AUTH_EMAIL_EXISTS", wantField: "email"},
		{name: "Wrong current password", err: service.ErrIncorrectCurrentPassword, wantStatus: 422, wantCode: "AUTH_PASSWORD_INCORRECT", wantField: "current_password"},
		{name: "Reset token", err: service.ErrInvalidOrExpiredToken, wantStatus: 422, wantCode: "AUTH_RESET_TOKEN_INVALID", wantField: "email"},
		{name: "Cannot revoke current", err: service.ErrCannotRevokeCurrent, wantStatus: 422, wantCode: "AUTH_CANNOT_REVOKE_CURRENT"},
		{name: "Token not found", err: service.ErrTokenNotFound, wantStatus: 404, wantCode: "RESOURCE_NOT_FOUND"},
		{name: "Media too large", err: service.ErrMediaTooLarge, wantStatus: 422, wantCode: "UPLOAD_FILE_TOO_LARGE", wantField: "size", wantText: "5120"},
		{name: "Unauthenticated", err: service.ErrUnauthenticated, wantStatus: 401, wantCode: "AUTH_UNAUTHORIZED"},
		{name: "Stray missing record", err: fmt.Errorf("load: %w", gorm.ErrRecordNotFound), wantStatus: 404, wantCode: "RESOURCE_NOT_FOUND"},
		{name: "Wrapped internal error", err: fmt.Errorf("query: %w", errors.New("connection refused")), wantStatus: 500, wantCode: "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(middleware.Locale(language.English, false))
			router.GET("/", func(c *gin.Context) {
				respondServiceError(c, tt.err, "test")
			})

			path := "/"
			if tt.locale != "" {
				path += "?lang=" + tt.locale
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["error"])
			assert.NotContains(t, w.Body.String(), "connection refused")
			if tt.wantField != "" {
				fields, ok := body["fields"].(map[string]interface{})
				require.True(t, ok)
				assert.Contains(t, fields, tt.wantField)
			}
			if tt.wantText != "" {
				assert.Contains(t, body["message"], tt.wantText)
			}
		})
	}
}
