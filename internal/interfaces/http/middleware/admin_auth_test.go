package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestAdminToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		token      string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"disabled when token empty", "", "", http.StatusOK, "ok"},
		{"missing header", "s3cret", "", http.StatusUnauthorized, "missing bearer token"},
		{"wrong scheme", "s3cret", "Basic s3cret", http.StatusUnauthorized, "missing bearer token"},
		{"wrong token", "s3cret", "Bearer nope", http.StatusUnauthorized, "invalid bearer token"},
		{"valid token", "s3cret", "Bearer s3cret", http.StatusOK, "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/run", AdminToken(tt.token), func(c *gin.Context) {
				c.String(http.StatusOK, "ok")
			})

			req := httptest.NewRequest("POST", "/run", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
