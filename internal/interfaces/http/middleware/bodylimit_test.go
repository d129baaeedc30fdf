package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(BodyLimit(16, 64))
	router.POST("/x", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name        string
		contentType string
		size        int
		chunked     bool
		wantCode    int
	}{
		{"small json", "application/json", 8, false, http.StatusOK},
		{"declared json too large", "application/json", 32, false, http.StatusRequestEntityTooLarge},
		{"streamed json too large", "application/json", 32, true, http.StatusRequestEntityTooLarge},
		{"photo within upload limit", "multipart/form-data; boundary=x", 32, false, http.StatusOK},
		{"photo over upload limit", "multipart/form-data; boundary=x", 100, false, http.StatusRequestEntityTooLarge},
		{"streamed photo over upload limit", "multipart/form-data; boundary=x", 100, true, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(strings.Repeat("x", tt.size)))
			req.Header.Set("Content-Type", tt.contentType)
			if tt.chunked {
				req.ContentLength = -1
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}
