package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newAuthRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/protected", RequireWriteAccess(token), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func TestRequireWriteAccess(t *testing.T) {
	r := newAuthRouter("s3cret")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusForbidden},
		{"wrong scheme", "Basic s3cret", http.StatusForbidden},
		{"wrong token", "Bearer nope", http.StatusForbidden},
		{"valid token", "Bearer s3cret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireWriteAccessDisabledWhenUnset(t *testing.T) {
	r := newAuthRouter("")

	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBulkUpdateRejectsBadIDsBeforeMutation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	// svc is never reached: id parsing fails first
	h := NewWorkOrderHandler(nil, nil, nil)
	r := gin.New()
	r.POST("/bulk/workorders", h.BulkUpdate)

	body := `{"ids": ["1", "abc"], "action": "mark_completed"}`
	req := httptest.NewRequest(http.MethodPost, "/bulk/workorders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid work order id: abc")
}

func TestBulkUpdateRequiresBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewWorkOrderHandler(nil, nil, nil)
	r := gin.New()
	r.POST("/bulk/workorders", h.BulkUpdate)

	req := httptest.NewRequest(http.MethodPost, "/bulk/workorders", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
