package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHealthController_Check(t *testing.T) {
	gin.SetMode(gin.TestMode)

	up := func() bool { return true }
	down := func() bool { return false }

	tests := []struct {
		name       string
		db         func() bool
		redis      func() bool
		wantCode   int
		wantStatus string
		wantRedis  string
	}{
		{"all connected", up, up, http.StatusOK, "ok", "connected"},
		{"redis disabled", up, nil, http.StatusOK, "ok", "disabled"},
		{"redis down", up, down, http.StatusOK, "degraded", "disconnected"},
		{"database down", down, up, http.StatusServiceUnavailable, "unavailable", "connected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			engine.GET("/health", NewHealthController(tt.db, tt.redis).Check)

			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("status code = %d, want %d", rec.Code, tt.wantCode)
			}
			var body HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid body: %v", err)
			}
			if body.Status != tt.wantStatus || body.Redis != tt.wantRedis {
				t.Errorf("unexpected body %+v", body)
			}
		})
	}
}
