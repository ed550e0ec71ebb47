package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthCheck(t *testing.T) {
	h := NewHandler(nil)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("body = %v", body)
	}
}

func TestRunEndpointsWithoutDatabase(t *testing.T) {
	h := NewHandler(nil)

	rec := httptest.NewRecorder()
	h.GetLatestRun(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/latest", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GetLatestRun status = %d, want 503", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.GetRunResults(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/x/results", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GetRunResults status = %d, want 503", rec.Code)
	}
}
