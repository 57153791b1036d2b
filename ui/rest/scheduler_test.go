package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fbautopost/backend/infrastructure/postqueue"
	"github.com/fbautopost/backend/pkg/utils"
	"github.com/fbautopost/backend/usecase"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	queue, err := postqueue.NewPostQueue(postqueue.Config{
		StoragePath: filepath.Join(t.TempDir(), "scheduled_posts.json"),
	})
	if err != nil {
		t.Fatalf("failed to create queue: %v", err)
	}

	app := fiber.New()
	api := app.Group("/api")
	InitRestScheduler(api, usecase.NewSchedulerService(queue))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, utils.ResponseData) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var envelope utils.ResponseData
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("response is not a ResponseData envelope: %v (%s)", err, data)
	}
	return resp, envelope
}

func TestScheduleTextEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, envelope := doJSON(t, app, http.MethodPost, "/api/schedule/text", map[string]any{
		"message":       "hello page",
		"schedule_time": time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", resp.StatusCode, envelope.Message)
	}
	if envelope.Code != "SUCCESS" {
		t.Errorf("unexpected code %s", envelope.Code)
	}

	result, ok := envelope.Results.(map[string]any)
	if !ok {
		t.Fatalf("unexpected results type %T", envelope.Results)
	}
	if result["status"] != "scheduled" {
		t.Errorf("unexpected status %v", result["status"])
	}
	if result["id"] == "" {
		t.Error("expected an id in the response")
	}
}

func TestScheduleTextEndpointRejectsPastTime(t *testing.T) {
	app := newTestApp(t)

	resp, envelope := doJSON(t, app, http.MethodPost, "/api/schedule/text", map[string]any{
		"message":       "too late",
		"schedule_time": time.Now().Add(-time.Hour).Format(time.RFC3339),
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if envelope.Code != "INVALID_TIME_PAST" {
		t.Errorf("unexpected code %s", envelope.Code)
	}
}

func TestScheduleListAndStatsEndpoints(t *testing.T) {
	app := newTestApp(t)

	for i := 1; i <= 3; i++ {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/schedule/text", map[string]any{
			"message":       fmt.Sprintf("post %d", i),
			"schedule_time": time.Now().Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("schedule %d failed with %d", i, resp.StatusCode)
		}
	}

	resp, envelope := doJSON(t, app, http.MethodGet, "/api/schedule?limit=2", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list failed with %d", resp.StatusCode)
	}
	posts, ok := envelope.Results.([]any)
	if !ok {
		t.Fatalf("unexpected results type %T", envelope.Results)
	}
	if len(posts) != 2 {
		t.Errorf("expected 2 posts, got %d", len(posts))
	}

	resp, envelope = doJSON(t, app, http.MethodGet, "/api/schedule/stats", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats failed with %d", resp.StatusCode)
	}
	stats, ok := envelope.Results.(map[string]any)
	if !ok {
		t.Fatalf("unexpected results type %T", envelope.Results)
	}
	if stats["total_posts"] != float64(3) {
		t.Errorf("unexpected total_posts %v", stats["total_posts"])
	}
}

func TestScheduleListRejectsUnknownStatus(t *testing.T) {
	app := newTestApp(t)

	resp, envelope := doJSON(t, app, http.MethodGet, "/api/schedule?status=bogus", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if envelope.Code != "VALIDATION_ERROR" {
		t.Errorf("unexpected code %s", envelope.Code)
	}
}

func TestScheduleGetUnknownID(t *testing.T) {
	app := newTestApp(t)

	resp, envelope := doJSON(t, app, http.MethodGet, "/api/schedule/no-such-id", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if envelope.Code != "NOT_FOUND_ERROR" {
		t.Errorf("unexpected code %s", envelope.Code)
	}
}

func TestScheduleCancelAndPurgeEndpoints(t *testing.T) {
	app := newTestApp(t)

	_, envelope := doJSON(t, app, http.MethodPost, "/api/schedule/text", map[string]any{
		"message":       "to cancel",
		"schedule_time": time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	id := envelope.Results.(map[string]any)["id"].(string)

	resp, _ := doJSON(t, app, http.MethodDelete, "/api/schedule/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel failed with %d", resp.StatusCode)
	}

	_, envelope = doJSON(t, app, http.MethodGet, "/api/schedule/"+id, nil)
	if envelope.Results.(map[string]any)["status"] != "cancelled" {
		t.Error("post must be cancelled, not removed")
	}

	resp, _ = doJSON(t, app, http.MethodPost, "/api/schedule/"+id+"/purge", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("purge failed with %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, http.MethodGet, "/api/schedule/"+id, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after purge, got %d", resp.StatusCode)
	}
}

func TestScheduleUpdateEndpoint(t *testing.T) {
	app := newTestApp(t)

	_, envelope := doJSON(t, app, http.MethodPost, "/api/schedule/text", map[string]any{
		"message":       "before",
		"schedule_time": time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	id := envelope.Results.(map[string]any)["id"].(string)

	resp, envelope := doJSON(t, app, http.MethodPatch, "/api/schedule/"+id, map[string]any{
		"message": "after",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update failed with %d (%s)", resp.StatusCode, envelope.Message)
	}
	if envelope.Results.(map[string]any)["message"] != "after" {
		t.Errorf("message not updated: %v", envelope.Results)
	}
}
