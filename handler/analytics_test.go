package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"short-link-service/middleware"
	"short-link-service/model"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
)

func getAnalytics(h *LinkHandler, code string, user *model.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/analytics/"+code, nil)
	req = mux.SetURLVars(req, map[string]string{"shortCode": code})
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), user))
	}

	w := httptest.NewRecorder()
	h.GetAnalytics(w, req)
	return w
}

func mustAppendVisit(t *testing.T, client *redis.Client, code string, visit model.Visit) {
	t.Helper()
	ctx := context.Background()
	data, err := json.Marshal(visit)
	if err != nil {
		t.Fatalf("Failed to marshal visit: %v", err)
	}
	if err := client.Incr(ctx, clicksKey(code)).Err(); err != nil {
		t.Fatalf("Failed to increment counter: %v", err)
	}
	if err := client.RPush(ctx, visitsKey(code), data).Err(); err != nil {
		t.Fatalf("Failed to append visit: %v", err)
	}
}

func TestGetAnalytics_NotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	if w := getAnalytics(h, "nosuch", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestGetAnalytics_OwnerSeesFullRecord(t *testing.T) {
	h, client := newTestHandler(t)
	owner := &model.User{ID: "user-1"}

	mustStoreLink(t, client, model.Link{
		ShortCode: "abc123",
		LongURL:   "https://example.com",
		UserID:    owner.ID,
		CreatedAt: time.Now(),
	})

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		mustAppendVisit(t, client, "abc123", model.Visit{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			IP:        "203.0.113.10",
			UserAgent: browserUA,
		})
	}

	w := getAnalytics(h, "abc123", owner)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp model.LinkAnalytics
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Clicks != 3 {
		t.Errorf("Clicks = %d, want 3", resp.Clicks)
	}
	if len(resp.Visits) != 3 {
		t.Fatalf("Visits length = %d, want 3", len(resp.Visits))
	}
	// Chronological order
	for i := 1; i < len(resp.Visits); i++ {
		if resp.Visits[i].Timestamp.Before(resp.Visits[i-1].Timestamp) {
			t.Errorf("Visits out of order at index %d", i)
		}
	}
	if resp.LongURL != "https://example.com" {
		t.Errorf("LongURL = %q", resp.LongURL)
	}
}

func TestGetAnalytics_NonOwnerRejected(t *testing.T) {
	h, client := newTestHandler(t)

	mustStoreLink(t, client, model.Link{
		ShortCode: "abc123",
		LongURL:   "https://example.com",
		UserID:    "user-1",
	})

	t.Run("Anonymous caller", func(t *testing.T) {
		if w := getAnalytics(h, "abc123", nil); w.Code != http.StatusForbidden {
			t.Errorf("Expected status 403, got %d", w.Code)
		}
	})

	t.Run("Different user", func(t *testing.T) {
		other := &model.User{ID: "user-2"}
		if w := getAnalytics(h, "abc123", other); w.Code != http.StatusForbidden {
			t.Errorf("Expected status 403, got %d", w.Code)
		}
	})
}

func TestGetAnalytics_AnonymousLinkVisibleToAnyone(t *testing.T) {
	h, client := newTestHandler(t)

	mustStoreLink(t, client, model.Link{
		ShortCode: "anon01",
		LongURL:   "https://example.com",
	})

	if w := getAnalytics(h, "anon01", nil); w.Code != http.StatusOK {
		t.Errorf("Anonymous caller on unowned link: expected 200, got %d", w.Code)
	}
	if w := getAnalytics(h, "anon01", &model.User{ID: "user-9"}); w.Code != http.StatusOK {
		t.Errorf("Logged-in caller on unowned link: expected 200, got %d", w.Code)
	}
}

func TestGetAnalytics_ExpiredLinkStillQueryable(t *testing.T) {
	h, client := newTestHandler(t)
	owner := &model.User{ID: "user-1"}

	mustStoreLink(t, client, model.Link{
		ShortCode: "old123",
		LongURL:   "https://example.com",
		UserID:    owner.ID,
		ExpiresAt: time.Now().Add(-time.Hour),
	})

	if w := getAnalytics(h, "old123", owner); w.Code != http.StatusOK {
		t.Errorf("Owner must be able to query expired links, got %d", w.Code)
	}
}

func TestGetAnalytics_NoVisitsYet(t *testing.T) {
	h, client := newTestHandler(t)

	mustStoreLink(t, client, model.Link{ShortCode: "fresh1", LongURL: "https://example.com"})

	w := getAnalytics(h, "fresh1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp model.LinkAnalytics
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Clicks != 0 {
		t.Errorf("Clicks = %d, want 0", resp.Clicks)
	}
	if len(resp.Visits) != 0 {
		t.Errorf("Visits length = %d, want 0", len(resp.Visits))
	}
}
