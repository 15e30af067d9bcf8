package preview

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const ogPage = `<!DOCTYPE html>
<html>
<head>
	<title>Fallback Title</title>
	<meta property="og:title" content="OG Title" />
	<meta property="og:description" content="OG Description" />
	<meta property="og:image" content="https://example.com/img.png" />
	<meta name="description" content="Meta description" />
</head>
<body><h1>hello</h1></body>
</html>`

const plainPage = `<!DOCTYPE html>
<html>
<head>
	<title>Just A Title</title>
	<meta name="description" content="Plain description">
</head>
<body></body>
</html>`

func newTestFetcher() *Fetcher {
	return NewFetcher(2*time.Second, 512*1024)
}

func TestFetch_OpenGraphTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(ogPage))
	}))
	defer srv.Close()

	got, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if got.Title != "OG Title" {
		t.Errorf("Title = %q, want %q", got.Title, "OG Title")
	}
	if got.Description != "OG Description" {
		t.Errorf("Description = %q, want %q", got.Description, "OG Description")
	}
	if got.ImageURL != "https://example.com/img.png" {
		t.Errorf("ImageURL = %q, want %q", got.ImageURL, "https://example.com/img.png")
	}
}

func TestFetch_TitleAndDescriptionFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(plainPage))
	}))
	defer srv.Close()

	got, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if got.Title != "Just A Title" {
		t.Errorf("Title = %q, want %q", got.Title, "Just A Title")
	}
	if got.Description != "Plain description" {
		t.Errorf("Description = %q, want %q", got.Description, "Plain description")
	}
	if got.ImageURL != "" {
		t.Errorf("ImageURL = %q, want empty", got.ImageURL)
	}
}

func TestFetch_NonHTMLResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"not": "html"}`))
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrNotHTML) {
		t.Errorf("Fetch() error = %v, want ErrNotHTML", err)
	}
}

func TestFetch_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrBadStatus) {
		t.Errorf("Fetch() error = %v, want ErrBadStatus", err)
	}
}

func TestFetch_TimeoutOnSlowTarget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(plainPage))
	}))
	defer srv.Close()

	fetcher := NewFetcher(50*time.Millisecond, 512*1024)
	if _, err := fetcher.Fetch(context.Background(), srv.URL); err == nil {
		t.Error("Fetch() expected timeout error, got nil")
	}
}

func TestFetch_UnreachableTarget(t *testing.T) {
	// Closed server: connection refused
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	if _, err := newTestFetcher().Fetch(context.Background(), url); err == nil {
		t.Error("Fetch() expected connection error, got nil")
	}
}
