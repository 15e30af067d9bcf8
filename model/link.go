package model

import "time"

// Link is the stored short-link document. It is written once at creation and
// never rewritten; the click counter and visit log live under separate keys so
// concurrent visits can be recorded atomically without touching the document.
type Link struct {
	ShortCode string    `json:"shortCode"`
	LongURL   string    `json:"longUrl"`
	UserID    string    `json:"userId,omitempty"` // empty = created anonymously
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Preview   Preview   `json:"preview,omitempty"`
}

// Expired reports whether the link's expiration has passed. A zero ExpiresAt
// means the link never expires.
func (l *Link) Expired(now time.Time) bool {
	return !l.ExpiresAt.IsZero() && now.After(l.ExpiresAt)
}

// Preview holds social-preview metadata scraped from the target page at
// creation time. All fields may be empty when the fetch failed.
type Preview struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// Visit is one recorded non-bot access to a link.
type Visit struct {
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
}

// ShortenRequest is the body of POST /shorten.
type ShortenRequest struct {
	LongURL     string `json:"longUrl"`
	CustomAlias string `json:"customAlias,omitempty"`
	ExpiresAt   string `json:"expiresAt,omitempty"` // RFC3339
}

// ShortenResponse is the successful response of POST /shorten.
type ShortenResponse struct {
	ShortURL string `json:"shortUrl"`
}

// LinkAnalytics is the full record returned to a link's owner.
type LinkAnalytics struct {
	ShortCode string    `json:"shortCode"`
	LongURL   string    `json:"longUrl"`
	UserID    string    `json:"userId,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Preview   Preview   `json:"preview,omitempty"`
	Clicks    int64     `json:"clicks"`
	Visits    []Visit   `json:"visits"`
}
