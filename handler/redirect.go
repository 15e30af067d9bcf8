package handler

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"short-link-service/model"
	"short-link-service/security"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

//go:embed og.html
var ogTemplateFS embed.FS

var ogTemplate = template.Must(template.ParseFS(ogTemplateFS, "og.html"))

// Placeholder text served to preview crawlers when the target page yielded
// no metadata at creation time.
const (
	defaultOGTitle       = "Shortened URL"
	defaultOGDescription = "Click to visit the link."
)

type ogData struct {
	Title       string
	Description string
	Image       string
	URL         string
}

// Redirect handles GET /{shortCode}.
//
// Social-platform preview crawlers get a static Open-Graph page and leave no
// trace in the analytics. Human visits atomically bump the click counter,
// append a visit record, and redirect to the target.
func (h *LinkHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.opTimeout())
	defer cancel()

	code := mux.Vars(r)["shortCode"]

	link, err := h.getLink(ctx, code)
	if errors.Is(err, redis.Nil) {
		log.Warn().Str("short_code", code).Msg("Short link not found")
		SendJSONError(w, http.StatusNotFound, ErrLinkNotFound, "")
		return
	} else if err != nil {
		log.Error().Err(err).Str("short_code", code).Msg("Failed to retrieve link")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to retrieve link")
		return
	}

	// Expired links stay in the store so owners can still query their
	// analytics; the redirect just stops working.
	if link.Expired(time.Now()) {
		log.Info().
			Str("short_code", code).
			Time("expires_at", link.ExpiresAt).
			Msg("Link expired")
		SendJSONError(w, http.StatusGone, ErrLinkExpired, "")
		return
	}

	userAgent := r.UserAgent()
	if isBot, signature := h.bots.IsBot(userAgent); isBot {
		log.Info().
			Str("short_code", code).
			Str("bot", signature).
			Msg("Serving preview page to crawler")
		h.serveBotPreview(w, link)
		return
	}

	visit := model.Visit{
		Timestamp: time.Now(),
		IP:        security.ClientIP(r),
		UserAgent: userAgent,
	}
	visitData, err := json.Marshal(visit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal visit record")
		SendJSONError(w, http.StatusInternalServerError, err, "Internal server error")
		return
	}

	// Counter increment and visit append are one logical update; MULTI/EXEC
	// keeps concurrent visits from losing either half.
	_, err = h.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, clicksKey(code))
		pipe.RPush(ctx, visitsKey(code), visitData)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("short_code", code).Msg("Failed to record visit")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to record visit")
		return
	}

	log.Info().
		Str("short_code", code).
		Str("long_url", link.LongURL).
		Str("ip", visit.IP).
		Msg("Redirecting")

	http.Redirect(w, r, link.LongURL, http.StatusFound)
}

func (h *LinkHandler) serveBotPreview(w http.ResponseWriter, link *model.Link) {
	data := ogData{
		Title:       link.Preview.Title,
		Description: link.Preview.Description,
		Image:       link.Preview.ImageURL,
		URL:         fmt.Sprintf("%s/%s", h.baseURL, link.ShortCode),
	}
	if data.Title == "" {
		data.Title = defaultOGTitle
	}
	if data.Description == "" {
		data.Description = defaultOGDescription
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := ogTemplate.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("Failed to execute preview template")
	}
}
