package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"short-link-service/middleware"
	"short-link-service/model"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

var ErrAnalyticsForbidden = errors.New("unauthorized to view analytics")

// GetAnalytics handles GET /analytics/{shortCode}.
//
// Owned links are only visible to their owner; links created anonymously
// have no owner and are visible to anyone who knows the code. Expiration is
// not checked here, so owners can still inspect expired links.
func (h *LinkHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.opTimeout())
	defer cancel()

	code := mux.Vars(r)["shortCode"]

	link, err := h.getLink(ctx, code)
	if errors.Is(err, redis.Nil) {
		SendJSONError(w, http.StatusNotFound, ErrLinkNotFound, "")
		return
	} else if err != nil {
		log.Error().Err(err).Str("short_code", code).Msg("Failed to retrieve link")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to retrieve link")
		return
	}

	if link.UserID != "" {
		user := middleware.UserFrom(r.Context())
		if user == nil || user.ID != link.UserID {
			SendJSONError(w, http.StatusForbidden, ErrAnalyticsForbidden, "")
			return
		}
	}

	clicks, err := h.redis.Get(ctx, clicksKey(code)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Error().Err(err).Str("short_code", code).Msg("Failed to read click counter")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to read analytics")
		return
	}

	rawVisits, err := h.redis.LRange(ctx, visitsKey(code), 0, -1).Result()
	if err != nil {
		log.Error().Err(err).Str("short_code", code).Msg("Failed to read visit log")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to read analytics")
		return
	}

	// RPUSH preserves chronological order.
	visits := make([]model.Visit, 0, len(rawVisits))
	for _, raw := range rawVisits {
		var visit model.Visit
		if err := json.Unmarshal([]byte(raw), &visit); err != nil {
			log.Warn().Err(err).Str("short_code", code).Msg("Skipping malformed visit record")
			continue
		}
		visits = append(visits, visit)
	}

	SendJSONSuccess(w, http.StatusOK, model.LinkAnalytics{
		ShortCode: link.ShortCode,
		LongURL:   link.LongURL,
		UserID:    link.UserID,
		ExpiresAt: link.ExpiresAt,
		CreatedAt: link.CreatedAt,
		Preview:   link.Preview,
		Clicks:    clicks,
		Visits:    visits,
	})
}
