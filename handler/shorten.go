package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"short-link-service/middleware"
	"short-link-service/model"
	"short-link-service/utils"

	"github.com/rs/zerolog/log"
)

// CreateShortLink handles POST /shorten.
//
// Anonymous callers get a random code and a forced expiration; requesting an
// alias or a custom expiration without logging in is rejected outright rather
// than silently overridden. Authenticated callers may pick an alias and an
// expiration, both stored verbatim.
func (h *LinkHandler) CreateShortLink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.opTimeout())
	defer cancel()

	var input model.ShortenRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Error().Err(err).Msg("Failed to decode request body")
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if err := utils.ValidateURL(input.LongURL); err != nil {
		log.Warn().Err(err).Str("url", input.LongURL).Msg("Invalid URL")
		SendJSONError(w, http.StatusBadRequest, err, "")
		return
	}

	user := middleware.UserFrom(r.Context())
	now := time.Now()

	var (
		code      string
		expiresAt time.Time
		userID    string
	)

	if user == nil {
		// Guest policy: no alias, no custom expiration, forced TTL.
		if input.CustomAlias != "" {
			SendJSONError(w, http.StatusForbidden, ErrLoginForAlias, "")
			return
		}
		if input.ExpiresAt != "" {
			SendJSONError(w, http.StatusForbidden, ErrLoginForExpiry, "")
			return
		}
		expiresAt = now.Add(time.Duration(h.config.Links.GuestTTLDays) * 24 * time.Hour)
	} else {
		userID = user.ID

		if input.CustomAlias != "" {
			if err := utils.ValidateAlias(input.CustomAlias); err != nil {
				log.Warn().Err(err).Str("alias", input.CustomAlias).Msg("Invalid alias")
				SendJSONError(w, http.StatusBadRequest, utils.ErrAliasInvalidFormat, "")
				return
			}
			exists, err := h.redis.Exists(ctx, linkKey(input.CustomAlias)).Result()
			if err != nil {
				log.Error().Err(err).Msg("Failed to check alias availability")
				SendJSONError(w, http.StatusInternalServerError, err, "Failed to check alias availability")
				return
			}
			if exists > 0 {
				SendJSONError(w, http.StatusConflict, ErrAliasTaken, "")
				return
			}
			code = input.CustomAlias
		}

		if input.ExpiresAt != "" {
			parsed, err := time.Parse(time.RFC3339, input.ExpiresAt)
			if err != nil {
				log.Warn().Err(err).Str("expires_at", input.ExpiresAt).Msg("Invalid expiration format")
				SendJSONError(w, http.StatusBadRequest, err, "Invalid expiration time format (use RFC3339)")
				return
			}
			expiresAt = parsed
		}
	}

	if code == "" {
		generated, err := generateCode(h.config.Links.CodeLength)
		if err != nil {
			log.Error().Err(err).Msg("Failed to generate short code")
			SendJSONError(w, http.StatusInternalServerError, err, "Failed to generate short code")
			return
		}
		code = generated
	}

	link := model.Link{
		ShortCode: code,
		LongURL:   input.LongURL,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		Preview:   h.fetchPreview(r.Context(), input.LongURL),
	}

	data, err := json.Marshal(link)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal link")
		SendJSONError(w, http.StatusInternalServerError, err, "Internal server error")
		return
	}

	// SETNX is the uniqueness constraint. A random-code collision shows up
	// here exactly like a taken alias and is surfaced as a conflict without
	// drawing a fresh code; creation is a single attempt.
	stored, err := h.redis.SetNX(ctx, linkKey(code), data, 0).Result()
	if err != nil {
		log.Error().Err(err).Str("short_code", code).Msg("Failed to store link")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to store link")
		return
	}
	if !stored {
		log.Warn().Str("short_code", code).Msg("Short code already taken")
		SendJSONError(w, http.StatusConflict, ErrAliasTaken, "")
		return
	}

	shortURL := fmt.Sprintf("%s/%s", h.baseURL, code)
	log.Info().
		Str("short_url", shortURL).
		Str("long_url", link.LongURL).
		Bool("anonymous", userID == "").
		Msg("Short link created")

	SendJSONSuccess(w, http.StatusCreated, model.ShortenResponse{ShortURL: shortURL})
}

// fetchPreview runs the best-effort metadata fetch. Failures leave the
// metadata empty; they are logged and never surfaced to the caller.
func (h *LinkHandler) fetchPreview(ctx context.Context, target string) model.Preview {
	if h.fetcher == nil {
		return model.Preview{}
	}

	p, err := h.fetcher.Fetch(ctx, target)
	if err != nil {
		log.Warn().Err(err).Str("url", target).Msg("Preview metadata fetch failed")
		return model.Preview{}
	}
	return p
}
