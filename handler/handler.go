package handler

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"short-link-service/cache"
	"short-link-service/config"
	"short-link-service/model"
	"short-link-service/preview"
	"short-link-service/security"

	"github.com/go-redis/redis/v8"
)

// Codes and aliases share one URL-safe alphabet.
const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-"

var (
	ErrLinkNotFound   = errors.New("short link not found")
	ErrLinkExpired    = errors.New("link has expired")
	ErrAliasTaken     = errors.New("alias already in use")
	ErrLoginForAlias  = errors.New("login required for custom aliases")
	ErrLoginForExpiry = errors.New("login required for custom expiration dates")
)

// LinkHandler handles link creation, redirecting, and analytics queries.
type LinkHandler struct {
	redis   *redis.Client
	cache   *cache.Cache
	fetcher *preview.Fetcher
	bots    *security.BotDetector
	config  config.Config
	baseURL string
}

// NewLinkHandler creates a new link handler. fetcher may be nil to disable
// preview metadata enrichment (used by tests).
func NewLinkHandler(redisClient *redis.Client, cacheClient *cache.Cache, fetcher *preview.Fetcher, bots *security.BotDetector, cfg config.Config) *LinkHandler {
	// Use configured base_url if provided, otherwise construct from scheme, IP, and port
	baseURL := cfg.WebServer.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("%s://%s:%s", cfg.WebServer.Scheme, cfg.WebServer.IP, cfg.WebServer.Port)
	}
	return &LinkHandler{
		redis:   redisClient,
		cache:   cacheClient,
		fetcher: fetcher,
		bots:    bots,
		config:  cfg,
		baseURL: baseURL,
	}
}

func linkKey(code string) string   { return "link:" + code }
func clicksKey(code string) string { return "clicks:" + code }
func visitsKey(code string) string { return "visits:" + code }

// generateCode draws a random short code from the URL-safe alphabet using
// crypto/rand.
func generateCode(length int) (string, error) {
	result := make([]byte, length)
	for i := range result {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[num.Int64()]
	}
	return string(result), nil
}

// getLink resolves a short code to its stored document, consulting the
// in-memory cache first. Returns redis.Nil when the code is unknown.
func (h *LinkHandler) getLink(ctx context.Context, code string) (*model.Link, error) {
	if cached, found := h.cache.GetLink(code); found {
		return cached, nil
	}

	data, err := h.redis.Get(ctx, linkKey(code)).Bytes()
	if err != nil {
		return nil, err
	}

	var link model.Link
	if err := json.Unmarshal(data, &link); err != nil {
		return nil, err
	}

	// Documents are immutable, so caching is always safe.
	h.cache.SetLink(code, link)
	return &link, nil
}

func (h *LinkHandler) opTimeout() time.Duration {
	return time.Duration(h.config.Redis.OperationTimeout) * time.Second
}
