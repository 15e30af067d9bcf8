package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"short-link-service/auth"
	"short-link-service/middleware"
	"short-link-service/model"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingFields      = errors.New("please fill all fields")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// UserHandler handles registration, login, and the current-user endpoint.
type UserHandler struct {
	redis      *redis.Client
	jwtManager *auth.JWTManager
	timeout    time.Duration
}

// NewUserHandler creates a new user handler.
func NewUserHandler(rdb *redis.Client, jwtManager *auth.JWTManager, timeout time.Duration) *UserHandler {
	return &UserHandler{
		redis:      rdb,
		jwtManager: jwtManager,
		timeout:    timeout,
	}
}

func userKey(id string) string     { return "user:" + id }
func emailKey(email string) string { return "user:email:" + email }

// Register handles POST /auth/register.
func (uh *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), uh.timeout)
	defer cancel()

	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		SendJSONError(w, http.StatusBadRequest, ErrMissingFields, "")
		return
	}
	if !strings.Contains(req.Email, "@") {
		SendJSONError(w, http.StatusBadRequest, errors.New("invalid email"), "Please provide a valid email address")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("Failed to hash password")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to process registration")
		return
	}

	user := model.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
	}

	// SETNX on the email mapping is the uniqueness constraint; concurrent
	// registrations of the same address race here, not at the user document.
	reserved, err := uh.redis.SetNX(ctx, emailKey(user.Email), user.ID, 0).Result()
	if err != nil {
		log.Error().Err(err).Msg("Failed to reserve email")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to process registration")
		return
	}
	if !reserved {
		SendJSONError(w, http.StatusConflict, ErrUserExists, "An account with this email already exists. Please login.")
		return
	}

	userData, err := json.Marshal(user)
	if err != nil {
		uh.redis.Del(ctx, emailKey(user.Email))
		log.Error().Err(err).Msg("Failed to marshal user")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to process registration")
		return
	}
	if err := uh.redis.Set(ctx, userKey(user.ID), userData, 0).Err(); err != nil {
		uh.redis.Del(ctx, emailKey(user.Email))
		log.Error().Err(err).Msg("Failed to save user")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to process registration")
		return
	}

	token, err := uh.jwtManager.Generate(user.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to issue token")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to process registration")
		return
	}

	log.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("User registered")

	SendJSONSuccess(w, http.StatusCreated, model.AuthResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Token: token,
	})
}

// Login handles POST /auth/login. Unknown email and bad password produce the
// same response so the endpoint does not leak which addresses exist.
func (uh *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), uh.timeout)
	defer cancel()

	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	userID, err := uh.redis.Get(ctx, emailKey(req.Email)).Result()
	if errors.Is(err, redis.Nil) {
		SendJSONError(w, http.StatusUnauthorized, ErrInvalidCredentials, "")
		return
	} else if err != nil {
		log.Error().Err(err).Msg("Failed to look up email")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to process login")
		return
	}

	userData, err := uh.redis.Get(ctx, userKey(userID)).Bytes()
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load user")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to process login")
		return
	}

	var user model.User
	if err := json.Unmarshal(userData, &user); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal user")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to process login")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		SendJSONError(w, http.StatusUnauthorized, ErrInvalidCredentials, "")
		return
	}

	token, err := uh.jwtManager.Generate(user.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to issue token")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to process login")
		return
	}

	log.Info().Str("user_id", user.ID).Msg("User logged in")

	SendJSONSuccess(w, http.StatusOK, model.AuthResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Token: token,
	})
}

// Me handles GET /auth/me. It sits behind strict auth, which lets a valid
// token through even when its user record is gone; that case surfaces here
// as not found.
func (uh *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	if user == nil {
		SendJSONError(w, http.StatusNotFound, ErrUserNotFound, "")
		return
	}

	SendJSONSuccess(w, http.StatusOK, user.ToResponse())
}
