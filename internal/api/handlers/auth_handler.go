package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isdelr/socialfeed-be/internal/auth"
	"github.com/isdelr/socialfeed-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles HTTP requests for login, registration and identity.
type AuthHandler struct {
	users    services.UserServiceProvider
	eventSvc services.EventServiceProvider
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, eventSvc services.EventServiceProvider) *AuthHandler {
	return &AuthHandler{users: users, eventSvc: eventSvc}
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user and returns their token. Logging in again
// returns the same token; no new one is minted.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if payload.Username == "" || payload.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := h.users.AuthenticateUser(payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("username", payload.Username).Msg("Failed authentication attempt")
			writeError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		log.Error().Err(err).Str("username", payload.Username).Msg("Login failed")
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	token, err := h.users.GetOrCreateToken(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue token")
		writeError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	if err := h.eventSvc.CreateEvent("auth.login", "info", "User "+user.Username+" logged in"); err != nil {
		log.Warn().Err(err).Msg("Failed to record login event")
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Register creates a new account and issues a fresh token for it.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.CreateUser(payload.Username, payload.Email, payload.Password)
	if err != nil {
		var verr services.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": verr})
			return
		}
		log.Error().Err(err).Str("username", payload.Username).Msg("Failed to register user")
		writeError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	token, err := h.users.RotateToken(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue token")
		writeError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	if err := h.eventSvc.CreateEvent("auth.register", "info", "User "+user.Username+" registered"); err != nil {
		log.Warn().Err(err).Msg("Failed to record registration event")
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Me returns the user associated with the presented token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user from request context")
		writeError(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
