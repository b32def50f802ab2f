// Package http provides HTTP handlers for account registration, login
// and token-authenticated account lookup.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/accountapi/internal/middleware"
	"github.com/atinyakov/accountapi/internal/models"
	"github.com/atinyakov/accountapi/internal/service"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	msgUserExists         = "Username already exists."
	msgInvalidCredentials = "Invalid username or password."
	msgInvalidRequest     = "invalid request"
	msgInternal           = "internal error"
)

var validate = validator.New()

// AccountService defines the account operations required by the HTTP handlers.
type AccountService interface {
	// Register creates a new user with the given credentials.
	Register(ctx context.Context, username, password string) (*models.User, error)
	// Login verifies the credentials and returns the matching user.
	Login(ctx context.Context, username, password string) (*models.User, error)
	// GetUser returns the user with the given username.
	GetUser(ctx context.Context, username string) (*models.User, error)
}

// TokenService issues access tokens for authenticated users.
type TokenService interface {
	CreateToken(user *models.User) (string, error)
}

// AuthHandler handles HTTP requests for registration, login and the
// current account.
type AuthHandler struct {
	// AccountService performs registration and credential checks.
	AccountService AccountService
	// TokenService mints a token for every successful registration or login.
	TokenService TokenService
	// Logger records unexpected failures. Nil disables logging.
	Logger *zap.Logger
}

// CredentialsRequest is the JSON payload for registration and login.
type CredentialsRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is returned after a successful registration or login.
type UserResponse struct {
	Username string `json:"username"`
	Token    string `json:"token,omitempty"`
}

// Register handles POST /account/register.
// A taken username yields 400 with "Username already exists.".
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	user, err := h.AccountService.Register(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrDuplicateUser):
		http.Error(w, msgUserExists, http.StatusBadRequest)
		return
	case errors.Is(err, service.ErrInvalidArgument):
		http.Error(w, msgInvalidRequest, http.StatusBadRequest)
		return
	case err != nil:
		h.internalError(w, "register failed", err)
		return
	}

	h.respondWithToken(w, user)
}

// Login handles POST /account/login.
// Unknown users and wrong passwords both yield 401 with
// "Invalid username or password.".
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	user, err := h.AccountService.Login(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		http.Error(w, msgInvalidCredentials, http.StatusUnauthorized)
		return
	case err != nil:
		h.internalError(w, "login failed", err)
		return
	}

	h.respondWithToken(w, user)
}

// Me handles GET /account/me. It must run behind middleware.TokenAuth.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	username := middleware.GetUsernameFromContext(r.Context())
	if username == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.AccountService.GetUser(r.Context(), username)
	switch {
	case errors.Is(err, models.ErrUserNotFound):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	case err != nil:
		h.internalError(w, "get user failed", err)
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{Username: user.Username})
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, user *models.User) {
	token, err := h.TokenService.CreateToken(user)
	if err != nil {
		h.internalError(w, "create token failed", err)
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{Username: user.Username, Token: token})
}

func (h *AuthHandler) internalError(w http.ResponseWriter, msg string, err error) {
	if h.Logger != nil {
		h.Logger.Error(msg, zap.Error(err))
	}
	http.Error(w, msgInternal, http.StatusInternalServerError)
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (CredentialsRequest, bool) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, msgInvalidRequest, http.StatusBadRequest)
		return req, false
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, msgInvalidRequest, http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
