// internal/app/features/authapi/handler.go
package authapi

import (
	"context"
	"errors"
	"net/http"

	usersvc "github.com/flocklabs/flockhub/internal/app/service/users"
	"github.com/flocklabs/flockhub/internal/app/service/validation"
	"github.com/flocklabs/flockhub/internal/app/system/auth"
	"github.com/flocklabs/flockhub/internal/app/system/httpjson"
	"github.com/flocklabs/flockhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves registration, login, token refresh, and profile routes.
type Handler struct {
	Users  *usersvc.Service
	Tokens *auth.TokenManager
	Log    *zap.Logger
}

func NewHandler(users *usersvc.Service, tokens *auth.TokenManager, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Tokens: tokens, Log: logger}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

// HandleRegister creates a new account. Self-registered accounts are never
// admins; the flag only moves through the admin surface.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in usersvc.CreateInput
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	in.IsAdmin = false

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, in)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, u)
}

// HandleLogin verifies credentials and issues an access/refresh token
// pair. Accounts sign in with either email or username. The access token
// is also set as a cookie for browser clients.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	identifier := in.Email
	if identifier == "" {
		identifier = in.Username
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Authenticate(ctx, identifier, in.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}

	access, err := h.Tokens.IssueAccessToken(u.ID.Hex())
	if err != nil {
		h.Log.Error("issue access token failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	refresh, err := h.Tokens.IssueRefreshToken(u.ID.Hex())
	if err != nil {
		h.Log.Error("issue refresh token failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    access,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	httpjson.Write(w, http.StatusOK, tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	})
}

// HandleRefresh exchanges a refresh token for a fresh access token.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sub, err := h.Tokens.VerifyRefreshToken(in.RefreshToken)
	if err != nil {
		httpjson.Error(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	// The account must still exist and be active.
	u, err := h.Users.Get(ctx, sub)
	if err != nil || !u.IsActive {
		httpjson.Error(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	access, err := h.Tokens.IssueAccessToken(u.ID.Hex())
	if err != nil {
		h.Log.Error("issue access token failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	httpjson.Write(w, http.StatusOK, tokenResponse{
		AccessToken: access,
		TokenType:   "bearer",
	})
}

// HandleMe returns the authenticated account.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	httpjson.Write(w, http.StatusOK, u)
}

// HandleLogout clears the token cookie. Bearer tokens simply age out.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	httpjson.Write(w, http.StatusOK, map[string]string{"detail": "logged out"})
}

// HandleProfile lets the signed-in user update their own account.
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var in usersvc.ProfileInput
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	updated, err := h.Users.UpdateProfile(ctx, u.ID.Hex(), in)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, updated)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		httpjson.FieldErrors(w, verr.Fields)
	case errors.Is(err, usersvc.ErrInvalidCredentials):
		httpjson.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, usersvc.ErrInactive):
		httpjson.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, usersvc.ErrWrongPassword):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, usersvc.ErrDuplicateEmail), errors.Is(err, usersvc.ErrDuplicateUsername):
		httpjson.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, usersvc.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	default:
		h.Log.Error("auth request failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}
