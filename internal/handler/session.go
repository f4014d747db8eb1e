package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/premiumcars/listingsheet/internal/auth"
	"github.com/premiumcars/listingsheet/internal/handler/dto"
	"github.com/premiumcars/listingsheet/internal/model"
	"github.com/premiumcars/listingsheet/internal/service"
)

// SessionService manages sign-in sessions.
type SessionService interface {
	SignIn(ctx context.Context, providerToken string) (*service.SignIn, error)
	SignOut(ctx context.Context, token string) error
}

// UserResolver loads the user behind an identity.
type UserResolver interface {
	ResolveUser(ctx context.Context, id *model.Identity) (*model.User, error)
}

// SessionHandler handles sign-in and sign-out.
type SessionHandler struct {
	svc     SessionService
	users   UserResolver
	cookies auth.CookieConfig
	logger  *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(svc SessionService, users UserResolver, cookies auth.CookieConfig, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{svc: svc, users: users, cookies: cookies, logger: logger}
}

// Create handles POST /auth/session.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.SessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "MISSING_TOKEN", "Token is required")
		return
	}

	in, err := h.svc.SignIn(r.Context(), req.Token)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.cookies.SetSessionCookie(w, in.Token, in.Session.ExpiresAt)

	h.logger.Info("session_created", slog.String("user_id", in.User.ID))

	expires := in.Session.ExpiresAt
	writeJSON(w, http.StatusOK, dto.SessionResponse{
		User:      dto.ToUserResponse(in.User),
		ExpiresAt: &expires,
	})
}

// Current handles GET /auth/session.
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.ResolveUser(r.Context(), auth.IdentityFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SessionResponse{User: dto.ToUserResponse(user)})
}

// Delete handles DELETE /auth/session. The cookie is cleared even when no
// session exists.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	token := h.cookies.SessionTokenFromRequest(r)
	if token != "" {
		if err := h.svc.SignOut(r.Context(), token); err != nil {
			writeServiceError(w, r, h.logger, err)
			return
		}
	}

	h.cookies.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}
