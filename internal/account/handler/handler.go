// Package handler exposes the account lifecycle over HTTP: registration,
// password and social login, refresh exchange, and the admin console
// endpoints for approval and deactivation.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"alumnet/internal/account/models"
	"alumnet/internal/account/service"
	"alumnet/internal/identity"
	jwttoken "alumnet/internal/jwt_token"
	dErrors "alumnet/pkg/domain-errors"
	"alumnet/pkg/platform/httputil"
	"alumnet/pkg/requestcontext"
)

type Handler struct {
	svc    *service.Service
	logger *slog.Logger
}

func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the public authentication routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/social/google", h.handleSocial(identity.ProviderGoogle))
	r.Post("/auth/social/linkedin", h.handleSocial(identity.ProviderLinkedIn))
	r.Post("/auth/token/refresh", h.handleRefresh)
	r.Post("/auth/logout", h.handleLogout)
}

// RegisterAuthenticated mounts routes that need a valid bearer access token.
// The caller applies the auth middleware.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Get("/auth/me", h.handleMe)
}

// RegisterAdmin mounts the admin console routes. The caller applies the
// admin-token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/users", h.handleListUsers)
	r.Post("/admin/users/{id}/approve", h.handleApprove)
	r.Post("/admin/users/{id}/deactivate", h.handleDeactivate)
}

type tokensResponse struct {
	Access    string `json:"access"`
	Refresh   string `json:"refresh"`
	ExpiresIn int64  `json:"expires_in"`
}

func (h *Handler) pairResponse(pair *jwttoken.Pair) *tokensResponse {
	return &tokensResponse{
		Access:    pair.AccessToken,
		Refresh:   pair.RefreshToken,
		ExpiresIn: int64(h.svc.AccessTokenTTL().Seconds()),
	}
}

type registerResponse struct {
	Message string          `json:"message"`
	User    *models.User    `json:"user"`
	Tokens  *tokensResponse `json:"tokens,omitempty"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	u, err := h.svc.Register(r.Context(), req)
	if err != nil {
		h.logger.WarnContext(r.Context(), "registration failed", "error", err)
		httputil.WriteError(w, err)
		return
	}

	resp := registerResponse{User: u}
	if u.Approved {
		resp.Message = "registration successful"
		pair, err := h.svc.IssueTokensFor(r.Context(), u)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		resp.Tokens = h.pairResponse(pair)
	} else {
		resp.Message = "registration successful, awaiting admin approval"
	}
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

type loginResponse struct {
	User   *models.User    `json:"user"`
	Tokens *tokensResponse `json:"tokens"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	u, pair, err := h.svc.Authenticate(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, loginResponse{User: u, Tokens: h.pairResponse(pair)})
}

func (h *Handler) handleSocial(provider identity.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.SocialRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
			return
		}

		res, err := h.svc.SocialLogin(r.Context(), provider, req)
		if err != nil {
			// A first-time signup can succeed while login stays gated on
			// approval; report the created account instead of a bare 403.
			if res != nil && res.Created && dErrors.HasCode(err, dErrors.CodeForbidden) {
				httputil.WriteJSON(w, http.StatusAccepted, registerResponse{
					Message: "account created, awaiting admin approval",
					User:    res.User,
				})
				return
			}
			h.logger.WarnContext(r.Context(), "social login failed", "provider", provider, "error", err)
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, loginResponse{User: res.User, Tokens: h.pairResponse(res.Pair)})
	}
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	exchange, err := h.svc.Refresh(r.Context(), req.Refresh)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, exchange)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	if err := h.svc.RevokeRefreshToken(r.Context(), req.Refresh); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(requestcontext.UserID(r.Context()))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
		return
	}
	u, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	pending := r.URL.Query().Get("pending") == "1"
	users, err := h.svc.ListUsers(r.Context(), r.URL.Query().Get("college"), pending)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.updateUser(w, r, h.svc.Approve)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.updateUser(w, r, h.svc.Deactivate)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id uuid.UUID) (*models.User, error)) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid user id"))
		return
	}
	u, err := apply(r.Context(), id)
	if err != nil {
		h.logger.WarnContext(r.Context(), "admin account update failed", "user_id", id, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}
