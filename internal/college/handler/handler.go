package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"alumnet/internal/college/service"
	dErrors "alumnet/pkg/domain-errors"
	"alumnet/pkg/platform/httputil"
)

// Handler wires the admin-facing college routes. The router mounting these
// applies the admin-token middleware.
type Handler struct {
	svc    *service.Service
	logger *slog.Logger
}

func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/colleges", h.handleCreate)
	r.Get("/admin/colleges", h.handleList)
}

type createCollegeRequest struct {
	Name   string `json:"name"`
	Code   string `json:"code"`
	Domain string `json:"domain"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createCollegeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	college, err := h.svc.CreateCollege(r.Context(), req.Name, req.Code, req.Domain)
	if err != nil {
		h.logger.WarnContext(r.Context(), "create college failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, college)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	colleges, err := h.svc.ListColleges(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"colleges": colleges})
}
