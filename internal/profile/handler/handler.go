// Package handler exposes applicant profiles over HTTP.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"incentra/internal/profile"
	dErrors "incentra/pkg/domain-errors"
	"incentra/pkg/platform/httputil"
	"incentra/pkg/requestcontext"
)

// Handler serves profile CRUD routes.
type Handler struct {
	service *profile.Service
	logger  *slog.Logger
}

// New constructs a profile handler.
func New(service *profile.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the profile endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/profiles", h.HandleCreate)
	r.Get("/profiles", h.HandleList)
	r.Get("/profiles/{id}", h.HandleGet)
	r.Put("/profiles/{id}", h.HandleUpdate)
	r.Delete("/profiles/{id}", h.HandleDelete)
}

// HandleCreate handles POST /profiles.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[profile.Profile](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	req.ID = 0

	saved, err := h.service.Save(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "profile rejected",
			"request_id", requestID,
			"error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, saved)
}

// HandleUpdate handles PUT /profiles/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	req, decoded := httputil.DecodeAndPrepare[profile.Profile](w, r, h.logger, ctx, requestID)
	if !decoded {
		return
	}
	req.ID = id

	saved, err := h.service.Save(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, saved)
}

// HandleList handles GET /profiles.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"profiles": profiles})
}

// HandleGet handles GET /profiles/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

// HandleDelete handles DELETE /profiles/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid profile id"))
		return 0, false
	}
	return id, true
}
