// Package handler exposes the program catalog over HTTP.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"incentra/internal/program"
	dErrors "incentra/pkg/domain-errors"
	"incentra/pkg/platform/httputil"
	"incentra/pkg/requestcontext"
)

// Handler serves catalog CRUD and listing routes.
type Handler struct {
	service *program.Service
	logger  *slog.Logger
}

// New constructs a program handler.
func New(service *program.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the catalog endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/programs", h.HandleUpsert)
	r.Get("/programs", h.HandleList)
	r.Get("/programs/{id}", h.HandleGet)
	r.Delete("/programs/{id}", h.HandleDelete)
}

// programResponse renders tags in their wire form.
type programResponse struct {
	program.Record
	Tags []string `json:"tags"`
}

func toResponse(rec program.Record) programResponse {
	return programResponse{Record: rec, Tags: rec.TagStrings()}
}

// HandleUpsert handles POST /programs.
func (h *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[program.CreateInput](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	saved, err := h.service.Upsert(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "program upsert rejected",
			"request_id", requestID,
			"error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toResponse(*saved))
}

// HandleList handles GET /programs with optional country, jurisdiction,
// industry and limit query parameters.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := program.Filter{
		CountryCode:  r.URL.Query().Get("country"),
		Jurisdiction: r.URL.Query().Get("jurisdiction"),
		IndustryCode: r.URL.Query().Get("industry"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer"))
			return
		}
		filter.Limit = limit
	}

	records, err := h.service.List(ctx, filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	responses := make([]programResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, toResponse(rec))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"programs": responses})
}

// HandleGet handles GET /programs/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid program id"))
		return
	}

	rec, err := h.service.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(*rec))
}

// HandleDelete handles DELETE /programs/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid program id"))
		return
	}

	if err := h.service.Delete(ctx, id); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "program deleted", "request_id", requestID, "program_id", id)
	w.WriteHeader(http.StatusNoContent)
}
