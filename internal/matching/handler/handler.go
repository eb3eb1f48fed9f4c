// Package handler exposes the matching endpoints.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"incentra/internal/matching"
	"incentra/pkg/platform/httputil"
	"incentra/pkg/requestcontext"
)

// Handler serves scoring and stack-suggestion requests.
type Handler struct {
	service *matching.Service
	logger  *slog.Logger
}

// New constructs a matching handler.
func New(service *matching.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the matching endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/match/score", h.HandleScore)
	r.Post("/match/stack", h.HandleStack)
}

// HandleScore handles POST /match/score.
func (h *Handler) HandleScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[matching.MatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	scored, err := h.service.ScoreCatalog(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "score request failed",
			"request_id", requestID,
			"error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"results": scored})
}

// HandleStack handles POST /match/stack.
func (h *Handler) HandleStack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[matching.MatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	suggestion, err := h.service.SuggestStack(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "stack request failed",
			"request_id", requestID,
			"error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, suggestion)
}
