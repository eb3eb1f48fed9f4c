// Package handler wires the admin settings endpoints.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"incentra/internal/matching"
	"incentra/internal/settings"
	"incentra/pkg/platform/httputil"
	"incentra/pkg/requestcontext"
)

// Handler exposes weights and FX-rate configuration over HTTP.
type Handler struct {
	service *settings.Service
	logger  *slog.Logger
}

// New constructs a settings handler.
func New(service *settings.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the admin settings endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/settings/weights", h.HandleGetWeights)
	r.Put("/admin/settings/weights", h.HandlePutWeights)
	r.Get("/admin/settings/fx-rates", h.HandleGetFxRates)
	r.Put("/admin/settings/fx-rates", h.HandlePutFxRates)
}

// HandleGetWeights handles GET /admin/settings/weights.
func (h *Handler) HandleGetWeights(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.ResolveWeights(r.Context()))
}

// HandlePutWeights handles PUT /admin/settings/weights.
func (h *Handler) HandlePutWeights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[matching.Weights](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.UpdateWeights(ctx, req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "weights updated", "request_id", requestID)
	httputil.WriteJSON(w, http.StatusOK, req)
}

// HandleGetFxRates handles GET /admin/settings/fx-rates.
func (h *Handler) HandleGetFxRates(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.ResolveFxRates(r.Context()))
}

// HandlePutFxRates handles PUT /admin/settings/fx-rates.
func (h *Handler) HandlePutFxRates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[matching.FxRates](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.UpdateFxRates(ctx, req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "fx rates updated", "request_id", requestID, "currencies", len(req))
	httputil.WriteJSON(w, http.StatusOK, req)
}
