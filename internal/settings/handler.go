package settings

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerlane/ledgerlane/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.get)
	r.Put("/", h.upsert)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.Get(r.Context())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "company settings not configured")
			return
		}
		h.logger.Error("get settings failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cfg)
}

func (h *Handler) upsert(w http.ResponseWriter, r *http.Request) {
	var req UpsertSettingsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}

	cfg, err := h.service.Upsert(r.Context(), req)
	if err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", vErrs.Error())
			return
		}
		h.logger.Error("upsert settings failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cfg)
}
