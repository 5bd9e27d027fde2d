package invoices

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerlane/ledgerlane/internal/observability"
	"github.com/ledgerlane/ledgerlane/internal/platform/httpx"
	"github.com/ledgerlane/ledgerlane/internal/settings"
)

// PDFRenderer turns a fully computed invoice into a downloadable PDF.
// Implemented by the report package.
type PDFRenderer interface {
	RenderInvoice(ctx context.Context, inv *Invoice, cfg *settings.CompanySettings) ([]byte, error)
}

type Handler struct {
	logger          *slog.Logger
	service         *Service
	settingsService *settings.Service
	pdf             PDFRenderer
	metrics         *observability.Metrics
}

func NewHandler(logger *slog.Logger, service *Service, settingsService *settings.Service, pdf PDFRenderer, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:          logger,
		service:         service,
		settingsService: settingsService,
		pdf:             pdf,
		metrics:         metrics,
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/status", h.updateStatus)
	r.Get("/{id}/pdf", h.exportPDF)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListInvoicesRequest{}
	if s := r.URL.Query().Get("status"); s != "" {
		status := Status(s)
		if !status.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Status", fmt.Sprintf("unknown status %q", s))
			return
		}
		req.Status = &status
	}
	req.DateFrom = parseDate(r.URL.Query().Get("date_from"))
	req.DateTo = parseDate(r.URL.Query().Get("date_to"))
	req.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	req.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	invs, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": invs, "total": total})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}

	inv, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.metrics.DocumentIssued("invoice")
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}

	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}

	var req UpdateInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}

	inv, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}

	var req UpdateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}

	inv, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "PDF Unavailable", "pdf rendering is not configured")
		return
	}

	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}

	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	cfg, err := h.settingsService.Get(r.Context())
	if err != nil && !errors.Is(err, settings.ErrNotFound) {
		h.respondError(w, r, err)
		return
	}

	pdfBytes, err := h.pdf.RenderInvoice(r.Context(), inv, cfg)
	h.metrics.PDFRendered("invoice", err)
	if err != nil {
		h.logger.Error("render invoice pdf", slog.String("number", inv.Number), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "PDF Rendering Failed", "")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "Invoice-"+inv.Number+".pdf"))
	_, _ = w.Write(pdfBytes)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var vErrs validator.ValidationErrors
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "invoice not found")
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrNotEditable):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.As(err, &vErrs):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", vErrs.Error())
	default:
		h.logger.Error("invoices request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
