package bas

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerlane/ledgerlane/internal/billing"
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
	r.Get("/", h.report)
	r.Get("/current", h.currentQuarter)
}

// report accepts either ?quarter=Q1-2024 or an explicit
// ?date_from=...&date_to=... pair.
func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if quarter := q.Get("quarter"); quarter != "" {
		rep, err := h.service.ForQuarter(r.Context(), quarter)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Quarter", err.Error())
			return
		}
		httpx.JSON(w, http.StatusOK, rep)
		return
	}

	from, okFrom := parseDate(q.Get("date_from"))
	to, okTo := parseDate(q.Get("date_to"))
	if !okFrom || !okTo {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period",
			"provide quarter=Qn-YYYY or both date_from and date_to as YYYY-MM-DD")
		return
	}

	rep, err := h.service.ForRange(r.Context(), from, to)
	if err != nil {
		h.logger.Error("bas report failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rep)
}

func (h *Handler) currentQuarter(w http.ResponseWriter, r *http.Request) {
	quarter := billing.CurrentQuarter(time.Now())
	rep, err := h.service.ForQuarter(r.Context(), quarter)
	if err != nil {
		h.logger.Error("bas report failed", slog.String("quarter", quarter), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rep)
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
