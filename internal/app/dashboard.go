package app

import (
	"log/slog"
	"net/http"

	"github.com/ledgerlane/ledgerlane/internal/estimates"
	"github.com/ledgerlane/ledgerlane/internal/invoices"
	"github.com/ledgerlane/ledgerlane/internal/platform/httpx"
)

// DashboardHandler serves the aggregate summary shown on the portal
// landing screen.
type DashboardHandler struct {
	logger    *slog.Logger
	invoices  *invoices.Service
	estimates *estimates.Service
}

func NewDashboardHandler(logger *slog.Logger, inv *invoices.Service, est *estimates.Service) *DashboardHandler {
	return &DashboardHandler{logger: logger, invoices: inv, estimates: est}
}

type dashboardSummary struct {
	InvoiceCount     int                  `json:"invoice_count"`
	EstimateCount    int                  `json:"estimate_count"`
	TotalInvoiced    float64              `json:"total_invoiced"`
	TotalOutstanding float64              `json:"total_outstanding"`
	TotalPaid        float64              `json:"total_paid"`
	RecentInvoices   []invoices.Invoice   `json:"recent_invoices"`
	RecentEstimates  []estimates.Estimate `json:"recent_estimates"`
}

const recentLimit = 5

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	invs, invTotal, err := h.invoices.List(ctx, invoices.ListInvoicesRequest{Limit: 1000})
	if err != nil {
		h.logger.Error("dashboard invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	ests, estTotal, err := h.estimates.List(ctx, estimates.ListEstimatesRequest{Limit: recentLimit})
	if err != nil {
		h.logger.Error("dashboard estimates", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	summary := dashboardSummary{
		InvoiceCount:  invTotal,
		EstimateCount: estTotal,
	}
	for _, inv := range invs {
		if inv.Status == invoices.StatusDraft {
			continue
		}
		summary.TotalInvoiced += inv.Total
		switch inv.Status {
		case invoices.StatusPaid:
			summary.TotalPaid += inv.Total
		case invoices.StatusSent, invoices.StatusOverdue:
			summary.TotalOutstanding += inv.Total
		}
	}

	if len(invs) > recentLimit {
		invs = invs[:recentLimit]
	}
	summary.RecentInvoices = invs
	summary.RecentEstimates = ests

	httpx.JSON(w, http.StatusOK, summary)
}
