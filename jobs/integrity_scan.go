package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ledgerlane/ledgerlane/internal/estimates"
	"github.com/ledgerlane/ledgerlane/internal/invoices"
	jobmetrics "github.com/ledgerlane/ledgerlane/internal/jobs"
)

// IntegrityScanJob re-derives document totals from their line items
// and logs any document whose stored amounts have drifted. Drift means
// a write path bypassed server-side recomputation and needs
// investigation, so the job reports loudly but changes nothing.
type IntegrityScanJob struct {
	invoices  *invoices.Service
	estimates *estimates.Service
	logger    *slog.Logger
	metrics   *jobmetrics.Metrics
}

func NewIntegrityScanJob(inv *invoices.Service, est *estimates.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *IntegrityScanJob {
	return &IntegrityScanJob{invoices: inv, estimates: est, logger: logger, metrics: metrics}
}

func (j *IntegrityScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("integrity_scan")

	drifted, err := j.invoices.TotalsDrift(ctx)
	if err != nil {
		j.logger.Error("invoice integrity scan failed", slog.Any("error", err))
		return tracker.End(err)
	}
	for _, number := range drifted {
		j.logger.Warn("invoice totals drift detected", slog.String("number", number))
	}

	estDrifted, err := j.estimates.TotalsDrift(ctx)
	if err != nil {
		j.logger.Error("estimate integrity scan failed", slog.Any("error", err))
		return tracker.End(err)
	}
	for _, number := range estDrifted {
		j.logger.Warn("estimate totals drift detected", slog.String("number", number))
	}

	j.metrics.AddFlagged("integrity_scan", int64(len(drifted)+len(estDrifted)))
	j.logger.Info("integrity scan complete",
		slog.Int("invoice_drift", len(drifted)),
		slog.Int("estimate_drift", len(estDrifted)))
	return tracker.End(nil)
}
