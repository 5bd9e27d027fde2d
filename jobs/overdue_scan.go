package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ledgerlane/ledgerlane/internal/invoices"
	jobmetrics "github.com/ledgerlane/ledgerlane/internal/jobs"
)

// OverdueScanJob marks sent invoices past their due date as overdue.
type OverdueScanJob struct {
	service *invoices.Service
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

func NewOverdueScanJob(service *invoices.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *OverdueScanJob {
	return &OverdueScanJob{service: service, logger: logger, metrics: metrics}
}

func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("overdue_scan")

	var payload ScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	asOf := payload.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	n, err := j.service.MarkOverdue(ctx, asOf)
	if err != nil {
		j.logger.Error("overdue scan failed", slog.Any("error", err))
		return tracker.End(err)
	}
	j.metrics.AddFlagged("overdue_scan", n)
	if n > 0 {
		j.logger.Info("overdue scan complete", slog.Int64("marked", n))
	}
	return tracker.End(nil)
}
