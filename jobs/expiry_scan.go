package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ledgerlane/ledgerlane/internal/estimates"
	jobmetrics "github.com/ledgerlane/ledgerlane/internal/jobs"
)

// ExpiryScanJob marks sent estimates past their expiry date as expired.
type ExpiryScanJob struct {
	service *estimates.Service
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

func NewExpiryScanJob(service *estimates.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *ExpiryScanJob {
	return &ExpiryScanJob{service: service, logger: logger, metrics: metrics}
}

func (j *ExpiryScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("expiry_scan")

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

	n, err := j.service.MarkExpired(ctx, asOf)
	if err != nil {
		j.logger.Error("expiry scan failed", slog.Any("error", err))
		return tracker.End(err)
	}
	j.metrics.AddFlagged("expiry_scan", n)
	if n > 0 {
		j.logger.Info("expiry scan complete", slog.Int64("marked", n))
	}
	return tracker.End(nil)
}
