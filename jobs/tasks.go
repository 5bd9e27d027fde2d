package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskOverdueScan flips sent invoices past their due date to overdue.
	TaskOverdueScan = "documents:overdue_scan"
	// TaskExpiryScan flips sent estimates past their expiry date to expired.
	TaskExpiryScan = "documents:expiry_scan"
	// TaskIntegrityScan re-derives stored totals and reports drift.
	TaskIntegrityScan = "documents:integrity_scan"
)

// ScanPayload carries the reference date for the document scans. A
// zero AsOf means "now" at processing time.
type ScanPayload struct {
	AsOf time.Time `json:"as_of,omitempty"`
}

// NewOverdueScanTask constructs the overdue invoice scan task.
func NewOverdueScanTask(asOf time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(ScanPayload{AsOf: asOf})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOverdueScan, data), nil
}

// NewExpiryScanTask constructs the estimate expiry scan task.
func NewExpiryScanTask(asOf time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(ScanPayload{AsOf: asOf})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExpiryScan, data), nil
}

// NewIntegrityScanTask constructs the totals integrity scan task.
func NewIntegrityScanTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskIntegrityScan, nil), nil
}
