package staging

import (
	"context"
	"time"
)

// ChangeReport describes one applied diff.
type ChangeReport struct {
	Kind      Kind      `json:"kind"`
	RecordID  string    `json:"record_id"`
	Subject   string    `json:"subject,omitempty"`
	Added     int       `json:"added"`
	Removed   int       `json:"removed"`
	Insert    string    `json:"insert,omitempty"`
	Delete    string    `json:"delete,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ChangeNotifier is told about every applied diff. Notification failures
// are logged and never fail the record.
type ChangeNotifier interface {
	Notify(ctx context.Context, report ChangeReport) error
}
