package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"posu-analytics/internal/metrics"
	"posu-analytics/internal/model"
)

const (
	ActionTransactionUpdated   = "Transaction Updated"
	ActionReportGenerated      = "Report Generated"
	ActionReportDeleted        = "Report Deleted"
	ActionReportRestored       = "Report Restored"
	ActionReportHistoryCleared = "Report History Cleared"
)

type Entry struct {
	ActorRole   model.Role `json:"actor_role"`
	ActorID     uint       `json:"actor_id"`
	ActorName   string     `json:"actor_name"`
	Action      string     `json:"action"`
	TargetType  string     `json:"target_type"`
	TargetID    *uint      `json:"target_id,omitempty"`
	TargetName  string     `json:"target_name"`
	Description string     `json:"description"`
	At          time.Time  `json:"at"`
}

type Sink interface {
	Name() string
	Write(ctx context.Context, entry Entry) error
}

// Recorder fans entries out to every sink in the background. Failures are logged and never reach the caller.
type Recorder struct {
	sinks   []Sink
	log     zerolog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewRecorder(log zerolog.Logger, sinks ...Sink) *Recorder {
	return &Recorder{sinks: sinks, log: log, timeout: 10 * time.Second}
}

func (r *Recorder) Record(entry Entry) {
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	for _, sink := range r.sinks {
		r.wg.Add(1)
		go func(sink Sink) {
			defer r.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
			defer cancel()
			if err := sink.Write(ctx, entry); err != nil {
				metrics.AuditFailures.WithLabelValues(sink.Name()).Inc()
				r.log.Warn().Err(err).Str("sink", sink.Name()).Str("action", entry.Action).Msg("audit write failed")
			}
		}(sink)
	}
}

// Wait blocks until in-flight records are written.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

// Close waits for in-flight records, then closes every sink that holds a connection.
func (r *Recorder) Close() error {
	r.wg.Wait()
	var errs []error
	for _, sink := range r.sinks {
		if c, ok := sink.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s sink: %w", sink.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}
