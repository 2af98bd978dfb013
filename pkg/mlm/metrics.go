package mlm

import "time"

// APIMetrics records per-call client outcomes. The inventory engine's
// metrics collector satisfies this; a nil-safe no-op stands in otherwise.
type APIMetrics interface {
	RecordAPICall(endpoint string)
	RecordAPISuccess(endpoint string, duration time.Duration)
	RecordAPIFailure(endpoint string, statusCode int, duration time.Duration)
	RecordAPIRetry(endpoint string)
}

// noopAPIMetrics discards all measurements.
type noopAPIMetrics struct{}

func (noopAPIMetrics) RecordAPICall(string)                        {}
func (noopAPIMetrics) RecordAPISuccess(string, time.Duration)      {}
func (noopAPIMetrics) RecordAPIFailure(string, int, time.Duration) {}
func (noopAPIMetrics) RecordAPIRetry(string)                       {}
