package rally

import (
	"log/slog"
)

// CallEvent records metadata about a single WSAPI request.
type CallEvent struct {
	Endpoint  string
	Op        string
	RequestID string
	Start     int // 1-based page start, 0 for unpaged calls
	Status    int
	Results   int
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about WSAPI calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes one structured line per call.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs events to logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	attrs := []any{
		"endpoint", event.Endpoint,
		"op", event.Op,
		"request_id", event.RequestID,
		"status", event.Status,
		"latency_ms", event.LatencyMs,
	}
	if event.Start > 0 {
		attrs = append(attrs, "start", event.Start, "results", event.Results)
	}
	if !event.Success {
		o.logger.Warn("rally_call", append(attrs, "error_code", event.ErrorCode)...)
		return
	}
	o.logger.Info("rally_call", attrs...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
