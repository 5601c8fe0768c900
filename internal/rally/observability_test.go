package rally

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogObserver(slog.New(slog.NewTextHandler(&buf, nil)))

	obs.OnCallComplete(CallEvent{Endpoint: "release", Op: "fetch release", RequestID: "r1", Status: 200, LatencyMs: 12, Success: true})
	obs.OnCallComplete(CallEvent{Endpoint: "hierarchicalrequirement", Op: "fetch items", Start: 201, Results: 0, Status: 401, ErrorCode: "UNAUTHORIZED"})

	out := buf.String()
	assert.Contains(t, out, "level=INFO msg=rally_call endpoint=release")
	assert.Contains(t, out, "request_id=r1")
	assert.Contains(t, out, "latency_ms=12")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "start=201")
	assert.Contains(t, out, "error_code=UNAUTHORIZED")
}

func TestFetchError(t *testing.T) {
	err := &FetchError{Op: "fetch items", Status: 401, Err: ErrUnauthorized}
	assert.Equal(t, "rally fetch items: status 401: rally rejected the api key", err.Error())
	assert.ErrorIs(t, err, ErrUnauthorized)

	noStatus := &FetchError{Op: "list releases", Err: ErrTimeout}
	assert.Equal(t, "rally list releases: rally request timed out", noStatus.Error())
}
