package util

import (
	"log/slog"
	"net/http"
	"time"
)

// LoggingTransport emits a structured log for each outgoing HTTP request.
// It includes request_id so client logs can be matched with server logs.
type LoggingTransport struct {
	Base http.RoundTripper
}

// NewLoggingTransport wraps base (http.DefaultTransport when nil).
func NewLoggingTransport(base http.RoundTripper) *LoggingTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &LoggingTransport{Base: base}
}

func (t *LoggingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.Base.RoundTrip(r)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	slog.Debug(
		"http_request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", r.Header.Get(RequestIDHeader),
	)
	return resp, err
}
