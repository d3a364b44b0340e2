package log

import (
	"net/http"
	"time"
)

// Transport is an http.RoundTripper that logs every outbound request to the
// managed backend with method, URL path, status and duration. It is the
// client-side counterpart of request logging on a server.
type Transport struct {
	next   http.RoundTripper
	logger *Logger
}

// NewTransport wraps next (nil means http.DefaultTransport).
func NewTransport(next http.RoundTripper) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Transport{
		next:   next,
		logger: Default().WithComponent(ComponentRemote),
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	durationMs := time.Since(start).Milliseconds()

	ctx := req.Context()
	if err != nil {
		t.logger.ErrorContext(ctx, "Remote request failed",
			FieldMethod, req.Method,
			FieldURL, req.URL.Path,
			FieldDuration, durationMs,
			FieldError, err.Error())
		return nil, err
	}

	args := []any{
		FieldMethod, req.Method,
		FieldURL, req.URL.Path,
		FieldStatusCode, resp.StatusCode,
		FieldDuration, durationMs,
		FieldSuccess, resp.StatusCode < 400,
	}
	switch {
	case resp.StatusCode >= 500:
		t.logger.ErrorContext(ctx, "Remote request completed", args...)
	case resp.StatusCode >= 400:
		t.logger.WarnContext(ctx, "Remote request completed", args...)
	default:
		t.logger.DebugContext(ctx, "Remote request completed", args...)
	}
	return resp, nil
}
