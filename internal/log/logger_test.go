package log

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"testing"
)

func newBufferLogger() (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return New(Config{
		Component: ComponentApp,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}), buf
}

func TestLeveledMethodsAttachComponent(t *testing.T) {
	tests := []struct {
		name string
		log  func(*Logger)
		want string
	}{
		{"info", func(l *Logger) { l.Info("hello") }, "level=INFO"},
		{"warn", func(l *Logger) { l.Warn("hello") }, "level=WARN"},
		{"error", func(l *Logger) { l.Error("hello") }, "level=ERROR"},
		{"debug", func(l *Logger) { l.Debug("hello") }, "level=DEBUG"},
		{"info context", func(l *Logger) { l.InfoContext(context.Background(), "hello") }, "level=INFO"},
		{"error context", func(l *Logger) { l.ErrorContext(context.Background(), "hello") }, "level=ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger()
			tt.log(logger)
			out := buf.String()
			if !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want level %q", out, tt.want)
			}
			if !strings.Contains(out, FieldComponent+"="+ComponentApp) {
				t.Errorf("output = %q, component field missing", out)
			}
		})
	}
}

func TestWithComponentScopesRecords(t *testing.T) {
	logger, buf := newBufferLogger()
	scoped := logger.WithComponent(ComponentRemote)

	scoped.Info("scoped")
	out := buf.String()
	if !strings.Contains(out, FieldComponent+"="+ComponentRemote) {
		t.Errorf("output = %q, want component %q", out, ComponentRemote)
	}
	if strings.Count(out, FieldComponent+"=") != 1 {
		t.Errorf("output = %q, component field emitted more than once", out)
	}

	buf.Reset()
	logger.Info("parent")
	if !strings.Contains(buf.String(), FieldComponent+"="+ComponentApp) {
		t.Errorf("output = %q, parent logger lost its component", buf.String())
	}
}

func TestTransportLogsStatus(t *testing.T) {
	// The transport reads the process default, so install a captured one.
	buf := &bytes.Buffer{}
	logger := New(Config{
		Component: ComponentApp,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
	prev := slog.Default()
	SetDefault(logger)
	defer slog.SetDefault(prev)

	tr := NewTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 503, Body: http.NoBody, Request: req}, nil
	}))
	req, _ := http.NewRequest(http.MethodGet, "http://remote.local/rest/v1/transactions", nil)
	resp, err := tr.RoundTrip(req)
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	resp.Body.Close()

	out := buf.String()
	if !strings.Contains(out, "level=ERROR") {
		t.Errorf("output = %q, want a server error logged at error level", out)
	}
	if !strings.Contains(out, FieldComponent+"="+ComponentRemote) {
		t.Errorf("output = %q, want the remote component", out)
	}
	if !strings.Contains(out, FieldStatusCode+"=503") {
		t.Errorf("output = %q, want the status code field", out)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
