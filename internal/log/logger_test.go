package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"rentledger/internal/core"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentHTTP, Output: &buf})

	l.Info("hello")
	assert.Contains(t, buf.String(), "component=http")

	buf.Reset()
	l.WithComponent(ComponentLedger).Info("again")
	assert.Contains(t, buf.String(), "component=ledger")
}

func TestLogPaymentRecorded(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelInfo, Component: ComponentPayment, Output: &buf}))

	sl.LogPaymentRecorded(context.Background(), OpApprove, core.RentPayment{
		ID: 4, TenantID: 2, Month: "March 2024", Status: core.StatusApproved,
		Amount: core.Money{Paise: 100}, LateFine: core.Money{Paise: 50},
	})

	out := buf.String()
	for _, want := range []string{"payment_id=4", "tenant_id=2", "amount_paise=150", "operation=approve", `month="March 2024"`} {
		assert.Contains(t, out, want)
	}
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Component: ComponentWorker, Output: &buf}))

	sl.LogError(context.Background(), "export failed", errors.New("boom"), OpExport, NewFields().WithComponent(ComponentSheets))
	assert.Contains(t, buf.String(), "error=boom")
	assert.Contains(t, buf.String(), "operation=export")
}

func TestMiddlewareChain(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Output: &buf})

	var got *Logger
	h := Middleware(base)(ComponentMiddleware(ComponentHTTP)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = FromContext(r.Context()).With(FieldRequestID, "req-1")
			got.Info("inside")
		})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, ComponentHTTP, got.Component())
	assert.True(t, strings.Contains(buf.String(), "request_id=req-1"))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Equal(t, ComponentApp, FromContext(context.Background()).Component())
}
