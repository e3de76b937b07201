package log

import (
	"context"
	"log/slog"
	"net/http"
)

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogHTTPStart logs the start of an HTTP request
func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)

	sl.logger.InfoContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// LogHTTPEnd logs the completion of an HTTP request
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)

	sl.logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

// LogBillPaid logs a successful bill payment
func (sl *StructuredLogger) LogBillPaid(ctx context.Context, userID, billID int64, name, amount string, points int64) {
	fields := NewFields().
		WithUser(userID).
		WithBill(billID, name, amount, "").
		WithOperation(OpPay).
		WithComponent(ComponentBills).
		ToSlice()

	fields = append(fields, FieldPoints, points)

	sl.logger.InfoContext(ctx, "Bill paid successfully", fields...)
}

// LogAlertRaised logs a newly generated alert
func (sl *StructuredLogger) LogAlertRaised(ctx context.Context, userID, alertID int64, alertType, severity string) {
	fields := NewFields().
		WithUser(userID).
		WithAlert(alertID, alertType, severity).
		WithOperation(OpGenerate).
		WithComponent(ComponentAlerts)

	sl.logger.InfoContext(ctx, "Alert raised", fields.ToSlice()...)
}
