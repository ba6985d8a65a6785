package logging

import (
	"context"
	"log/slog"

	"github.com/temptedwithouta/eazy-career-backend/domain"
)

// AuditLoggerImpl implements domain.AuditLogger on slog
type AuditLoggerImpl struct {
	logger *slog.Logger
}

// NewAuditLogger creates an audit logger writing through logger
func NewAuditLogger(logger *slog.Logger) domain.AuditLogger {
	return &AuditLoggerImpl{logger: logger.With("module", "audit")}
}

// LogEvent implements domain.AuditLogger
func (a *AuditLoggerImpl) LogEvent(ctx context.Context, event *domain.AuditEvent) error {
	event.WithClientContext(domain.ClientContextFrom(ctx))

	fields := []any{
		"event_type", string(event.EventType),
		"user_id", event.UserID,
		"success", event.Success,
		"timestamp", event.Timestamp,
	}
	if event.Email != "" {
		fields = append(fields, "email", event.Email)
	}
	if event.IPAddress != "" {
		fields = append(fields, "ip_address", event.IPAddress)
	}
	if event.UserAgent != "" {
		fields = append(fields, "user_agent", event.UserAgent)
	}
	if event.RequestID != "" {
		fields = append(fields, "request_id", event.RequestID)
	}
	if event.ErrorMsg != "" {
		fields = append(fields, "error", event.ErrorMsg)
	}
	if len(event.Metadata) > 0 {
		fields = append(fields, "metadata", event.Metadata)
	}

	if event.Success {
		a.logger.InfoContext(ctx, "audit event", fields...)
	} else {
		a.logger.WarnContext(ctx, "audit event", fields...)
	}
	return nil
}
