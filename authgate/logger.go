package authgate

import (
	"log/slog"
	"time"
)

const (
	stageAuthenticate = "authenticate"
	stageAuthorize    = "authorize"
)

// SecurityEvent represents a structured security log entry
type SecurityEvent struct {
	EventType        string        // "success" or "failure"
	Stage            string        // "authenticate" or "authorize"
	Timestamp        time.Time     // Event timestamp
	RequestID        string        // Correlation ID
	UserID           string        // Verified user id (empty on authentication failure)
	UntrustedSubject string        // Subject decoded without verification, diagnostics only
	OwnerUserID      string        // Resource owner on authorize events
	FailureReason    string        // Failure kind (on failure)
	TokenPreview     string        // Redacted token preview
	Latency          time.Duration // Decision latency
}

// LogValue implements slog.LogValuer for structured logging with redaction
func (e SecurityEvent) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("event", e.EventType),
		slog.String("stage", e.Stage),
		slog.Time("timestamp", e.Timestamp),
		slog.String("request_id", e.RequestID),
		slog.String("user_id", e.UserID),
		slog.String("failure_reason", e.FailureReason),
		slog.Duration("latency", e.Latency),
	}
	if e.UntrustedSubject != "" {
		attrs = append(attrs, slog.String("untrusted_subject", e.UntrustedSubject))
	}
	if e.OwnerUserID != "" {
		attrs = append(attrs, slog.String("owner_user_id", e.OwnerUserID))
	}
	if e.TokenPreview != "" {
		attrs = append(attrs, slog.String("token", redactToken(e.TokenPreview)))
	}
	return slog.GroupValue(attrs...)
}

// redactToken redacts sensitive token data
func redactToken(token string) string {
	if len(token) == 0 {
		return ""
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:8] + "..."
}

// logSecurityEvent emits a security event via the configured logger
func logSecurityEvent(logger *slog.Logger, event SecurityEvent) {
	if logger == nil {
		return // Logging disabled
	}

	switch {
	case event.EventType == "failure" && event.Stage == stageAuthorize:
		logger.Warn("authorization denied", "auth_event", event)
	case event.EventType == "failure":
		logger.Warn("authentication failed", "auth_event", event)
	case event.Stage == stageAuthorize:
		logger.Debug("authorization granted", "auth_event", event)
	default:
		logger.Info("authentication succeeded", "auth_event", event)
	}
}
