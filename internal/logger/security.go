// Package logger provides the security audit log for the ProjectHub API.
//
// Every event is a structured warning carrying an event_type, the client
// address and a UTC timestamp. Credentials, tokens and mail content are
// never written.
package logger

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// Event types written to the audit log
const (
	EventAuthFailure   = "auth_failure"
	EventForbidden     = "forbidden"
	EventRateLimit     = "rate_limit"
	EventPathTraversal = "path_traversal"
	EventInvalidOrigin = "invalid_origin"
	EventBlockedUpload = "blocked_upload"
)

// SecurityLogger writes security audit events.
// A nil *SecurityLogger discards everything.
type SecurityLogger struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewSecurityLogger creates a SecurityLogger writing JSON to stdout
func NewSecurityLogger() *SecurityLogger {
	return NewSecurityLoggerTo(os.Stdout)
}

// NewSecurityLoggerTo creates a SecurityLogger writing JSON to w
func NewSecurityLoggerTo(w io.Writer) *SecurityLogger {
	return NewSecurityLoggerWithHandler(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// NewSecurityLoggerWithHandler creates a SecurityLogger with a custom handler
func NewSecurityLoggerWithHandler(handler slog.Handler) *SecurityLogger {
	return &SecurityLogger{
		logger: slog.New(handler).With(slog.String("log", "security")),
		now:    time.Now,
	}
}

func (s *SecurityLogger) warn(msg, eventType, ip string, attrs ...any) {
	if s == nil {
		return
	}
	base := []any{
		slog.String("event_type", eventType),
		slog.String("ip", ip),
		slog.Time("timestamp", s.now().UTC()),
	}
	s.logger.Warn(msg, append(base, attrs...)...)
}

// AuthFailure logs a rejected credential. The credential itself is never passed in.
func (s *SecurityLogger) AuthFailure(ip, path, reason string) {
	s.warn("authentication_failure", EventAuthFailure, ip,
		slog.String("path", path),
		slog.String("reason", reason),
	)
}

// Forbidden logs an authenticated caller hitting a route their role may not use
func (s *SecurityLogger) Forbidden(ip, path, role string) {
	if role == "" {
		role = "none"
	}
	s.warn("access_forbidden", EventForbidden, ip,
		slog.String("path", path),
		slog.String("role", role),
	)
}

// RateLimitExceeded logs a throttled client
func (s *SecurityLogger) RateLimitExceeded(ip, path string) {
	s.warn("rate_limit_exceeded", EventRateLimit, ip,
		slog.String("path", path),
	)
}

// PathTraversalAttempt logs an attachment path escaping the storage root
func (s *SecurityLogger) PathTraversalAttempt(ip, path, attemptedPath string) {
	s.warn("path_traversal_attempt", EventPathTraversal, ip,
		slog.String("path", path),
		slog.String("attempted_path", attemptedPath),
	)
}

// InvalidOrigin logs a WebSocket upgrade refused because of its Origin header
func (s *SecurityLogger) InvalidOrigin(ip, origin string) {
	s.warn("invalid_origin", EventInvalidOrigin, ip,
		slog.String("origin", origin),
	)
}

// BlockedFileUpload logs an attachment rejected before it reached storage
func (s *SecurityLogger) BlockedFileUpload(ip, filename, reason string) {
	s.warn("blocked_file_upload", EventBlockedUpload, ip,
		slog.String("filename", filename),
		slog.String("reason", reason),
	)
}

// SecurityEvent logs an ad hoc event. Detail keys that look like secrets are dropped.
func (s *SecurityLogger) SecurityEvent(eventType, ip string, details map[string]string) {
	attrs := make([]any, 0, len(details))
	for k, v := range details {
		if isSensitiveKey(k) {
			continue
		}
		attrs = append(attrs, slog.String(k, v))
	}
	s.warn("security_event", eventType, ip, attrs...)
}

// Logger returns the underlying slog.Logger
func (s *SecurityLogger) Logger() *slog.Logger {
	if s == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.logger
}

var sensitiveKeys = map[string]bool{
	"password":      true,
	"api_key":       true,
	"apikey":        true,
	"token":         true,
	"jwt":           true,
	"secret":        true,
	"authorization": true,
	"auth":          true,
	"credential":    true,
	"credentials":   true,
	"session":       true,
	"cookie":        true,
	"body":          true,
}

func isSensitiveKey(key string) bool {
	return sensitiveKeys[key]
}
