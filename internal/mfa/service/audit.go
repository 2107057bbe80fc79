package service

import (
	"context"
	"log/slog"
	"time"
)

// Audit event kinds. The audit collaborator owns redaction of anything it
// forwards; we only ever hand it identifiers and hashes, never codes or
// secrets.
const (
	AuditEnroll        = "mfa.enroll"
	AuditVerifySuccess = "mfa.verify.success"
	AuditVerifyFailure = "mfa.verify.failure"
	AuditDeviceTrust   = "mfa.device.trust"
	AuditDeviceRevoke  = "mfa.device.revoke"
	AuditRegenerate    = "mfa.backup_codes.regenerate"
	AuditDisable       = "mfa.disable"
)

// AuditEvent is one structured record handed to the audit collaborator.
type AuditEvent struct {
	Kind         string
	UserID       string
	ActingUserID string // differs from UserID on administrative operations
	Method       string // totp, sms, email, backup_code
	Reason       string // failure reason on verify.failure
	DeviceID     string
	At           time.Time
}

// AuditRecorder is the audit-log collaborator. Recording must never block or
// fail a user-facing operation; implementations swallow their own errors.
type AuditRecorder interface {
	Record(ctx context.Context, ev AuditEvent)
}

// SlogAuditRecorder writes audit events to the structured log. The default
// until the platform audit pipeline is wired in.
type SlogAuditRecorder struct {
	Logger *slog.Logger
}

func (r *SlogAuditRecorder) Record(ctx context.Context, ev AuditEvent) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []any{
		"kind", ev.Kind,
		"user_id", ev.UserID,
	}
	if ev.ActingUserID != "" && ev.ActingUserID != ev.UserID {
		attrs = append(attrs, "acting_user_id", ev.ActingUserID)
	}
	if ev.Method != "" {
		attrs = append(attrs, "method", ev.Method)
	}
	if ev.Reason != "" {
		attrs = append(attrs, "reason", ev.Reason)
	}
	if ev.DeviceID != "" {
		attrs = append(attrs, "device_id", ev.DeviceID)
	}

	logger.InfoContext(ctx, "audit event", attrs...)
}
