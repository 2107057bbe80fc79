package domain

import "time"

// State is the assurance state derived for a single request. It is never
// persisted; the engine recomputes it on every evaluation.
type State string

const (
	// StateGracePeriod - MFA not enabled, still inside the rollout window.
	StateGracePeriod State = "grace_period"
	// StateRequiredUnverified - the request must complete a verification
	// (or, for an unenrolled user past grace, an enrollment).
	StateRequiredUnverified State = "required_unverified"
	// StateDeviceTrusted - the request's device holds active trust.
	StateDeviceTrusted State = "device_trusted"
	// StateSessionVerified - the session carries a marker bound to this
	// device's fingerprint.
	StateSessionVerified State = "session_verified"
	// StateVerifiedThisRequest - a verify call succeeded in this request.
	StateVerifiedThisRequest State = "verified_this_request"
)

// Methods describes which verification methods a user can currently present.
type Methods struct {
	TOTP        bool `json:"totp"`
	SMS         bool `json:"sms"`
	Email       bool `json:"email"`
	BackupCodes int  `json:"backup_codes"` // unused codes remaining
}

// Any reports whether at least one method is available.
func (m Methods) Any() bool {
	return m.TOTP || m.SMS || m.Email || m.BackupCodes > 0
}

// GraceStatus is the grace-period decision for an unenrolled user.
type GraceStatus struct {
	Required bool       `json:"required"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
}

// Decision is the engine's answer to "is this request sufficiently assured".
type Decision struct {
	State     State
	Satisfied bool

	// Methods is populated when verification is required, so the client can
	// present the right challenge.
	Methods Methods

	// Grace is populated for unenrolled users.
	Grace *GraceStatus
}

// Verification is the result of a successful verify call.
type Verification struct {
	// State is always StateVerifiedThisRequest; carried so the verify
	// surface speaks the same state vocabulary as assurance evaluation.
	State State

	Method string // "totp", "sms", "email", "backup_code"

	// Marker is the signed session assurance token bound to the verified
	// fingerprint.
	Marker string

	// TrustedDevice is set when the caller opted to trust the device.
	TrustedDevice *TrustedDevice
}

// EnrollmentMaterial is returned exactly once from TOTP enrollment.
type EnrollmentMaterial struct {
	Secret          string   // base32, for manual entry
	ProvisioningURL string   // otpauth:// URI for QR rendering
	BackupCodes     []string // plaintext, shown once
}

// Status is the per-user summary exposed by getStatus.
type Status struct {
	Enabled            bool         `json:"enabled"`
	Methods            Methods      `json:"methods"`
	Grace              *GraceStatus `json:"grace,omitempty"`
	TrustedDeviceCount int          `json:"trusted_device_count"`
	UnusedBackupCodes  int          `json:"unused_backup_codes"`
}
