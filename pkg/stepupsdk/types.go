package stepupsdk

import "time"

// MethodsResponse lists the verification methods a user can present.
type MethodsResponse struct {
	TOTP        bool `json:"totp"`
	SMS         bool `json:"sms"`
	Email       bool `json:"email"`
	BackupCodes int  `json:"backup_codes"`
}

// GraceResponse is the grace-period decision for an unenrolled user.
type GraceResponse struct {
	Required bool       `json:"required"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
}

// StatusResponse is the per-user enrollment summary.
type StatusResponse struct {
	Enabled            bool            `json:"enabled"`
	Methods            MethodsResponse `json:"methods"`
	Grace              *GraceResponse  `json:"grace,omitempty"`
	TrustedDeviceCount int             `json:"trusted_device_count"`
	UnusedBackupCodes  int             `json:"unused_backup_codes"`
}

// AssuranceRequest evaluates the caller's current assurance state. The
// marker, if any, is the token returned from a prior successful verify.
type AssuranceRequest struct {
	Marker string `json:"marker,omitempty"`
}

// AssuranceResponse is the per-request assurance decision.
type AssuranceResponse struct {
	State     string          `json:"state"`
	Satisfied bool            `json:"satisfied"`
	Methods   MethodsResponse `json:"methods"`
	Grace     *GraceResponse  `json:"grace,omitempty"`
}

// EnrollResponse is TOTP enrollment material, returned exactly once.
type EnrollResponse struct {
	Secret          string   `json:"secret"`
	ProvisioningURL string   `json:"provisioning_url"`
	BackupCodes     []string `json:"backup_codes"`
}

// ConfirmRequest completes TOTP enrollment.
type ConfirmRequest struct {
	Code string `json:"code"`
}

// ChallengeRequest asks for a one-time code on a channel ("sms" or "email").
type ChallengeRequest struct {
	Channel string `json:"channel"`
}

// VerifyRequest submits a verification attempt.
type VerifyRequest struct {
	// Method is one of totp, sms, email, backup_code.
	Method string `json:"method"`
	Code   string `json:"code"`

	// TrustDevice registers the current device as trusted on success.
	TrustDevice bool   `json:"trust_device,omitempty"`
	DeviceName  string `json:"device_name,omitempty"`
}

// VerifyResponse is returned on verification success.
type VerifyResponse struct {
	// State is always "verified_this_request" on success.
	State string `json:"state"`

	Method string `json:"method"`

	// Marker is the session assurance token; present it on subsequent
	// assurance checks.
	Marker string `json:"marker"`

	TrustedDevice *DeviceResponse `json:"trusted_device,omitempty"`
}

// DeviceResponse is one trusted-device record.
type DeviceResponse struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// DevicesResponse lists the caller's trusted devices.
type DevicesResponse struct {
	Devices []DeviceResponse `json:"devices"`
}

// TrustDeviceRequest trusts the current device. Requires the request to
// already be assured (a valid marker or existing trust).
type TrustDeviceRequest struct {
	Marker      string `json:"marker"`
	DisplayName string `json:"display_name,omitempty"`
	TTLHours    int    `json:"ttl_hours,omitempty"`
}

// ChannelsRequest configures SMS/email challenge destinations.
type ChannelsRequest struct {
	SMSEnabled     bool   `json:"sms_enabled"`
	SMSDestination string `json:"sms_destination,omitempty"`
	EmailEnabled   bool   `json:"email_enabled"`
	EmailAddress   string `json:"email_address,omitempty"`
}

// BackupCodesResponse carries a freshly generated batch, shown once.
type BackupCodesResponse struct {
	Codes []string `json:"codes"`
}

// MessageResponse is a generic success acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthChecks reports the status of service dependencies.
type HealthChecks struct {
	Database string `json:"database"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// ErrorResponse is the error body every endpoint uses.
type ErrorResponse struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}
