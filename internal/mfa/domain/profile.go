package domain

import "time"

// Profile is the per-user MFA record. A profile exists for every user the
// service has seen; enrollment state is carried by the nullable fields.
type Profile struct {
	UserID string

	// EnabledAt is set when TOTP enrollment is confirmed. nil means MFA is
	// not enabled. Markers minted before this instant are not honored, which
	// is what invalidates old markers on disable + re-enroll.
	EnabledAt *time.Time

	// TOTPSecretCiphertext holds the AES-GCM encrypted base32 secret. It is
	// present but unconfirmed between enroll and confirm. The plaintext
	// never leaves the verification path.
	TOTPSecretCiphertext []byte

	// SMS / email challenge channels. A channel is usable when it is
	// enabled and has a destination on file.
	SMSEnabled     bool
	SMSDestination string
	EmailEnabled   bool
	EmailAddress   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TOTPConfirmed reports whether the profile has a confirmed, active TOTP
// enrollment.
func (p Profile) TOTPConfirmed() bool {
	return p.EnabledAt != nil && len(p.TOTPSecretCiphertext) > 0
}

// ChannelUsable reports whether a challenge channel can be used for this
// profile.
func (p Profile) ChannelUsable(ch Channel) bool {
	switch ch {
	case ChannelSMS:
		return p.SMSEnabled && p.SMSDestination != ""
	case ChannelEmail:
		return p.EmailEnabled && p.EmailAddress != ""
	default:
		return false
	}
}

// Destination returns the delivery address for a channel, empty if unusable.
func (p Profile) Destination(ch Channel) string {
	switch ch {
	case ChannelSMS:
		return p.SMSDestination
	case ChannelEmail:
		return p.EmailAddress
	default:
		return ""
	}
}
