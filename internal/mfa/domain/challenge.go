package domain

import "time"

// Channel identifies a delivery channel for one-time challenge codes.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// ParseChannel validates a channel string from the transport layer.
func ParseChannel(s string) (Channel, bool) {
	switch Channel(s) {
	case ChannelSMS, ChannelEmail:
		return Channel(s), true
	default:
		return "", false
	}
}

// Challenge is a live verification attempt for an SMS or email code. At most
// one unconsumed, unexpired challenge exists per (user, channel); issuing a
// new one replaces it.
type Challenge struct {
	UserID  string
	Channel Channel

	// CodeHash is the salted argon2id hash of the issued code. Plaintext is
	// returned once to the caller for delivery and never stored.
	CodeHash string

	IssuedAt  time.Time
	ExpiresAt time.Time

	// AttemptsRemaining counts down on every failed comparison. At zero the
	// challenge is dead regardless of expiry.
	AttemptsRemaining int

	Consumed bool
}

// Expired reports whether the challenge is past its expiry at the given time.
func (c Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Exhausted reports whether the attempt budget is spent.
func (c Challenge) Exhausted() bool {
	return c.AttemptsRemaining <= 0
}
