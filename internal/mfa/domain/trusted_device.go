package domain

import "time"

// TrustedDevice records that a device completed MFA and the user opted to
// skip verification on it until ExpiresAt. Identified by a fingerprint hash,
// never by raw request attributes.
type TrustedDevice struct {
	ID              string // ULID
	UserID          string
	FingerprintHash string
	DisplayName     string
	CreatedAt       time.Time
	ExpiresAt       time.Time
}

// Active reports whether the trust entry is still valid at the given time.
// Expired rows are ignored by lookups and eventually removed by
// housekeeping.
func (d TrustedDevice) Active(now time.Time) bool {
	return now.Before(d.ExpiresAt)
}
