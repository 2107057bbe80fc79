package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access-token claims minted by the platform's primary auth
// service. The MFA engine only consumes these; it never issues them.
type Claims struct {
	jwt.RegisteredClaims

	// Session ID for the authenticated session. Assurance markers are bound
	// to this so a marker cannot outlive its session.
	SID string `json:"sid,omitempty"`

	// Permission scopes, e.g. "mfa:manage mfa:admin".
	Scopes []string `json:"scopes,omitempty"`

	// Authentication Methods Reference, e.g. ["pwd"]. Primary auth sets
	// "pwd" once the password check passed, which is the precondition for
	// this service being consulted at all.
	AMR []string `json:"amr,omitempty"`

	// Username for the authenticated user, used as the TOTP account label.
	Username string `json:"username,omitempty"`
}

// NewAccessClaims builds minimally-correct access-token claims. Only tests
// and the e2e harness mint these; production tokens come from primary auth.
func NewAccessClaims(
	subject, sid string,
	scopes, amr []string,
	ttl time.Duration,
	issuer string,
	username string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID:      sid,
		Scopes:   scopes,
		AMR:      amr,
		Username: username,
	}
}

// AssuranceClaims is the session MFA marker: a short-lived token the engine
// mints after a successful verification. It is bound to the session and to
// the device fingerprint observed at verification time; a marker presented
// from a device with a different fingerprint is worthless.
type AssuranceClaims struct {
	jwt.RegisteredClaims

	// SID is the session the marker belongs to.
	SID string `json:"sid"`

	// FPH is the fingerprint hash of the device that completed verification.
	FPH string `json:"fph"`

	// Method is the verification method that earned the marker
	// ("totp", "sms", "email", "backup_code").
	Method string `json:"mtd,omitempty"`
}

// NewAssuranceClaims builds marker claims bound to a session and fingerprint.
func NewAssuranceClaims(subject, sid, fingerprintHash, method, issuer string, ttl time.Duration, now time.Time) AssuranceClaims {
	return AssuranceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID:    sid,
		FPH:    fingerprintHash,
		Method: method,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches the expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil // nothing to enforce
	}

	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf).
func (c *Claims) ValidateExpiry() error {
	return validateWindow(c.ExpiresAt, c.NotBefore)
}

// ValidateExpiry applies the same exp/nbf window check to marker claims.
func (c *AssuranceClaims) ValidateExpiry() error {
	return validateWindow(c.ExpiresAt, c.NotBefore)
}

func validateWindow(exp, nbf *jwt.NumericDate) error {
	now := time.Now().UTC()

	if exp != nil && now.After(exp.Time) {
		return ErrExpired
	}
	if nbf != nil && now.Before(nbf.Time) {
		return ErrNotYetValid
	}
	return nil
}
