// Package otpx wraps TOTP generation and validation for the MFA engine.
package otpx

import (
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// Period is the TOTP time step in seconds.
	Period = 30
	// Digits is the number of digits in a TOTP code.
	Digits = 6
	// SecretBytes is the raw secret size: 20 bytes = 160 bits, the RFC 4226
	// recommended minimum.
	SecretBytes = 20
)

// Key is the enrollment material for a new TOTP secret. The secret is
// returned exactly once; afterwards it lives only in the profile store.
type Key struct {
	Secret  string // Base32-encoded shared secret
	URL     string // otpauth:// provisioning URI for QR rendering
	Issuer  string
	Account string
}

// GenerateSecret produces a fresh TOTP key for the given issuer and account
// label.
func GenerateSecret(issuer, account string) (Key, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      Period,
		SecretSize:  SecretBytes,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return Key{}, fmt.Errorf("otpx: generate key: %w", err)
	}

	return Key{
		Secret:  key.Secret(),
		URL:     key.URL(),
		Issuer:  issuer,
		Account: account,
	}, nil
}

// Validate reports whether code is valid for secret at the given time,
// accepting the current step and one step either side to absorb clock
// drift. Malformed codes (wrong length, non-numeric) are rejected up front
// so the failure cost is not correlated with validity.
func Validate(code, secret string, at time.Time) bool {
	code = strings.TrimSpace(code)
	if !WellFormed(code) {
		return false
	}

	ok, err := totp.ValidateCustom(code, secret, at.UTC(), totp.ValidateOpts{
		Period:    Period,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

// WellFormed reports whether a submitted code has the right shape for a
// TOTP or challenge code: exactly Digits decimal digits.
func WellFormed(code string) bool {
	if len(code) != Digits {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Code computes the valid code for a secret at a point in time. Tests and
// the e2e harness use this to behave like an authenticator app.
func Code(secret string, at time.Time) (string, error) {
	return totp.GenerateCode(secret, at.UTC())
}
