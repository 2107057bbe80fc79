package otpx_test

import (
	"testing"
	"time"

	"github.com/casefolio/stepup/pkg/otpx"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecret(t *testing.T) {
	key, err := otpx.GenerateSecret("Casefolio", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, key.Secret)
	require.Contains(t, key.URL, "otpauth://totp/")
	require.Contains(t, key.URL, "Casefolio")
	require.Equal(t, "alice", key.Account)

	// Secrets must be unique per enrollment.
	other, err := otpx.GenerateSecret("Casefolio", "alice")
	require.NoError(t, err)
	require.NotEqual(t, key.Secret, other.Secret)
}

func TestValidateAcceptsAdjacentSteps(t *testing.T) {
	key, err := otpx.GenerateSecret("Casefolio", "alice")
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 15, 0, time.UTC)

	for _, offset := range []time.Duration{0, -otpx.Period * time.Second, otpx.Period * time.Second} {
		code, err := otpx.Code(key.Secret, now.Add(offset))
		require.NoError(t, err)
		require.True(t, otpx.Validate(code, key.Secret, now), "offset %v", offset)
	}
}

func TestValidateRejectsDistantSteps(t *testing.T) {
	key, err := otpx.GenerateSecret("Casefolio", "alice")
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 15, 0, time.UTC)

	for _, offset := range []time.Duration{-2 * otpx.Period * time.Second, 2 * otpx.Period * time.Second, time.Hour} {
		code, err := otpx.Code(key.Secret, now.Add(offset))
		require.NoError(t, err)
		// A code from two or more steps away must not validate. Skip the
		// rare collision where the distant step produced the same code.
		current, err := otpx.Code(key.Secret, now)
		require.NoError(t, err)
		if code == current {
			continue
		}
		require.False(t, otpx.Validate(code, key.Secret, now), "offset %v", offset)
	}
}

func TestValidateRejectsMalformed(t *testing.T) {
	key, err := otpx.GenerateSecret("Casefolio", "alice")
	require.NoError(t, err)

	now := time.Now().UTC()
	for _, code := range []string{"", "12345", "1234567", "12345a", "abcdef", "12 456"} {
		require.False(t, otpx.Validate(code, key.Secret, now), "code %q", code)
	}
}

func TestWellFormed(t *testing.T) {
	require.True(t, otpx.WellFormed("000000"))
	require.True(t, otpx.WellFormed("987654"))
	require.False(t, otpx.WellFormed("98765"))
	require.False(t, otpx.WellFormed("9876543"))
	require.False(t, otpx.WellFormed("98765x"))
}
