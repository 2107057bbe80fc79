package mfa_test

import (
	"testing"
	"time"

	"github.com/casefolio/stepup/pkg/otpx"
	"github.com/casefolio/stepup/pkg/stepupsdk"
	"github.com/stretchr/testify/require"
)

// TestTOTPEnrollmentFlow walks the full enroll, confirm, status path.
func TestTOTPEnrollmentFlow(t *testing.T) {
	baseURL, cleanup := setupMFAContainer(t, nil)
	defer cleanup()

	session := newUserSession(t, baseURL, "user-enroll", "sess-1")

	// Fresh user has nothing enrolled
	status, err := session.Status(t.Context())
	require.NoError(t, err)
	require.False(t, status.Enabled)
	require.False(t, status.Methods.TOTP)
	require.Zero(t, status.Methods.BackupCodes)

	enrollment := enrollAndConfirm(t, session)

	status, err = session.Status(t.Context())
	require.NoError(t, err)
	require.True(t, status.Enabled, "MFA should be active after confirmation")
	require.True(t, status.Methods.TOTP)
	require.Equal(t, 10, status.Methods.BackupCodes)
	require.Nil(t, status.Grace, "Grace should not be reported once enrolled")

	// A second enrollment attempt must be refused
	_, err = session.EnrollTOTP(t.Context())
	assertAPIError(t, err, 400, stepupsdk.ErrorCodeAlreadyEnrolled)

	// The secret still produces valid codes
	code, err := otpx.Code(enrollment.Secret, time.Now())
	require.NoError(t, err)
	require.Len(t, code, 6)
}

// TestConfirmRequiresPendingEnrollment exercises the confirm guard rails.
func TestConfirmRequiresPendingEnrollment(t *testing.T) {
	baseURL, cleanup := setupMFAContainer(t, nil)
	defer cleanup()

	session := newUserSession(t, baseURL, "user-confirm-guard", "sess-1")

	// Confirm with no enrollment at all
	err := session.ConfirmTOTP(t.Context(), "123456")
	assertAPIError(t, err, 400, stepupsdk.ErrorCodeNotEnrolled)

	// Enroll, then confirm with a wrong code
	_, err = session.EnrollTOTP(t.Context())
	require.NoError(t, err)

	err = session.ConfirmTOTP(t.Context(), "000000")
	assertAPIError(t, err, 400, stepupsdk.ErrorCodeInvalidCode)

	// A wrong code must not have activated anything
	status, err := session.Status(t.Context())
	require.NoError(t, err)
	require.False(t, status.Enabled)
}

// TestChannelConfiguration sets and clears challenge destinations.
func TestChannelConfiguration(t *testing.T) {
	baseURL, cleanup := setupMFAContainer(t, nil)
	defer cleanup()

	session := newUserSession(t, baseURL, "user-channels", "sess-1")
	enrollAndConfirm(t, session)

	err := session.ConfigureChannels(t.Context(), stepupsdk.ChannelsRequest{
		SMSEnabled:     true,
		SMSDestination: "+61400111222",
		EmailEnabled:   true,
		EmailAddress:   "user@example.com",
	})
	require.NoError(t, err)

	status, err := session.Status(t.Context())
	require.NoError(t, err)
	require.True(t, status.Methods.SMS)
	require.True(t, status.Methods.Email)

	// Enabling a channel without a destination is rejected
	err = session.ConfigureChannels(t.Context(), stepupsdk.ChannelsRequest{
		SMSEnabled: true,
	})
	assertAPIError(t, err, 400, stepupsdk.ErrorCodeInvalidRequest)

	// Clearing both channels works
	err = session.ConfigureChannels(t.Context(), stepupsdk.ChannelsRequest{})
	require.NoError(t, err)

	status, err = session.Status(t.Context())
	require.NoError(t, err)
	require.False(t, status.Methods.SMS)
	require.False(t, status.Methods.Email)
}

// TestSelfDisable verifies a user can switch MFA off again and that all
// associated state is wiped.
func TestSelfDisable(t *testing.T) {
	baseURL, cleanup := setupMFAContainer(t, nil)
	defer cleanup()

	session := newUserSession(t, baseURL, "user-disable", "sess-1")
	enrollAndConfirm(t, session)

	require.NoError(t, session.Disable(t.Context()))

	status, err := session.Status(t.Context())
	require.NoError(t, err)
	require.False(t, status.Enabled)
	require.Zero(t, status.Methods.BackupCodes, "Backup codes should be deleted on disable")
	require.Zero(t, status.TrustedDeviceCount, "Trusted devices should be deleted on disable")
}
