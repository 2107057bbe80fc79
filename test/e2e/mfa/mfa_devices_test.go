package mfa_test

import (
	"testing"

	"github.com/casefolio/stepup/pkg/stepupsdk"
	"github.com/stretchr/testify/require"
)

// TestDeviceTrustFlow trusts the current device during verification and
// checks later sessions skip step-up.
func TestDeviceTrustFlow(t *testing.T) {
	baseURL, cleanup := setupMFAContainer(t, nil)
	defer cleanup()

	session := newUserSession(t, baseURL, "user-device", "sess-1")
	enrollment := enrollAndConfirm(t, session)

	// Verify and trust in one call
	code := totpCodeNow(t, enrollment.Secret)
	verification, err := session.Verify(t.Context(), stepupsdk.VerifyRequest{
		Method:      "totp",
		Code:        code,
		TrustDevice: true,
		DeviceName:  "Work laptop",
	})
	require.NoError(t, err)
	require.NotNil(t, verification.TrustedDevice)
	require.Equal(t, "Work laptop", verification.TrustedDevice.DisplayName)

	// A brand new session from the same client is waved through on trust
	// alone, no marker needed
	laterSession := newUserSession(t, baseURL, "user-device", "sess-2")
	decision, err := laterSession.Assurance(t.Context(), "")
	require.NoError(t, err)
	require.Equal(t, "device_trusted", decision.State)
	require.True(t, decision.Satisfied)

	devices, err := session.ListDevices(t.Context())
	require.NoError(t, err)
	require.Len(t, devices.Devices, 1)

	// Revoking the trust forces step-up again
	require.NoError(t, session.RevokeDevice(t.Context(), devices.Devices[0].ID))

	decision, err = laterSession.Assurance(t.Context(), "")
	require.NoError(t, err)
	require.Equal(t, "required_unverified", decision.State)
	require.False(t, decision.Satisfied)
}

// TestTrustDeviceRequiresAssurance verifies the standalone trust endpoint
// refuses requests that have not stepped up.
func TestTrustDeviceRequiresAssurance(t *testing.T) {
	baseURL, cleanup := setupMFAContainer(t, nil)
	defer cleanup()

	session := newUserSession(t, baseURL, "user-trust-gate", "sess-1")
	enrollment := enrollAndConfirm(t, session)

	// No marker, no existing trust: refused
	_, err := session.TrustDevice(t.Context(), stepupsdk.TrustDeviceRequest{
		DisplayName: "Sneaky device",
	})
	assertAPIError(t, err, 403, stepupsdk.ErrorCodeForbidden)

	// With a fresh marker it works
	verification := verifyTOTP(t, session, enrollment.Secret)
	device, err := session.TrustDevice(t.Context(), stepupsdk.TrustDeviceRequest{
		Marker:      verification.Marker,
		DisplayName: "Home desktop",
	})
	require.NoError(t, err)
	require.Equal(t, "Home desktop", device.DisplayName)
	require.True(t, device.ExpiresAt.After(device.CreatedAt))
}

// TestRevokeUnknownDevice verifies revocation of a nonexistent ID 404s.
func TestRevokeUnknownDevice(t *testing.T) {
	baseURL, cleanup := setupMFAContainer(t, nil)
	defer cleanup()

	session := newUserSession(t, baseURL, "user-revoke-404", "sess-1")
	enrollAndConfirm(t, session)

	err := session.RevokeDevice(t.Context(), "01K0000000000000000000000")
	assertAPIError(t, err, 404, stepupsdk.ErrorCodeNotFound)
}
