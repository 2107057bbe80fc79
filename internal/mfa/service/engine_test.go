package service

import (
	"context"
	"testing"
	"time"

	"github.com/casefolio/stepup/internal/mfa/domain"
	"github.com/casefolio/stepup/pkg/httpx"
	"github.com/casefolio/stepup/pkg/idx"

	"github.com/stretchr/testify/require"
)

func TestEnrollAndConfirmTOTP(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	userID := idx.New().String()

	material, err := env.Engine.EnrollTOTP(ctx, userID, "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, material.Secret)
	require.Contains(t, material.ProvisioningURL, "otpauth://")
	require.Len(t, material.BackupCodes, backupCodeCount)

	// Not enabled until confirmed.
	status, err := env.Engine.Status(ctx, userID)
	require.NoError(t, err)
	require.False(t, status.Enabled)

	// A wrong code does not confirm.
	err = env.Engine.ConfirmTOTP(ctx, userID, "000000")
	require.ErrorIs(t, err, ErrInvalidCode)

	require.NoError(t, env.Engine.ConfirmTOTP(ctx, userID, totpCode(t, material.Secret)))

	status, err = env.Engine.Status(ctx, userID)
	require.NoError(t, err)
	require.True(t, status.Enabled)
	require.True(t, status.Methods.TOTP)
	require.Equal(t, backupCodeCount, status.UnusedBackupCodes)

	// Enrolling again while enabled is refused.
	_, err = env.Engine.EnrollTOTP(ctx, userID, "alice@example.com")
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestConfirmWithoutEnrollment(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	err := env.Engine.ConfirmTOTP(ctx, idx.New().String(), "123456")
	require.ErrorIs(t, err, ErrNotEnrolled)
}

func TestEvaluateGracePeriod(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	userID := idx.New().String()

	// Fresh profile, 14-day window: inside grace, assurance satisfied.
	decision, err := env.Engine.Evaluate(ctx, EvaluateInput{
		UserID: userID, SessionID: "s1", FingerprintHash: "fp",
	})
	require.NoError(t, err)
	require.Equal(t, domain.StateGracePeriod, decision.State)
	require.True(t, decision.Satisfied)
	require.NotNil(t, decision.Grace)
	require.False(t, decision.Grace.Required)
}

func TestEvaluateEnrollmentRequiredAfterGrace(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.Engine.Grace = GracePolicy{} // zero window: enforced immediately

	decision, err := env.Engine.Evaluate(ctx, EvaluateInput{
		UserID: idx.New().String(), SessionID: "s1", FingerprintHash: "fp",
	})
	require.NoError(t, err)
	require.Equal(t, domain.StateRequiredUnverified, decision.State)
	require.False(t, decision.Satisfied)
	require.True(t, decision.Grace.Required)
	require.False(t, decision.Methods.Any(), "unenrolled users have no methods to offer")
}

func TestEvaluateVerifyAndMarker(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	userID := idx.New().String()
	material := enrollAndConfirm(t, env, userID)

	fph := env.Devices.Fingerprint(RequestAttributes{UserAgent: "ua", AcceptLanguage: "en"})

	// Enabled, unknown device, no marker: verification required with the
	// available methods listed.
	decision, err := env.Engine.Evaluate(ctx, EvaluateInput{
		UserID: userID, SessionID: "s1", FingerprintHash: fph,
	})
	require.NoError(t, err)
	require.Equal(t, domain.StateRequiredUnverified, decision.State)
	require.False(t, decision.Satisfied)
	require.True(t, decision.Methods.TOTP)
	require.Equal(t, backupCodeCount, decision.Methods.BackupCodes)

	result, err := env.Engine.Verify(ctx, VerifyInput{
		UserID: userID, SessionID: "s1", FingerprintHash: fph,
		Method: MethodTOTP, Code: totpCode(t, material.Secret),
	})
	require.NoError(t, err)
	require.Equal(t, domain.StateVerifiedThisRequest, result.State)
	require.Equal(t, MethodTOTP, result.Method)
	require.NotEmpty(t, result.Marker)
	require.Nil(t, result.TrustedDevice)

	// The marker satisfies assurance on the same session and device.
	decision, err = env.Engine.Evaluate(ctx, EvaluateInput{
		UserID: userID, SessionID: "s1", FingerprintHash: fph, Marker: result.Marker,
	})
	require.NoError(t, err)
	require.Equal(t, domain.StateSessionVerified, decision.State)
	require.True(t, decision.Satisfied)

	// A different fingerprint invalidates the marker.
	decision, err = env.Engine.Evaluate(ctx, EvaluateInput{
		UserID: userID, SessionID: "s1", FingerprintHash: "other-device", Marker: result.Marker,
	})
	require.NoError(t, err)
	require.Equal(t, domain.StateRequiredUnverified, decision.State)
	require.False(t, decision.Satisfied)

	// A different session does too.
	decision, err = env.Engine.Evaluate(ctx, EvaluateInput{
		UserID: userID, SessionID: "s2", FingerprintHash: fph, Marker: result.Marker,
	})
	require.NoError(t, err)
	require.False(t, decision.Satisfied)
}

func TestVerifyWithDeviceTrust(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	userID := idx.New().String()
	material := enrollAndConfirm(t, env, userID)

	fph := env.Devices.Fingerprint(RequestAttributes{UserAgent: "ua", AcceptLanguage: "en"})

	result, err := env.Engine.Verify(ctx, VerifyInput{
		UserID: userID, SessionID: "s1", FingerprintHash: fph,
		Method: MethodTOTP, Code: totpCode(t, material.Secret),
		TrustDevice: true, DeviceName: "Work laptop",
	})
	require.NoError(t, err)
	require.NotNil(t, result.TrustedDevice)
	require.Equal(t, "Work laptop", result.TrustedDevice.DisplayName)

	// The trusted device passes without any marker, even on a new session.
	decision, err := env.Engine.Evaluate(ctx, EvaluateInput{
		UserID: userID, SessionID: "s9", FingerprintHash: fph,
	})
	require.NoError(t, err)
	require.Equal(t, domain.StateDeviceTrusted, decision.State)
	require.True(t, decision.Satisfied)
}

func TestVerifyWrongTOTP(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	userID := idx.New().String()
	enrollAndConfirm(t, env, userID)

	_, err := env.Engine.Verify(ctx, VerifyInput{
		UserID: userID, SessionID: "s1", FingerprintHash: "fp",
		Method: MethodTOTP, Code: "000000",
	})
	require.ErrorIs(t, err, ErrInvalidCode)

	_, err = env.Engine.Verify(ctx, VerifyInput{
		UserID: userID, SessionID: "s1", FingerprintHash: "fp",
		Method: "carrier-pigeon", Code: "000000",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestBackupCodeSingleUseAndRegenerate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	userID := idx.New().String()
	material := enrollAndConfirm(t, env, userID)

	code := material.BackupCodes[0]

	result, err := env.Engine.Verify(ctx, VerifyInput{
		UserID: userID, SessionID: "s1", FingerprintHash: "fp",
		Method: MethodBackupCode, Code: code,
	})
	require.NoError(t, err)
	require.Equal(t, MethodBackupCode, result.Method)

	// Second use of the same code fails.
	_, err = env.Engine.Verify(ctx, VerifyInput{
		UserID: userID, SessionID: "s1", FingerprintHash: "fp",
		Method: MethodBackupCode, Code: code,
	})
	require.ErrorIs(t, err, ErrInvalidCode)

	status, err := env.Engine.Status(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, backupCodeCount-1, status.UnusedBackupCodes)

	// Regeneration replaces the batch wholesale.
	fresh, err := env.Engine.RegenerateBackupCodes(ctx, userID)
	require.NoError(t, err)
	require.Len(t, fresh, backupCodeCount)

	// Every code from the old batch is dead, used or not.
	_, err = env.Engine.Verify(ctx, VerifyInput{
		UserID: userID, SessionID: "s1", FingerprintHash: "fp",
		Method: MethodBackupCode, Code: material.BackupCodes[1],
	})
	require.ErrorIs(t, err, ErrInvalidCode)

	// The new batch works.
	_, err = env.Engine.Verify(ctx, VerifyInput{
		UserID: userID, SessionID: "s1", FingerprintHash: "fp",
		Method: MethodBackupCode, Code: fresh[0],
	})
	require.NoError(t, err)
}

func TestDisableAuthorization(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	userID := idx.New().String()
	other := idx.New().String()
	enrollAndConfirm(t, env, userID)

	// Someone else without the admin scope is refused.
	err := env.Engine.Disable(ctx, other, userID)
	require.ErrorIs(t, err, ErrForbidden)

	// Self-disable is allowed.
	require.NoError(t, env.Engine.Disable(ctx, userID, userID))

	status, err := env.Engine.Status(ctx, userID)
	require.NoError(t, err)
	require.False(t, status.Enabled)
	require.Zero(t, status.UnusedBackupCodes)
	require.Zero(t, status.TrustedDeviceCount)
}

func TestDisableWithAdminScope(t *testing.T) {
	env := newTestEnv(t)
	userID := idx.New().String()
	admin := idx.New().String()
	enrollAndConfirm(t, env, userID)

	ctx := context.WithValue(context.Background(), httpx.CtxKeyScopes, []string{ScopeMFAAdmin})
	require.NoError(t, env.Engine.Disable(ctx, admin, userID))
}

// A marker minted before a disable + re-enroll cycle must not satisfy the
// new enrollment.
func TestMarkerInvalidatedByReenrollment(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	userID := idx.New().String()
	material := enrollAndConfirm(t, env, userID)

	fph := env.Devices.Fingerprint(RequestAttributes{UserAgent: "ua", AcceptLanguage: "en"})
	result, err := env.Engine.Verify(ctx, VerifyInput{
		UserID: userID, SessionID: "s1", FingerprintHash: fph,
		Method: MethodTOTP, Code: totpCode(t, material.Secret),
	})
	require.NoError(t, err)

	require.NoError(t, env.Engine.Disable(ctx, userID, userID))

	// EnableTOTP resolves enabled_at to the current second; make sure the
	// re-enrollment lands strictly after the old marker's iat.
	time.Sleep(1100 * time.Millisecond)

	fresh, err := env.Engine.EnrollTOTP(ctx, userID, "alice@example.com")
	require.NoError(t, err)
	require.NoError(t, env.Engine.ConfirmTOTP(ctx, userID, totpCode(t, fresh.Secret)))

	decision, err := env.Engine.Evaluate(ctx, EvaluateInput{
		UserID: userID, SessionID: "s1", FingerprintHash: fph, Marker: result.Marker,
	})
	require.NoError(t, err)
	require.False(t, decision.Satisfied, "a pre-disable marker must not carry over")
	require.Equal(t, domain.StateRequiredUnverified, decision.State)
}
