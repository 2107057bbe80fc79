package mfa_test

import (
	"testing"

	"github.com/casefolio/stepup/pkg/stepupsdk"
	"github.com/stretchr/testify/require"
)

// TestBackupCodeSingleUse verifies each backup code verifies exactly once.
func TestBackupCodeSingleUse(t *testing.T) {
	baseURL, cleanup := setupMFAContainer(t, nil)
	defer cleanup()

	session := newUserSession(t, baseURL, "user-backup", "sess-1")
	enrollment := enrollAndConfirm(t, session)
	require.Len(t, enrollment.BackupCodes, 10)

	code := enrollment.BackupCodes[0]

	verification, err := session.Verify(t.Context(), stepupsdk.VerifyRequest{
		Method: "backup_code",
		Code:   code,
	})
	require.NoError(t, err)
	require.Equal(t, "backup_code", verification.Method)
	require.NotEmpty(t, verification.Marker)

	// The same code a second time is rejected
	_, err = session.Verify(t.Context(), stepupsdk.VerifyRequest{
		Method: "backup_code",
		Code:   code,
	})
	assertAPIError(t, err, 400, stepupsdk.ErrorCodeInvalidCode)

	status, err := session.Status(t.Context())
	require.NoError(t, err)
	require.Equal(t, 9, status.Methods.BackupCodes)
}

// TestRegenerateBackupCodes verifies regeneration replaces the whole batch.
func TestRegenerateBackupCodes(t *testing.T) {
	baseURL, cleanup := setupMFAContainer(t, nil)
	defer cleanup()

	session := newUserSession(t, baseURL, "user-regen", "sess-1")
	enrollment := enrollAndConfirm(t, session)
	oldCode := enrollment.BackupCodes[3]

	fresh, err := session.RegenerateBackupCodes(t.Context())
	require.NoError(t, err)
	require.Len(t, fresh.Codes, 10)
	require.NotContains(t, fresh.Codes, oldCode)

	// Codes from the replaced batch no longer verify
	_, err = session.Verify(t.Context(), stepupsdk.VerifyRequest{
		Method: "backup_code",
		Code:   oldCode,
	})
	assertAPIError(t, err, 400, stepupsdk.ErrorCodeInvalidCode)

	// Codes from the new batch do
	verification, err := session.Verify(t.Context(), stepupsdk.VerifyRequest{
		Method: "backup_code",
		Code:   fresh.Codes[0],
	})
	require.NoError(t, err)
	require.NotEmpty(t, verification.Marker)
}
