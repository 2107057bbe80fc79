package mfa_test

import (
	"testing"

	"github.com/casefolio/stepup/pkg/stepupsdk"
	"github.com/stretchr/testify/require"
)

// TestHealthEndpoints verifies the liveness and readiness probes.
func TestHealthEndpoints(t *testing.T) {
	baseURL, cleanup := setupMFAContainer(t, nil)
	defer cleanup()

	client := stepupsdk.NewClient(baseURL)

	t.Run("Livez", func(t *testing.T) {
		health, err := client.Livez(t.Context())
		require.NoError(t, err)
		require.NotNil(t, health)
		require.Equal(t, "ok", health.Status)
		require.NotEmpty(t, health.Uptime)
		require.NotEmpty(t, health.Version)
	})

	t.Run("Readyz", func(t *testing.T) {
		health, err := client.Readyz(t.Context())
		require.NoError(t, err)
		require.NotNil(t, health)
		require.Equal(t, "ok", health.Status)
		require.NotNil(t, health.Checks)
		require.Equal(t, "ok", health.Checks.Database)
	})
}

// TestRejectsUnauthenticatedRequests verifies every MFA endpoint demands a
// valid access token.
func TestRejectsUnauthenticatedRequests(t *testing.T) {
	baseURL, cleanup := setupMFAContainer(t, nil)
	defer cleanup()

	client := stepupsdk.NewClient(baseURL)
	session := client.NewSession("not-a-real-token")

	_, err := session.Status(t.Context())
	assertAPIStatus(t, err, 401)

	_, err = session.EnrollTOTP(t.Context())
	assertAPIStatus(t, err, 401)

	_, err = session.Assurance(t.Context(), "")
	assertAPIStatus(t, err, 401)
}
