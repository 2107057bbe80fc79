package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/casefolio/stepup/internal/mfa/domain"
	"github.com/casefolio/stepup/internal/mfa/store/drivers/sqlite"
	"github.com/casefolio/stepup/pkg/cryptox"
	"github.com/casefolio/stepup/pkg/jwtx"
	"github.com/casefolio/stepup/pkg/otpx"

	"github.com/stretchr/testify/require"
)

// captureSender records the last code handed to it so tests can submit it
// back.
type captureSender struct {
	mu       sync.Mutex
	lastCode string
	lastDest string
	sends    int
}

func (s *captureSender) Send(ctx context.Context, channel domain.Channel, destination, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCode = code
	s.lastDest = destination
	s.sends++
	return nil
}

func (s *captureSender) code() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCode
}

type testEnv struct {
	Store   *sqlite.Store
	Engine  *Engine
	Sender  *captureSender
	Devices *DeviceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("test-marker", pemKey)
	require.NoError(t, err)

	sender := &captureSender{}
	devices := &DeviceService{Store: st, TrustTTL: 30 * 24 * time.Hour}

	engine := &Engine{
		Store: st,
		Challenges: &ChallengeService{
			Store:  st,
			Sender: sender,
		},
		Devices:   devices,
		Grace:     GracePolicy{Window: 14 * 24 * time.Hour},
		Marker:    signer,
		MarkerTTL: time.Hour,
		Issuer:    "casefolio-stepup",
		Authz:     ScopeAuthorizer{},
		Audit:     &SlogAuditRecorder{},
	}

	return &testEnv{Store: st, Engine: engine, Sender: sender, Devices: devices}
}

// enrollAndConfirm walks a user through a full TOTP enrollment and returns
// the enrollment material.
func enrollAndConfirm(t *testing.T, env *testEnv, userID string) domain.EnrollmentMaterial {
	t.Helper()
	ctx := context.Background()

	material, err := env.Engine.EnrollTOTP(ctx, userID, userID+"@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, material.Secret)
	require.Len(t, material.BackupCodes, backupCodeCount)

	code := totpCode(t, material.Secret)
	require.NoError(t, env.Engine.ConfirmTOTP(ctx, userID, code))
	return material
}

func totpCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := otpx.Code(secret, time.Now())
	require.NoError(t, err)
	return code
}
