package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/casefolio/stepup/internal/mfa/domain"
	"github.com/casefolio/stepup/internal/mfa/store"
	"github.com/casefolio/stepup/pkg/idx"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestProfileLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	userID := idx.New().String()

	_, err := s.Profiles().GetProfile(ctx, userID)
	require.ErrorIs(t, err, store.ErrNotFound)

	p, err := s.Profiles().EnsureProfile(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, userID, p.UserID)
	require.Nil(t, p.EnabledAt)
	require.False(t, p.TOTPConfirmed())

	// Ensure is idempotent and keeps the original created_at.
	p2, err := s.Profiles().EnsureProfile(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, p.CreatedAt, p2.CreatedAt)

	// Enabling without a stored secret must fail.
	err = s.Profiles().EnableTOTP(ctx, userID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Profiles().UpdateTOTPSecret(ctx, userID, []byte("ciphertext")))
	require.NoError(t, s.Profiles().EnableTOTP(ctx, userID))

	p, err = s.Profiles().GetProfile(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, p.EnabledAt)
	require.Equal(t, []byte("ciphertext"), p.TOTPSecretCiphertext)

	require.NoError(t, s.Profiles().UpdateChannels(ctx, userID, true, "+61400000000", true, "alice@example.com"))
	p, err = s.Profiles().GetProfile(ctx, userID)
	require.NoError(t, err)
	require.True(t, p.SMSEnabled)
	require.Equal(t, "+61400000000", p.SMSDestination)
	require.True(t, p.EmailEnabled)

	require.NoError(t, s.Profiles().DisableMFA(ctx, userID))
	p, err = s.Profiles().GetProfile(ctx, userID)
	require.NoError(t, err)
	require.Nil(t, p.EnabledAt)
	require.Nil(t, p.TOTPSecretCiphertext)
	require.False(t, p.SMSEnabled)
	require.False(t, p.EmailEnabled)
}

func TestBackupCodeSingleUse(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	userID := idx.New().String()
	_, err := s.Profiles().EnsureProfile(ctx, userID)
	require.NoError(t, err)

	code := domain.BackupCode{
		ID:        idx.New().String(),
		UserID:    userID,
		CodeHash:  "$argon2id$fake",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.BackupCodes().CreateBackupCode(ctx, code))

	unused, err := s.BackupCodes().ListUnusedBackupCodes(ctx, userID)
	require.NoError(t, err)
	require.Len(t, unused, 1)

	ok, err := s.BackupCodes().ConsumeBackupCode(ctx, code.ID, time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	// Second consumption of the same code must lose.
	ok, err = s.BackupCodes().ConsumeBackupCode(ctx, code.ID, time.Now())
	require.NoError(t, err)
	require.False(t, ok)

	count, err := s.BackupCodes().CountUnusedBackupCodes(ctx, userID)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestTrustedDeviceUpsertRefreshesExpiry(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	userID := idx.New().String()
	_, err := s.Profiles().EnsureProfile(ctx, userID)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	first := domain.TrustedDevice{
		ID:              idx.New().String(),
		UserID:          userID,
		FingerprintHash: "fp-hash-1",
		DisplayName:     "Work laptop",
		CreatedAt:       now,
		ExpiresAt:       now.Add(24 * time.Hour),
	}
	stored, err := s.TrustedDevices().UpsertTrustedDevice(ctx, first)
	require.NoError(t, err)
	require.Equal(t, first.ID, stored.ID)

	// Same fingerprint again: no duplicate row, expiry extended.
	second := first
	second.ID = idx.New().String()
	second.ExpiresAt = now.Add(72 * time.Hour)
	stored, err = s.TrustedDevices().UpsertTrustedDevice(ctx, second)
	require.NoError(t, err)
	require.Equal(t, first.ID, stored.ID, "existing row keeps its identity")
	require.Equal(t, second.ExpiresAt, stored.ExpiresAt)

	count, err := s.TrustedDevices().CountActiveTrustedDevices(ctx, userID, now)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestTrustedDeviceExpiry(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	userID := idx.New().String()
	_, err := s.Profiles().EnsureProfile(ctx, userID)
	require.NoError(t, err)

	now := time.Now().UTC()
	dev := domain.TrustedDevice{
		ID:              idx.New().String(),
		UserID:          userID,
		FingerprintHash: "fp-hash-2",
		CreatedAt:       now.Add(-48 * time.Hour),
		ExpiresAt:       now.Add(-time.Hour),
	}
	_, err = s.TrustedDevices().UpsertTrustedDevice(ctx, dev)
	require.NoError(t, err)

	_, err = s.TrustedDevices().GetActiveTrustedDevice(ctx, userID, dev.FingerprintHash, now)
	require.ErrorIs(t, err, store.ErrNotFound)

	devices, err := s.TrustedDevices().ListTrustedDevices(ctx, userID, now)
	require.NoError(t, err)
	require.Empty(t, devices)

	removed, err := s.TrustedDevices().DeleteExpiredTrustedDevices(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)
}

func TestDeleteTrustedDeviceScopedToOwner(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	owner := idx.New().String()
	other := idx.New().String()
	for _, id := range []string{owner, other} {
		_, err := s.Profiles().EnsureProfile(ctx, id)
		require.NoError(t, err)
	}

	now := time.Now().UTC()
	dev := domain.TrustedDevice{
		ID:              idx.New().String(),
		UserID:          owner,
		FingerprintHash: "fp-hash-3",
		CreatedAt:       now,
		ExpiresAt:       now.Add(time.Hour),
	}
	_, err := s.TrustedDevices().UpsertTrustedDevice(ctx, dev)
	require.NoError(t, err)

	ok, err := s.TrustedDevices().DeleteTrustedDevice(ctx, other, dev.ID)
	require.NoError(t, err)
	require.False(t, ok, "another user must not revoke the device")

	ok, err = s.TrustedDevices().DeleteTrustedDevice(ctx, owner, dev.ID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestChallengeReplaceAndAttempts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	userID := idx.New().String()
	_, err := s.Profiles().EnsureProfile(ctx, userID)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	ch := domain.Challenge{
		UserID:            userID,
		Channel:           domain.ChannelSMS,
		CodeHash:          "hash-a",
		IssuedAt:          now,
		ExpiresAt:         now.Add(5 * time.Minute),
		AttemptsRemaining: 3,
	}
	require.NoError(t, s.Challenges().ReplaceChallenge(ctx, ch))

	// Reissue replaces the previous code entirely.
	ch2 := ch
	ch2.CodeHash = "hash-b"
	require.NoError(t, s.Challenges().ReplaceChallenge(ctx, ch2))

	got, err := s.Challenges().GetChallenge(ctx, userID, domain.ChannelSMS)
	require.NoError(t, err)
	require.Equal(t, "hash-b", got.CodeHash)
	require.Equal(t, 3, got.AttemptsRemaining)

	// The replaced code's hash no longer matches anything.
	_, err = s.Challenges().DecrementAttempts(ctx, userID, domain.ChannelSMS, "hash-a")
	require.ErrorIs(t, err, store.ErrNotFound)

	remaining, err := s.Challenges().DecrementAttempts(ctx, userID, domain.ChannelSMS, "hash-b")
	require.NoError(t, err)
	require.Equal(t, 2, remaining)

	remaining, err = s.Challenges().DecrementAttempts(ctx, userID, domain.ChannelSMS, "hash-b")
	require.NoError(t, err)
	require.Equal(t, 1, remaining)

	remaining, err = s.Challenges().DecrementAttempts(ctx, userID, domain.ChannelSMS, "hash-b")
	require.NoError(t, err)
	require.Zero(t, remaining)

	// Exhausted: further decrements refuse.
	_, err = s.Challenges().DecrementAttempts(ctx, userID, domain.ChannelSMS, "hash-b")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestChallengeConsumeOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	userID := idx.New().String()
	_, err := s.Profiles().EnsureProfile(ctx, userID)
	require.NoError(t, err)

	now := time.Now().UTC()
	ch := domain.Challenge{
		UserID:            userID,
		Channel:           domain.ChannelEmail,
		CodeHash:          "hash-c",
		IssuedAt:          now,
		ExpiresAt:         now.Add(5 * time.Minute),
		AttemptsRemaining: 3,
	}
	require.NoError(t, s.Challenges().ReplaceChallenge(ctx, ch))

	ok, err := s.Challenges().ConsumeChallenge(ctx, userID, domain.ChannelEmail, "hash-c")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Challenges().ConsumeChallenge(ctx, userID, domain.ChannelEmail, "hash-c")
	require.NoError(t, err)
	require.False(t, ok, "a consumed challenge must not verify twice")

	// Consumed rows are swept by housekeeping.
	removed, err := s.Challenges().DeleteExpiredChallenges(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)
}

func TestChallengeConsumeRefusedWhenExhausted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	userID := idx.New().String()
	_, err := s.Profiles().EnsureProfile(ctx, userID)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, s.Challenges().ReplaceChallenge(ctx, domain.Challenge{
		UserID:            userID,
		Channel:           domain.ChannelSMS,
		CodeHash:          "hash-d",
		IssuedAt:          now,
		ExpiresAt:         now.Add(5 * time.Minute),
		AttemptsRemaining: 1,
	}))

	remaining, err := s.Challenges().DecrementAttempts(ctx, userID, domain.ChannelSMS, "hash-d")
	require.NoError(t, err)
	require.Zero(t, remaining)

	// A correct-code consume that raced with the exhausting guess must not
	// revive the challenge.
	ok, err := s.Challenges().ConsumeChallenge(ctx, userID, domain.ChannelSMS, "hash-d")
	require.NoError(t, err)
	require.False(t, ok, "an exhausted challenge must not consume")
}

func TestChallengesIndependentPerChannel(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	userID := idx.New().String()
	_, err := s.Profiles().EnsureProfile(ctx, userID)
	require.NoError(t, err)

	now := time.Now().UTC()
	for _, channel := range []domain.Channel{domain.ChannelSMS, domain.ChannelEmail} {
		require.NoError(t, s.Challenges().ReplaceChallenge(ctx, domain.Challenge{
			UserID:            userID,
			Channel:           channel,
			CodeHash:          "hash-" + string(channel),
			IssuedAt:          now,
			ExpiresAt:         now.Add(5 * time.Minute),
			AttemptsRemaining: 3,
		}))
	}

	ok, err := s.Challenges().ConsumeChallenge(ctx, userID, domain.ChannelSMS, "hash-sms")
	require.NoError(t, err)
	require.True(t, ok)

	// The email challenge is untouched.
	got, err := s.Challenges().GetChallenge(ctx, userID, domain.ChannelEmail)
	require.NoError(t, err)
	require.False(t, got.Consumed)
}

func TestForeignKeysEnforcedOnEveryConnection(t *testing.T) {
	ctx := context.Background()

	s, err := NewStore(filepath.Join(t.TempDir(), "mfa.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	// Hold two pooled connections at once so the second is freshly opened;
	// the pragma must be active on both.
	c1, err := s.db.Conn(ctx)
	require.NoError(t, err)
	defer c1.Close()
	c2, err := s.db.Conn(ctx)
	require.NoError(t, err)
	defer c2.Close()

	for _, c := range []*sql.Conn{c1, c2} {
		var fk int
		require.NoError(t, c.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk))
		require.Equal(t, 1, fk)
	}

	// Deleting a profile cascades to its children.
	userID := idx.New().String()
	_, err = s.Profiles().EnsureProfile(ctx, userID)
	require.NoError(t, err)
	require.NoError(t, s.BackupCodes().CreateBackupCode(ctx, domain.BackupCode{
		ID:        idx.New().String(),
		UserID:    userID,
		CodeHash:  "hash",
		CreatedAt: time.Now().UTC(),
	}))

	_, err = s.db.ExecContext(ctx, `DELETE FROM mfa_profiles WHERE user_id = ?`, userID)
	require.NoError(t, err)

	count, err := s.BackupCodes().CountUnusedBackupCodes(ctx, userID)
	require.NoError(t, err)
	require.Zero(t, count, "cascade must remove the orphaned codes")
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	userID := idx.New().String()
	_, err := s.Profiles().EnsureProfile(ctx, userID)
	require.NoError(t, err)

	wantErr := context.Canceled
	err = s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.BackupCodes().CreateBackupCode(ctx, domain.BackupCode{
			ID:        idx.New().String(),
			UserID:    userID,
			CodeHash:  "hash",
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	count, err := s.BackupCodes().CountUnusedBackupCodes(ctx, userID)
	require.NoError(t, err)
	require.Zero(t, count, "rolled back insert must not persist")
}
