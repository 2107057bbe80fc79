package service

import (
	"context"
	"testing"
	"time"

	"github.com/casefolio/stepup/internal/mfa/domain"
	"github.com/casefolio/stepup/pkg/cryptox"
	"github.com/casefolio/stepup/pkg/idx"

	"github.com/stretchr/testify/require"
)

// setupChallengeUser enrolls a user and configures the SMS channel so
// challenges can be issued.
func setupChallengeUser(t *testing.T, env *testEnv) string {
	t.Helper()
	ctx := context.Background()

	userID := idx.New().String()
	enrollAndConfirm(t, env, userID)
	require.NoError(t, env.Engine.ConfigureChannels(ctx, userID, true, "+61400000000", false, ""))
	return userID
}

func TestChallengeIssueAndVerify(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	userID := setupChallengeUser(t, env)

	require.NoError(t, env.Engine.Challenges.Issue(ctx, userID, domain.ChannelSMS))
	code := env.Sender.code()
	require.Len(t, code, 6)

	require.NoError(t, env.Engine.Challenges.Verify(ctx, userID, domain.ChannelSMS, code))

	// Consumed: the same code must not verify again.
	err := env.Engine.Challenges.Verify(ctx, userID, domain.ChannelSMS, code)
	require.ErrorIs(t, err, ErrNoActiveChallenge)
}

func TestChallengeRequiresConfiguredChannel(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	userID := setupChallengeUser(t, env)

	err := env.Engine.Challenges.Issue(ctx, userID, domain.ChannelEmail)
	require.ErrorIs(t, err, ErrChannelUnavailable)
}

func TestChallengeRequiresEnrollment(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	err := env.Engine.Challenges.Issue(ctx, idx.New().String(), domain.ChannelSMS)
	require.ErrorIs(t, err, ErrNotEnrolled)
}

func TestChallengeNoActive(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	userID := setupChallengeUser(t, env)

	err := env.Engine.Challenges.Verify(ctx, userID, domain.ChannelSMS, "123456")
	require.ErrorIs(t, err, ErrNoActiveChallenge)
}

func TestChallengeMalformedCodeRejectedEarly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	userID := setupChallengeUser(t, env)

	for _, bad := range []string{"", "12345", "1234567", "12345a", "abcdef"} {
		err := env.Engine.Challenges.Verify(ctx, userID, domain.ChannelSMS, bad)
		require.ErrorIs(t, err, ErrValidation, "code %q", bad)
	}
}

func TestChallengeReissueInvalidatesPrevious(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	userID := setupChallengeUser(t, env)

	require.NoError(t, env.Engine.Challenges.Issue(ctx, userID, domain.ChannelSMS))
	oldCode := env.Sender.code()

	require.NoError(t, env.Engine.Challenges.Issue(ctx, userID, domain.ChannelSMS))
	newCode := env.Sender.code()

	if oldCode != newCode {
		err := env.Engine.Challenges.Verify(ctx, userID, domain.ChannelSMS, oldCode)
		require.Error(t, err, "the replaced code must not verify")
	}

	require.NoError(t, env.Engine.Challenges.Verify(ctx, userID, domain.ChannelSMS, newCode))
}

func TestChallengeAttemptExhaustion(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	userID := setupChallengeUser(t, env)

	require.NoError(t, env.Engine.Challenges.Issue(ctx, userID, domain.ChannelSMS))
	realCode := env.Sender.code()

	wrong := "000000"
	if wrong == realCode {
		wrong = "000001"
	}

	// Four wrong guesses burn the budget down to one.
	for i := 0; i < 4; i++ {
		err := env.Engine.Challenges.Verify(ctx, userID, domain.ChannelSMS, wrong)
		require.ErrorIs(t, err, ErrInvalidCode, "guess %d", i+1)
	}

	// The fifth failure reports exhaustion.
	err := env.Engine.Challenges.Verify(ctx, userID, domain.ChannelSMS, wrong)
	require.ErrorIs(t, err, ErrChallengeExhausted)

	// Even the true code is dead now.
	err = env.Engine.Challenges.Verify(ctx, userID, domain.ChannelSMS, realCode)
	require.ErrorIs(t, err, ErrChallengeExhausted)
}

func TestChallengeExpiry(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	userID := setupChallengeUser(t, env)

	// Plant an already-expired challenge with a known code and a full
	// attempt budget.
	code := "123456"
	hash, err := cryptox.HashCode(code)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, env.Store.Challenges().ReplaceChallenge(ctx, domain.Challenge{
		UserID:            userID,
		Channel:           domain.ChannelSMS,
		CodeHash:          hash,
		IssuedAt:          now.Add(-10 * time.Minute),
		ExpiresAt:         now.Add(-5 * time.Minute),
		AttemptsRemaining: 5,
	}))

	// Correct code, attempts left, but past expiry.
	err = env.Engine.Challenges.Verify(ctx, userID, domain.ChannelSMS, code)
	require.ErrorIs(t, err, ErrChallengeExpired)
}
