package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/casefolio/stepup/internal/mfa/domain"
	"github.com/casefolio/stepup/pkg/idx"

	"github.com/stretchr/testify/require"
)

// TestBackupCodeConcurrentUseSingleSuccess submits the same backup code from
// many goroutines at once. The conditional mark-used update must let exactly
// one of them through; every loser sees the code as already spent.
func TestBackupCodeConcurrentUseSingleSuccess(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	userID := idx.New().String()
	material := enrollAndConfirm(t, env, userID)

	code := material.BackupCodes[0]

	const parallel = 8
	var wg sync.WaitGroup
	results := make(chan error, parallel)
	for i := 0; i < parallel; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.Engine.Verify(ctx, VerifyInput{
				UserID: userID, SessionID: "s1", FingerprintHash: "fp",
				Method: MethodBackupCode, Code: code,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrInvalidCode):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, successes, "exactly one submission may consume the code")

	status, err := env.Engine.Status(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, backupCodeCount-1, status.UnusedBackupCodes)
}

// TestChallengeConcurrentGuessesCannotOutrunBudget fires far more parallel
// wrong guesses than the attempt budget allows. The atomic decrement must
// keep them from racing past the cap, and once the budget is spent even the
// true code stays dead.
func TestChallengeConcurrentGuessesCannotOutrunBudget(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	userID := setupChallengeUser(t, env)

	env.Engine.Challenges.MaxAttempts = 3
	require.NoError(t, env.Engine.Challenges.Issue(ctx, userID, domain.ChannelSMS))
	realCode := env.Sender.code()

	wrong := "000000"
	if wrong == realCode {
		wrong = "000001"
	}

	const parallel = 12
	var wg sync.WaitGroup
	results := make(chan error, parallel)
	for i := 0; i < parallel; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- env.Engine.Challenges.Verify(ctx, userID, domain.ChannelSMS, wrong)
		}()
	}
	wg.Wait()
	close(results)

	// Every guess fails, and at most MaxAttempts-1 of them can report a
	// plain mismatch: each mismatch burns one attempt and the attempt that
	// hits zero reports exhaustion instead.
	mismatches := 0
	for err := range results {
		switch {
		case errors.Is(err, ErrInvalidCode):
			mismatches++
		case errors.Is(err, ErrChallengeExhausted):
		case errors.Is(err, ErrNoActiveChallenge):
			// Read the row before exhaustion, decremented after.
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.LessOrEqual(t, mismatches, env.Engine.Challenges.MaxAttempts-1)

	// The budget is spent; the true code must not slip through.
	err := env.Engine.Challenges.Verify(ctx, userID, domain.ChannelSMS, realCode)
	require.ErrorIs(t, err, ErrChallengeExhausted)
}
