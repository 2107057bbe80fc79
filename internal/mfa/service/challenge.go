package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/casefolio/stepup/internal/mfa/domain"
	"github.com/casefolio/stepup/internal/mfa/store"
	"github.com/casefolio/stepup/pkg/cryptox"
)

const (
	defaultChallengeTTL      = 5 * time.Minute
	defaultChallengeAttempts = 5
	challengeCodeDigits      = 6
)

// ChallengeService owns short-lived SMS/email verification attempts. Per
// (user, channel) the lifecycle is: none, issued, then consumed, expired or
// exhausted. Issuing again at any point replaces whatever was there.
type ChallengeService struct {
	Store  store.Store
	Sender CodeSender
	Logger *slog.Logger

	// TTL and MaxAttempts default to 5 minutes / 5 attempts when zero.
	TTL         time.Duration
	MaxAttempts int
}

// Issue generates a fresh code for the channel, stores its hash and hands
// the plaintext to the sender. Any prior outstanding code for the channel
// becomes unusable immediately, so an attacker can never race two live
// codes.
func (s *ChallengeService) Issue(ctx context.Context, userID string, channel domain.Channel) error {
	profile, err := s.Store.Profiles().GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotEnrolled
		}
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if !profile.TOTPConfirmed() {
		return ErrNotEnrolled
	}
	if !profile.ChannelUsable(channel) {
		return ErrChannelUnavailable
	}

	code, err := cryptox.GenerateNumericCode(challengeCodeDigits)
	if err != nil {
		return fmt.Errorf("failed to generate challenge code: %w", err)
	}
	hash, err := cryptox.HashCode(code)
	if err != nil {
		return fmt.Errorf("failed to hash challenge code: %w", err)
	}

	now := time.Now().UTC()
	err = s.Store.Challenges().ReplaceChallenge(ctx, domain.Challenge{
		UserID:            userID,
		Channel:           channel,
		CodeHash:          hash,
		IssuedAt:          now,
		ExpiresAt:         now.Add(s.ttl()),
		AttemptsRemaining: s.maxAttempts(),
	})
	if err != nil {
		return fmt.Errorf("failed to store challenge: %w", err)
	}

	// The challenge is issued once stored. Delivery failures are logged,
	// not surfaced; the user can always request a new code.
	if err := s.Sender.Send(ctx, channel, profile.Destination(channel), code); err != nil {
		s.logger().ErrorContext(ctx, "challenge delivery failed",
			"channel", string(channel), "error", err)
	}

	return nil
}

// Verify checks a submitted code against the active challenge. Each failure
// reason is distinct: no challenge, expired, exhausted, or a plain mismatch.
// A mismatch burns one attempt; the attempt that hits zero reports
// exhaustion straight away.
func (s *ChallengeService) Verify(ctx context.Context, userID string, channel domain.Channel, submitted string) error {
	if !wellFormedChallengeCode(submitted) {
		return ErrValidation
	}

	ch, err := s.Store.Challenges().GetChallenge(ctx, userID, channel)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoActiveChallenge
		}
		return fmt.Errorf("failed to load challenge: %w", err)
	}

	now := time.Now().UTC()
	switch {
	case ch.Consumed:
		return ErrNoActiveChallenge
	case ch.Expired(now):
		return ErrChallengeExpired
	case ch.Exhausted():
		return ErrChallengeExhausted
	}

	if err := cryptox.VerifyCode(submitted, ch.CodeHash); err != nil {
		if !errors.Is(err, cryptox.ErrCodeMismatch) {
			return fmt.Errorf("failed to compare challenge code: %w", err)
		}

		remaining, derr := s.Store.Challenges().DecrementAttempts(ctx, userID, channel, ch.CodeHash)
		if derr != nil {
			if errors.Is(derr, store.ErrNotFound) {
				// Replaced or consumed since we read it.
				return ErrNoActiveChallenge
			}
			return fmt.Errorf("failed to decrement challenge attempts: %w", derr)
		}
		if remaining == 0 {
			return ErrChallengeExhausted
		}
		return ErrInvalidCode
	}

	ok, err := s.Store.Challenges().ConsumeChallenge(ctx, userID, channel, ch.CodeHash)
	if err != nil {
		return fmt.Errorf("failed to consume challenge: %w", err)
	}
	if !ok {
		// A parallel request got there first; single use holds.
		return ErrNoActiveChallenge
	}
	return nil
}

func (s *ChallengeService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return defaultChallengeTTL
}

func (s *ChallengeService) maxAttempts() int {
	if s.MaxAttempts > 0 {
		return s.MaxAttempts
	}
	return defaultChallengeAttempts
}

func (s *ChallengeService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// wellFormedChallengeCode rejects obviously malformed input before any
// lookup or hashing happens.
func wellFormedChallengeCode(code string) bool {
	if len(code) != challengeCodeDigits {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
