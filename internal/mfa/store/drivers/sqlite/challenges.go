package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/casefolio/stepup/internal/mfa/domain"
	"github.com/casefolio/stepup/internal/mfa/store"
)

type challengesRepo struct {
	q queryer
}

// ReplaceChallenge overwrites any pending challenge for the (user, channel)
// pair. The primary key on those two columns keeps at most one live
// challenge per channel.
func (r *challengesRepo) ReplaceChallenge(ctx context.Context, ch domain.Challenge) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT OR REPLACE INTO challenges
		 (user_id, channel, code_hash, issued_at, expires_at, attempts_remaining, consumed)
		 VALUES (?, ?, ?, ?, ?, ?, 0)`,
		ch.UserID, string(ch.Channel), ch.CodeHash,
		ch.IssuedAt.UTC(), ch.ExpiresAt.UTC(), ch.AttemptsRemaining,
	)
	return err
}

func (r *challengesRepo) GetChallenge(ctx context.Context, userID string, channel domain.Channel) (domain.Challenge, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT user_id, channel, code_hash, issued_at, expires_at, attempts_remaining, consumed
		 FROM challenges WHERE user_id = ? AND channel = ?`,
		userID, string(channel),
	)
	ch, err := scanChallenge(row)
	if err != nil {
		return domain.Challenge{}, mapNotFound(err)
	}
	return ch, nil
}

// DecrementAttempts burns one attempt on a live challenge and reports how
// many remain. The guard clauses make concurrent wrong guesses each cost a
// distinct attempt rather than racing past the cap, and the code_hash guard
// keeps a decrement from landing on a challenge that was replaced mid-flight.
func (r *challengesRepo) DecrementAttempts(ctx context.Context, userID string, channel domain.Channel, codeHash string) (int, error) {
	row := r.q.QueryRowContext(ctx,
		`UPDATE challenges SET attempts_remaining = attempts_remaining - 1
		 WHERE user_id = ? AND channel = ? AND code_hash = ?
		   AND consumed = 0 AND attempts_remaining > 0
		 RETURNING attempts_remaining`,
		userID, string(channel), codeHash,
	)
	var remaining int
	if err := row.Scan(&remaining); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, store.ErrNotFound
		}
		return 0, err
	}
	return remaining, nil
}

// ConsumeChallenge marks a live challenge as used. It only succeeds when the
// stored hash matches, the challenge has not already been consumed, and the
// attempt budget is not spent, so a replayed code loses the race and a
// correct guess that interleaves with an exhausting wrong one cannot revive
// a dead challenge.
func (r *challengesRepo) ConsumeChallenge(ctx context.Context, userID string, channel domain.Channel, codeHash string) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE challenges SET consumed = 1
		 WHERE user_id = ? AND channel = ? AND code_hash = ?
		   AND consumed = 0 AND attempts_remaining > 0`,
		userID, string(channel), codeHash,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *challengesRepo) DeleteChallenges(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM challenges WHERE user_id = ?`, userID)
	return err
}

func (r *challengesRepo) DeleteExpiredChallenges(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM challenges WHERE expires_at <= ? OR consumed = 1`, now.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanChallenge(row rowScanner) (domain.Challenge, error) {
	var (
		ch      domain.Challenge
		channel string
	)
	err := row.Scan(&ch.UserID, &channel, &ch.CodeHash, &ch.IssuedAt, &ch.ExpiresAt, &ch.AttemptsRemaining, &ch.Consumed)
	if err != nil {
		return domain.Challenge{}, err
	}
	ch.Channel = domain.Channel(channel)
	ch.IssuedAt = ch.IssuedAt.UTC()
	ch.ExpiresAt = ch.ExpiresAt.UTC()
	return ch, nil
}
