package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/casefolio/stepup/internal/mfa/domain"
	"github.com/casefolio/stepup/internal/mfa/store"
)

type profilesRepo struct {
	q queryer
}

const profileColumns = `user_id, enabled_at, totp_secret, sms_enabled, sms_destination, email_enabled, email_address, created_at, updated_at`

func (r *profilesRepo) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM mfa_profiles WHERE user_id = ?`, userID)
	return scanProfile(row)
}

func (r *profilesRepo) EnsureProfile(ctx context.Context, userID string) (domain.Profile, error) {
	p, err := r.GetProfile(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Profile{}, err
	}

	now := time.Now().UTC()
	// INSERT OR IGNORE handles the race where two requests ensure the same
	// user at once; the second insert is a no-op and the re-read wins.
	if _, err := r.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO mfa_profiles (user_id, created_at, updated_at) VALUES (?, ?, ?)`,
		userID, now, now,
	); err != nil {
		return domain.Profile{}, err
	}

	return r.GetProfile(ctx, userID)
}

func (r *profilesRepo) UpdateTOTPSecret(ctx context.Context, userID string, ciphertext []byte) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE mfa_profiles SET totp_secret = ?, updated_at = ? WHERE user_id = ?`,
		ciphertext, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *profilesRepo) EnableTOTP(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx,
		`UPDATE mfa_profiles SET enabled_at = ?, updated_at = ? WHERE user_id = ? AND totp_secret IS NOT NULL`,
		now, now, userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *profilesRepo) DisableMFA(ctx context.Context, userID string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE mfa_profiles
		 SET enabled_at = NULL, totp_secret = NULL,
		     sms_enabled = 0, sms_destination = '',
		     email_enabled = 0, email_address = '',
		     updated_at = ?
		 WHERE user_id = ?`,
		time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *profilesRepo) UpdateChannels(ctx context.Context, userID string, sms bool, smsDest string, email bool, emailAddr string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE mfa_profiles
		 SET sms_enabled = ?, sms_destination = ?, email_enabled = ?, email_address = ?, updated_at = ?
		 WHERE user_id = ?`,
		sms, smsDest, email, emailAddr, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanProfile(row *sql.Row) (domain.Profile, error) {
	var (
		p         domain.Profile
		enabledAt sql.NullTime
		secret    []byte
	)
	err := row.Scan(
		&p.UserID, &enabledAt, &secret,
		&p.SMSEnabled, &p.SMSDestination,
		&p.EmailEnabled, &p.EmailAddress,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}

	p.EnabledAt = mapNullTimePtr(enabledAt)
	p.TOTPSecretCiphertext = secret
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

// requireRow maps "no rows changed" onto ErrNotFound so callers can tell a
// missing profile apart from a storage failure.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
