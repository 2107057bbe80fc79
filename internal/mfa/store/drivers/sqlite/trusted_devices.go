package sqlite

import (
	"context"
	"time"

	"github.com/casefolio/stepup/internal/mfa/domain"
)

type trustedDevicesRepo struct {
	q queryer
}

// UpsertTrustedDevice refreshes the expiry of an existing trust entry for the
// same fingerprint instead of stacking duplicates. The returned device always
// reflects the row as stored.
func (r *trustedDevicesRepo) UpsertTrustedDevice(ctx context.Context, dev domain.TrustedDevice) (domain.TrustedDevice, error) {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO trusted_devices (id, user_id, fingerprint_hash, display_name, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, fingerprint_hash) DO UPDATE
		 SET display_name = excluded.display_name, expires_at = excluded.expires_at`,
		dev.ID, dev.UserID, dev.FingerprintHash, dev.DisplayName,
		dev.CreatedAt.UTC(), dev.ExpiresAt.UTC(),
	)
	if err != nil {
		return domain.TrustedDevice{}, err
	}

	row := r.q.QueryRowContext(ctx,
		`SELECT id, user_id, fingerprint_hash, display_name, created_at, expires_at
		 FROM trusted_devices WHERE user_id = ? AND fingerprint_hash = ?`,
		dev.UserID, dev.FingerprintHash,
	)
	return scanTrustedDevice(row)
}

func (r *trustedDevicesRepo) GetActiveTrustedDevice(ctx context.Context, userID, fingerprintHash string, now time.Time) (domain.TrustedDevice, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, user_id, fingerprint_hash, display_name, created_at, expires_at
		 FROM trusted_devices WHERE user_id = ? AND fingerprint_hash = ? AND expires_at > ?`,
		userID, fingerprintHash, now.UTC(),
	)
	dev, err := scanTrustedDevice(row)
	if err != nil {
		return domain.TrustedDevice{}, mapNotFound(err)
	}
	return dev, nil
}

func (r *trustedDevicesRepo) ListTrustedDevices(ctx context.Context, userID string, now time.Time) ([]domain.TrustedDevice, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, user_id, fingerprint_hash, display_name, created_at, expires_at
		 FROM trusted_devices WHERE user_id = ? AND expires_at > ? ORDER BY created_at DESC`,
		userID, now.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []domain.TrustedDevice
	for rows.Next() {
		dev, err := scanTrustedDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, dev)
	}
	return devices, rows.Err()
}

func (r *trustedDevicesRepo) DeleteTrustedDevice(ctx context.Context, userID, deviceID string) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM trusted_devices WHERE user_id = ? AND id = ?`,
		userID, deviceID,
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

func (r *trustedDevicesRepo) DeleteAllTrustedDevices(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM trusted_devices WHERE user_id = ?`, userID)
	return err
}

func (r *trustedDevicesRepo) CountActiveTrustedDevices(ctx context.Context, userID string, now time.Time) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM trusted_devices WHERE user_id = ? AND expires_at > ?`,
		userID, now.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *trustedDevicesRepo) DeleteExpiredTrustedDevices(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM trusted_devices WHERE expires_at <= ?`, now.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanTrustedDevice(row rowScanner) (domain.TrustedDevice, error) {
	var dev domain.TrustedDevice
	err := row.Scan(&dev.ID, &dev.UserID, &dev.FingerprintHash, &dev.DisplayName, &dev.CreatedAt, &dev.ExpiresAt)
	if err != nil {
		return domain.TrustedDevice{}, err
	}
	dev.CreatedAt = dev.CreatedAt.UTC()
	dev.ExpiresAt = dev.ExpiresAt.UTC()
	return dev, nil
}
