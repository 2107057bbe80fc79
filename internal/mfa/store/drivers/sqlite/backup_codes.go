package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/casefolio/stepup/internal/mfa/domain"
)

type backupCodesRepo struct {
	q queryer
}

func (r *backupCodesRepo) CreateBackupCode(ctx context.Context, code domain.BackupCode) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO backup_codes (id, user_id, code_hash, used, created_at) VALUES (?, ?, ?, 0, ?)`,
		code.ID, code.UserID, code.CodeHash, code.CreatedAt.UTC(),
	)
	return err
}

func (r *backupCodesRepo) ListUnusedBackupCodes(ctx context.Context, userID string) ([]domain.BackupCode, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, user_id, code_hash, used, used_at, created_at
		 FROM backup_codes WHERE user_id = ? AND used = 0 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []domain.BackupCode
	for rows.Next() {
		c, err := scanBackupCode(rows)
		if err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// ConsumeBackupCode is the at-most-once consumption guard: the used=0
// predicate makes concurrent submissions of the same code race on a single
// row update, and only one wins.
func (r *backupCodesRepo) ConsumeBackupCode(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE backup_codes SET used = 1, used_at = ? WHERE id = ? AND used = 0`,
		at.UTC(), id,
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

func (r *backupCodesRepo) DeleteAllBackupCodes(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM backup_codes WHERE user_id = ?`, userID)
	return err
}

func (r *backupCodesRepo) CountUnusedBackupCodes(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM backup_codes WHERE user_id = ? AND used = 0`, userID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBackupCode(row rowScanner) (domain.BackupCode, error) {
	var (
		c      domain.BackupCode
		usedAt sql.NullTime
	)
	err := row.Scan(&c.ID, &c.UserID, &c.CodeHash, &c.Used, &usedAt, &c.CreatedAt)
	if err != nil {
		return domain.BackupCode{}, err
	}
	c.UsedAt = mapNullTimePtr(usedAt)
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}
