package store

import (
	"context"
	"errors"
	"time"

	"github.com/casefolio/stepup/internal/mfa/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. Sub-repositories keep concerns tidy and make transaction
// scoping explicit.
type Store interface {
	Profiles() Profiles
	BackupCodes() BackupCodes
	TrustedDevices() TrustedDevices
	Challenges() Challenges

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction: rollback on error, commit on
	// nil. The recommended way to run multi-step atomic operations such as
	// backup-code batch replacement.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Profiles interface {
	// GetProfile returns the MFA profile for a user, ErrNotFound if the
	// service has never seen them.
	GetProfile(ctx context.Context, userID string) (domain.Profile, error)

	// EnsureProfile returns the profile for a user, creating an empty one
	// (created_at = now) if none exists. The creation time anchors the
	// grace-period clock.
	EnsureProfile(ctx context.Context, userID string) (domain.Profile, error)

	// UpdateTOTPSecret stores the encrypted TOTP secret without enabling
	// MFA; the pending secret becomes active on EnableTOTP.
	UpdateTOTPSecret(ctx context.Context, userID string, ciphertext []byte) error

	// EnableTOTP marks MFA enabled (sets enabled_at) for a user with a
	// pending secret.
	EnableTOTP(ctx context.Context, userID string) error

	// DisableMFA clears enabled_at, the secret and both channel flags.
	DisableMFA(ctx context.Context, userID string) error

	// UpdateChannels sets the SMS/email challenge channel configuration.
	UpdateChannels(ctx context.Context, userID string, sms bool, smsDest string, email bool, emailAddr string) error
}

type BackupCodes interface {
	// CreateBackupCode stores one hashed backup code.
	CreateBackupCode(ctx context.Context, code domain.BackupCode) error

	// ListUnusedBackupCodes returns the user's unused codes. Salted hashes
	// cannot be looked up by value, so verification iterates these.
	ListUnusedBackupCodes(ctx context.Context, userID string) ([]domain.BackupCode, error)

	// ConsumeBackupCode marks a code used if and only if it is still
	// unused. Returns false when another request consumed it first.
	ConsumeBackupCode(ctx context.Context, id string, at time.Time) (bool, error)

	// DeleteAllBackupCodes removes every code for a user (batch replace,
	// disable).
	DeleteAllBackupCodes(ctx context.Context, userID string) error

	// CountUnusedBackupCodes returns how many codes remain usable.
	CountUnusedBackupCodes(ctx context.Context, userID string) (int, error)
}

type TrustedDevices interface {
	// UpsertTrustedDevice inserts a trust entry, or refreshes expires_at and
	// display_name when the (user, fingerprint) pair already exists. The
	// stored row is returned either way.
	UpsertTrustedDevice(ctx context.Context, d domain.TrustedDevice) (domain.TrustedDevice, error)

	// GetActiveTrustedDevice returns a non-expired entry matching the
	// fingerprint, ErrNotFound otherwise.
	GetActiveTrustedDevice(ctx context.Context, userID, fingerprintHash string, now time.Time) (domain.TrustedDevice, error)

	// ListTrustedDevices returns all non-expired entries for a user.
	ListTrustedDevices(ctx context.Context, userID string, now time.Time) ([]domain.TrustedDevice, error)

	// DeleteTrustedDevice removes one entry, scoped to the owning user.
	// Returns false when no row matched (wrong ID or wrong owner).
	DeleteTrustedDevice(ctx context.Context, userID, deviceID string) (bool, error)

	// DeleteAllTrustedDevices removes every entry for a user (disable).
	DeleteAllTrustedDevices(ctx context.Context, userID string) error

	// CountActiveTrustedDevices returns the number of non-expired entries.
	CountActiveTrustedDevices(ctx context.Context, userID string, now time.Time) (int, error)

	// DeleteExpiredTrustedDevices is housekeeping. Returns rows removed.
	DeleteExpiredTrustedDevices(ctx context.Context, now time.Time) (int64, error)
}

type Challenges interface {
	// ReplaceChallenge stores a challenge, overwriting any existing row for
	// the (user, channel) pair. The previous code becomes unusable at once.
	ReplaceChallenge(ctx context.Context, c domain.Challenge) error

	// GetChallenge returns the current challenge for (user, channel),
	// ErrNotFound if none was ever issued or it was cleaned up.
	GetChallenge(ctx context.Context, userID string, ch domain.Channel) (domain.Challenge, error)

	// DecrementAttempts atomically decrements attempts_remaining for the
	// challenge identified by (user, channel, codeHash), guarded on it being
	// unconsumed with attempts left. Returns the remaining count after the
	// decrement, or ErrNotFound when the guard failed (raced or replaced).
	DecrementAttempts(ctx context.Context, userID string, ch domain.Channel, codeHash string) (int, error)

	// ConsumeChallenge atomically marks the challenge consumed under the
	// same guard. Returns false when the guard failed.
	ConsumeChallenge(ctx context.Context, userID string, ch domain.Channel, codeHash string) (bool, error)

	// DeleteChallenges removes all challenges for a user (disable).
	DeleteChallenges(ctx context.Context, userID string) error

	// DeleteExpiredChallenges is housekeeping: removes expired and consumed
	// rows. Returns rows removed.
	DeleteExpiredChallenges(ctx context.Context, now time.Time) (int64, error)
}
