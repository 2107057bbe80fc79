package domain

import "time"

// BackupCode is a single-use recovery credential. Codes are generated in
// batches; regenerating a batch hard-deletes the prior one, so `Used` only
// ever refers to codes of the current batch.
type BackupCode struct {
	ID        string // ULID
	UserID    string
	CodeHash  string // salted argon2id hash
	Used      bool
	UsedAt    *time.Time
	CreatedAt time.Time
}
