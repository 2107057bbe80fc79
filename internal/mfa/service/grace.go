package service

import (
	"time"

	"github.com/casefolio/stepup/internal/mfa/domain"
)

// GracePolicy decides whether an unenrolled user must complete MFA
// enrollment yet. It is a pure function of the clock, so enforcement kicks
// in when the window elapses without any stored state changing.
//
// The policy is global: one window and one enforcement date for the whole
// deployment.
type GracePolicy struct {
	// Window is how long a user may defer enrollment.
	Window time.Duration

	// EnforceFrom is the date the MFA mandate took effect. Accounts older
	// than this date get their window measured from here, not from account
	// creation, so a rollout never instantly locks out existing users.
	EnforceFrom time.Time
}

// Evaluate returns the grace decision for a profile created at the given
// time.
func (p GracePolicy) Evaluate(profileCreatedAt, now time.Time) domain.GraceStatus {
	anchor := profileCreatedAt
	if p.EnforceFrom.After(anchor) {
		anchor = p.EnforceFrom
	}

	endsAt := anchor.Add(p.Window).UTC()
	return domain.GraceStatus{
		Required: !now.Before(endsAt),
		EndsAt:   &endsAt,
	}
}
