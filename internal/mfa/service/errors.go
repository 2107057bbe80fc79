package service

import "errors"

// Verification-path failures are reported distinctly so the client can tell
// "retry" apart from "request a new code", but none of them reveals whether
// the target account exists.
var (
	ErrNoActiveChallenge  = errors.New("no active challenge")
	ErrChallengeExpired   = errors.New("challenge expired")
	ErrChallengeExhausted = errors.New("challenge attempts exhausted")
	ErrInvalidCode        = errors.New("invalid code")

	ErrValidation         = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrNotEnrolled        = errors.New("MFA not enrolled")
	ErrAlreadyEnrolled    = errors.New("MFA already enrolled")
	ErrChannelUnavailable = errors.New("challenge channel not configured")
)
