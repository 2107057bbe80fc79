package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/casefolio/stepup/internal/mfa/domain"
	"github.com/casefolio/stepup/internal/mfa/store"
	"github.com/casefolio/stepup/pkg/cryptox"
	"github.com/casefolio/stepup/pkg/idx"
	"github.com/casefolio/stepup/pkg/jwtx"
	"github.com/casefolio/stepup/pkg/otpx"
)

const (
	backupCodeCount = 10                   // codes per batch
	backupCodeBytes = cryptox.TokenSize128 // 128-bit entropy per code

	defaultMarkerTTL = 12 * time.Hour
)

// Verification method names as exposed to callers and recorded in markers.
const (
	MethodTOTP       = "totp"
	MethodSMS        = "sms"
	MethodEmail      = "email"
	MethodBackupCode = "backup_code"
)

// Engine is the MFA assurance orchestrator. It owns the per-request
// assurance decision and every enroll/verify/status operation, composing
// the challenge, device and grace collaborators.
type Engine struct {
	Store      store.Store
	Challenges *ChallengeService
	Devices    *DeviceService
	Grace      GracePolicy

	// Marker signs session assurance markers. Its public key verifies them.
	Marker    *jwtx.EdDSASigner
	MarkerTTL time.Duration

	// Issuer labels TOTP provisioning URIs and assurance markers.
	Issuer string

	Authz Authorizer
	Audit AuditRecorder
}

// EvaluateInput carries the per-request identity and device context.
type EvaluateInput struct {
	UserID          string
	SessionID       string
	FingerprintHash string

	// Marker is the session assurance marker presented by the caller, empty
	// if none.
	Marker string
}

// Evaluate derives the assurance state for one request. Nothing is
// persisted beyond profile creation; the decision is recomputed every time.
func (e *Engine) Evaluate(ctx context.Context, in EvaluateInput) (domain.Decision, error) {
	now := time.Now().UTC()

	profile, err := e.Store.Profiles().EnsureProfile(ctx, in.UserID)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("failed to load profile: %w", err)
	}

	if !profile.TOTPConfirmed() {
		grace := e.Grace.Evaluate(profile.CreatedAt, now)
		if !grace.Required {
			return domain.Decision{
				State:     domain.StateGracePeriod,
				Satisfied: true,
				Grace:     &grace,
			}, nil
		}
		// Past the window with no enrollment: the only way forward is to
		// enroll, so no methods are offered.
		return domain.Decision{
			State: domain.StateRequiredUnverified,
			Grace: &grace,
		}, nil
	}

	trusted, err := e.Devices.IsTrusted(ctx, in.UserID, in.FingerprintHash)
	if err != nil {
		return domain.Decision{}, err
	}
	if trusted {
		return domain.Decision{State: domain.StateDeviceTrusted, Satisfied: true}, nil
	}

	if in.Marker != "" && e.markerSatisfies(in, profile) {
		return domain.Decision{State: domain.StateSessionVerified, Satisfied: true}, nil
	}

	methods, err := e.availableMethods(ctx, profile)
	if err != nil {
		return domain.Decision{}, err
	}
	return domain.Decision{
		State:   domain.StateRequiredUnverified,
		Methods: methods,
	}, nil
}

// markerSatisfies checks a presented assurance marker against the current
// request. A marker is honored only when it verifies under our key, belongs
// to this user and session, was bound to this exact fingerprint, and was
// minted after the current enrollment became active. The last condition is
// what kills old markers on disable + re-enroll.
func (e *Engine) markerSatisfies(in EvaluateInput, profile domain.Profile) bool {
	claims, err := jwtx.VerifyAssurance(e.Marker.Public(), in.Marker)
	if err != nil {
		return false
	}
	if claims.Subject != in.UserID || claims.SID != in.SessionID {
		return false
	}
	if claims.FPH == "" || claims.FPH != in.FingerprintHash {
		return false
	}
	if claims.IssuedAt == nil || profile.EnabledAt == nil {
		return false
	}
	// iat has second precision; truncate the enablement instant to match so
	// a marker minted right after enrollment is not rejected.
	return !claims.IssuedAt.Time.Before(profile.EnabledAt.Truncate(time.Second))
}

// EnrollTOTP generates a TOTP secret and a fresh backup-code batch for the
// user. MFA is not enabled until ConfirmTOTP proves the authenticator got
// the secret. The material is returned exactly once.
func (e *Engine) EnrollTOTP(ctx context.Context, userID, account string) (domain.EnrollmentMaterial, error) {
	profile, err := e.Store.Profiles().EnsureProfile(ctx, userID)
	if err != nil {
		return domain.EnrollmentMaterial{}, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile.TOTPConfirmed() {
		return domain.EnrollmentMaterial{}, ErrAlreadyEnrolled
	}
	if account == "" {
		account = userID
	}

	key, err := otpx.GenerateSecret(e.Issuer, account)
	if err != nil {
		return domain.EnrollmentMaterial{}, fmt.Errorf("failed to generate TOTP secret: %w", err)
	}

	ciphertext, err := cryptox.EncryptSecret([]byte(key.Secret))
	if err != nil {
		return domain.EnrollmentMaterial{}, fmt.Errorf("failed to encrypt TOTP secret: %w", err)
	}

	codes, hashes, err := generateBackupBatch()
	if err != nil {
		return domain.EnrollmentMaterial{}, err
	}

	err = e.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Profiles().UpdateTOTPSecret(ctx, userID, ciphertext); err != nil {
			return fmt.Errorf("failed to store TOTP secret: %w", err)
		}
		if err := replaceBackupCodes(ctx, tx, userID, hashes); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return domain.EnrollmentMaterial{}, err
	}

	return domain.EnrollmentMaterial{
		Secret:          key.Secret,
		ProvisioningURL: key.URL,
		BackupCodes:     codes,
	}, nil
}

// ConfirmTOTP enables MFA once the user proves their authenticator produces
// valid codes for the pending secret.
func (e *Engine) ConfirmTOTP(ctx context.Context, userID, code string) error {
	profile, err := e.Store.Profiles().GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotEnrolled
		}
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if profile.TOTPConfirmed() {
		return ErrAlreadyEnrolled
	}
	if len(profile.TOTPSecretCiphertext) == 0 {
		return ErrNotEnrolled
	}

	if err := e.checkTOTP(profile, code); err != nil {
		return err
	}

	if err := e.Store.Profiles().EnableTOTP(ctx, userID); err != nil {
		return fmt.Errorf("failed to enable MFA: %w", err)
	}

	e.audit(ctx, AuditEvent{Kind: AuditEnroll, UserID: userID, Method: MethodTOTP})
	return nil
}

// VerifyInput carries a verification submission.
type VerifyInput struct {
	UserID          string
	SessionID       string
	FingerprintHash string

	// Method is one of totp, sms, email, backup_code.
	Method string
	Code   string

	// TrustDevice registers the current fingerprint as trusted on success.
	TrustDevice bool
	DeviceName  string
	TrustTTL    time.Duration
}

// Verify dispatches a verification attempt to the right method, and on
// success mints a session assurance marker bound to the request's
// fingerprint. Failures never upgrade assurance.
func (e *Engine) Verify(ctx context.Context, in VerifyInput) (domain.Verification, error) {
	profile, err := e.Store.Profiles().GetProfile(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Verification{}, ErrNotEnrolled
		}
		return domain.Verification{}, fmt.Errorf("failed to load profile: %w", err)
	}
	if !profile.TOTPConfirmed() {
		return domain.Verification{}, ErrNotEnrolled
	}

	var verifyErr error
	switch in.Method {
	case MethodTOTP:
		verifyErr = e.checkTOTP(profile, in.Code)
	case MethodSMS:
		verifyErr = e.Challenges.Verify(ctx, in.UserID, domain.ChannelSMS, in.Code)
	case MethodEmail:
		verifyErr = e.Challenges.Verify(ctx, in.UserID, domain.ChannelEmail, in.Code)
	case MethodBackupCode:
		verifyErr = e.consumeBackupCode(ctx, in.UserID, in.Code)
	default:
		return domain.Verification{}, fmt.Errorf("%w: unknown method %q", ErrValidation, in.Method)
	}
	if verifyErr != nil {
		e.audit(ctx, AuditEvent{
			Kind:   AuditVerifyFailure,
			UserID: in.UserID,
			Method: in.Method,
			Reason: verifyErr.Error(),
		})
		return domain.Verification{}, verifyErr
	}

	now := time.Now().UTC()
	claims := jwtx.NewAssuranceClaims(
		in.UserID, in.SessionID, in.FingerprintHash, in.Method,
		e.Issuer, e.markerTTL(), now,
	)
	marker, err := e.Marker.Sign(claims)
	if err != nil {
		return domain.Verification{}, fmt.Errorf("failed to sign assurance marker: %w", err)
	}

	result := domain.Verification{
		State:  domain.StateVerifiedThisRequest,
		Method: in.Method,
		Marker: marker,
	}

	if in.TrustDevice {
		dev, err := e.Devices.Trust(ctx, in.UserID, in.FingerprintHash, in.DeviceName, in.TrustTTL)
		if err != nil {
			return domain.Verification{}, err
		}
		result.TrustedDevice = &dev
		e.audit(ctx, AuditEvent{Kind: AuditDeviceTrust, UserID: in.UserID, DeviceID: dev.ID})
	}

	e.audit(ctx, AuditEvent{Kind: AuditVerifySuccess, UserID: in.UserID, Method: in.Method})
	return result, nil
}

// TrustCurrentDevice registers the request's device as trusted, outside of
// a verify call. The request must already be assured (marker or existing
// trust); otherwise a stolen access token alone could mint device trust.
func (e *Engine) TrustCurrentDevice(ctx context.Context, in EvaluateInput, displayName string, ttl time.Duration) (domain.TrustedDevice, error) {
	decision, err := e.Evaluate(ctx, in)
	if err != nil {
		return domain.TrustedDevice{}, err
	}
	if !decision.Satisfied || decision.State == domain.StateGracePeriod {
		return domain.TrustedDevice{}, ErrForbidden
	}

	dev, err := e.Devices.Trust(ctx, in.UserID, in.FingerprintHash, displayName, ttl)
	if err != nil {
		return domain.TrustedDevice{}, err
	}
	e.audit(ctx, AuditEvent{Kind: AuditDeviceTrust, UserID: in.UserID, DeviceID: dev.ID})
	return dev, nil
}

// RevokeDevice removes one trusted device, audit-logged.
func (e *Engine) RevokeDevice(ctx context.Context, userID, deviceID string) error {
	if err := e.Devices.Revoke(ctx, userID, deviceID); err != nil {
		return err
	}
	e.audit(ctx, AuditEvent{Kind: AuditDeviceRevoke, UserID: userID, DeviceID: deviceID})
	return nil
}

// RegenerateBackupCodes replaces the user's batch wholesale. Every code from
// the prior batch stops working, used or not.
func (e *Engine) RegenerateBackupCodes(ctx context.Context, userID string) ([]string, error) {
	profile, err := e.Store.Profiles().GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if !profile.TOTPConfirmed() {
		return nil, ErrNotEnrolled
	}

	codes, hashes, err := generateBackupBatch()
	if err != nil {
		return nil, err
	}

	err = e.Store.WithTx(ctx, func(tx store.Tx) error {
		return replaceBackupCodes(ctx, tx, userID, hashes)
	})
	if err != nil {
		return nil, err
	}

	e.audit(ctx, AuditEvent{Kind: AuditRegenerate, UserID: userID})
	return codes, nil
}

// Disable removes MFA for a user: profile flags, secret, backup codes,
// trusted devices and outstanding challenges all go. Gated on the RBAC
// collaborator; users can disable their own, admins anyone's. Outstanding
// markers die because a later re-enrollment sets a fresh EnabledAt.
func (e *Engine) Disable(ctx context.Context, actingUserID, targetUserID string) error {
	if err := e.Authz.CanDisableMFA(ctx, actingUserID, targetUserID); err != nil {
		return err
	}

	err := e.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Profiles().DisableMFA(ctx, targetUserID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to disable MFA: %w", err)
		}
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, targetUserID); err != nil {
			return fmt.Errorf("failed to delete backup codes: %w", err)
		}
		if err := tx.TrustedDevices().DeleteAllTrustedDevices(ctx, targetUserID); err != nil {
			return fmt.Errorf("failed to delete trusted devices: %w", err)
		}
		if err := tx.Challenges().DeleteChallenges(ctx, targetUserID); err != nil {
			return fmt.Errorf("failed to delete challenges: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.audit(ctx, AuditEvent{Kind: AuditDisable, UserID: targetUserID, ActingUserID: actingUserID})
	return nil
}

// ConfigureChannels sets the SMS/email destinations a user can receive
// challenge codes on.
func (e *Engine) ConfigureChannels(ctx context.Context, userID string, sms bool, smsDest string, email bool, emailAddr string) error {
	if sms && smsDest == "" {
		return fmt.Errorf("%w: sms destination required", ErrValidation)
	}
	if email && emailAddr == "" {
		return fmt.Errorf("%w: email address required", ErrValidation)
	}

	if _, err := e.Store.Profiles().EnsureProfile(ctx, userID); err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if err := e.Store.Profiles().UpdateChannels(ctx, userID, sms, smsDest, email, emailAddr); err != nil {
		return fmt.Errorf("failed to update channels: %w", err)
	}
	return nil
}

// Status reports the user's enrollment summary.
func (e *Engine) Status(ctx context.Context, userID string) (domain.Status, error) {
	now := time.Now().UTC()

	profile, err := e.Store.Profiles().EnsureProfile(ctx, userID)
	if err != nil {
		return domain.Status{}, fmt.Errorf("failed to load profile: %w", err)
	}

	methods, err := e.availableMethods(ctx, profile)
	if err != nil {
		return domain.Status{}, err
	}

	deviceCount, err := e.Store.TrustedDevices().CountActiveTrustedDevices(ctx, userID, now)
	if err != nil {
		return domain.Status{}, fmt.Errorf("failed to count trusted devices: %w", err)
	}

	status := domain.Status{
		Enabled:            profile.TOTPConfirmed(),
		Methods:            methods,
		TrustedDeviceCount: deviceCount,
		UnusedBackupCodes:  methods.BackupCodes,
	}
	if !status.Enabled {
		grace := e.Grace.Evaluate(profile.CreatedAt, now)
		status.Grace = &grace
	}
	return status, nil
}

// checkTOTP validates a submitted TOTP code against the profile's secret.
// Malformed codes are rejected before the secret is even decrypted.
func (e *Engine) checkTOTP(profile domain.Profile, code string) error {
	if !otpx.WellFormed(code) {
		return ErrInvalidCode
	}

	secret, err := cryptox.DecryptSecret(profile.TOTPSecretCiphertext)
	if err != nil {
		return fmt.Errorf("failed to decrypt TOTP secret: %w", err)
	}
	if !otpx.Validate(code, string(secret), time.Now()) {
		return ErrInvalidCode
	}
	return nil
}

// consumeBackupCode finds and burns a matching unused backup code. Salted
// hashes rule out a lookup by value, so every unused code is compared; the
// conditional update keeps consumption at-most-once when the same code is
// submitted twice in parallel.
func (e *Engine) consumeBackupCode(ctx context.Context, userID, code string) error {
	if code == "" {
		return ErrInvalidCode
	}

	unused, err := e.Store.BackupCodes().ListUnusedBackupCodes(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list backup codes: %w", err)
	}

	for _, candidate := range unused {
		if err := cryptox.VerifyCode(code, candidate.CodeHash); err != nil {
			if errors.Is(err, cryptox.ErrCodeMismatch) {
				continue
			}
			return fmt.Errorf("failed to compare backup code: %w", err)
		}

		ok, err := e.Store.BackupCodes().ConsumeBackupCode(ctx, candidate.ID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to consume backup code: %w", err)
		}
		if !ok {
			// Lost the race: treated the same as a used code.
			return ErrInvalidCode
		}
		return nil
	}
	return ErrInvalidCode
}

func (e *Engine) availableMethods(ctx context.Context, profile domain.Profile) (domain.Methods, error) {
	unused, err := e.Store.BackupCodes().CountUnusedBackupCodes(ctx, profile.UserID)
	if err != nil {
		return domain.Methods{}, fmt.Errorf("failed to count backup codes: %w", err)
	}
	return domain.Methods{
		TOTP:        profile.TOTPConfirmed(),
		SMS:         profile.ChannelUsable(domain.ChannelSMS),
		Email:       profile.ChannelUsable(domain.ChannelEmail),
		BackupCodes: unused,
	}, nil
}

func (e *Engine) markerTTL() time.Duration {
	if e.MarkerTTL > 0 {
		return e.MarkerTTL
	}
	return defaultMarkerTTL
}

func (e *Engine) audit(ctx context.Context, ev AuditEvent) {
	if e.Audit == nil {
		return
	}
	ev.At = time.Now().UTC()
	e.Audit.Record(ctx, ev)
}

// generateBackupBatch mints a fresh batch of plaintext codes and their
// hashes.
func generateBackupBatch() ([]string, []string, error) {
	codes := make([]string, backupCodeCount)
	hashes := make([]string, backupCodeCount)
	for i := range codes {
		code, err := cryptox.GenerateToken(backupCodeBytes)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to generate backup code: %w", err)
		}
		hash, err := cryptox.HashCode(code)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to hash backup code: %w", err)
		}
		codes[i] = code
		hashes[i] = hash
	}
	return codes, hashes, nil
}

// replaceBackupCodes deletes the prior batch and stores the new one. Always
// a full replace; old codes never survive a regeneration.
func replaceBackupCodes(ctx context.Context, tx store.Tx, userID string, hashes []string) error {
	if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete old backup codes: %w", err)
	}
	now := time.Now().UTC()
	for _, hash := range hashes {
		code := domain.BackupCode{
			ID:        idx.New().String(),
			UserID:    userID,
			CodeHash:  hash,
			CreatedAt: now,
		}
		if err := tx.BackupCodes().CreateBackupCode(ctx, code); err != nil {
			return fmt.Errorf("failed to store backup code: %w", err)
		}
	}
	return nil
}
