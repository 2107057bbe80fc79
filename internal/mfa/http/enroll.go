package http

import (
	"encoding/json"
	"net/http"

	"github.com/casefolio/stepup/internal/mfa/service"
	"github.com/casefolio/stepup/pkg/httpx"
	"github.com/casefolio/stepup/pkg/slogx"
	"github.com/casefolio/stepup/pkg/stepupsdk"
)

// EnrollHandler owns enrollment lifecycle endpoints: TOTP enroll/confirm,
// backup codes, challenge channels and self-disable.
type EnrollHandler struct {
	Engine *service.Engine
}

// HandleEnroll handles POST /v1/mfa/totp/enroll
//
//	@Summary		Enroll in TOTP MFA
//	@Description	Generates a TOTP secret, provisioning URI and a backup-code batch. MFA is not enabled until the enrollment is confirmed. Material is shown exactly once.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	stepupsdk.EnrollResponse	"Enrollment material"
//	@Failure		400	{object}	stepupsdk.ErrorResponse		"MFA already enrolled"
//	@Failure		401	{object}	stepupsdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		500	{object}	stepupsdk.ErrorResponse		"Internal server error"
//	@Router			/v1/mfa/totp/enroll [post].
func (h *EnrollHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	c, ok := callerFromRequest(r)
	if !ok {
		stepupsdk.ErrInvalidToken.WriteError(w)
		return
	}

	material, err := h.Engine.EnrollTOTP(ctx, c.UserID, c.Username)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, stepupsdk.EnrollResponse{
		Secret:          material.Secret,
		ProvisioningURL: material.ProvisioningURL,
		BackupCodes:     material.BackupCodes,
	})
}

// HandleConfirm handles POST /v1/mfa/totp/confirm
//
//	@Summary		Confirm TOTP enrollment
//	@Description	Verifies a code from the authenticator and enables MFA.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		stepupsdk.ConfirmRequest	true	"TOTP code"
//	@Success		200		{object}	stepupsdk.MessageResponse	"Enrollment confirmed"
//	@Failure		400		{object}	stepupsdk.ErrorResponse		"Invalid code or enrollment state"
//	@Failure		401		{object}	stepupsdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		500		{object}	stepupsdk.ErrorResponse		"Internal server error"
//	@Router			/v1/mfa/totp/confirm [post].
func (h *EnrollHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	c, ok := callerFromRequest(r)
	if !ok {
		stepupsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req stepupsdk.ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		stepupsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.Engine.ConfirmTOTP(ctx, c.UserID, req.Code); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, stepupsdk.MessageResponse{
		Message: "MFA enabled",
	})
}

// HandleRegenerateBackupCodes handles POST /v1/mfa/backup-codes
//
//	@Summary		Regenerate backup codes
//	@Description	Replaces the caller's backup-code batch. Every code from the prior batch stops working.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	stepupsdk.BackupCodesResponse	"New backup codes (shown once)"
//	@Failure		400	{object}	stepupsdk.ErrorResponse			"MFA not enrolled"
//	@Failure		401	{object}	stepupsdk.ErrorResponse			"Invalid or missing access token"
//	@Failure		500	{object}	stepupsdk.ErrorResponse			"Internal server error"
//	@Router			/v1/mfa/backup-codes [post].
func (h *EnrollHandler) HandleRegenerateBackupCodes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	c, ok := callerFromRequest(r)
	if !ok {
		stepupsdk.ErrInvalidToken.WriteError(w)
		return
	}

	codes, err := h.Engine.RegenerateBackupCodes(ctx, c.UserID)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, stepupsdk.BackupCodesResponse{Codes: codes})
}

// HandleConfigureChannels handles PUT /v1/mfa/channels
//
//	@Summary		Configure challenge channels
//	@Description	Sets the SMS and email destinations one-time challenge codes are delivered to.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		stepupsdk.ChannelsRequest	true	"Channel configuration"
//	@Success		200		{object}	stepupsdk.MessageResponse	"Channels updated"
//	@Failure		400		{object}	stepupsdk.ErrorResponse		"Invalid configuration"
//	@Failure		401		{object}	stepupsdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		500		{object}	stepupsdk.ErrorResponse		"Internal server error"
//	@Router			/v1/mfa/channels [put].
func (h *EnrollHandler) HandleConfigureChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	c, ok := callerFromRequest(r)
	if !ok {
		stepupsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req stepupsdk.ChannelsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		stepupsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	err := h.Engine.ConfigureChannels(ctx, c.UserID,
		req.SMSEnabled, req.SMSDestination,
		req.EmailEnabled, req.EmailAddress,
	)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, stepupsdk.MessageResponse{
		Message: "channels updated",
	})
}

// HandleDisableSelf handles DELETE /v1/mfa
//
//	@Summary		Disable own MFA
//	@Description	Removes the caller's MFA enrollment, backup codes, trusted devices and outstanding challenges.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	stepupsdk.MessageResponse	"MFA disabled"
//	@Failure		401	{object}	stepupsdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		404	{object}	stepupsdk.ErrorResponse		"No MFA profile"
//	@Failure		500	{object}	stepupsdk.ErrorResponse		"Internal server error"
//	@Router			/v1/mfa [delete].
func (h *EnrollHandler) HandleDisableSelf(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	c, ok := callerFromRequest(r)
	if !ok {
		stepupsdk.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.Engine.Disable(ctx, c.UserID, c.UserID); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, stepupsdk.MessageResponse{
		Message: "MFA disabled",
	})
}
