package http

import (
	"encoding/json"
	"net/http"

	"github.com/casefolio/stepup/internal/mfa/domain"
	"github.com/casefolio/stepup/internal/mfa/service"
	"github.com/casefolio/stepup/pkg/httpx"
	"github.com/casefolio/stepup/pkg/slogx"
	"github.com/casefolio/stepup/pkg/stepupsdk"
)

// StatusHandler serves the enrollment summary and the per-request assurance
// decision.
type StatusHandler struct {
	Engine *service.Engine
}

// HandleStatus handles GET /v1/mfa/status
//
//	@Summary		MFA enrollment status
//	@Description	Returns the caller's enrollment summary: enabled flag, available methods, grace window, trusted devices and remaining backup codes.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	stepupsdk.StatusResponse	"Enrollment summary"
//	@Failure		401	{object}	stepupsdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		500	{object}	stepupsdk.ErrorResponse		"Internal server error"
//	@Router			/v1/mfa/status [get].
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	c, ok := callerFromRequest(r)
	if !ok {
		stepupsdk.ErrInvalidToken.WriteError(w)
		return
	}

	status, err := h.Engine.Status(ctx, c.UserID)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, stepupsdk.StatusResponse{
		Enabled:            status.Enabled,
		Methods:            methodsResponse(status.Methods),
		Grace:              graceResponse(status.Grace),
		TrustedDeviceCount: status.TrustedDeviceCount,
		UnusedBackupCodes:  status.UnusedBackupCodes,
	})
}

// HandleAssurance handles POST /v1/mfa/assurance
//
//	@Summary		Evaluate step-up assurance
//	@Description	Derives the assurance state for the current request: device trust, session marker, grace window or required verification with the available methods.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		stepupsdk.AssuranceRequest	true	"Optional assurance marker"
//	@Success		200		{object}	stepupsdk.AssuranceResponse	"Assurance decision"
//	@Failure		401		{object}	stepupsdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		500		{object}	stepupsdk.ErrorResponse		"Internal server error"
//	@Router			/v1/mfa/assurance [post].
func (h *StatusHandler) HandleAssurance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	c, ok := callerFromRequest(r)
	if !ok {
		stepupsdk.ErrInvalidToken.WriteError(w)
		return
	}

	// Body is optional; an empty body means no marker.
	var req stepupsdk.AssuranceRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	decision, err := h.Engine.Evaluate(ctx, evaluateInput(r, c, h.Engine, req.Marker))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, stepupsdk.AssuranceResponse{
		State:     string(decision.State),
		Satisfied: decision.Satisfied,
		Methods:   methodsResponse(decision.Methods),
		Grace:     graceResponse(decision.Grace),
	})
}

func methodsResponse(m domain.Methods) stepupsdk.MethodsResponse {
	return stepupsdk.MethodsResponse{
		TOTP:        m.TOTP,
		SMS:         m.SMS,
		Email:       m.Email,
		BackupCodes: m.BackupCodes,
	}
}

func graceResponse(g *domain.GraceStatus) *stepupsdk.GraceResponse {
	if g == nil {
		return nil
	}
	return &stepupsdk.GraceResponse{Required: g.Required, EndsAt: g.EndsAt}
}
