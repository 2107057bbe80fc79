package http

import (
	"encoding/json"
	"net/http"

	"github.com/casefolio/stepup/internal/mfa/service"
	"github.com/casefolio/stepup/pkg/httpx"
	"github.com/casefolio/stepup/pkg/slogx"
	"github.com/casefolio/stepup/pkg/stepupsdk"
)

// VerifyHandler processes verification attempts.
type VerifyHandler struct {
	Engine *service.Engine
}

// HandleVerify handles POST /v1/mfa/verify
//
//	@Summary		Verify a code
//	@Description	Verifies a TOTP, SMS, email or backup code. On success returns a session assurance marker bound to this device, and optionally registers the device as trusted.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		stepupsdk.VerifyRequest		true	"Method and code"
//	@Success		200		{object}	stepupsdk.VerifyResponse	"Assurance marker"
//	@Failure		400		{object}	stepupsdk.ErrorResponse		"Invalid code, expired, exhausted or no active challenge"
//	@Failure		401		{object}	stepupsdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		500		{object}	stepupsdk.ErrorResponse		"Internal server error"
//	@Router			/v1/mfa/verify [post].
func (h *VerifyHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	c, ok := callerFromRequest(r)
	if !ok {
		stepupsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req stepupsdk.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		stepupsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	result, err := h.Engine.Verify(ctx, service.VerifyInput{
		UserID:          c.UserID,
		SessionID:       c.SessionID,
		FingerprintHash: h.Engine.Devices.Fingerprint(requestAttributes(r)),
		Method:          req.Method,
		Code:            req.Code,
		TrustDevice:     req.TrustDevice,
		DeviceName:      req.DeviceName,
	})
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	resp := stepupsdk.VerifyResponse{
		State:  string(result.State),
		Method: result.Method,
		Marker: result.Marker,
	}
	if result.TrustedDevice != nil {
		dev := deviceResponse(*result.TrustedDevice)
		resp.TrustedDevice = &dev
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
