package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/casefolio/stepup/internal/mfa/domain"
	"github.com/casefolio/stepup/internal/mfa/service"
	"github.com/casefolio/stepup/pkg/httpx"
	"github.com/casefolio/stepup/pkg/slogx"
	"github.com/casefolio/stepup/pkg/stepupsdk"
)

// DevicesHandler owns the trusted-device endpoints.
type DevicesHandler struct {
	Engine *service.Engine
}

// HandleList handles GET /v1/mfa/devices
//
//	@Summary		List trusted devices
//	@Description	Returns the caller's active trusted devices.
//	@Tags			Devices
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	stepupsdk.DevicesResponse	"Trusted devices"
//	@Failure		401	{object}	stepupsdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		500	{object}	stepupsdk.ErrorResponse		"Internal server error"
//	@Router			/v1/mfa/devices [get].
func (h *DevicesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	c, ok := callerFromRequest(r)
	if !ok {
		stepupsdk.ErrInvalidToken.WriteError(w)
		return
	}

	devices, err := h.Engine.Devices.List(ctx, c.UserID)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	resp := stepupsdk.DevicesResponse{Devices: make([]stepupsdk.DeviceResponse, 0, len(devices))}
	for _, dev := range devices {
		resp.Devices = append(resp.Devices, deviceResponse(dev))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleTrust handles POST /v1/mfa/devices
//
//	@Summary		Trust the current device
//	@Description	Registers the requesting device as trusted. The request must present a valid assurance marker for this device; trust re-registration refreshes expiry.
//	@Tags			Devices
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		stepupsdk.TrustDeviceRequest	true	"Marker, display name, optional TTL"
//	@Success		200		{object}	stepupsdk.DeviceResponse		"Trusted device record"
//	@Failure		401		{object}	stepupsdk.ErrorResponse			"Invalid or missing access token"
//	@Failure		403		{object}	stepupsdk.ErrorResponse			"Request not assured"
//	@Failure		500		{object}	stepupsdk.ErrorResponse			"Internal server error"
//	@Router			/v1/mfa/devices [post].
func (h *DevicesHandler) HandleTrust(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	c, ok := callerFromRequest(r)
	if !ok {
		stepupsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req stepupsdk.TrustDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		stepupsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	dev, err := h.Engine.TrustCurrentDevice(ctx,
		evaluateInput(r, c, h.Engine, req.Marker),
		req.DisplayName,
		time.Duration(req.TTLHours)*time.Hour,
	)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, deviceResponse(dev))
}

// HandleRevoke handles DELETE /v1/mfa/devices/{id}
//
//	@Summary		Revoke a trusted device
//	@Description	Removes one trusted device. Only the owning user can revoke it.
//	@Tags			Devices
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string						true	"Device ID"
//	@Success		200	{object}	stepupsdk.MessageResponse	"Device revoked"
//	@Failure		401	{object}	stepupsdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		404	{object}	stepupsdk.ErrorResponse		"Unknown device or not the owner"
//	@Failure		500	{object}	stepupsdk.ErrorResponse		"Internal server error"
//	@Router			/v1/mfa/devices/{id} [delete].
func (h *DevicesHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	c, ok := callerFromRequest(r)
	if !ok {
		stepupsdk.ErrInvalidToken.WriteError(w)
		return
	}

	deviceID := r.PathValue("id")
	if deviceID == "" {
		stepupsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.Engine.RevokeDevice(ctx, c.UserID, deviceID); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, stepupsdk.MessageResponse{
		Message: "device revoked",
	})
}

func deviceResponse(dev domain.TrustedDevice) stepupsdk.DeviceResponse {
	return stepupsdk.DeviceResponse{
		ID:          dev.ID,
		DisplayName: dev.DisplayName,
		CreatedAt:   dev.CreatedAt,
		ExpiresAt:   dev.ExpiresAt,
	}
}
