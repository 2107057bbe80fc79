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

// ChallengeHandler issues SMS/email one-time codes.
type ChallengeHandler struct {
	Engine *service.Engine
}

// HandleIssue handles POST /v1/mfa/challenges
//
//	@Summary		Issue a challenge code
//	@Description	Generates a one-time code for the requested channel and hands it to the notification sender. Replaces any outstanding code on that channel.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		stepupsdk.ChallengeRequest	true	"Channel (sms or email)"
//	@Success		200		{object}	stepupsdk.MessageResponse	"Challenge issued"
//	@Failure		400		{object}	stepupsdk.ErrorResponse		"Unknown channel or channel not configured"
//	@Failure		401		{object}	stepupsdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		500		{object}	stepupsdk.ErrorResponse		"Internal server error"
//	@Router			/v1/mfa/challenges [post].
func (h *ChallengeHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	c, ok := callerFromRequest(r)
	if !ok {
		stepupsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req stepupsdk.ChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		stepupsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	channel, ok := domain.ParseChannel(req.Channel)
	if !ok {
		stepupsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.Engine.Challenges.Issue(ctx, c.UserID, channel); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, stepupsdk.MessageResponse{
		Message: "challenge issued",
	})
}
