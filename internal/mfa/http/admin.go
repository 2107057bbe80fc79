package http

import (
	"net/http"

	"github.com/casefolio/stepup/internal/mfa/service"
	"github.com/casefolio/stepup/pkg/httpx"
	"github.com/casefolio/stepup/pkg/slogx"
	"github.com/casefolio/stepup/pkg/stepupsdk"
)

// AdminHandler owns privileged operations.
type AdminHandler struct {
	Engine *service.Engine
}

// HandleDisable handles DELETE /v1/admin/mfa/{user_id}
//
//	@Summary		Disable MFA for a user
//	@Description	Administrative disable of another user's MFA. Requires the mfa:admin scope; the operation is audit-logged with the acting user.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			user_id	path		string						true	"Target user ID"
//	@Success		200		{object}	stepupsdk.MessageResponse	"MFA disabled"
//	@Failure		401		{object}	stepupsdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		403		{object}	stepupsdk.ErrorResponse		"Missing mfa:admin scope"
//	@Failure		404		{object}	stepupsdk.ErrorResponse		"No MFA profile for user"
//	@Failure		500		{object}	stepupsdk.ErrorResponse		"Internal server error"
//	@Router			/v1/admin/mfa/{user_id} [delete].
func (h *AdminHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	c, ok := callerFromRequest(r)
	if !ok {
		stepupsdk.ErrInvalidToken.WriteError(w)
		return
	}

	targetUserID := r.PathValue("user_id")
	if targetUserID == "" {
		stepupsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.Engine.Disable(ctx, c.UserID, targetUserID); err != nil {
		writeServiceError(w, log, err)
		return
	}

	log.Info("MFA disabled by admin", "target_user_id", targetUserID)
	httpx.WriteJSON(w, http.StatusOK, stepupsdk.MessageResponse{
		Message: "MFA disabled",
	})
}
