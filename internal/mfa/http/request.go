package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/casefolio/stepup/internal/mfa/service"
	"github.com/casefolio/stepup/pkg/httpx"
	"github.com/casefolio/stepup/pkg/jwtx"
	"github.com/casefolio/stepup/pkg/stepupsdk"
)

// caller is the authenticated identity extracted from the request context.
type caller struct {
	UserID    string
	SessionID string
	Username  string
}

// callerFromRequest pulls the identity AuthnMiddleware injected. Returns
// false when the request somehow skipped authentication.
func callerFromRequest(r *http.Request) (caller, bool) {
	claims, ok := r.Context().Value(httpx.CtxKeyClaims).(jwtx.Claims)
	if !ok || claims.Subject == "" {
		return caller{}, false
	}
	return caller{
		UserID:    claims.Subject,
		SessionID: claims.SID,
		Username:  claims.Username,
	}, true
}

// requestAttributes collects the fingerprint inputs from a request.
func requestAttributes(r *http.Request) service.RequestAttributes {
	return service.RequestAttributes{
		UserAgent:      r.UserAgent(),
		AcceptLanguage: r.Header.Get("Accept-Language"),
		RemoteIP:       httpx.IPKeyExtractor(r),
	}
}

// evaluateInput builds the engine input for the current request.
func evaluateInput(r *http.Request, c caller, engine *service.Engine, marker string) service.EvaluateInput {
	return service.EvaluateInput{
		UserID:          c.UserID,
		SessionID:       c.SessionID,
		FingerprintHash: engine.Devices.Fingerprint(requestAttributes(r)),
		Marker:          marker,
	}
}

// writeServiceError maps service failures onto the wire error vocabulary.
// Anything unrecognized is a storage or internal failure: logged in full,
// surfaced as a bare 500.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		stepupsdk.ErrInvalidRequest.WriteError(w)
	case errors.Is(err, service.ErrInvalidCode):
		stepupsdk.ErrInvalidCode.WriteError(w)
	case errors.Is(err, service.ErrNoActiveChallenge):
		stepupsdk.ErrNoActiveChallenge.WriteError(w)
	case errors.Is(err, service.ErrChallengeExpired):
		stepupsdk.ErrChallengeExpired.WriteError(w)
	case errors.Is(err, service.ErrChallengeExhausted):
		stepupsdk.ErrChallengeExhausted.WriteError(w)
	case errors.Is(err, service.ErrNotEnrolled):
		stepupsdk.ErrNotEnrolled.WriteError(w)
	case errors.Is(err, service.ErrAlreadyEnrolled):
		stepupsdk.ErrAlreadyEnrolled.WriteError(w)
	case errors.Is(err, service.ErrChannelUnavailable):
		stepupsdk.ErrChannelUnavailable.WriteError(w)
	case errors.Is(err, service.ErrNotFound):
		stepupsdk.ErrNotFound.WriteError(w)
	case errors.Is(err, service.ErrForbidden):
		stepupsdk.ErrForbidden.WriteError(w)
	default:
		log.Error("internal error", "err", err)
		stepupsdk.ErrServerError.WriteError(w)
	}
}
