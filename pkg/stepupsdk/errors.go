package stepupsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/casefolio/stepup/pkg/httpx"
)

// Error codes shared by the server handlers and this SDK.
const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeInvalidCode        = "invalid_code"
	ErrorCodeNoActiveChallenge  = "no_active_challenge"
	ErrorCodeExpired            = "challenge_expired"
	ErrorCodeExhausted          = "challenge_exhausted"
	ErrorCodeNotEnrolled        = "mfa_not_enrolled"
	ErrorCodeAlreadyEnrolled    = "mfa_already_enrolled"
	ErrorCodeChannelUnavailable = "channel_unavailable"
	ErrorCodeNotFound           = "not_found"
	ErrorCodeForbidden          = "forbidden"
	ErrorCodeServerError        = "server_error"
)

// APIError is the error type for every failed request: the server writes it,
// the SDK client parses it back.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes the error as an HTTP response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, ErrorResponse{
		Code:        e.Code,
		Description: e.Description,
	})
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the access token is missing, invalid or expired",
	}

	ErrInvalidCode = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidCode,
		Description: "the submitted code is not valid",
	}

	ErrNoActiveChallenge = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeNoActiveChallenge,
		Description: "no active challenge exists for this channel; request a new code",
	}

	ErrChallengeExpired = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeExpired,
		Description: "the challenge has expired; request a new code",
	}

	ErrChallengeExhausted = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeExhausted,
		Description: "too many failed attempts; request a new code",
	}

	ErrNotEnrolled = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeNotEnrolled,
		Description: "MFA is not enrolled for this user",
	}

	ErrAlreadyEnrolled = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeAlreadyEnrolled,
		Description: "MFA is already enrolled for this user",
	}

	ErrChannelUnavailable = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeChannelUnavailable,
		Description: "the challenge channel is not configured for this user",
	}

	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "the requested resource does not exist",
	}

	ErrForbidden = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeForbidden,
		Description: "the caller is not permitted to perform this operation",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "an internal error occurred",
	}
)

// parseAPIError turns a non-2xx response body into an *APIError. Unparseable
// bodies become a generic error carrying the status code.
func parseAPIError(statusCode int, body []byte) *APIError {
	var resp ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Code == "" {
		return &APIError{
			StatusCode:  statusCode,
			Code:        ErrorCodeServerError,
			Description: fmt.Sprintf("request failed with status %d", statusCode),
		}
	}
	return &APIError{
		StatusCode:  statusCode,
		Code:        resp.Code,
		Description: resp.Description,
	}
}
