package stepupsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Session is an authenticated view of the service for one access token.
type Session struct {
	client      *Client
	accessToken string
}

// Status returns the caller's enrollment summary.
func (s *Session) Status(ctx context.Context) (*StatusResponse, error) {
	var out StatusResponse
	if err := s.doJSON(ctx, http.MethodGet, "/v1/mfa/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Assurance evaluates the caller's current assurance state, optionally
// presenting a marker from an earlier verification.
func (s *Session) Assurance(ctx context.Context, marker string) (*AssuranceResponse, error) {
	var out AssuranceResponse
	req := AssuranceRequest{Marker: marker}
	if err := s.doJSON(ctx, http.MethodPost, "/v1/mfa/assurance", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EnrollTOTP starts TOTP enrollment. The returned secret and backup codes
// are shown exactly once.
func (s *Session) EnrollTOTP(ctx context.Context) (*EnrollResponse, error) {
	var out EnrollResponse
	if err := s.doJSON(ctx, http.MethodPost, "/v1/mfa/totp/enroll", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmTOTP completes enrollment by proving the authenticator works.
func (s *Session) ConfirmTOTP(ctx context.Context, code string) error {
	return s.doJSON(ctx, http.MethodPost, "/v1/mfa/totp/confirm", ConfirmRequest{Code: code}, nil)
}

// IssueChallenge requests a one-time code on a channel ("sms" or "email").
func (s *Session) IssueChallenge(ctx context.Context, channel string) error {
	return s.doJSON(ctx, http.MethodPost, "/v1/mfa/challenges", ChallengeRequest{Channel: channel}, nil)
}

// Verify submits a verification attempt and returns the assurance marker on
// success.
func (s *Session) Verify(ctx context.Context, req VerifyRequest) (*VerifyResponse, error) {
	var out VerifyResponse
	if err := s.doJSON(ctx, http.MethodPost, "/v1/mfa/verify", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDevices returns the caller's trusted devices.
func (s *Session) ListDevices(ctx context.Context) (*DevicesResponse, error) {
	var out DevicesResponse
	if err := s.doJSON(ctx, http.MethodGet, "/v1/mfa/devices", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TrustDevice trusts the current device. The request must carry a marker
// proving this device completed verification.
func (s *Session) TrustDevice(ctx context.Context, req TrustDeviceRequest) (*DeviceResponse, error) {
	var out DeviceResponse
	if err := s.doJSON(ctx, http.MethodPost, "/v1/mfa/devices", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevokeDevice removes one trusted device by ID.
func (s *Session) RevokeDevice(ctx context.Context, deviceID string) error {
	path := "/v1/mfa/devices/" + url.PathEscape(deviceID)
	return s.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// RegenerateBackupCodes replaces the caller's backup-code batch.
func (s *Session) RegenerateBackupCodes(ctx context.Context) (*BackupCodesResponse, error) {
	var out BackupCodesResponse
	if err := s.doJSON(ctx, http.MethodPost, "/v1/mfa/backup-codes", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfigureChannels sets SMS/email challenge destinations.
func (s *Session) ConfigureChannels(ctx context.Context, req ChannelsRequest) error {
	return s.doJSON(ctx, http.MethodPut, "/v1/mfa/channels", req, nil)
}

// AdminDisable disables MFA for another user. Requires the mfa:admin scope.
func (s *Session) AdminDisable(ctx context.Context, userID string) error {
	path := "/v1/admin/mfa/" + url.PathEscape(userID)
	return s.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// Disable disables the caller's own MFA.
func (s *Session) Disable(ctx context.Context) error {
	return s.doJSON(ctx, http.MethodDelete, "/v1/mfa", nil, nil)
}

// doJSON performs an authenticated request with optional JSON body and
// decodes a 2xx response into out (when non-nil). Non-2xx responses come
// back as *APIError.
func (s *Session) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.client.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return parseAPIError(resp.StatusCode, bodyBytes)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
