package service

import (
	"context"

	"github.com/casefolio/stepup/pkg/httpx"
)

// ScopeMFAAdmin allows disabling MFA for other users.
const ScopeMFAAdmin = "mfa:admin"

// Authorizer is the RBAC collaborator consulted for privileged operations.
type Authorizer interface {
	// CanDisableMFA returns ErrForbidden when the acting user may not
	// disable MFA for the target user.
	CanDisableMFA(ctx context.Context, actingUserID, targetUserID string) error
}

// ScopeAuthorizer authorizes from the token scopes primary auth granted the
// caller: users may disable their own MFA, and holders of ScopeMFAAdmin may
// disable anyone's.
type ScopeAuthorizer struct{}

func (ScopeAuthorizer) CanDisableMFA(ctx context.Context, actingUserID, targetUserID string) error {
	if actingUserID != "" && actingUserID == targetUserID {
		return nil
	}
	for _, s := range httpx.ScopesFromContext(ctx) {
		if s == ScopeMFAAdmin {
			return nil
		}
	}
	return ErrForbidden
}
