package service

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/casefolio/stepup/internal/mfa/domain"
	"github.com/casefolio/stepup/internal/mfa/store"
	"github.com/casefolio/stepup/pkg/cryptox"
	"github.com/casefolio/stepup/pkg/idx"
)

const defaultTrustTTL = 30 * 24 * time.Hour

// RequestAttributes is the fixed set of request properties a device
// fingerprint is derived from. Raw values never reach storage; only the
// hash does.
type RequestAttributes struct {
	UserAgent      string
	AcceptLanguage string
	RemoteIP       string
}

// DeviceService owns trusted-device records and fingerprint derivation.
type DeviceService struct {
	Store store.Store

	// TrustTTL is the default lifetime of a trust entry.
	TrustTTL time.Duration

	// IncludeIP folds a truncated client IP (a /24 for IPv4, a /48 for
	// IPv6) into the fingerprint. Off by default: mobile clients change
	// address constantly and the churn costs more than the binding buys.
	IncludeIP bool
}

// Fingerprint derives the deterministic device fingerprint hash for a
// request.
func (s *DeviceService) Fingerprint(attrs RequestAttributes) string {
	parts := []string{
		strings.TrimSpace(attrs.UserAgent),
		strings.TrimSpace(attrs.AcceptLanguage),
	}
	if s.IncludeIP {
		parts = append(parts, ipPrefix(attrs.RemoteIP))
	}
	return cryptox.Fingerprint(strings.Join(parts, "\x1f"))
}

// IsTrusted reports whether an active trust entry exists for the
// fingerprint.
func (s *DeviceService) IsTrusted(ctx context.Context, userID, fingerprintHash string) (bool, error) {
	_, err := s.Store.TrustedDevices().GetActiveTrustedDevice(ctx, userID, fingerprintHash, time.Now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up trusted device: %w", err)
	}
	return true, nil
}

// Trust registers (or refreshes) trust for a fingerprint. Idempotent per
// (user, fingerprint): repeat calls extend expiry on the existing record.
func (s *DeviceService) Trust(ctx context.Context, userID, fingerprintHash, displayName string, ttl time.Duration) (domain.TrustedDevice, error) {
	if fingerprintHash == "" {
		return domain.TrustedDevice{}, fmt.Errorf("%w: empty fingerprint", ErrValidation)
	}
	if ttl <= 0 {
		ttl = s.TrustTTL
	}
	if ttl <= 0 {
		ttl = defaultTrustTTL
	}

	now := time.Now().UTC()
	dev, err := s.Store.TrustedDevices().UpsertTrustedDevice(ctx, domain.TrustedDevice{
		ID:              idx.New().String(),
		UserID:          userID,
		FingerprintHash: fingerprintHash,
		DisplayName:     displayName,
		CreatedAt:       now,
		ExpiresAt:       now.Add(ttl),
	})
	if err != nil {
		return domain.TrustedDevice{}, fmt.Errorf("failed to store trusted device: %w", err)
	}
	return dev, nil
}

// List returns the user's active trust entries.
func (s *DeviceService) List(ctx context.Context, userID string) ([]domain.TrustedDevice, error) {
	devices, err := s.Store.TrustedDevices().ListTrustedDevices(ctx, userID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list trusted devices: %w", err)
	}
	return devices, nil
}

// Revoke removes one trust entry. ErrNotFound covers both a bad ID and an
// entry owned by someone else; a caller can never distinguish the two.
func (s *DeviceService) Revoke(ctx context.Context, userID, deviceID string) error {
	ok, err := s.Store.TrustedDevices().DeleteTrustedDevice(ctx, userID, deviceID)
	if err != nil {
		return fmt.Errorf("failed to revoke trusted device: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// ipPrefix truncates an address to its routing prefix so a fingerprint
// survives neighbouring-address churn without storing the exact client IP.
func ipPrefix(remoteIP string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(remoteIP))
	if err != nil {
		return ""
	}

	bits := 48
	if addr.Is4() || addr.Is4In6() {
		addr = addr.Unmap()
		bits = 24
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return ""
	}
	return prefix.String()
}
