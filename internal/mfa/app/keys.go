package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/casefolio/stepup/pkg/cryptox"
	"github.com/casefolio/stepup/pkg/jwtx"
)

const markerKID = "mfa-marker"

// InitMarkerSigner loads or creates the Ed25519 key that signs session
// assurance markers.
//
// With MarkerKeyFile set the key is loaded from disk, generated on first
// start, so markers survive restarts. Without it a fresh key is generated
// in memory and every outstanding marker becomes invalid on restart, which
// only forces users to re-verify, never locks them out.
func InitMarkerSigner(cfg Config, logger *slog.Logger) (*jwtx.EdDSASigner, error) {
	if cfg.MarkerKeyFile == "" {
		pemKey, err := cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, fmt.Errorf("failed to generate marker key: %w", err)
		}
		logger.Warn("ephemeral marker key generated, outstanding assurance markers are now invalid")
		return jwtx.NewSignerEdDSA(markerKID, pemKey)
	}

	pemKey, err := os.ReadFile(cfg.MarkerKeyFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		pemKey, err = cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, fmt.Errorf("failed to generate marker key: %w", err)
		}
		if err := os.WriteFile(cfg.MarkerKeyFile, pemKey, 0o600); err != nil {
			return nil, fmt.Errorf("failed to write marker key file: %w", err)
		}
		logger.Info("marker key generated", "path", cfg.MarkerKeyFile)
	case err != nil:
		return nil, fmt.Errorf("failed to read marker key file: %w", err)
	default:
		logger.Info("marker key loaded", "path", cfg.MarkerKeyFile)
	}

	return jwtx.NewSignerEdDSA(markerKID, pemKey)
}

// InitAuthVerifier builds the verifier for access tokens minted by the
// primary auth service. The public key file and expected issuer are both
// required; this service never accepts unverified identity.
func InitAuthVerifier(cfg Config) (jwtx.Verifier, error) {
	if cfg.AuthPublicKeyFile == "" {
		return nil, errors.New("MFA_AUTH_PUBLIC_KEY_FILE is required")
	}
	if cfg.AuthIssuer == "" {
		return nil, errors.New("MFA_AUTH_ISSUER is required")
	}

	pemKey, err := os.ReadFile(cfg.AuthPublicKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read auth public key: %w", err)
	}

	pub, err := jwtx.ParseEd25519PublicPEM(pemKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse auth public key: %w", err)
	}

	// No audience validation: access tokens carry a dynamic audience set by
	// the auth service per client.
	return jwtx.NewVerifierEdDSA(pub, cfg.AuthIssuer, nil), nil
}
