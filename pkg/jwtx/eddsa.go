package jwtx

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrAudience    = errors.New("jwtx: audience mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// EdDSASigner signs tokens with a single Ed25519 key. The engine uses one
// for assurance markers; the e2e harness uses another to mint access tokens
// in place of the real primary auth service.
type EdDSASigner struct {
	kid string
	key ed25519.PrivateKey
	pub ed25519.PublicKey
}

// NewSignerEdDSA loads an Ed25519 private key from PKCS8 PEM bytes.
func NewSignerEdDSA(kid string, pemKey []byte) (*EdDSASigner, error) {
	key, err := ParseEd25519PrivatePEM(pemKey)
	if err != nil {
		return nil, err
	}

	return &EdDSASigner{
		kid: kid,
		key: key,
		pub: key.Public().(ed25519.PublicKey),
	}, nil
}

func (s *EdDSASigner) Alg() string { return jwt.SigningMethodEdDSA.Alg() }
func (s *EdDSASigner) KID() string { return s.kid }

// Public returns the verification key for this signer.
func (s *EdDSASigner) Public() ed25519.PublicKey { return s.pub }

// Sign serializes and signs the given claims.
func (s *EdDSASigner) Sign(claims jwt.Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// EdDSAVerifier validates access tokens signed by primary auth using its
// published Ed25519 public key.
type EdDSAVerifier struct {
	pub    ed25519.PublicKey
	issuer string
	aud    []string
}

// NewVerifierEdDSA creates a verifier for a single Ed25519 public key.
func NewVerifierEdDSA(pub ed25519.PublicKey, issuer string, aud []string) *EdDSAVerifier {
	return &EdDSAVerifier{pub: pub, issuer: issuer, aud: aud}
}

// Verify validates the JWT string and returns its parsed claims.
func (v *EdDSAVerifier) Verify(tokenStr string) (Claims, error) {
	claims := Claims{}
	if err := parseEdDSA(tokenStr, v.pub, &claims); err != nil {
		return Claims{}, err
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateAudience(v.aud); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

// VerifyAssurance parses and verifies a session assurance marker. Expiry is
// checked here; fingerprint and session binding are the engine's job.
func VerifyAssurance(pub ed25519.PublicKey, tokenStr string) (*AssuranceClaims, error) {
	claims := &AssuranceClaims{}
	if err := parseEdDSA(tokenStr, pub, claims); err != nil {
		return nil, err
	}
	if err := claims.ValidateExpiry(); err != nil {
		return nil, err
	}
	return claims, nil
}

func parseEdDSA(tokenStr string, pub ed25519.PublicKey, claims jwt.Claims) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		// Registered-claim windows are validated explicitly afterwards so
		// failures map onto the package's sentinel errors.
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return pub, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if !token.Valid {
		return ErrInvalidSig
	}
	return nil
}

// ParseEd25519PrivatePEM decodes a PKCS8 PEM Ed25519 private key.
func ParseEd25519PrivatePEM(pemKey []byte) (ed25519.PrivateKey, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for Ed25519 key")
	}
	if block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("jwtx: expected PRIVATE KEY, got %q (Ed25519 requires PKCS8)", block.Type)
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}

	key, ok := priv.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: not an Ed25519 private key")
	}
	return key, nil
}

// ParseEd25519PublicPEM decodes a PKIX PEM Ed25519 public key.
func ParseEd25519PublicPEM(pemKey []byte) (ed25519.PublicKey, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for Ed25519 public key")
	}
	if block.Type != "PUBLIC KEY" {
		return nil, fmt.Errorf("jwtx: expected PUBLIC KEY, got %q", block.Type)
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKIX: %w", err)
	}

	key, ok := pub.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("jwtx: not an Ed25519 public key")
	}
	return key, nil
}

// MarshalEd25519PublicPEM encodes a public key as PKIX PEM, the form handed
// to collaborating services for marker verification.
func MarshalEd25519PublicPEM(pub ed25519.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("jwtx: marshal PKIX: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}
