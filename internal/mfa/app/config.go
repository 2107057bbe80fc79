package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer string // Issuer claim for assurance markers and TOTP provisioning URIs

	AuthIssuer        string // Required: expected issuer of access tokens from the primary auth service
	AuthPublicKeyFile string // Required: path to the primary auth service's Ed25519 public key (PEM)

	MarkerKeyFile string        // Optional: path to the Ed25519 marker signing key; ephemeral when empty
	MarkerTTL     time.Duration // Optional: assurance marker lifetime (default: 12h)

	GraceWindow time.Duration // Optional: how long a user may defer enrollment (default: 14 days)
	EnforceFrom time.Time     // Optional: date the MFA mandate took effect (RFC3339)

	DeviceTrustTTL       time.Duration // Optional: trusted device lifetime (default: 30 days)
	FingerprintIncludeIP bool          // Optional: fold truncated client IP into device fingerprints

	ChallengeTTL         time.Duration // Optional: one-time code lifetime (default: 5m)
	ChallengeMaxAttempts int           // Optional: wrong guesses before a challenge is exhausted (default: 5)

	DatabaseFile         string        // Optional: path to SQLite database file (default: ./mfa.db)
	PepperFile           string        // Optional: path to file containing pepper for code hashing (default: ./pepper)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:            getEnvOrDefault("MFA_ISSUER", "casefolio-stepup"),
		AuthIssuer:        os.Getenv("MFA_AUTH_ISSUER"),
		AuthPublicKeyFile: os.Getenv("MFA_AUTH_PUBLIC_KEY_FILE"),

		MarkerKeyFile: os.Getenv("MFA_MARKER_KEY_FILE"), // Optional: ephemeral when unset
		MarkerTTL:     getEnvDurationOrDefault("MFA_MARKER_TTL", 12*time.Hour),

		GraceWindow: getEnvDurationOrDefault("MFA_GRACE_WINDOW", 14*24*time.Hour),

		DeviceTrustTTL:       getEnvDurationOrDefault("MFA_DEVICE_TRUST_TTL", 30*24*time.Hour),
		FingerprintIncludeIP: getEnvBoolOrDefault("MFA_FINGERPRINT_INCLUDE_IP", false),

		ChallengeTTL:         getEnvDurationOrDefault("MFA_CHALLENGE_TTL", 5*time.Minute),
		ChallengeMaxAttempts: getEnvIntOrDefault("MFA_CHALLENGE_MAX_ATTEMPTS", 5),

		DatabaseFile:         getEnvOrDefault("MFA_DATABASE_FILE", "mfa.db"),
		PepperFile:           getEnvOrDefault("MFA_PEPPER_FILE", "pepper"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	// Parse the mandate date; a bare date or a full RFC3339 timestamp both work.
	if raw := os.Getenv("MFA_ENFORCE_FROM"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			cfg.EnforceFrom = t
		} else if t, err := time.Parse("2006-01-02", raw); err == nil {
			cfg.EnforceFrom = t
		}
		// If parsing fails, EnforceFrom remains zero (window measured from
		// profile creation only)
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
