// Package config provides configuration management for the adaptive
// evaluation service.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"
)

// EnvPrefix is the prefix for every environment variable the service reads.
const EnvPrefix = "ADAPTIVE"

// ServiceConfig holds configuration for the gRPC evaluation service.
type ServiceConfig struct {
	Host           string
	Port           int
	MaxConnections int
	RequestTimeout time.Duration
	DatabaseURL    string

	// Engine settings
	Locale           string
	CombinatorPolicy string

	// RecordEvaluations stores every served evaluation in the audit log.
	RecordEvaluations bool
}

// DefaultServiceConfig returns configuration with default values.
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		Host:              "0.0.0.0",
		Port:              50051,
		MaxConnections:    1000,
		RequestTimeout:    30 * time.Second,
		DatabaseURL:       "sqlite://./data/adaptive.db",
		Locale:            "en-US",
		CombinatorPolicy:  "collect-all",
		RecordEvaluations: true,
	}
}

// HMACSecrets extracts HMAC secrets from environment variables.
// Supports ADAPTIVE_HMAC_SECRET (single) and ADAPTIVE_HMAC_SECRET_N (rotation).
// Returns map of secret_id -> decoded secret bytes.
// Secret IDs are UUIDv7 (32 hex chars without hyphens) matching API key format.
func HMACSecrets() (map[string][]byte, error) {
	secrets := make(map[string][]byte)
	single := EnvPrefix + "_HMAC_SECRET"

	// Format: <secret_id>:<base64_secret>
	if val := os.Getenv(single); val != "" {
		secretID, decoded, err := ParseHMACSecretWithID(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", single, err)
		}
		secrets[secretID] = decoded
	}

	// Numbered secrets keep old and new keys valid during rotation
	for i := 1; ; i++ {
		key := fmt.Sprintf("%s_%d", single, i)
		val := os.Getenv(key)
		if val == "" {
			break
		}
		secretID, decoded, err := ParseHMACSecretWithID(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		if _, exists := secrets[secretID]; exists {
			return nil, fmt.Errorf("duplicate secret_id '%s' found in environment variables (check %s and %s_* for conflicts)", secretID, single, single)
		}
		secrets[secretID] = decoded
	}

	return secrets, nil
}

// ParseHMACSecret decodes a base64-encoded HMAC secret.
func ParseHMACSecret(envValue string) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(envValue))
	if err != nil {
		return nil, fmt.Errorf("invalid base64 encoding: %w", err)
	}
	if len(decoded) < 32 {
		return nil, fmt.Errorf("secret must be at least 32 bytes, got %d", len(decoded))
	}
	return decoded, nil
}

// ParseHMACSecretWithID parses secret_id:base64_secret format.
// Secret ID must be 32 hex chars (UUIDv7 without hyphens).
func ParseHMACSecretWithID(envValue string) (secretID string, secret []byte, err error) {
	parts := strings.SplitN(strings.TrimSpace(envValue), ":", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("format must be <secret_id>:<base64_secret>")
	}

	secretID = parts[0]
	if len(secretID) != 32 {
		return "", nil, fmt.Errorf("secret_id must be 32 hex chars (UUIDv7 without hyphens)")
	}
	for _, c := range secretID {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return "", nil, fmt.Errorf("secret_id must be hex chars only")
		}
	}

	secret, err = ParseHMACSecret(parts[1])
	if err != nil {
		return "", nil, err
	}
	return secretID, secret, nil
}
