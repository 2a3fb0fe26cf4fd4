package config

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	EnvAuthSecret       = "BRIEFER_AUTH_SECRET"
	EnvAuthIssuer       = "BRIEFER_AUTH_ISSUER"
	EnvAuthTokenTTL     = "BRIEFER_AUTH_TOKEN_TTL"
	EnvAuthBcryptCost   = "BRIEFER_AUTH_BCRYPT_COST"
	EnvAuthOIDCIssuer   = "BRIEFER_AUTH_OIDC_ISSUER"
	EnvAuthOIDCClientID = "BRIEFER_AUTH_OIDC_CLIENT_ID"
)

// AuthConfig holds credential and token settings. OIDC bearer tokens are
// accepted in addition to locally issued tokens when OIDCIssuer is set.
type AuthConfig struct {
	Secret       string `toml:"secret"`
	Issuer       string `toml:"issuer"`
	TokenTTL     string `toml:"token_ttl"`
	BcryptCost   int    `toml:"bcrypt_cost"`
	OIDCIssuer   string `toml:"oidc_issuer"`
	OIDCClientID string `toml:"oidc_client_id"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AuthConfig) Finalize() error {
	if c.Issuer == "" {
		c.Issuer = "briefer"
	}
	if c.TokenTTL == "" {
		c.TokenTTL = "24h"
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = bcrypt.DefaultCost
	}

	envString(&c.Secret, EnvAuthSecret)
	envString(&c.Issuer, EnvAuthIssuer)
	envString(&c.TokenTTL, EnvAuthTokenTTL)
	envInt(&c.BcryptCost, EnvAuthBcryptCost)
	envString(&c.OIDCIssuer, EnvAuthOIDCIssuer)
	envString(&c.OIDCClientID, EnvAuthOIDCClientID)

	if len(c.Secret) < 16 {
		return fmt.Errorf("secret must be at least 16 bytes")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt_cost out of range: %d", c.BcryptCost)
	}
	if c.OIDCIssuer != "" && c.OIDCClientID == "" {
		return fmt.Errorf("oidc_client_id required when oidc_issuer is set")
	}
	return parseDuration("token_ttl", c.TokenTTL)
}

// Merge overwrites non-zero fields from overlay.
func (c *AuthConfig) Merge(overlay *AuthConfig) {
	if overlay.Secret != "" {
		c.Secret = overlay.Secret
	}
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.TokenTTL != "" {
		c.TokenTTL = overlay.TokenTTL
	}
	if overlay.BcryptCost != 0 {
		c.BcryptCost = overlay.BcryptCost
	}
	if overlay.OIDCIssuer != "" {
		c.OIDCIssuer = overlay.OIDCIssuer
	}
	if overlay.OIDCClientID != "" {
		c.OIDCClientID = overlay.OIDCClientID
	}
}

// TokenTTLDuration returns TokenTTL as a time.Duration.
func (c *AuthConfig) TokenTTLDuration() time.Duration {
	return duration(c.TokenTTL)
}
