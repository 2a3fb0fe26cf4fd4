package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Verifier validates bearer tokens minted by an external identity provider
// and returns the verified email address they assert.
type Verifier interface {
	Verify(ctx context.Context, raw string) (string, error)
}

type oidcVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers issuer and verifies ID tokens for clientID.
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider: %w", err)
	}
	return newOIDCVerifier(provider.Verifier(&oidc.Config{ClientID: clientID})), nil
}

func newOIDCVerifier(v *oidc.IDTokenVerifier) *oidcVerifier {
	return &oidcVerifier{verifier: v}
}

func (v *oidcVerifier) Verify(ctx context.Context, raw string) (string, error) {
	token, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := token.Claims(&claims); err != nil {
		return "", fmt.Errorf("%w: decode claims: %w", ErrUnauthorized, err)
	}

	if claims.Email == "" {
		return "", fmt.Errorf("%w: token has no email claim", ErrUnauthorized)
	}
	if !claims.EmailVerified {
		return "", fmt.Errorf("%w: email not verified by issuer", ErrUnauthorized)
	}
	return strings.ToLower(claims.Email), nil
}
