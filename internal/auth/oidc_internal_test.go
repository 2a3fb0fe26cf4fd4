package auth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

const testIssuer = "https://idp.example.com"

func staticVerifier(t *testing.T) (*oidcVerifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	keys := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	return newOIDCVerifier(oidc.NewVerifier(testIssuer, keys, &oidc.Config{ClientID: "briefer"})), key
}

func signIDToken(t *testing.T, key *rsa.PrivateKey, extra jwt.MapClaims) string {
	t.Helper()
	claims := jwt.MapClaims{
		"iss": testIssuer,
		"aud": "briefer",
		"sub": "user-1",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return raw
}

func TestOIDCVerify(t *testing.T) {
	v, key := staticVerifier(t)

	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   string
	}{
		{"verified email", jwt.MapClaims{"email": "Ada@Example.com", "email_verified": true}, "ada@example.com"},
		{"unverified email", jwt.MapClaims{"email": "victim@example.com", "email_verified": false}, ""},
		{"verification claim absent", jwt.MapClaims{"email": "victim@example.com"}, ""},
		{"username only", jwt.MapClaims{"preferred_username": "victim@example.com", "email_verified": true}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email, err := v.Verify(context.Background(), signIDToken(t, key, tt.claims))
			if tt.want == "" {
				if !errors.Is(err, ErrUnauthorized) {
					t.Errorf("email = %q, err = %v; want ErrUnauthorized", email, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("verify: %v", err)
			}
			if email != tt.want {
				t.Errorf("email = %q, want %q", email, tt.want)
			}
		})
	}
}

func TestOIDCVerifyRejectsForeignKey(t *testing.T) {
	v, _ := staticVerifier(t)
	_, other := staticVerifier(t)

	raw := signIDToken(t, other, jwt.MapClaims{"email": "ada@example.com", "email_verified": true})
	if _, err := v.Verify(context.Background(), raw); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}
