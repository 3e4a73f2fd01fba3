package googleauth

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/api/idtoken"

	"github.com/astralabs/astra-backend/pkg/config"
)

// Claims carries the identity fields the API reads from a Google ID token.
type Claims struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// Verifier validates Google ID tokens against the configured OAuth client.
type Verifier struct {
	audience string
}

func NewVerifier(cfg config.GoogleConfig) (*Verifier, error) {
	audience := strings.TrimSpace(cfg.OAuthClientID)
	if audience == "" {
		return nil, errors.New("google oauth client id is required")
	}
	return &Verifier{audience: audience}, nil
}

// Verify checks the token's signature, expiry, and audience, and returns the
// identity claims.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (Claims, error) {
	payload, err := idtoken.Validate(ctx, rawToken, v.audience)
	if err != nil {
		return Claims{}, err
	}

	claims := Claims{Subject: payload.Subject}
	if s, ok := payload.Claims["email"].(string); ok {
		claims.Email = s
	}
	if s, ok := payload.Claims["name"].(string); ok {
		claims.Name = s
	}
	if s, ok := payload.Claims["picture"].(string); ok {
		claims.Picture = s
	}
	return claims, nil
}
