package google

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

var ErrNotVerified = errors.New("identity not verified")

// Identity is the verified subset of the provider's ID-token payload the
// auth service needs.
type Identity struct {
	Email         string
	EmailVerified bool
	Name          string
	AssertionID   string // jti of the provider token
}

// IdentityProvider verifies an externally issued ID token and returns the
// claims it asserts.
type IdentityProvider interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

// Provider validates Google ID tokens against the configured OAuth client id.
type Provider struct {
	ClientID string
}

func NewProvider(clientID string) *Provider {
	return &Provider{ClientID: clientID}
}

func (p *Provider) Verify(ctx context.Context, token string) (*Identity, error) {
	payload, err := idtoken.Validate(ctx, token, p.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotVerified, err)
	}

	identity := &Identity{
		Email:       claimString(payload.Claims, "email"),
		Name:        claimString(payload.Claims, "name"),
		AssertionID: claimString(payload.Claims, "jti"),
	}
	if v, ok := payload.Claims["email_verified"].(bool); ok {
		identity.EmailVerified = v
	}
	return identity, nil
}

func claimString(claims map[string]any, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
