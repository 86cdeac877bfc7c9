package identity

import (
	"context"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
)

var _ Verifier = (*OIDCVerifier)(nil)

// OIDCVerifier validates ID tokens minted by an external OIDC issuer against
// the issuer's published signing keys. Used when the deployment delegates
// authentication to an upstream identity provider instead of the local HMAC
// secret.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier fetches the issuer's discovery document. The clientID is
// enforced as the token audience.
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, errors.Wrap(err, "[NewOIDCVerifier] oidc.NewProvider")
	}
	return &OIDCVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	// A structurally broken token never reaches the issuer's keys.
	if len(strings.Split(rawToken, ".")) != 3 {
		return nil, errors.Wrap(MalformedCredentialErr, "[OIDCVerifier.Verify] not a JWT")
	}

	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, errors.Wrap(InvalidCredentialErr, err.Error())
	}

	var tokenClaims struct {
		Tenant string `json:"tenant"`
		Email  string `json:"email"`
	}
	if err := idToken.Claims(&tokenClaims); err != nil {
		return nil, errors.Wrap(InvalidCredentialErr, "[OIDCVerifier.Verify] error extracting claims")
	}

	return &Claims{UserID: idToken.Subject, TenantID: tokenClaims.Tenant, Email: tokenClaims.Email}, nil
}
