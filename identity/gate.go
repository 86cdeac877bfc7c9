package identity

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/loophq/go-chat-server/directory"
	"github.com/loophq/go-chat-server/registry"
)

// Gate authenticates handshake credentials and resolves the claimed identity
// against the directory. A failed handshake terminates the connection attempt;
// there is no retry.
type Gate struct {
	verifier Verifier
	users    directory.UserRepo
}

func NewGate(verifier Verifier, users directory.UserRepo) (*Gate, error) {
	if verifier == nil {
		return nil, errors.New("[NewGate] verifier is required")
	}
	if users == nil {
		return nil, errors.New("[NewGate] users repo is required")
	}
	return &Gate{verifier: verifier, users: users}, nil
}

// Authenticate verifies the raw credential and returns the immutable session
// for the connection. connectionID is the transport-assigned identifier the
// session will be registered under.
func (g *Gate) Authenticate(ctx context.Context, connectionID, rawCredential string) (*registry.Session, error) {
	if strings.TrimSpace(rawCredential) == "" {
		return nil, MissingCredentialErr
	}

	claims, err := g.verifier.Verify(ctx, rawCredential)
	if err != nil {
		return nil, errors.Wrap(err, "[Gate.Authenticate] verify")
	}
	if claims.UserID == "" || claims.TenantID == "" {
		return nil, errors.Wrap(InvalidCredentialErr, "[Gate.Authenticate] credential lacks identity or tenant claim")
	}

	user, err := g.users.GetByID(claims.UserID)
	if err != nil {
		return nil, errors.Wrapf(UserNotFoundErr, "[Gate.Authenticate] user %s", claims.UserID)
	}
	if !user.InTenant(claims.TenantID) {
		return nil, errors.Wrapf(UserNotFoundErr, "[Gate.Authenticate] user %s not in tenant %s", claims.UserID, claims.TenantID)
	}

	return registry.NewSession(connectionID, user.ID, user.TenantID, user.Email, user.DisplayName), nil
}
