// Package identity implements the authentication gate: it turns the bearer
// credential presented at handshake time into a fully populated session, or
// rejects the handshake. Verification is a one-shot step; nothing in the
// connection's later life revalidates the credential.
package identity

import "context"

// Claims is the decoded content of a verified credential. UserID and TenantID
// are mandatory; a credential without them is rejected by the gate.
type Claims struct {
	UserID   string
	TenantID string
	Email    string
}

// Verifier decodes and validates a raw bearer credential. Implementations
// must return MalformedCredentialErr for credentials that cannot be parsed
// and InvalidCredentialErr for credentials that parse but fail verification.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}
