package registry

// Session is the authenticated identity bound to one live connection. A
// Session is created only after the handshake credential has been verified,
// is never mutated, and is destroyed atomically on disconnect.
type Session struct {
	ConnectionID string // transport-assigned, unique, opaque
	UserID       string
	TenantID     string
	Email        string
	DisplayName  string
}

func NewSession(connectionID, userID, tenantID, email, displayName string) *Session {
	return &Session{
		ConnectionID: connectionID,
		UserID:       userID,
		TenantID:     tenantID,
		Email:        email,
		DisplayName:  displayName,
	}
}
