package chat

import "github.com/loophq/go-chat-server/registry"

// Notifier announces session arrivals and departures to the session's tenant
// peers. Membership comes from the live registry at announce time.
type Notifier struct {
	router *Router
}

func NewNotifier(router *Router) *Notifier {
	return &Notifier{router: router}
}

// AnnounceOnline tells the tenant a user connected. The new session itself is
// excluded from the fan-out; it has no need for its own echo.
func (n *Notifier) AnnounceOnline(session *registry.Session) {
	n.router.Broadcast(session.TenantID, EventUserOnline, UserOnlinePayload{
		UserID:      session.UserID,
		Email:       session.Email,
		DisplayName: session.DisplayName,
	}, session.ConnectionID)
}

// AnnounceOffline tells the tenant a user disconnected.
func (n *Notifier) AnnounceOffline(session *registry.Session) {
	n.router.Broadcast(session.TenantID, EventUserOffline, UserOfflinePayload{
		UserID: session.UserID,
	}, "")
}
