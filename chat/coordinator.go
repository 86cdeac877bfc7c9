package chat

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/loophq/go-chat-server/messages"
	"github.com/loophq/go-chat-server/registry"
)

// PresenceAPI is the narrow capability handed to the HTTP layer: push an
// event to a user's live connection and read the set of online users. The
// HTTP layer never touches the registry or the router directly.
type PresenceAPI interface {
	PushToUser(userID, event string, data any) bool
	OnlineUserIDs() []string
}

// Coordinator owns a connection's life after the authentication gate: it
// admits the session into the registry, dispatches its inbound frames, and
// evicts it on disconnect. Messages arriving over the streaming transport are
// persisted before routing so both send paths leave the same durable history.
type Coordinator struct {
	registry *registry.Registry
	router   *Router
	notifier *Notifier
	store    messages.Store
	emitter  Emitter
	nowTime  func() time.Time // injectable for testing
}

var _ PresenceAPI = (*Coordinator)(nil)

// CoordinatorOption modifies the Coordinator instance.
type CoordinatorOption func(*Coordinator)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		c.nowTime = nowFunc
	}
}

func NewCoordinator(reg *registry.Registry, emitter Emitter, store messages.Store, options ...CoordinatorOption) (*Coordinator, error) {
	if reg == nil {
		return nil, errors.New("[NewCoordinator] registry is required")
	}
	if emitter == nil {
		return nil, errors.New("[NewCoordinator] emitter is required")
	}
	if store == nil {
		return nil, errors.New("[NewCoordinator] message store is required")
	}

	router, err := NewRouter(reg, emitter)
	if err != nil {
		return nil, errors.Wrap(err, "[NewCoordinator] NewRouter")
	}

	coordinator := &Coordinator{
		registry: reg,
		router:   router,
		notifier: NewNotifier(router),
		store:    store,
		emitter:  emitter,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(coordinator)
	}
	return coordinator, nil
}

// Admit registers an authenticated session and announces it to its tenant.
// When the same user already had a live connection, that connection is told
// it has been replaced and its transport is closed; only the new connection
// remains reachable by user ID.
func (c *Coordinator) Admit(session *registry.Session) {
	superseded := c.registry.Admit(session)
	if superseded != "" {
		c.emitter.Emit(superseded, EventSessionReplaced, struct{}{})
		c.emitter.Close(superseded)
		log.Info().
			Str("user", session.UserID).
			Str("superseded_connection", superseded).
			Msg("connection replaced by newer session")
	}

	c.notifier.AnnounceOnline(session)
	log.Info().
		Str("user", session.UserID).
		Str("tenant", session.TenantID).
		Str("connection", session.ConnectionID).
		Int("online", c.registry.Len()).
		Msg("session admitted")
}

// Disconnect evicts the connection and, if it was the user's active
// connection, announces the departure. A superseded connection's disconnect
// is silent: the user is still online through the replacement. Safe to call
// for connections that were never admitted.
func (c *Coordinator) Disconnect(connectionID string) {
	session, active := c.registry.Evict(connectionID)
	if session == nil {
		return
	}
	if active {
		c.notifier.AnnounceOffline(session)
	}
	log.Info().
		Str("user", session.UserID).
		Str("tenant", session.TenantID).
		Str("connection", connectionID).
		Bool("active", active).
		Int("online", c.registry.Len()).
		Msg("session evicted")
}

// HandleFrame processes one raw frame from the session's connection. Runs in
// the connection's own read goroutine; the persistence call may block there
// without holding any registry state.
func (c *Coordinator) HandleFrame(ctx context.Context, session *registry.Session, raw []byte) {
	event, err := DecodeInbound(raw)
	if err != nil {
		log.Warn().Str("connection", session.ConnectionID).Err(err).Msg("rejected inbound frame")
		c.emitter.Emit(session.ConnectionID, EventError, ErrorPayload{Message: "unrecognized or malformed event"})
		return
	}

	switch payload := event.(type) {
	case PrivateMessagePayload:
		c.handlePrivateMessage(ctx, session, payload)
	case TypingStartPayload:
		c.handleTyping(session, payload.RecipientID, true)
	case TypingStopPayload:
		c.handleTyping(session, payload.RecipientID, false)
	}
}

func (c *Coordinator) handlePrivateMessage(ctx context.Context, sender *registry.Session, payload PrivateMessagePayload) {
	message := messages.New(sender.TenantID, payload.ProjectID, sender.UserID, payload.RecipientID, payload.Body, c.nowTime())

	if err := c.store.Append(ctx, message); err != nil {
		log.Error().Str("sender", sender.UserID).Err(err).Msg("message persistence failed")
		c.emitter.Emit(sender.ConnectionID, EventMessageError, MessageErrorPayload{
			RecipientID: payload.RecipientID,
			Reason:      ReasonInternalError,
		})
		return
	}

	if err := c.router.RouteDirect(sender, message); err != nil {
		logDrop("route_direct", sender, payload.RecipientID, err)
		// Offline and cross-tenant drops report the same reason to the
		// sender; distinguishing them would leak presence across tenants.
		c.emitter.Emit(sender.ConnectionID, EventMessageError, MessageErrorPayload{
			RecipientID: payload.RecipientID,
			Reason:      ReasonRecipientOffline,
		})
	}
}

func (c *Coordinator) handleTyping(sender *registry.Session, recipientID string, starting bool) {
	if err := c.router.RelayTyping(sender, recipientID, starting); err != nil {
		// Typing signals are fire-and-forget; drops are not reported back.
		logDrop("relay_typing", sender, recipientID, err)
	}
}

// Now returns the coordinator's clock reading. The HTTP send path stamps
// messages with the same injectable clock the streaming path uses.
func (c *Coordinator) Now() time.Time {
	return c.nowTime()
}

// PushToUser implements PresenceAPI for the HTTP layer.
func (c *Coordinator) PushToUser(userID, event string, data any) bool {
	return c.router.PushToUser(userID, event, data)
}

// OnlineUserIDs implements PresenceAPI for the HTTP layer.
func (c *Coordinator) OnlineUserIDs() []string {
	return c.registry.AllUserIDs()
}
