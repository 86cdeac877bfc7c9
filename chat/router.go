package chat

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/loophq/go-chat-server/messages"
	"github.com/loophq/go-chat-server/registry"
)

// Emitter is the transport side of the coordinator: it delivers one event to
// one connection, best-effort and non-blocking, and can force a connection
// closed. Emit reports whether the event was handed to the transport.
type Emitter interface {
	Emit(connectionID, event string, data any) bool
	Close(connectionID string)
}

// Router delivers direct messages and typing signals between live sessions.
// Every delivery re-resolves the recipient through the registry and enforces
// tenant equality; the tenant check is a security boundary and runs even when
// the recipient was found.
type Router struct {
	registry *registry.Registry
	emitter  Emitter
}

func NewRouter(reg *registry.Registry, emitter Emitter) (*Router, error) {
	if reg == nil {
		return nil, errors.New("[NewRouter] registry is required")
	}
	if emitter == nil {
		return nil, errors.New("[NewRouter] emitter is required")
	}
	return &Router{registry: reg, emitter: emitter}, nil
}

// RouteDirect delivers an already-persisted message to its recipient and a
// delivery confirmation back to the sender. Returns RecipientOfflineErr or
// CrossTenantErr when the message is dropped; a drop is terminal for the
// attempt, nothing is queued or retried.
func (r *Router) RouteDirect(sender *registry.Session, message *messages.Message) error {
	recipient := r.registry.ResolveUser(message.RecipientID)
	if recipient == nil {
		return errors.Wrapf(RecipientOfflineErr, "[Router.RouteDirect] recipient %s", message.RecipientID)
	}
	if recipient.TenantID != sender.TenantID {
		return errors.Wrapf(CrossTenantErr, "[Router.RouteDirect] sender tenant %s, recipient tenant %s", sender.TenantID, recipient.TenantID)
	}

	r.emitter.Emit(recipient.ConnectionID, EventNewMessage, NewMessagePayload{
		ID: message.ID,
		From: UserRef{
			ID:          sender.UserID,
			Email:       sender.Email,
			DisplayName: sender.DisplayName,
		},
		RecipientID: message.RecipientID,
		Body:        message.Body,
		ProjectID:   message.ProjectID,
		CreatedAt:   message.CreatedAt,
	})
	r.emitter.Emit(sender.ConnectionID, EventMessageSent, MessageSentPayload{
		RecipientID: message.RecipientID,
		Body:        message.Body,
		ProjectID:   message.ProjectID,
		Timestamp:   message.CreatedAt,
	})
	return nil
}

// PushToUser is the narrow primitive the HTTP layer uses to notify a user of
// an externally persisted event. Never raises, never queues.
func (r *Router) PushToUser(userID, event string, data any) bool {
	recipient := r.registry.ResolveUser(userID)
	if recipient == nil {
		return false
	}
	return r.emitter.Emit(recipient.ConnectionID, event, data)
}

// Broadcast delivers an event to every live session of the tenant, skipping
// the excluded connection when given. Membership is recomputed from the
// registry at send time.
func (r *Router) Broadcast(tenantID, event string, data any, excludeConnectionID string) {
	for _, session := range r.registry.TenantSessions(tenantID, excludeConnectionID) {
		r.emitter.Emit(session.ConnectionID, event, data)
	}
}

// RelayTyping forwards an ephemeral typing signal to the recipient. Purely a
// relay: no state is kept about active typing sessions and there is no
// timeout auto-clear.
func (r *Router) RelayTyping(sender *registry.Session, recipientID string, starting bool) error {
	recipient := r.registry.ResolveUser(recipientID)
	if recipient == nil {
		return errors.Wrapf(RecipientOfflineErr, "[Router.RelayTyping] recipient %s", recipientID)
	}
	if recipient.TenantID != sender.TenantID {
		return errors.Wrapf(CrossTenantErr, "[Router.RelayTyping] sender tenant %s, recipient tenant %s", sender.TenantID, recipient.TenantID)
	}

	if starting {
		r.emitter.Emit(recipient.ConnectionID, EventUserTyping, UserTypingPayload{
			UserID:      sender.UserID,
			DisplayName: sender.DisplayName,
		})
	} else {
		r.emitter.Emit(recipient.ConnectionID, EventUserStoppedTyping, UserStoppedTypingPayload{
			UserID: sender.UserID,
		})
	}
	return nil
}

func logDrop(op string, sender *registry.Session, recipientID string, err error) {
	log.Debug().
		Str("op", op).
		Str("sender", sender.UserID).
		Str("recipient", recipientID).
		Err(err).
		Msg("delivery dropped")
}
