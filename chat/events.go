// Package chat implements the coordinator core: the closed set of streaming
// events, the direct-message router, and the presence notifier. Everything in
// this package operates against the live registry; nothing here blocks on
// external services.
package chat

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// Client → coordinator event names.
const (
	EventPrivateMessage = "private_message"
	EventTypingStart    = "typing_start"
	EventTypingStop     = "typing_stop"
)

// Coordinator → client event names.
const (
	EventNewMessage        = "new_message"
	EventMessageSent       = "message_sent"
	EventMessageError      = "message_error"
	EventUserOnline        = "user_online"
	EventUserOffline       = "user_offline"
	EventUserTyping        = "user_typing"
	EventUserStoppedTyping = "user_stopped_typing"
	EventSessionReplaced   = "session_replaced"
	EventError             = "error"
)

// Delivery failure reasons reported to the sender. Cross-tenant drops report
// recipient_offline so presence never leaks across tenant boundaries.
const (
	ReasonRecipientOffline = "recipient_offline"
	ReasonInternalError    = "internal_error"
)

// Envelope is the JSON frame exchanged over the streaming transport.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound is the closed set of client-originated events. Unrecognized or
// malformed frames are rejected at the boundary and never reach the router.
type Inbound interface {
	inboundEvent() string
}

type PrivateMessagePayload struct {
	RecipientID string `json:"recipientId"`
	Body        string `json:"body"`
	ProjectID   *int64 `json:"projectId,omitempty"`
}

func (PrivateMessagePayload) inboundEvent() string { return EventPrivateMessage }

type TypingStartPayload struct {
	RecipientID string `json:"recipientId"`
}

func (TypingStartPayload) inboundEvent() string { return EventTypingStart }

type TypingStopPayload struct {
	RecipientID string `json:"recipientId"`
}

func (TypingStopPayload) inboundEvent() string { return EventTypingStop }

// DecodeInbound parses a raw frame into one of the typed inbound payloads.
func DecodeInbound(raw []byte) (Inbound, error) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errors.Wrap(MalformedEventErr, err.Error())
	}

	switch envelope.Event {
	case EventPrivateMessage:
		var payload PrivateMessagePayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return nil, errors.Wrap(MalformedEventErr, err.Error())
		}
		if payload.RecipientID == "" || payload.Body == "" {
			return nil, errors.Wrap(MalformedEventErr, "private_message requires recipientId and body")
		}
		return payload, nil

	case EventTypingStart:
		var payload TypingStartPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return nil, errors.Wrap(MalformedEventErr, err.Error())
		}
		if payload.RecipientID == "" {
			return nil, errors.Wrap(MalformedEventErr, "typing_start requires recipientId")
		}
		return payload, nil

	case EventTypingStop:
		var payload TypingStopPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return nil, errors.Wrap(MalformedEventErr, err.Error())
		}
		if payload.RecipientID == "" {
			return nil, errors.Wrap(MalformedEventErr, "typing_stop requires recipientId")
		}
		return payload, nil
	}
	return nil, errors.Wrapf(UnknownEventErr, "event %q", envelope.Event)
}

// UserRef identifies the sender inside a new_message payload.
type UserRef struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type NewMessagePayload struct {
	ID          string    `json:"id"`
	From        UserRef   `json:"from_user"`
	RecipientID string    `json:"recipient_id"`
	Body        string    `json:"body"`
	ProjectID   *int64    `json:"project_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type MessageSentPayload struct {
	RecipientID string    `json:"recipientId"`
	Body        string    `json:"body"`
	ProjectID   *int64    `json:"projectId,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type MessageErrorPayload struct {
	RecipientID string `json:"recipientId"`
	Reason      string `json:"reason"`
}

type UserOnlinePayload struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type UserOfflinePayload struct {
	UserID string `json:"userId"`
}

type UserTypingPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type UserStoppedTypingPayload struct {
	UserID string `json:"userId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
