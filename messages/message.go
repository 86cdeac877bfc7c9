// Package messages defines the durable direct-message record and the store
// it is persisted to. The coordinator appends on every send (both the HTTP
// and the streaming entry points) and reads back time-ordered history.
package messages

import (
	"time"

	"github.com/google/uuid"
)

// Message is one persisted direct message between two users of a tenant.
type Message struct {
	ID          string    `json:"id" bson:"_id"`
	TenantID    string    `json:"tenant_id" bson:"tenant_id"`
	ProjectID   *int64    `json:"project_id,omitempty" bson:"project_id,omitempty"`
	FromUser    string    `json:"from_user" bson:"from_user"`
	RecipientID string    `json:"recipient_id" bson:"recipient_id"`
	Body        string    `json:"body" bson:"body"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// New builds a message with a fresh ID and the given creation time.
func New(tenantID string, projectID *int64, fromUser, recipientID, body string, createdAt time.Time) *Message {
	return &Message{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		ProjectID:   projectID,
		FromUser:    fromUser,
		RecipientID: recipientID,
		Body:        body,
		CreatedAt:   createdAt.UTC(),
	}
}
