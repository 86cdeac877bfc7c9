package messages

import "context"

// Store is the append-on-write durable message log. History returns the
// conversation between the two users within the tenant (and project, when
// given) in chronological order.
type Store interface {
	Append(ctx context.Context, message *Message) error
	History(ctx context.Context, tenantID, userA, userB string, projectID *int64, limit, offset int) ([]*Message, error)
}
