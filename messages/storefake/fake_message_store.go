package storefake

import (
	"context"
	"sort"
	"sync"

	"github.com/loophq/go-chat-server/messages"
)

var _ messages.Store = (*FakeMessageStore)(nil)

// FakeMessageStore is the in-memory store used in DEV and in tests.
type FakeMessageStore struct {
	lock     sync.RWMutex
	messages []*messages.Message
}

func NewFakeMessageStore() *FakeMessageStore {
	return &FakeMessageStore{}
}

func (ms *FakeMessageStore) Append(_ context.Context, message *messages.Message) error {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	copied := *message
	ms.messages = append(ms.messages, &copied)
	return nil
}

func (ms *FakeMessageStore) History(_ context.Context, tenantID, userA, userB string, projectID *int64, limit, offset int) ([]*messages.Message, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	conversation := make([]*messages.Message, 0)
	for _, m := range ms.messages {
		if m.TenantID != tenantID {
			continue
		}
		if !betweenUsers(m, userA, userB) {
			continue
		}
		if !sameProject(m.ProjectID, projectID) {
			continue
		}
		conversation = append(conversation, m)
	}

	// Newest first for paging, then reversed to chronological order.
	sort.Slice(conversation, func(i, j int) bool {
		return conversation[i].CreatedAt.After(conversation[j].CreatedAt)
	})
	if offset >= len(conversation) {
		return []*messages.Message{}, nil
	}
	conversation = conversation[offset:]
	if limit > 0 && limit < len(conversation) {
		conversation = conversation[:limit]
	}
	reverse(conversation)
	return conversation, nil
}

func (ms *FakeMessageStore) Len() int {
	ms.lock.RLock()
	defer ms.lock.RUnlock()
	return len(ms.messages)
}

func betweenUsers(m *messages.Message, userA, userB string) bool {
	return (m.FromUser == userA && m.RecipientID == userB) ||
		(m.FromUser == userB && m.RecipientID == userA)
}

func sameProject(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func reverse(m []*messages.Message) {
	for i, j := 0, len(m)-1; i < j; i, j = i+1, j-1 {
		m[i], m[j] = m[j], m[i]
	}
}
