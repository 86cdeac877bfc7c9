package storefake_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/loophq/go-chat-server/messages"
	"github.com/loophq/go-chat-server/messages/storefake"
)

const testTenantID = "tenant-1"

func seedConversation(t *testing.T, store *storefake.FakeMessageStore, count int) {
	t.Helper()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		message := messages.New(testTenantID, nil, "user-a", "user-b", "message", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.Append(context.Background(), message))
	}
}

func TestHistory_BothDirections(t *testing.T) {
	store := storefake.NewFakeMessageStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(context.Background(), messages.New(testTenantID, nil, "user-a", "user-b", "from a", base)))
	require.NoError(t, store.Append(context.Background(), messages.New(testTenantID, nil, "user-b", "user-a", "from b", base.Add(time.Minute))))
	require.NoError(t, store.Append(context.Background(), messages.New(testTenantID, nil, "user-a", "user-c", "different conversation", base.Add(2*time.Minute))))
	require.NoError(t, store.Append(context.Background(), messages.New("tenant-2", nil, "user-a", "user-b", "different tenant", base.Add(3*time.Minute))))

	conversation, err := store.History(context.Background(), testTenantID, "user-a", "user-b", nil, 50, 0)
	require.NoError(t, err)
	require.Len(t, conversation, 2)
	require.Equal(t, "from a", conversation[0].Body)
	require.Equal(t, "from b", conversation[1].Body)
}

func TestHistory_PagingFromNewest(t *testing.T) {
	store := storefake.NewFakeMessageStore()
	seedConversation(t, store, 10)

	// The first page is the newest messages, returned oldest first.
	page, err := store.History(context.Background(), testTenantID, "user-a", "user-b", nil, 3, 0)
	require.NoError(t, err)
	require.Len(t, page, 3)
	require.True(t, page[0].CreatedAt.Before(page[1].CreatedAt))
	require.True(t, page[1].CreatedAt.Before(page[2].CreatedAt))

	older, err := store.History(context.Background(), testTenantID, "user-a", "user-b", nil, 3, 3)
	require.NoError(t, err)
	require.Len(t, older, 3)
	require.True(t, older[2].CreatedAt.Before(page[0].CreatedAt))

	empty, err := store.History(context.Background(), testTenantID, "user-a", "user-b", nil, 3, 100)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestHistory_ProjectScoping(t *testing.T) {
	store := storefake.NewFakeMessageStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	projectID := int64(7)

	require.NoError(t, store.Append(context.Background(), messages.New(testTenantID, &projectID, "user-a", "user-b", "project", base)))
	require.NoError(t, store.Append(context.Background(), messages.New(testTenantID, nil, "user-a", "user-b", "general", base)))

	scoped, err := store.History(context.Background(), testTenantID, "user-a", "user-b", &projectID, 50, 0)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	require.Equal(t, "project", scoped[0].Body)

	// A nil project filter selects only messages outside any project.
	general, err := store.History(context.Background(), testTenantID, "user-a", "user-b", nil, 50, 0)
	require.NoError(t, err)
	require.Len(t, general, 1)
	require.Equal(t, "general", general[0].Body)
}

func TestAppend_CopiesMessage(t *testing.T) {
	store := storefake.NewFakeMessageStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	message := messages.New(testTenantID, nil, "user-a", "user-b", "original", base)
	require.NoError(t, store.Append(context.Background(), message))
	message.Body = "mutated after append"

	conversation, err := store.History(context.Background(), testTenantID, "user-a", "user-b", nil, 50, 0)
	require.NoError(t, err)
	require.Len(t, conversation, 1)
	require.Equal(t, "original", conversation[0].Body)
}
