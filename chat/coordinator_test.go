package chat_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/loophq/go-chat-server/chat"
	"github.com/loophq/go-chat-server/messages"
	"github.com/loophq/go-chat-server/messages/storefake"
	"github.com/loophq/go-chat-server/registry"
)

// testFixture holds the coordinator under test with its fakes.
type testFixture struct {
	registry    *registry.Registry
	emitter     *fakeEmitter
	store       *storefake.FakeMessageStore
	coordinator *chat.Coordinator
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	reg := registry.New()
	emitter := newFakeEmitter()
	store := storefake.NewFakeMessageStore()

	coordinator, err := chat.NewCoordinator(reg, emitter, store, chat.WithNowTime(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	return &testFixture{
		registry:    reg,
		emitter:     emitter,
		store:       store,
		coordinator: coordinator,
	}
}

// failingStore rejects every append; history is never consulted by the
// coordinator so it just returns empty.
type failingStore struct{}

func (failingStore) Append(context.Context, *messages.Message) error {
	return errors.New("store unavailable")
}

func (failingStore) History(context.Context, string, string, string, *int64, int, int) ([]*messages.Message, error) {
	return []*messages.Message{}, nil
}

func privateMessageFrame(recipientID, body string) []byte {
	return []byte(`{"event":"private_message","data":{"recipientId":"` + recipientID + `","body":"` + body + `"}}`)
}

func TestAdmit_AnnouncesOnlineToTenantPeers(t *testing.T) {
	f := setupTestFixture(t)

	f.coordinator.Admit(chatSession("conn-a", "user-a", tenantOne))
	f.coordinator.Admit(chatSession("conn-b", "user-b", tenantOne))

	// The earlier session hears about the new arrival; the new session gets
	// no echo of its own announcement.
	received := f.emitter.eventsFor("conn-a")
	require.Len(t, received, 1)
	require.Equal(t, chat.EventUserOnline, received[0].event)
	online, ok := received[0].data.(chat.UserOnlinePayload)
	require.True(t, ok)
	require.Equal(t, "user-b", online.UserID)

	require.Empty(t, f.emitter.eventsFor("conn-b"))
}

func TestAdmit_DoesNotAnnounceAcrossTenants(t *testing.T) {
	f := setupTestFixture(t)

	f.coordinator.Admit(chatSession("conn-a", "user-a", tenantOne))
	f.coordinator.Admit(chatSession("conn-c", "user-c", tenantTwo))

	require.Empty(t, f.emitter.eventsFor("conn-a"))
}

func TestAdmit_ReplacesExistingConnection(t *testing.T) {
	f := setupTestFixture(t)

	f.coordinator.Admit(chatSession("conn-1", "user-a", tenantOne))
	f.coordinator.Admit(chatSession("conn-2", "user-a", tenantOne))

	// The superseded connection is told before its transport is closed. The
	// fake records every emit; the real client manager drops frames addressed
	// to a closed connection.
	replaced := f.emitter.eventsFor("conn-1")
	require.NotEmpty(t, replaced)
	require.Equal(t, chat.EventSessionReplaced, replaced[0].event)
	require.Equal(t, []string{"conn-1"}, f.emitter.closed)

	session := f.registry.ResolveUser("user-a")
	require.NotNil(t, session)
	require.Equal(t, "conn-2", session.ConnectionID)
}

func TestDisconnect_AnnouncesOffline(t *testing.T) {
	f := setupTestFixture(t)

	f.coordinator.Admit(chatSession("conn-a", "user-a", tenantOne))
	f.coordinator.Admit(chatSession("conn-b", "user-b", tenantOne))
	f.emitter.reset()

	f.coordinator.Disconnect("conn-b")

	received := f.emitter.eventsFor("conn-a")
	require.Len(t, received, 1)
	require.Equal(t, chat.EventUserOffline, received[0].event)
	offline, ok := received[0].data.(chat.UserOfflinePayload)
	require.True(t, ok)
	require.Equal(t, "user-b", offline.UserID)

	require.ElementsMatch(t, []string{"user-a"}, f.coordinator.OnlineUserIDs())
}

func TestDisconnect_SupersededConnectionStaysSilent(t *testing.T) {
	f := setupTestFixture(t)

	f.coordinator.Admit(chatSession("conn-peer", "user-peer", tenantOne))
	f.coordinator.Admit(chatSession("conn-1", "user-a", tenantOne))
	f.coordinator.Admit(chatSession("conn-2", "user-a", tenantOne))
	f.emitter.reset()

	// The replaced connection's disconnect fires; the user is still online
	// through conn-2, so peers must not see a user_offline.
	f.coordinator.Disconnect("conn-1")
	require.Empty(t, f.emitter.eventsFor("conn-peer"))
	require.Contains(t, f.coordinator.OnlineUserIDs(), "user-a")

	// Only the active connection's departure announces the user offline.
	f.coordinator.Disconnect("conn-2")
	received := f.emitter.eventsFor("conn-peer")
	require.Len(t, received, 1)
	require.Equal(t, chat.EventUserOffline, received[0].event)
	require.NotContains(t, f.coordinator.OnlineUserIDs(), "user-a")
}

func TestDisconnect_UnknownConnectionIsSilent(t *testing.T) {
	f := setupTestFixture(t)

	f.coordinator.Admit(chatSession("conn-a", "user-a", tenantOne))
	f.emitter.reset()

	f.coordinator.Disconnect("conn-never-admitted")
	require.Empty(t, f.emitter.events)
}

func TestHandleFrame_PrivateMessageDelivered(t *testing.T) {
	f := setupTestFixture(t)

	sender := chatSession("conn-a", "user-a", tenantOne)
	f.coordinator.Admit(sender)
	f.coordinator.Admit(chatSession("conn-b", "user-b", tenantOne))
	f.emitter.reset()

	f.coordinator.HandleFrame(context.Background(), sender, privateMessageFrame("user-b", "hello"))

	require.Equal(t, 1, f.store.Len())

	received := f.emitter.eventsFor("conn-b")
	require.Len(t, received, 1)
	require.Equal(t, chat.EventNewMessage, received[0].event)
	payload, ok := received[0].data.(chat.NewMessagePayload)
	require.True(t, ok)
	require.Equal(t, "user-a", payload.From.ID)
	require.Equal(t, "hello", payload.Body)
	require.Equal(t, fixedNow, payload.CreatedAt)

	confirmations := f.emitter.eventsFor("conn-a")
	require.Len(t, confirmations, 1)
	require.Equal(t, chat.EventMessageSent, confirmations[0].event)
}

func TestHandleFrame_OfflineRecipientStillPersists(t *testing.T) {
	f := setupTestFixture(t)

	sender := chatSession("conn-a", "user-a", tenantOne)
	f.coordinator.Admit(sender)

	f.coordinator.HandleFrame(context.Background(), sender, privateMessageFrame("user-b", "hello"))

	// Persisted history outlives the failed push; the sender is told the
	// live delivery did not happen.
	require.Equal(t, 1, f.store.Len())

	received := f.emitter.eventsFor("conn-a")
	require.Len(t, received, 1)
	require.Equal(t, chat.EventMessageError, received[0].event)
	nack, ok := received[0].data.(chat.MessageErrorPayload)
	require.True(t, ok)
	require.Equal(t, "user-b", nack.RecipientID)
	require.Equal(t, chat.ReasonRecipientOffline, nack.Reason)
}

func TestHandleFrame_CrossTenantReportedAsOffline(t *testing.T) {
	f := setupTestFixture(t)

	sender := chatSession("conn-a", "user-a", tenantOne)
	f.coordinator.Admit(sender)
	f.coordinator.Admit(chatSession("conn-c", "user-c", tenantTwo))
	f.emitter.reset()

	f.coordinator.HandleFrame(context.Background(), sender, privateMessageFrame("user-c", "hello"))

	require.Empty(t, f.emitter.eventsFor("conn-c"))

	received := f.emitter.eventsFor("conn-a")
	require.Len(t, received, 1)
	require.Equal(t, chat.EventMessageError, received[0].event)
	nack, ok := received[0].data.(chat.MessageErrorPayload)
	require.True(t, ok)
	require.Equal(t, chat.ReasonRecipientOffline, nack.Reason)
}

func TestHandleFrame_PersistenceFailure(t *testing.T) {
	reg := registry.New()
	emitter := newFakeEmitter()
	coordinator, err := chat.NewCoordinator(reg, emitter, failingStore{})
	require.NoError(t, err)

	sender := chatSession("conn-a", "user-a", tenantOne)
	coordinator.Admit(sender)
	coordinator.Admit(chatSession("conn-b", "user-b", tenantOne))
	emitter.reset()

	coordinator.HandleFrame(context.Background(), sender, privateMessageFrame("user-b", "hello"))

	// Nothing was persisted, so nothing is pushed to the recipient.
	require.Empty(t, emitter.eventsFor("conn-b"))

	received := emitter.eventsFor("conn-a")
	require.Len(t, received, 1)
	require.Equal(t, chat.EventMessageError, received[0].event)
	nack, ok := received[0].data.(chat.MessageErrorPayload)
	require.True(t, ok)
	require.Equal(t, chat.ReasonInternalError, nack.Reason)
}

func TestHandleFrame_MalformedFrameRejected(t *testing.T) {
	f := setupTestFixture(t)

	sender := chatSession("conn-a", "user-a", tenantOne)
	f.coordinator.Admit(sender)

	f.coordinator.HandleFrame(context.Background(), sender, []byte(`{"event":"shout","data":{}}`))

	received := f.emitter.eventsFor("conn-a")
	require.Len(t, received, 1)
	require.Equal(t, chat.EventError, received[0].event)
	require.Equal(t, 0, f.store.Len())
}

func TestHandleFrame_TypingRelayed(t *testing.T) {
	f := setupTestFixture(t)

	sender := chatSession("conn-a", "user-a", tenantOne)
	f.coordinator.Admit(sender)
	f.coordinator.Admit(chatSession("conn-b", "user-b", tenantOne))
	f.emitter.reset()

	f.coordinator.HandleFrame(context.Background(), sender, []byte(`{"event":"typing_start","data":{"recipientId":"user-b"}}`))
	f.coordinator.HandleFrame(context.Background(), sender, []byte(`{"event":"typing_stop","data":{"recipientId":"user-b"}}`))

	received := f.emitter.eventsFor("conn-b")
	require.Len(t, received, 2)
	require.Equal(t, chat.EventUserTyping, received[0].event)
	require.Equal(t, chat.EventUserStoppedTyping, received[1].event)
}

func TestHandleFrame_TypingDropIsSilent(t *testing.T) {
	f := setupTestFixture(t)

	sender := chatSession("conn-a", "user-a", tenantOne)
	f.coordinator.Admit(sender)

	f.coordinator.HandleFrame(context.Background(), sender, []byte(`{"event":"typing_start","data":{"recipientId":"user-offline"}}`))
	require.Empty(t, f.emitter.events)
}

func TestNewCoordinator_MissingDependencies(t *testing.T) {
	_, err := chat.NewCoordinator(nil, newFakeEmitter(), storefake.NewFakeMessageStore())
	require.Error(t, err)

	_, err = chat.NewCoordinator(registry.New(), nil, storefake.NewFakeMessageStore())
	require.Error(t, err)

	_, err = chat.NewCoordinator(registry.New(), newFakeEmitter(), nil)
	require.Error(t, err)
}
