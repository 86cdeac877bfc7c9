package chat_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/loophq/go-chat-server/chat"
)

func TestDecodeInbound_PrivateMessage(t *testing.T) {
	raw := []byte(`{"event":"private_message","data":{"recipientId":"user-2","body":"hello","projectId":42}}`)

	event, err := chat.DecodeInbound(raw)
	require.NoError(t, err)

	payload, ok := event.(chat.PrivateMessagePayload)
	require.True(t, ok)
	require.Equal(t, "user-2", payload.RecipientID)
	require.Equal(t, "hello", payload.Body)
	require.NotNil(t, payload.ProjectID)
	require.Equal(t, int64(42), *payload.ProjectID)
}

func TestDecodeInbound_PrivateMessageWithoutProject(t *testing.T) {
	raw := []byte(`{"event":"private_message","data":{"recipientId":"user-2","body":"hello"}}`)

	event, err := chat.DecodeInbound(raw)
	require.NoError(t, err)

	payload, ok := event.(chat.PrivateMessagePayload)
	require.True(t, ok)
	require.Nil(t, payload.ProjectID)
}

func TestDecodeInbound_TypingStartAndStop(t *testing.T) {
	event, err := chat.DecodeInbound([]byte(`{"event":"typing_start","data":{"recipientId":"user-2"}}`))
	require.NoError(t, err)
	start, ok := event.(chat.TypingStartPayload)
	require.True(t, ok)
	require.Equal(t, "user-2", start.RecipientID)

	event, err = chat.DecodeInbound([]byte(`{"event":"typing_stop","data":{"recipientId":"user-2"}}`))
	require.NoError(t, err)
	stop, ok := event.(chat.TypingStopPayload)
	require.True(t, ok)
	require.Equal(t, "user-2", stop.RecipientID)
}

func TestDecodeInbound_UnknownEvent(t *testing.T) {
	_, err := chat.DecodeInbound([]byte(`{"event":"shout","data":{}}`))
	require.Error(t, err)
	require.True(t, errors.Is(err, chat.UnknownEventErr))
}

func TestDecodeInbound_MalformedJSON(t *testing.T) {
	_, err := chat.DecodeInbound([]byte(`{"event":`))
	require.Error(t, err)
	require.True(t, errors.Is(err, chat.MalformedEventErr))
}

func TestDecodeInbound_MissingRequiredFields(t *testing.T) {
	_, err := chat.DecodeInbound([]byte(`{"event":"private_message","data":{"body":"hello"}}`))
	require.Error(t, err)
	require.True(t, errors.Is(err, chat.MalformedEventErr))

	_, err = chat.DecodeInbound([]byte(`{"event":"private_message","data":{"recipientId":"user-2"}}`))
	require.Error(t, err)
	require.True(t, errors.Is(err, chat.MalformedEventErr))

	_, err = chat.DecodeInbound([]byte(`{"event":"typing_start","data":{}}`))
	require.Error(t, err)
	require.True(t, errors.Is(err, chat.MalformedEventErr))
}
