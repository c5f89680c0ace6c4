package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"presence-lab/domain"
	"presence-lab/errors"
)

func TestDecodeRelay_Typing(t *testing.T) {
	req := require.New(t)

	// Given a typing frame sent by alice towards bob
	frame := Frame{Event: Typing, Data: json.RawMessage(`{"receiverId":"bob"}`)}

	// When decoding it
	target, e, err := DecodeRelay(frame, "alice")

	// Then bob receives the sender identity only
	req.NoError(err)
	req.Equal(domain.UserID("bob"), target)
	req.Equal(New(Typing, TypingPayload{SenderID: "alice"}), e)
}

func TestDecodeRelay_MessageRead_Drops_Receiver(t *testing.T) {
	req := require.New(t)

	frame := Frame{Event: MessageRead, Data: json.RawMessage(`{"messageId":"m1","receiverId":"bob"}`)}

	target, e, err := DecodeRelay(frame, "alice")

	req.NoError(err)
	req.Equal(domain.UserID("bob"), target)
	req.Equal(MessageReadPayload{MessageID: "m1"}, e.Payload)
}

func TestDecodeRelay_Rejections(t *testing.T) {
	cases := []struct {
		name  string
		frame Frame
		want  error
	}{
		{"unknown event", Frame{Event: "dance", Data: json.RawMessage(`{}`)}, errors.ErrUnknownEvent},
		{"producer event from a client", Frame{Event: FriendRequest, Data: json.RawMessage(`{}`)}, errors.ErrUnknownEvent},
		{"no data", Frame{Event: StopTyping}, errors.ErrMissingRecipient},
		{"empty receiver", Frame{Event: Typing, Data: json.RawMessage(`{"receiverId":""}`)}, errors.ErrMissingRecipient},
		{"read without message", Frame{Event: MessageRead, Data: json.RawMessage(`{"receiverId":"bob"}`)}, errors.ErrMissingRecipient},
		{"not an object", Frame{Event: Typing, Data: json.RawMessage(`"bob"`)}, errors.ErrInvalidPayload},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := DecodeRelay(tc.frame, "alice")
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestOutboundFrame_Wire_Shape(t *testing.T) {
	req := require.New(t)

	data, err := json.Marshal(New(GetOnlineUsers, []domain.UserID{"alice"}).Frame())

	req.NoError(err)
	req.JSONEq(`{"event":"getOnlineUsers","data":["alice"]}`, string(data))
	req.True(IsProducerName(PostLiked))
	req.False(IsProducerName(Typing))
}

func TestIsProducerName(t *testing.T) {
	req := require.New(t)

	for _, name := range ProducerNames {
		req.True(IsProducerName(name), string(name))
	}
	for _, name := range []Name{GetOnlineUsers, Typing, StopTyping, MessageRead, ""} {
		req.False(IsProducerName(name), string(name))
	}
}
