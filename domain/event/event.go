package event

import (
	"encoding/json"
	"time"

	"github.com/samber/lo"

	"presence-lab/domain"
)

// Name is the wire-level tag of an event. Names are shared with the web client
// and must not be renamed.
type Name string

const (
	GetOnlineUsers        Name = "getOnlineUsers"
	Typing                Name = "typing"
	StopTyping            Name = "stopTyping"
	MessageRead           Name = "messageRead"
	FriendRequest         Name = "friendRequest"
	FriendRequestAccepted Name = "friendRequestAccepted"
	FriendAccepted        Name = "friendAccepted"
	FriendRemoved         Name = "friendRemoved"
	RequestCanceled       Name = "requestCanceled"
	PostLiked             Name = "postLiked"
	PostCommented         Name = "postCommented"
	NewMessage            Name = "newMessage"
)

// ProducerNames are the events a domain producer may emit through the router.
var ProducerNames = []Name{
	FriendRequest, FriendRequestAccepted, FriendAccepted, FriendRemoved,
	RequestCanceled, PostLiked, PostCommented, NewMessage,
}

func IsProducerName(n Name) bool {
	return lo.Contains(ProducerNames, n)
}

// Event is what travels to a connection. The routing target is never part of it.
type Event struct {
	Name    Name
	Payload any
}

func New(name Name, payload any) Event {
	return Event{Name: name, Payload: payload}
}

// Frame is the JSON envelope exchanged over the socket in both directions.
type Frame struct {
	Event Name            `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// OutboundFrame is the server side encoding of an Event.
type OutboundFrame struct {
	Event Name `json:"event"`
	Data  any  `json:"data"`
}

func (e Event) Frame() OutboundFrame {
	return OutboundFrame{Event: e.Name, Data: e.Payload}
}

// UserSummary carries the display fields of the acting user.
type UserSummary struct {
	ID         domain.UserID `json:"_id"`
	FullName   string        `json:"fullName"`
	ProfilePic string        `json:"profilePic"`
}

type TypingPayload struct {
	SenderID domain.UserID `json:"senderId"`
}

type MessageReadPayload struct {
	MessageID string `json:"messageId"`
}

type FriendRequestPayload struct {
	RequestID string      `json:"requestId"`
	From      UserSummary `json:"from"`
}

type FriendRequestAcceptedPayload struct {
	RequestID string      `json:"requestId"`
	User      UserSummary `json:"user"`
}

// UserRefPayload names the user behind a removal or a cancellation.
type UserRefPayload struct {
	UserID domain.UserID `json:"userId"`
}

type PostActivityPayload struct {
	UserName string `json:"userName"`
	PostID   string `json:"postId,omitempty"`
}

type DirectMessagePayload struct {
	ID         string        `json:"_id"`
	SenderID   domain.UserID `json:"senderId"`
	ReceiverID domain.UserID `json:"receiverId"`
	Text       string        `json:"text,omitempty"`
	Image      string        `json:"image,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
}
