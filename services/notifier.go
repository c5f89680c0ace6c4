// Package services holds the domain event producers.
// They run after a domain operation has committed its change and turn it
// into a routed notification. None of them stores anything.
package services

import (
	"context"

	"presence-lab/contract"
	"presence-lab/domain"
	"presence-lab/domain/event"
)

type IFriendNotifier interface {
	RequestSent(ctx context.Context, actor event.UserSummary, target domain.UserID, requestID string)
	RequestAccepted(ctx context.Context, actor event.UserSummary, requester domain.UserID, requestID string)
	FriendAccepted(ctx context.Context, actor event.UserSummary, requester domain.UserID)
	RequestCanceled(ctx context.Context, actor, target domain.UserID)
	FriendRemoved(ctx context.Context, actor, target domain.UserID)
}

type IPostNotifier interface {
	PostLiked(ctx context.Context, actor event.UserSummary, owner domain.UserID, postID string)
	PostCommented(ctx context.Context, actor event.UserSummary, owner domain.UserID, postID string)
}

type IMessageNotifier interface {
	MessageSent(ctx context.Context, msg event.DirectMessagePayload)
}

// notifier drops every event whose actor is its own target.
type notifier struct {
	emitter contract.IEmitter
}

func (n notifier) emit(ctx context.Context, actor, target domain.UserID, name event.Name, payload any) {
	if actor == target {
		return
	}
	n.emitter.Emit(ctx, target, name, payload)
}

type FriendNotifier struct{ notifier }

func NewFriendNotifier(emitter contract.IEmitter) *FriendNotifier {
	return &FriendNotifier{notifier{emitter: emitter}}
}

func (n *FriendNotifier) RequestSent(ctx context.Context, actor event.UserSummary, target domain.UserID, requestID string) {
	n.emit(ctx, actor.ID, target, event.FriendRequest,
		event.FriendRequestPayload{RequestID: requestID, From: actor})
}

// RequestAccepted is the request-record flavour: the payload keeps the request id.
func (n *FriendNotifier) RequestAccepted(ctx context.Context, actor event.UserSummary, requester domain.UserID, requestID string) {
	n.emit(ctx, actor.ID, requester, event.FriendRequestAccepted,
		event.FriendRequestAcceptedPayload{RequestID: requestID, User: actor})
}

// FriendAccepted is the embedded-array flavour: only the accepting user is sent.
func (n *FriendNotifier) FriendAccepted(ctx context.Context, actor event.UserSummary, requester domain.UserID) {
	n.emit(ctx, actor.ID, requester, event.FriendAccepted, actor)
}

func (n *FriendNotifier) RequestCanceled(ctx context.Context, actor, target domain.UserID) {
	n.emit(ctx, actor, target, event.RequestCanceled, event.UserRefPayload{UserID: actor})
}

func (n *FriendNotifier) FriendRemoved(ctx context.Context, actor, target domain.UserID) {
	n.emit(ctx, actor, target, event.FriendRemoved, event.UserRefPayload{UserID: actor})
}

type PostNotifier struct{ notifier }

func NewPostNotifier(emitter contract.IEmitter) *PostNotifier {
	return &PostNotifier{notifier{emitter: emitter}}
}

func (n *PostNotifier) PostLiked(ctx context.Context, actor event.UserSummary, owner domain.UserID, postID string) {
	n.emit(ctx, actor.ID, owner, event.PostLiked,
		event.PostActivityPayload{UserName: actor.FullName, PostID: postID})
}

func (n *PostNotifier) PostCommented(ctx context.Context, actor event.UserSummary, owner domain.UserID, postID string) {
	n.emit(ctx, actor.ID, owner, event.PostCommented,
		event.PostActivityPayload{UserName: actor.FullName, PostID: postID})
}

type MessageNotifier struct{ notifier }

func NewMessageNotifier(emitter contract.IEmitter) *MessageNotifier {
	return &MessageNotifier{notifier{emitter: emitter}}
}

func (n *MessageNotifier) MessageSent(ctx context.Context, msg event.DirectMessagePayload) {
	n.emit(ctx, msg.SenderID, msg.ReceiverID, event.NewMessage, msg)
}
