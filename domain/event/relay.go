package event

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"presence-lab/domain"
	"presence-lab/errors"
)

var validate = validator.New()

// TypingRelay is the data of an inbound typing or stopTyping frame.
type TypingRelay struct {
	ReceiverID domain.UserID `json:"receiverId" validate:"required"`
}

// ReadRelay is the data of an inbound messageRead frame.
type ReadRelay struct {
	MessageID  string        `json:"messageId" validate:"required"`
	ReceiverID domain.UserID `json:"receiverId" validate:"required"`
}

// DecodeRelay turns an inbound frame into the recipient and the event to route.
// sender is the identity of the connection the frame came from.
func DecodeRelay(frame Frame, sender domain.UserID) (domain.UserID, Event, error) {
	switch frame.Event {
	case Typing, StopTyping:
		var relay TypingRelay
		if err := decode(frame.Data, &relay); err != nil {
			return "", Event{}, err
		}
		return relay.ReceiverID, New(frame.Event, TypingPayload{SenderID: sender}), nil
	case MessageRead:
		var relay ReadRelay
		if err := decode(frame.Data, &relay); err != nil {
			return "", Event{}, err
		}
		return relay.ReceiverID, New(MessageRead, MessageReadPayload{MessageID: relay.MessageID}), nil
	default:
		return "", Event{}, fmt.Errorf("%w: %q", errors.ErrUnknownEvent, frame.Event)
	}
}

func decode(data json.RawMessage, dst any) error {
	if len(data) == 0 {
		return errors.ErrMissingRecipient
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrMissingRecipient, err)
	}
	return nil
}
