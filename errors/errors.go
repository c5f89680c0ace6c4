package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrInvalidPayload     = fmt.Errorf("invalid payload")
	ErrUnknownEvent       = fmt.Errorf("unknown event")
	ErrMissingRecipient   = fmt.Errorf("relay without recipient")
	ErrConnectionNotFound = fmt.Errorf("connection not found")
	ErrConnectionClosed   = fmt.Errorf("connection closed")
	ErrSendBufferFull     = fmt.Errorf("connection send buffer is full")
	ErrInvalidToken       = fmt.Errorf("invalid or expired token")
	ErrMissingToken       = fmt.Errorf("authorization token is missing")
	ErrRateLimited        = fmt.Errorf("relay rate exceeded")
)
