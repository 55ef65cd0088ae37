package errors

import "fmt"

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrUnauthenticated  = fmt.Errorf("connection has no bound user")
	ErrUserNotFound     = fmt.Errorf("user not found")
	ErrMessageNotFound  = fmt.Errorf("message not found")
	ErrNotSender        = fmt.Errorf("only the sender may alter this message")
	ErrInvalidTarget    = fmt.Errorf("message must have exactly one target")
	ErrEmptyContent     = fmt.Errorf("message content is empty")
	ErrUnknownEvent     = fmt.Errorf("unknown event")
	ErrInvalidPayload   = fmt.Errorf("invalid event payload")
	ErrSubscriptionGone = fmt.Errorf("push subscription expired or invalid")
)
