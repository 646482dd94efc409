// internal/domain/conversation/errors.go
package conversation

import "errors"

var (
	ErrNotFound          = errors.New("conversation not found")
	ErrMessageNotFound   = errors.New("message not found")
	ErrClosed            = errors.New("conversation is finished")
	ErrEmptyMessage      = errors.New("message content is empty")
	ErrInvalidAuthor     = errors.New("unknown message author kind")
	ErrInvalidTransition = errors.New("invalid conversation state transition")
)
