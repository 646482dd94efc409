// internal/domain/lead/errors.go
package lead

import "errors"

var (
	ErrNotFound       = errors.New("lead not found")
	ErrAlreadyClaimed = errors.New("lead already claimed")
	ErrExists         = errors.New("lead already exists")
)
