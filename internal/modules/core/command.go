package core

import "fmt"

type Unit struct{}

// CommandError is the single failure shape returned by command and query
// handlers. Reason carries a machine-readable rejection code (e.g. "room-full")
// so the caller can render a specific message instead of a generic error.
type CommandError struct {
	Payload    interface{}
	StatusCode int
	Reason     string
}

type CommandErrorOption func(*CommandError)

func WithReason(reason string) CommandErrorOption {
	return func(e *CommandError) {
		e.Reason = reason
	}
}

func NewCommandError(statusCode int, payload interface{}, opts ...CommandErrorOption) CommandError {
	e := CommandError{
		StatusCode: statusCode,
		Payload:    payload,
	}

	for _, opt := range opts {
		opt(&e)
	}

	return e
}

func (r CommandError) Error() string {
	if r.Reason != "" {
		return fmt.Sprintf("%d: %s: %v", r.StatusCode, r.Reason, r.Payload)
	}

	return fmt.Sprintf("%d: %v", r.StatusCode, r.Payload)
}

// Reason extracts the structured rejection reason from an error, or returns
// the empty string when the error carries none.
func Reason(err error) string {
	if commandErr, ok := err.(CommandError); ok {
		return commandErr.Reason
	}

	return ""
}
