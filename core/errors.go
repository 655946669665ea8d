package core

import (
	"errors"
	"strings"
)

// Error kinds. Every error returned by agentkit packages matches exactly one
// of these through errors.Is.
var (
	ErrModel         = errors.New("model error")
	ErrMemory        = errors.New("memory error")
	ErrToolNotFound  = errors.New("tool not found")
	ErrToolExecution = errors.New("tool execution error")
	ErrSerialization = errors.New("serialization error")
	ErrConfig        = errors.New("configuration error")
	ErrDuplicate     = errors.New("duplicate name")
	ErrNotFound      = errors.New("not found")
)

var kinds = []error{
	ErrModel, ErrMemory, ErrToolNotFound, ErrToolExecution,
	ErrSerialization, ErrConfig, ErrDuplicate, ErrNotFound,
}

// Error annotates a failure with its kind, the operation that produced it and,
// when known, the session it belongs to.
type Error struct {
	Kind      error
	Op        string
	SessionID string
	Err       error
}

// NewError builds an *Error. err may be nil when the kind says it all.
func NewError(kind error, op, sessionID string, err error) *Error {
	return &Error{Kind: kind, Op: op, SessionID: sessionID, Err: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.SessionID != "" {
		b.WriteString("session ")
		b.WriteString(e.SessionID)
		b.WriteString(": ")
	}
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		if e.Kind != nil {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the first error kind err matches, or nil.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
