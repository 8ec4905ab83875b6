package relation

import (
	"errors"
	"fmt"
)

// Kind classifies a relationship-mutation failure so the HTTP layer can map it
// to a status code without inspecting message text.
type Kind int

const (
	// KindUnknown is an unclassified internal failure.
	KindUnknown Kind = iota
	// KindNotFound means a referenced user, group, session or game does not exist.
	KindNotFound
	// KindInvalidReference means a referenced ID is malformed.
	KindInvalidReference
	// KindConflict covers duplicate names, already-existing relationships,
	// self-references, and the one-session-per-host rule.
	KindConflict
	// KindForbidden means the actor is not allowed to perform the mutation.
	KindForbidden
	// KindValidation means the request payload itself is invalid, e.g. a field
	// outside an update allow-list.
	KindValidation
)

// Error is a typed relationship-layer failure.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Is lets errors.Is match two relation errors by kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func notFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func forbiddenf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

func validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}
