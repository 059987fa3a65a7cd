package model

import (
	"errors"
)

// Kind classifies a failure so the request layer can pick a response status
// without knowing every domain error.
type Kind string

const (
	KindInvalidInput      Kind = "INVALID_INPUT"
	KindNotFound          Kind = "NOT_FOUND"
	KindForbidden         Kind = "FORBIDDEN"
	KindConflict          Kind = "CONFLICT"
	KindDependencyFailure Kind = "DEPENDENCY_FAILURE"
)

// Error is a typed domain failure. Sentinels below are *Error values and are
// matched with errors.Is.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a typed error with the given kind and message.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Dependency wraps an unexpected failure from storage or another collaborator.
// Errors that already carry a Kind pass through unchanged.
func Dependency(op string, err error) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return err
	}
	return &Error{Kind: KindDependencyFailure, Message: op, Err: err}
}

// KindOf reports the kind of err. Untyped errors are dependency failures.
func KindOf(err error) Kind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return KindDependencyFailure
}

// Input errors
var (
	ErrInvalidID         = NewError(KindInvalidInput, "invalid id")
	ErrInvalidTargetType = NewError(KindInvalidInput, "targetType must be Post or Comment")
	ErrContentRequired   = NewError(KindInvalidInput, "content is required")
	ErrContentTooLong    = NewError(KindInvalidInput, "content too long")
)

// Lookup errors
var (
	ErrUserNotFound          = NewError(KindNotFound, "user not found")
	ErrPostNotFound          = NewError(KindNotFound, "post not found")
	ErrCommentNotFound       = NewError(KindNotFound, "comment not found")
	ErrParentCommentNotFound = NewError(KindNotFound, "parent comment not found")
	ErrNotificationNotFound  = NewError(KindNotFound, "notification not found")
)

// Relation state errors. ErrRelationExists and ErrRelationAbsent are what
// relation stores report when the uniqueness index rejects an insert or a
// delete finds nothing; services translate them into the errors below.
var (
	ErrRelationExists = NewError(KindConflict, "relation already exists")
	ErrRelationAbsent = NewError(KindNotFound, "relation does not exist")

	ErrCannotFollowSelf  = NewError(KindConflict, "cannot follow yourself")
	ErrAlreadyFollowing  = NewError(KindConflict, "already following this user")
	ErrNotFollowing      = NewError(KindNotFound, "not following this user")
	ErrAlreadyBookmarked = NewError(KindConflict, "post already bookmarked")
	ErrBookmarkNotFound  = NewError(KindNotFound, "bookmark not found")
)

// Comment thread errors
var (
	ErrInvalidRelation  = NewError(KindConflict, "parent comment belongs to a different post")
	ErrMaxDepthExceeded = NewError(KindConflict, "replies to replies are not allowed")
	ErrNotCommentOwner  = NewError(KindForbidden, "not the owner of this comment")
	ErrCannotDelete     = NewError(KindForbidden, "only the comment author or post author can delete this comment")
)
