package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotAuthenticated = errors.New("authentication credentials were not provided")
	ErrStaffOnly        = errors.New("only staff members can list every event")

	ErrEventNotFound  = errors.New("event not found")
	ErrNotOwner       = errors.New("only the event creator can perform this action")
	ErrPostNotAllowed = errors.New("you are not allowed to create events")
	ErrEventCancelled = errors.New("this event has been cancelled")

	ErrJoinNotAllowed     = errors.New("you are not allowed to join events")
	ErrEventPrivate       = errors.New("this event is private")
	ErrDeadlinePassed     = errors.New("the participation deadline for this event has passed")
	ErrEventFull          = errors.New("this event has reached its maximum number of participants")
	ErrAlreadyJoined      = errors.New("you are already participating in this event")
	ErrNotParticipating   = errors.New("you are not participating in this event")
	ErrCreatorCannotLeave = errors.New("the event creator cannot leave their own event")

	ErrCommentNotAllowed = errors.New("you are not allowed to comment or rate events")
	ErrNotJoined         = errors.New("you cannot rate an event you did not participate in")
	ErrAlreadyRated      = errors.New("you have already rated this event")
	ErrNotRated          = errors.New("you have not rated this event yet")
	ErrRatingNotFound    = errors.New("rating not found")
)

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Add keeps the first message reported for a field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns nil when no field failed, so callers can `return verr.Err()`.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
