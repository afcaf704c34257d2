package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// Kind discriminates the payload carried by an Error.
type Kind string

const (
	KindValidation        Kind = "validation_failed"
	KindNotFound          Kind = "not_found"
	KindInvalidTransition Kind = "invalid_state_transition"
)

// Error is the single error variant returned by the performance core.
// Only the fields relevant to Kind are populated:
//   - KindValidation: Fields
//   - KindNotFound: Entity, ID
//   - KindInvalidTransition: Entity, ID, CurrentStatus, AttemptedAction
type Error struct {
	Kind            Kind
	Entity          string
	ID              int64
	Fields          map[string]string
	CurrentStatus   string
	AttemptedAction string
}

// Validation returns a validation error carrying a field -> message mapping.
func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Fields: fields}
}

// NotFound returns an error for a lookup by id that found no row.
func NotFound(entity string, id int64) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id}
}

// InvalidTransition returns an error for a lifecycle action that the current status does not allow.
func InvalidTransition(entity string, id int64, currentStatus, attemptedAction string) *Error {
	return &Error{
		Kind:            KindInvalidTransition,
		Entity:          entity,
		ID:              id,
		CurrentStatus:   currentStatus,
		AttemptedAction: attemptedAction,
	}
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindValidation:
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
		}
		return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
	case KindNotFound:
		return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
	case KindInvalidTransition:
		return fmt.Sprintf("cannot %s %s %d in status %q", e.AttemptedAction, e.Entity, e.ID, e.CurrentStatus)
	default:
		return string(e.Kind)
	}
}

// Is lets errors.Is match an Error against the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrInvalidTransition:
		return e.Kind == KindInvalidTransition
	}
	return false
}

// KindOf returns the discriminator of the first Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
