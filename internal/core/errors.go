package core

import (
	"errors"
	"fmt"
)

// BuildErrorCode categorizes structural errors detected while resolving a
// state tree.
type BuildErrorCode string

const (
	// ErrCodeUnknownAttribute indicates an attribute outside the allowed set
	// for a state or transition.
	ErrCodeUnknownAttribute BuildErrorCode = "UNKNOWN_ATTRIBUTE"

	// ErrCodeDuplicateState indicates two states share an id.
	ErrCodeDuplicateState BuildErrorCode = "DUPLICATE_STATE"

	// ErrCodeHistoryAttribute indicates a history-only attribute on another kind.
	ErrCodeHistoryAttribute BuildErrorCode = "HISTORY_ATTRIBUTE"

	// ErrCodeUnresolvedTarget indicates a transition target id that names no state.
	ErrCodeUnresolvedTarget BuildErrorCode = "UNRESOLVED_TARGET"

	// ErrCodeNoSideEffects indicates a transition with neither targets nor action.
	ErrCodeNoSideEffects BuildErrorCode = "NO_SIDE_EFFECTS"

	// ErrCodeEmptyRoot indicates a top-level spec without child states.
	ErrCodeEmptyRoot BuildErrorCode = "EMPTY_ROOT"

	// ErrCodeInvalidStructure covers the remaining shape violations: unknown
	// kinds, children under atomic kinds, nil nodes, misplaced attributes.
	ErrCodeInvalidStructure BuildErrorCode = "INVALID_STRUCTURE"
)

// BuildError is returned by Build. It is raised once, at construction, and
// never at runtime.
type BuildError struct {
	Code      BuildErrorCode
	StateID   string
	Attribute string
	Message   string
}

func (e *BuildError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Attribute != "" {
		msg += fmt.Sprintf(" (attribute=%s)", e.Attribute)
	}
	if e.StateID != "" {
		msg += fmt.Sprintf(" (state=%s)", e.StateID)
	}
	return msg
}

func buildErrorf(code BuildErrorCode, stateID, format string, args ...any) *BuildError {
	return &BuildError{Code: code, StateID: stateID, Message: fmt.Sprintf(format, args...)}
}

// IsBuildError reports whether err is a BuildError with the given code.
func IsBuildError(err error, code BuildErrorCode) bool {
	var be *BuildError
	return errors.As(err, &be) && be.Code == code
}

// RuntimeErrorCode categorizes errors surfaced while processing events.
type RuntimeErrorCode string

const (
	// ErrCodeActionFailed wraps an error returned by an entry, exit or
	// transition action. The microstep is not rolled back.
	ErrCodeActionFailed RuntimeErrorCode = "ACTION_FAILED"

	// ErrCodeMicrostepLimit indicates a macrostep exceeded the configured
	// number of microsteps, usually an eventless loop.
	ErrCodeMicrostepLimit RuntimeErrorCode = "MICROSTEP_LIMIT"
)

// RuntimeError represents an error detected while running a macrostep.
type RuntimeError struct {
	Code    RuntimeErrorCode
	Event   string
	StateID string
	Phase   string
	Message string
	Err     error
}

func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Event != "" {
		msg += fmt.Sprintf(" (event=%s)", e.Event)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsRuntimeError reports whether err is a RuntimeError with the given code.
func IsRuntimeError(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Code == code
}

// ErrEmptyEvent is returned by Emit for an event without a name.
var ErrEmptyEvent = errors.New("event name is required")
