// Package failure classifies errors raised by the control link so that each
// kind can be handled by a single policy: retry, drop the connection or abort.
package failure

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	// The input device is missing or a read failed.
	KindDevice Kind = iota
	// Opening, writing to or holding the WebSocket failed.
	KindTransport
	// An inbound command could not be decoded or was out of bounds.
	KindValidation
	// Required startup configuration is missing or malformed.
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindDevice:
		return "device"
	case KindTransport:
		return "transport"
	case KindValidation:
		return "validation"
	case KindConfiguration:
		return "configuration"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

type Action uint8

const (
	ActionRetry Action = iota
	ActionDrop
	ActionAbort
)

func (a Action) String() string {
	switch a {
	case ActionRetry:
		return "retry"
	case ActionDrop:
		return "drop"
	case ActionAbort:
		return "abort"
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

var policies = map[Kind]Action{
	KindDevice:        ActionRetry,
	KindTransport:     ActionRetry,
	KindValidation:    ActionDrop,
	KindConfiguration: ActionAbort,
}

// Action reports how a failure of this kind is handled.
func (k Kind) Action() Action {
	action, ok := policies[k]
	if !ok {
		return ActionAbort
	}
	return action
}

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so callers can test
// errors.Is(err, failure.Validation).
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Err == nil && other.Op == "" && other.Kind == e.Kind
}

var (
	Device        = &Error{Kind: KindDevice}
	Transport     = &Error{Kind: KindTransport}
	Validation    = &Error{Kind: KindValidation}
	Configuration = &Error{Kind: KindConfiguration}
)

func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var target *Error
	if !errors.As(err, &target) {
		return 0, false
	}
	return target.Kind, true
}

// ActionFor maps an arbitrary error onto the policy table. Errors that were
// never classified abort.
func ActionFor(err error) Action {
	kind, ok := KindOf(err)
	if !ok {
		return ActionAbort
	}
	return kind.Action()
}
