package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotFound   = errors.New("not found")
	ErrInvalidKey = errors.New("invalid issue key")
	ErrTracker    = errors.New("tracker request failed")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// KeyError reports a malformed or out-of-scope issue key
type KeyError struct {
	Key    string
	Reason string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("invalid issue key %q: %s", e.Key, e.Reason)
}

func (e *KeyError) Is(target error) bool {
	return target == ErrInvalidKey
}

// TrackerError represents a failed call to the issue tracker
type TrackerError struct {
	Op         string
	Key        string
	StatusCode int
	Err        error
}

func (e *TrackerError) Error() string {
	msg := fmt.Sprintf("tracker %s %s", e.Op, e.Key)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": HTTP %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TrackerError) Unwrap() error {
	return e.Err
}

func (e *TrackerError) Is(target error) bool {
	return target == ErrTracker
}
