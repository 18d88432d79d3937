// Package errors provides custom error types for the financial researcher.
// It distinguishes between recoverable errors (can be logged and continue)
// and fatal errors (must halt execution and return).
package errors

import (
	"errors"
	"fmt"

	"github.com/kokjohn0824/financial-researcher/internal/i18n"
)

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityRecoverable indicates an error that can be logged and execution can continue
	SeverityRecoverable Severity = iota
	// SeverityFatal indicates an error that must halt execution
	SeverityFatal
)

// ResearcherError is the base interface for all researcher errors
type ResearcherError interface {
	error
	Severity() Severity
	Unwrap() error
}

// RecoverableError represents an error that can be logged and execution can continue
type RecoverableError struct {
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *RecoverableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *RecoverableError) Severity() Severity {
	return SeverityRecoverable
}

func (e *RecoverableError) Unwrap() error {
	return e.Err
}

// FatalError represents an error that must halt execution
type FatalError struct {
	Op      string
	Message string
	Err     error
}

func (e *FatalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *FatalError) Severity() Severity {
	return SeverityFatal
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// NewRecoverable creates a new recoverable error
func NewRecoverable(op, message string, err error) *RecoverableError {
	return &RecoverableError{
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewFatal creates a new fatal error
func NewFatal(op, message string, err error) *FatalError {
	return &FatalError{
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// IsRecoverable checks if an error is recoverable
func IsRecoverable(err error) bool {
	var recErr *RecoverableError
	if errors.As(err, &recErr) {
		return true
	}

	var resErr ResearcherError
	if errors.As(err, &resErr) {
		return resErr.Severity() == SeverityRecoverable
	}

	return false
}

// IsFatal checks if an error is fatal.
// Unknown errors are treated as fatal.
func IsFatal(err error) bool {
	var fatalErr *FatalError
	if errors.As(err, &fatalErr) {
		return true
	}

	var resErr ResearcherError
	if errors.As(err, &resErr) {
		return resErr.Severity() == SeverityFatal
	}

	return err != nil
}

// ErrReadInput creates a fatal error for a failed company name read
func ErrReadInput(err error) *FatalError {
	return NewFatal(i18n.ErrOpInput, i18n.ErrMsgReadInput, err)
}

// ErrKickoff creates a fatal error for a failed crew kickoff
func ErrKickoff(err error) *FatalError {
	return NewFatal(i18n.ErrOpKickoff, i18n.ErrMsgKickoffFailed, err)
}

// ErrCrewConfig creates a fatal error for an unusable crew definition
func ErrCrewConfig(err error) *FatalError {
	return NewFatal(i18n.ErrOpCrew, i18n.ErrMsgCrewConfig, err)
}

// ErrAPIKeyMissing creates a fatal error for a missing OpenAI API key
func ErrAPIKeyMissing() *FatalError {
	return NewFatal(i18n.ErrOpConfig, i18n.ErrMsgAPIKeyMissing, nil)
}

// ErrSaveHistory creates a recoverable error for history save failures
func ErrSaveHistory(runID string, err error) *RecoverableError {
	return NewRecoverable(i18n.ErrOpHistory, fmt.Sprintf(i18n.ErrMsgSaveRun, runID), err)
}

// ErrRunNotFound creates a fatal error for an unknown run ID
func ErrRunNotFound(runID string) *FatalError {
	return NewFatal(i18n.ErrOpHistory, fmt.Sprintf(i18n.ErrMsgRunNotFound, runID), nil)
}
