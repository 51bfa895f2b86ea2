package model

import (
	"errors"
	"fmt"
)

var (
	ErrMissingMainFile  = errors.New("module has no main file")
	ErrMissingLicense   = errors.New("module has no license")
	ErrInvalidLicense   = errors.New("license URL is not a valid URI")
	ErrInvalidResolve   = errors.New("resolve URL is not a valid URI")
	ErrUnnameableAuthor = errors.New("citation author has neither name parts nor a bare name")
)

// PublicationError wraps a pipeline failure with the phase it occurred
// in and a stable code.
type PublicationError struct {
	Code    string
	State   State
	Message string
	Err     error
}

func (e *PublicationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *PublicationError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeEncoding   = "ENCODING_ERROR"
	ErrCodeSubmission = "SUBMISSION_ERROR"
	ErrCodePersist    = "PERSIST_ERROR"
	ErrCodeIndex      = "INDEX_ERROR"
)

func NewValidationError(message string, err error) *PublicationError {
	return &PublicationError{Code: ErrCodeValidation, State: StateAssemblingMetadata, Message: message, Err: err}
}

func NewEncodingError(message string, err error) *PublicationError {
	return &PublicationError{Code: ErrCodeEncoding, State: StateSubmittingRegistration, Message: message, Err: err}
}

func NewSubmissionError(message string, err error) *PublicationError {
	return &PublicationError{Code: ErrCodeSubmission, State: StateSubmittingRegistration, Message: message, Err: err}
}

func NewPersistError(message string, err error) *PublicationError {
	return &PublicationError{Code: ErrCodePersist, State: StatePersisting, Message: message, Err: err}
}

func NewIndexError(message string, err error) *PublicationError {
	return &PublicationError{Code: ErrCodeIndex, State: StateIndexSyncing, Message: message, Err: err}
}
