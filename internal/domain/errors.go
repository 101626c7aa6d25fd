package domain

import (
	"errors"
	"fmt"
)

// ErrorType classifies a failure so callers can decide whether it is fatal
// for a document, a page, or just informational.
type ErrorType string

const (
	// Document-level: the whole document is skipped.
	ErrorTypeDecode ErrorType = "decode"

	// Page-level: recorded and the batch continues.
	ErrorTypeRender       ErrorType = "render"
	ErrorTypeNoMatch      ErrorType = "no_match"
	ErrorTypeRegion       ErrorType = "region_out_of_bounds"
	ErrorTypeNoIdentifier ErrorType = "no_identifier"
	ErrorTypeExtraction   ErrorType = "extraction"

	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeIO         ErrorType = "io"
)

// DomainError represents a domain-specific error with context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// TypeOf returns the ErrorType of the first DomainError in err's chain.
// Errors that carry no classification are reported as extraction faults.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ErrorTypeExtraction
}

// IsType reports whether err's chain contains a DomainError of type t.
func IsType(err error, t ErrorType) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Type == t
}

func DecodeError(message string, err error) *DomainError {
	return NewError(ErrorTypeDecode, message, err)
}

func RenderError(message string, err error) *DomainError {
	return NewError(ErrorTypeRender, message, err)
}

func RegionOutOfBounds(message string) *DomainError {
	return NewError(ErrorTypeRegion, message, nil)
}

func NoIdentifierError(message string) *DomainError {
	return NewError(ErrorTypeNoIdentifier, message, nil)
}

func ExtractionError(message string, err error) *DomainError {
	return NewError(ErrorTypeExtraction, message, err)
}

func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

func IOError(message string, err error) *DomainError {
	return NewError(ErrorTypeIO, message, err)
}
