package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target carries the same code and message, so wrapped
// sentinels still match with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// Detail returns the collaborator message behind the error, if any.
func (e *DomainError) Detail() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithCause returns a copy of a sentinel error carrying err as its cause.
func WithCause(sentinel *DomainError, err error) *DomainError {
	return NewDomainErrorWithCause(sentinel.Code, sentinel.Message, err)
}

// Upstream wraps a collaborator failure (extraction, embedding, completion).
func Upstream(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeUpstream, message, err)
}

// Validation builds a request validation error with a descriptive message.
func Validation(message string) *DomainError {
	return NewDomainError(ErrCodeValidation, message)
}

// AsDomainError extracts a DomainError from an error chain.
func AsDomainError(err error) (*DomainError, bool) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeUpstream      = "UPSTREAM_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrNoFiles              = NewDomainError(ErrCodeValidation, "no files uploaded")
	ErrTooManyFiles         = NewDomainError(ErrCodeValidation, "too many files")
	ErrFileTooLarge         = NewDomainError(ErrCodeValidation, "file exceeds the size limit")
	ErrUnsupportedFileType  = NewDomainError(ErrCodeValidation, "unsupported file type, only PDF, TXT and DOC files are allowed")
	ErrEmptyQuestion        = NewDomainError(ErrCodeValidation, "question is required")
	ErrNoDocuments          = NewDomainError(ErrCodeValidation, "no documents have been uploaded yet")
	ErrInvalidExportFormat  = NewDomainError(ErrCodeValidation, "format must be pdf or doc")
	ErrEmptyExport          = NewDomainError(ErrCodeValidation, "nothing to export")
	ErrChunkVectorMismatch  = NewDomainError(ErrCodeValidation, "chunk and vector counts differ")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrInvalidPage          = NewDomainError(ErrCodeValidation, "invalid pagination parameters")
)

// Not found errors
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
	ErrHistoryNotFound  = NewDomainError(ErrCodeNotFound, "history entry not found")
	ErrBlobNotFound     = NewDomainError(ErrCodeNotFound, "file not found")
)

// Already exists errors
var (
	ErrDocumentAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "document already exists")
)

// Upstream errors
var (
	ErrExtractionFailed = NewDomainError(ErrCodeUpstream, "failed to process document")
	ErrEmbeddingFailed  = NewDomainError(ErrCodeUpstream, "failed to embed text")
	ErrCompletionFailed = NewDomainError(ErrCodeUpstream, "failed to process your question")
)

// Internal errors
var (
	ErrStorageOperationFail = NewDomainError(ErrCodeInternalError, "storage operation failed")
	ErrReportFailed         = NewDomainError(ErrCodeInternalError, "failed to generate report")
)
