package imgflip

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures so the dispatcher can report a
// structured error kind to the caller instead of a bare string.
type Kind string

const (
	// KindProviderUnavailable covers transport failures and timeouts.
	// Safe to retry with backoff at the caller.
	KindProviderUnavailable Kind = "provider_unavailable"

	// KindProviderRejected means the provider declined the request,
	// e.g. invalid credentials or quota exhaustion. Not retryable
	// without changing the input.
	KindProviderRejected Kind = "provider_rejected"

	// KindProviderError means the provider responded with a malformed
	// or otherwise unusable payload.
	KindProviderError Kind = "provider_error"

	// KindTemplateNotFound is returned when an explicitly named
	// template has no exact match in the catalog.
	KindTemplateNotFound Kind = "template_not_found"

	// KindCatalogEmpty means the provider returned a catalog with no
	// templates at all.
	KindCatalogEmpty Kind = "catalog_empty"

	// KindGenerationFailed means the search-term generation mechanism
	// was unavailable.
	KindGenerationFailed Kind = "generation_failed"

	// KindCaptionGenerationFailed means caption mapping could not
	// produce the required number of captions.
	KindCaptionGenerationFailed Kind = "caption_generation_failed"

	// KindCaptionCountMismatch flags a caption set whose length does
	// not equal the template's box count. Always a defect upstream,
	// never user-recoverable.
	KindCaptionCountMismatch Kind = "caption_count_mismatch"
)

// Error is the pipeline error type. Every component fails with the most
// specific kind it can determine.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error with the given kind and message.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf creates an Error with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates an Error wrapping an underlying cause.
func WrapError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from an error chain, or "" if the chain
// contains no pipeline Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
