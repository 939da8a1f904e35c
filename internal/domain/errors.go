package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure so the transport layer can map it to a
// status code without parsing messages.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindFetch           Kind = "fetch"
	KindNoImagesFound   Kind = "no_images_found"
	KindDecode          Kind = "decode"
	KindRateLimited     Kind = "rate_limited"
	KindNoImageReturned Kind = "no_image_returned"
	KindGeneration      Kind = "generation"
)

// Failure is a classified pipeline error. Message is short and user-facing;
// Err carries the underlying cause, if any.
type Failure struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Fail builds a Failure without an underlying cause.
func Fail(kind Kind, message string) *Failure {
	return &Failure{Kind: kind, Message: message}
}

// Failf builds a Failure with a formatted message.
func Failf(kind Kind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a Failure around an underlying error.
func Wrap(kind Kind, message string, err error) *Failure {
	return &Failure{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the classification from err. Unclassified errors are
// treated as generation failures so they surface as server-side problems.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindGeneration
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Message
	}
	return "image generation failed"
}
