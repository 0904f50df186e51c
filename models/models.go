package models

import "fmt"

// DefaultFormat is used when the client does not send a format field.
const DefaultFormat = "pdf"

// ConversionRequest is produced by upload intake and is not modified afterwards.
type ConversionRequest struct {
	ID           string
	SourcePath   string
	Format       string
	OriginalName string
}

type ErrorKind string

const (
	ErrNoFileProvided         ErrorKind = "no_file_provided"
	ErrUnsupportedFormat      ErrorKind = "unsupported_format"
	ErrConversionFailed       ErrorKind = "conversion_failed"
	ErrResponseDeliveryFailed ErrorKind = "response_delivery_failed"
	ErrCleanupFailed          ErrorKind = "cleanup_failed"
)

// ConversionError carries the kind used by the transport to pick a status code.
type ConversionError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, message string, err error) *ConversionError {
	return &ConversionError{Kind: kind, Message: message, Err: err}
}

func NoFileProvided() *ConversionError {
	return NewError(ErrNoFileProvided, "no file uploaded", nil)
}

func UnsupportedFormat(format string) *ConversionError {
	return NewError(ErrUnsupportedFormat, fmt.Sprintf("unsupported format %q", format), nil)
}

// ConversionFailed keeps the converter's own message so it can be shown to the client.
func ConversionFailed(err error) *ConversionError {
	return NewError(ErrConversionFailed, err.Error(), err)
}

// ConversionResult is either a produced artifact (Success, Path) or an Error.
type ConversionResult struct {
	Success bool
	Path    string
	Error   *ConversionError
}

func Succeeded(path string) ConversionResult {
	return ConversionResult{Success: true, Path: path}
}

func Failed(err *ConversionError) ConversionResult {
	return ConversionResult{Error: err}
}
