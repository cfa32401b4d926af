package common

import (
	"errors"
	"fmt"
)

// Fatal error codes.
const (
	CodeInvalidArgument = "OXPT_INVALID_ARGUMENT"
	CodeZipInvalid      = "OXPT_ZIP_INVALID"
	CodeInvalidDocx     = "OXPT_INVALID_DOCX"
	CodeXMLInvalid      = "OXPT_XML_INVALID"
)

// Error is terminal conversion failure with stable code.
type Error struct {
	Code    string
	Message string
	Err     error
}

// NewError creates coded error wrapping optional cause.
func NewError(code string, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode extracts code from error chain, empty if there is none.
func ErrorCode(err error) string {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
