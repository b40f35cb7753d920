package errors

import (
	"errors"
	"fmt"
)

////////////////////////////////////////////////////////////////////////////////

// UnsupportedFormatError reports a signature, version, alignment or geometry
// check that failed while opening an image.
type UnsupportedFormatError struct {
	Err error
}

func NewUnsupportedFormatError(err error) *UnsupportedFormatError {
	return &UnsupportedFormatError{Err: err}
}

func NewUnsupportedFormatErrorf(format string, a ...any) *UnsupportedFormatError {
	return NewUnsupportedFormatError(fmt.Errorf(format, a...))
}

func NewEmptyUnsupportedFormatError() *UnsupportedFormatError {
	return &UnsupportedFormatError{}
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("Unsupported format: %v", e.Err)
}

func (e *UnsupportedFormatError) Unwrap() error {
	return e.Err
}

func (e *UnsupportedFormatError) Is(target error) bool {
	t, ok := target.(*UnsupportedFormatError)
	if !ok {
		return false
	}

	return t.Err == nil || (e.Err == t.Err)
}

////////////////////////////////////////////////////////////////////////////////

// ReadError wraps a non-zero status returned by the child block device on a
// read.
type ReadError struct {
	Err error
}

func NewReadError(err error) *ReadError {
	return &ReadError{Err: err}
}

func NewReadErrorf(format string, a ...any) *ReadError {
	return NewReadError(fmt.Errorf(format, a...))
}

func NewEmptyReadError() *ReadError {
	return &ReadError{}
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("Read error: %v", e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

func (e *ReadError) Is(target error) bool {
	t, ok := target.(*ReadError)
	if !ok {
		return false
	}

	return t.Err == nil || (e.Err == t.Err)
}

////////////////////////////////////////////////////////////////////////////////

// WriteError wraps a non-zero status returned by the child block device on a
// write.
type WriteError struct {
	Err error
}

func NewWriteError(err error) *WriteError {
	return &WriteError{Err: err}
}

func NewWriteErrorf(format string, a ...any) *WriteError {
	return NewWriteError(fmt.Errorf(format, a...))
}

func NewEmptyWriteError() *WriteError {
	return &WriteError{}
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("Write error: %v", e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

func (e *WriteError) Is(target error) bool {
	t, ok := target.(*WriteError)
	if !ok {
		return false
	}

	return t.Err == nil || (e.Err == t.Err)
}

////////////////////////////////////////////////////////////////////////////////

// InvalidArgumentError reports a malformed request, e.g. create without a
// size.
type InvalidArgumentError struct {
	Err error
}

func NewInvalidArgumentError(err error) *InvalidArgumentError {
	return &InvalidArgumentError{Err: err}
}

func NewInvalidArgumentErrorf(format string, a ...any) *InvalidArgumentError {
	return NewInvalidArgumentError(fmt.Errorf(format, a...))
}

func NewEmptyInvalidArgumentError() *InvalidArgumentError {
	return &InvalidArgumentError{}
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("Invalid argument: %v", e.Err)
}

func (e *InvalidArgumentError) Unwrap() error {
	return e.Err
}

func (e *InvalidArgumentError) Is(target error) bool {
	t, ok := target.(*InvalidArgumentError)
	if !ok {
		return false
	}

	return t.Err == nil || (e.Err == t.Err)
}

////////////////////////////////////////////////////////////////////////////////

func New(text string) error {
	return errors.New(text)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}
