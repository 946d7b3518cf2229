// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"errors"
	"fmt"
	"strings"
)

// JSON-RPC and A2A error codes.
const (
	ErrorCodeJSONParse                    = -32700
	ErrorCodeInvalidRequest               = -32600
	ErrorCodeMethodNotFound               = -32601
	ErrorCodeInvalidParams                = -32602
	ErrorCodeInternalError                = -32603
	ErrorCodeTaskNotFound                 = -32001
	ErrorCodeTaskNotCancelable            = -32002
	ErrorCodePushNotificationNotSupported = -32003
	ErrorCodeUnsupportedOperation         = -32004
	ErrorCodeContentTypeNotSupported      = -32005
)

// Sentinel errors matched by the typed errors of this package through
// [errors.Is].
var (
	ErrTaskNotFound                 = errors.New("task not found")
	ErrTaskNotCancelable            = errors.New("task cannot be canceled")
	ErrPushNotificationNotSupported = errors.New("push notification is not supported")
	ErrUnsupportedOperation         = errors.New("this operation is not supported")
	ErrContentTypeNotSupported      = errors.New("incompatible content types")
	ErrInvalidParams                = errors.New("invalid parameters")
	ErrDependencyUnavailable        = errors.New("dependency unavailable")
	ErrInternal                     = errors.New("internal error")
	ErrJSONParse                    = errors.New("invalid JSON payload")
	ErrInvalidRequest               = errors.New("request payload validation error")
	ErrMethodNotFound               = errors.New("method not found")
)

// A2AError is an error that carries a JSON-RPC error code.
type A2AError interface {
	error
	Code() int
	Message() string
}

// TaskNotFoundError represents an error when a task is not found.
type TaskNotFoundError struct {
	TaskID string
}

// Error returns the error message.
func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.TaskID)
}

// Code returns the error code.
func (TaskNotFoundError) Code() int { return ErrorCodeTaskNotFound }

// Message returns the canonical error message.
func (TaskNotFoundError) Message() string { return ErrTaskNotFound.Error() }

// Is reports whether target is [ErrTaskNotFound].
func (TaskNotFoundError) Is(target error) bool { return target == ErrTaskNotFound }

// TaskNotCancelableError represents an error when a task cannot be canceled.
type TaskNotCancelableError struct {
	TaskID string
	State  TaskState
}

// Error returns the error message.
func (e TaskNotCancelableError) Error() string {
	if e.State != "" {
		return fmt.Sprintf("task cannot be canceled: %s (state %s)", e.TaskID, e.State)
	}
	return fmt.Sprintf("task cannot be canceled: %s", e.TaskID)
}

// Code returns the error code.
func (TaskNotCancelableError) Code() int { return ErrorCodeTaskNotCancelable }

// Message returns the canonical error message.
func (TaskNotCancelableError) Message() string { return ErrTaskNotCancelable.Error() }

// Is reports whether target is [ErrTaskNotCancelable].
func (TaskNotCancelableError) Is(target error) bool { return target == ErrTaskNotCancelable }

// PushNotificationNotSupportedError is returned when push notifications are disabled.
type PushNotificationNotSupportedError struct{}

// Error returns the error message.
func (PushNotificationNotSupportedError) Error() string {
	return ErrPushNotificationNotSupported.Error()
}

// Code returns the error code.
func (PushNotificationNotSupportedError) Code() int { return ErrorCodePushNotificationNotSupported }

// Message returns the canonical error message.
func (PushNotificationNotSupportedError) Message() string {
	return ErrPushNotificationNotSupported.Error()
}

// Is reports whether target is [ErrPushNotificationNotSupported].
func (PushNotificationNotSupportedError) Is(target error) bool {
	return target == ErrPushNotificationNotSupported
}

// UnsupportedOperationError is returned for operations the server does not implement.
type UnsupportedOperationError struct {
	Operation string
}

// Error returns the error message.
func (e UnsupportedOperationError) Error() string {
	return fmt.Sprintf("this operation is not supported: %s", e.Operation)
}

// Code returns the error code.
func (UnsupportedOperationError) Code() int { return ErrorCodeUnsupportedOperation }

// Message returns the canonical error message.
func (UnsupportedOperationError) Message() string { return ErrUnsupportedOperation.Error() }

// Is reports whether target is [ErrUnsupportedOperation].
func (UnsupportedOperationError) Is(target error) bool { return target == ErrUnsupportedOperation }

// ContentTypeNotSupportedError is returned when the client accepts none of the
// output modes the agent produces.
type ContentTypeNotSupportedError struct {
	Accepted  []string
	Supported []string
}

// Error returns the error message.
func (e ContentTypeNotSupportedError) Error() string {
	return fmt.Sprintf("incompatible content types: accepted [%s], supported [%s]",
		strings.Join(e.Accepted, ", "), strings.Join(e.Supported, ", "))
}

// Code returns the error code.
func (ContentTypeNotSupportedError) Code() int { return ErrorCodeContentTypeNotSupported }

// Message returns the canonical error message.
func (ContentTypeNotSupportedError) Message() string { return ErrContentTypeNotSupported.Error() }

// Is reports whether target is [ErrContentTypeNotSupported].
func (ContentTypeNotSupportedError) Is(target error) bool {
	return target == ErrContentTypeNotSupported
}

// InvalidParamsError represents a malformed or semantically invalid request.
type InvalidParamsError struct {
	Reason string
}

// Error returns the error message.
func (e InvalidParamsError) Error() string {
	if e.Reason == "" {
		return ErrInvalidParams.Error()
	}
	return fmt.Sprintf("invalid parameters: %s", e.Reason)
}

// Code returns the error code.
func (InvalidParamsError) Code() int { return ErrorCodeInvalidParams }

// Message returns the canonical error message.
func (InvalidParamsError) Message() string { return ErrInvalidParams.Error() }

// Is reports whether target is [ErrInvalidParams].
func (InvalidParamsError) Is(target error) bool { return target == ErrInvalidParams }

// DependencyUnavailableError is returned when a required collaborator, such as
// the agent, is not configured.
type DependencyUnavailableError struct {
	Dependency string
}

// Error returns the error message.
func (e DependencyUnavailableError) Error() string {
	return fmt.Sprintf("dependency unavailable: %s", e.Dependency)
}

// Code returns the error code.
func (DependencyUnavailableError) Code() int { return ErrorCodeInternalError }

// Message returns the canonical error message.
func (DependencyUnavailableError) Message() string { return ErrDependencyUnavailable.Error() }

// Is reports whether target is [ErrDependencyUnavailable].
func (DependencyUnavailableError) Is(target error) bool { return target == ErrDependencyUnavailable }

// InternalError wraps an unexpected failure.
type InternalError struct {
	Err error
}

// Error returns the error message.
func (e InternalError) Error() string {
	if e.Err == nil {
		return ErrInternal.Error()
	}
	return fmt.Sprintf("internal error: %v", e.Err)
}

// Code returns the error code.
func (InternalError) Code() int { return ErrorCodeInternalError }

// Message returns the canonical error message.
func (InternalError) Message() string { return ErrInternal.Error() }

// Is reports whether target is [ErrInternal].
func (InternalError) Is(target error) bool { return target == ErrInternal }

// Unwrap returns the wrapped error.
func (e InternalError) Unwrap() error { return e.Err }

// JSONParseError represents a JSON parsing error.
type JSONParseError struct {
	Err error
}

// Error returns the error message.
func (e JSONParseError) Error() string {
	if e.Err == nil {
		return ErrJSONParse.Error()
	}
	return fmt.Sprintf("invalid JSON payload: %v", e.Err)
}

// Code returns the error code.
func (JSONParseError) Code() int { return ErrorCodeJSONParse }

// Message returns the canonical error message.
func (JSONParseError) Message() string { return ErrJSONParse.Error() }

// Is reports whether target is [ErrJSONParse].
func (JSONParseError) Is(target error) bool { return target == ErrJSONParse }

// InvalidRequestError represents a request that is not a valid JSON-RPC request.
type InvalidRequestError struct {
	Reason string
}

// Error returns the error message.
func (e InvalidRequestError) Error() string {
	if e.Reason == "" {
		return ErrInvalidRequest.Error()
	}
	return fmt.Sprintf("invalid request: %s", e.Reason)
}

// Code returns the error code.
func (InvalidRequestError) Code() int { return ErrorCodeInvalidRequest }

// Message returns the canonical error message.
func (InvalidRequestError) Message() string { return ErrInvalidRequest.Error() }

// Is reports whether target is [ErrInvalidRequest].
func (InvalidRequestError) Is(target error) bool { return target == ErrInvalidRequest }

// MethodNotFoundError represents a request for an unknown method.
type MethodNotFoundError struct {
	Method string
}

// Error returns the error message.
func (e MethodNotFoundError) Error() string {
	return fmt.Sprintf("method not found: %s", e.Method)
}

// Code returns the error code.
func (MethodNotFoundError) Code() int { return ErrorCodeMethodNotFound }

// Message returns the canonical error message.
func (MethodNotFoundError) Message() string { return ErrMethodNotFound.Error() }

// Is reports whether target is [ErrMethodNotFound].
func (MethodNotFoundError) Is(target error) bool { return target == ErrMethodNotFound }

var (
	_ A2AError = TaskNotFoundError{}
	_ A2AError = TaskNotCancelableError{}
	_ A2AError = PushNotificationNotSupportedError{}
	_ A2AError = UnsupportedOperationError{}
	_ A2AError = ContentTypeNotSupportedError{}
	_ A2AError = InvalidParamsError{}
	_ A2AError = DependencyUnavailableError{}
	_ A2AError = InternalError{}
	_ A2AError = JSONParseError{}
	_ A2AError = InvalidRequestError{}
	_ A2AError = MethodNotFoundError{}
)

// ToJSONRPCError converts err into a JSON-RPC error object.
// Errors that do not implement [A2AError] map to an internal error.
func ToJSONRPCError(err error) *JSONRPCError {
	if err == nil {
		return nil
	}
	var rpcErr *JSONRPCError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	var a2aErr A2AError
	if errors.As(err, &a2aErr) {
		return &JSONRPCError{Code: a2aErr.Code(), Message: a2aErr.Error()}
	}
	return &JSONRPCError{Code: ErrorCodeInternalError, Message: InternalError{Err: err}.Error()}
}
