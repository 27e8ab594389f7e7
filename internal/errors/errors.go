package errors

import (
	"errors"
	"fmt"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Sentinel errors used by collaborators to signal outcome classes upward.
// Handlers map each one to its own user-facing message, never a generic one.
var (
	// ErrRouteNotFound means both stations resolved but no route satisfies
	// the current filter settings.
	ErrRouteNotFound = errors.New("no route found")
	// ErrStationUnresolved means one or both station names are unknown.
	ErrStationUnresolved = errors.New("station name unresolved")
	// ErrResultMalformed means the planner answered with a success payload
	// of an unexpected shape.
	ErrResultMalformed = errors.New("planner result malformed")
	// ErrShortcutNotFound means the named shortcut does not exist.
	ErrShortcutNotFound = errors.New("shortcut not found")
)

type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func (e *AppError) Cause() error {
	return e.Unwrap()
}

// NewFlowInputError reports invalid user input inside a conversation flow.
// The flow is aborted without mutating any persisted data.
func NewFlowInputError(userMessage string) *AppError {
	return &AppError{
		Code:        "E100",
		Message:     fmt.Sprintf("invalid flow input: %s", userMessage),
		UserMessage: userMessage,
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

// NewStoreError wraps a durable-store load or write failure. The process
// keeps running on its in-memory state, but durability is silently broken
// until a write succeeds, hence the high severity.
func NewStoreError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E200",
		Message:     fmt.Sprintf("user data store error: %s", underlyingMsg),
		UserMessage: "数据保存失败，请稍后重试。",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

// NewPlannerTransportError wraps a transport or processing failure of the
// trip planner collaborator.
func NewPlannerTransportError(cause error) *AppError {
	return &AppError{
		Code:        "E300",
		Message:     "trip planner request failed",
		UserMessage: "查询路线时发生错误，请稍后重试。",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

// NewDirectoryError wraps a station-directory fetch failure.
func NewDirectoryError(cause error) *AppError {
	return &AppError{
		Code:        "E310",
		Message:     "station directory fetch failed",
		UserMessage: "更新车站数据失败，请稍后重试。",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

// NewSessionError reports an operation that is impossible in the user's
// current conversation state.
func NewSessionError(msg string) *AppError {
	return &AppError{
		Code:        "E400",
		Message:     msg,
		UserMessage: "当前操作无法完成，请使用 /cancel 取消后重试。",
		Severity:    SeverityMedium,
		Retryable:   false,
		cause:       nil,
	}
}
