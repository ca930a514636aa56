package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/hashstructure/v2"
)

// ErrorCode classifies dashboard failures
type ErrorCode string

const (
	CodeFireNotFound    ErrorCode = "FIRE_NOT_FOUND"
	CodeAIDLCNotFound   ErrorCode = "AIDLC_NOT_FOUND"
	CodeSimpleNotFound  ErrorCode = "SIMPLE_NOT_FOUND"
	CodeStateParseError ErrorCode = "STATE_PARSE_ERROR"
	CodeParseError      ErrorCode = "PARSE_ERROR"
	CodeRefreshFailed   ErrorCode = "REFRESH_FAILED"
	CodeWatchError      ErrorCode = "WATCH_ERROR"
	CodeUnsupportedFlow ErrorCode = "UNSUPPORTED_FLOW"
	CodeInvalidFlow     ErrorCode = "INVALID_FLOW"
	CodeDashboardError  ErrorCode = "DASHBOARD_ERROR"
)

// IsNotFound reports whether the code is one of the *_NOT_FOUND codes
func (c ErrorCode) IsNotFound() bool {
	return strings.HasSuffix(string(c), "_NOT_FOUND")
}

// Error is the uniform error shape shown by the dashboard
type Error struct {
	Code    ErrorCode
	Message string
	Details string
	Path    string
	Hint    string
}

// NewError creates an error with the given code and message
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Path != "" {
		b.WriteString(" (")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	if e.Details != "" {
		b.WriteString(": ")
		b.WriteString(e.Details)
	}
	return b.String()
}

// WithPath returns a copy carrying the path
func (e *Error) WithPath(path string) *Error {
	c := *e
	c.Path = path
	return &c
}

// WithHint returns a copy carrying the hint
func (e *Error) WithHint(hint string) *Error {
	c := *e
	c.Hint = hint
	return &c
}

// WithDetails returns a copy carrying the details
func (e *Error) WithDetails(details string) *Error {
	c := *e
	c.Details = details
	return &c
}

// Hash returns a structural hash used to suppress repeated identical errors
func (e *Error) Hash() uint64 {
	h, err := hashstructure.Hash(e, hashstructure.FormatV2, nil)
	if err != nil {
		return 0
	}
	return h
}

// NormalizeError coerces any value into an *Error. Structured errors found
// anywhere in a wrap chain are returned as-is; other errors and strings become
// the fallback code.
func NormalizeError(value any, fallback ErrorCode) *Error {
	if fallback == "" {
		fallback = CodeDashboardError
	}

	switch v := value.(type) {
	case nil:
		return NewError(fallback, "unknown error")
	case *Error:
		if v == nil {
			return NewError(fallback, "unknown error")
		}
		return normalizeFields(v, fallback)
	case Error:
		return normalizeFields(&v, fallback)
	case error:
		var structured *Error
		if errors.As(v, &structured) && structured != nil {
			return normalizeFields(structured, fallback)
		}
		return NewError(fallback, v.Error())
	case string:
		msg := strings.TrimSpace(v)
		if msg == "" {
			msg = "unknown error"
		}
		return NewError(fallback, msg)
	default:
		return NewError(fallback, fmt.Sprint(v))
	}
}

func normalizeFields(e *Error, fallback ErrorCode) *Error {
	c := *e
	if c.Code == "" {
		c.Code = fallback
	}
	if strings.TrimSpace(c.Message) == "" {
		c.Message = "unknown error"
	}
	return &c
}
