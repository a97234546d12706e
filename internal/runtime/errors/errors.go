// Package errors defines the error taxonomy of rpclog: construction-time
// configuration errors, the terminal rate-limit failure, and the categories
// used by the error-handling middleware to decide what to log. Errors raised
// by wrapped handlers are never altered, only observed.
package errors

import (
	sterrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	ErrConfigRequired    = sterrors.New("rpclog: config is required")
	ErrRouterRequired    = sterrors.New("rpclog: pipeline router is required")
	ErrHandlerRequired   = sterrors.New("rpclog: handler function is required")
	ErrScopeRequired     = sterrors.New("rpclog: call-site scope is required")
	ErrTransportRequired = sterrors.New("rpclog: pipeline entry transport is required")
)

// FieldError describes one invalid configuration field so callers can fix
// configuration without guesswork.
type FieldError struct {
	Field   string
	Message string
	Value   any
}

func (f FieldError) String() string {
	return fmt.Sprintf("%s: %s (value: %v)", f.Field, f.Message, f.Value)
}

// ConfigValidationError aggregates every field failure found while
// validating a pipeline, performance, or middleware configuration. It is
// fatal to that configuration: the caller must fix and reconstruct.
type ConfigValidationError struct {
	Errors []FieldError
}

func (e *ConfigValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "rpclog: invalid configuration"
	}
	parts := make([]string, len(e.Errors))
	for i, f := range e.Errors {
		parts[i] = f.String()
	}
	return "rpclog: invalid configuration: " + strings.Join(parts, "; ")
}

// NewConfigValidationError wraps the field failures, or returns nil when
// there are none.
func NewConfigValidationError(fields []FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ConfigValidationError{Errors: fields}
}

// RateLimitError is the terminal failure returned by the rate-limiting
// middleware once a client key exceeds its window allowance. It is not
// retried by that layer.
type RateLimitError struct {
	Key     string
	Limit   int
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rpclog: rate limit exceeded for %q (max %d per window, resets %s)",
		e.Key, e.Limit, e.ResetAt.Format(time.RFC3339))
}

// IsRateLimit reports whether err is (or wraps) a RateLimitError.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return sterrors.As(err, &rl)
}

// ErrorCategory classifies a handler failure for the error-handling
// middleware. Each category has an independent logging toggle.
type ErrorCategory int

const (
	CategoryGeneric ErrorCategory = iota
	CategoryValidation
	CategoryAuth
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryAuth:
		return "auth"
	default:
		return "generic"
	}
}

// Coded is implemented by errors that carry a machine-readable code, such as
// the UNAUTHORIZED/FORBIDDEN codes used by RPC frameworks.
type Coded interface {
	error
	ErrorCode() string
}

// Classifier maps a handler error onto a category.
type Classifier func(error) ErrorCategory

// Classify is the default Classifier. validator.ValidationErrors (and
// anything wrapping them) count as validation failures; coded errors with an
// authorization code count as auth failures; everything else is generic.
func Classify(err error) ErrorCategory {
	var verrs validator.ValidationErrors
	if sterrors.As(err, &verrs) {
		return CategoryValidation
	}
	var coded Coded
	if sterrors.As(err, &coded) {
		switch strings.ToUpper(coded.ErrorCode()) {
		case "UNAUTHORIZED", "FORBIDDEN":
			return CategoryAuth
		}
	}
	return CategoryGeneric
}
