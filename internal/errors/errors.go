// Package errors provides enhanced error handling with component and category
// metadata for the MindWell client. Errors carry enough context for structured
// logging and for mapping transport failures onto user-facing recovery
// behavior without string matching.
package errors

import (
	"errors"
	"fmt"
	"maps"
	"time"
)

// ErrorCategory represents the type of error for grouping and recovery policy
type ErrorCategory string

// CategorizedError is an error that carries a category
type CategorizedError interface {
	error
	GetCategory() string
}

const (
	// CategoryValidation covers locally rejected input (empty IDs, bad enums)
	CategoryValidation ErrorCategory = "validation"
	// CategoryConfiguration covers settings and startup problems
	CategoryConfiguration ErrorCategory = "configuration"
	// CategoryNetwork covers transport-level failures (recoverable, retryable)
	CategoryNetwork ErrorCategory = "network"
	// CategoryHTTP covers non-2xx responses from the backend
	CategoryHTTP ErrorCategory = "http-request"
	// CategoryAuth covers missing or unusable sessions (fatal to a controller)
	CategoryAuth ErrorCategory = "authentication"
	// CategoryNotFound covers lookups of unknown notifications or preferences
	CategoryNotFound ErrorCategory = "not-found"
	// CategoryState covers operations invoked in an invalid lifecycle state
	CategoryState ErrorCategory = "state"
	// CategoryGeneric is the fallback category
	CategoryGeneric ErrorCategory = "generic"
)

// ComponentUnknown is used when no component was set on the builder
const ComponentUnknown = "unknown"

// EnhancedError wraps an error with component, category, and context metadata
type EnhancedError struct {
	Err       error          // Original error
	Component string         // Component where the error occurred
	Category  ErrorCategory  // Error category for grouping and recovery
	Context   map[string]any // Additional context data
	Timestamp time.Time      // When the error occurred
}

// Error implements the error interface
func (ee *EnhancedError) Error() string {
	return ee.Err.Error()
}

// Unwrap implements the error unwrapping interface
func (ee *EnhancedError) Unwrap() error {
	return ee.Err
}

// Is matches two enhanced errors by category, otherwise defers to the chain
func (ee *EnhancedError) Is(target error) bool {
	if ee2, ok := target.(*EnhancedError); ok {
		return ee.Category == ee2.Category
	}
	return errors.Is(ee.Err, target)
}

// GetComponent returns the component name
func (ee *EnhancedError) GetComponent() string {
	if ee.Component == "" {
		return ComponentUnknown
	}
	return ee.Component
}

// GetCategory returns the error category
func (ee *EnhancedError) GetCategory() string {
	return string(ee.Category)
}

// GetContext returns a copy of the error context
func (ee *EnhancedError) GetContext() map[string]any {
	if ee.Context == nil {
		return nil
	}
	contextCopy := make(map[string]any, len(ee.Context))
	maps.Copy(contextCopy, ee.Context)
	return contextCopy
}

// ErrorBuilder provides a fluent interface for creating enhanced errors
type ErrorBuilder struct {
	err       error
	component string
	category  ErrorCategory
	context   map[string]any
}

// New creates a new error builder wrapping an existing error
func New(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// Newf creates a new error builder from a formatted message
func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

// Component sets the component name
func (eb *ErrorBuilder) Component(component string) *ErrorBuilder {
	eb.component = component
	return eb
}

// Category sets the error category
func (eb *ErrorBuilder) Category(category ErrorCategory) *ErrorBuilder {
	eb.category = category
	return eb
}

// Context adds context data to the error
func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context[key] = value
	return eb
}

// Build creates the final enhanced error
func (eb *ErrorBuilder) Build() *EnhancedError {
	if eb.category == "" {
		eb.category = CategoryGeneric
	}
	return &EnhancedError{
		Err:       eb.err,
		Component: eb.component,
		Category:  eb.category,
		Context:   eb.context,
		Timestamp: time.Now(),
	}
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join wraps multiple errors into a single error
func Join(errs ...error) error {
	return errors.Join(errs...)
}
