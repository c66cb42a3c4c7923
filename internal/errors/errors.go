// Package errors provides centralized error handling for seedvault with
// category annotations and structured context.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"time"
)

// Category groups errors for reporting and for mapping to API responses.
type Category string

const (
	CategoryValidation    Category = "validation"
	CategoryNotFound      Category = "not-found"
	CategoryDatabase      Category = "database"
	CategoryMissingTable  Category = "database-missing-table"
	CategoryDuplicate     Category = "database-duplicate-entry"
	CategorySchema        Category = "database-schema-mismatch"
	CategoryConfiguration Category = "configuration"
	CategoryHTTP          Category = "http-request"
	CategoryAPIResponse   Category = "api-response"
	CategoryJSONParse     Category = "json-parse"
	CategoryCache         Category = "cache"
	CategoryFileIO        Category = "file-io"
	CategoryGeneric       Category = "generic"
)

// EnhancedError wraps an error with a category, the component that
// produced it, and free-form context data.
type EnhancedError struct {
	Err       error
	Component string
	Category  Category
	Context   map[string]any
	Timestamp time.Time
}

// Error implements the error interface.
func (ee *EnhancedError) Error() string {
	return ee.Err.Error()
}

// Unwrap exposes the wrapped error to errors.Is/As.
func (ee *EnhancedError) Unwrap() error {
	return ee.Err
}

// Is matches two enhanced errors by category, otherwise defers to the
// wrapped error chain.
func (ee *EnhancedError) Is(target error) bool {
	if other, ok := target.(*EnhancedError); ok {
		return ee.Category == other.Category
	}
	return stderrors.Is(ee.Err, target)
}

// GetCategory returns the category as a string, for log attributes and
// API error codes.
func (ee *EnhancedError) GetCategory() string {
	return string(ee.Category)
}

// GetContext returns a copy of the context map, never nil.
func (ee *EnhancedError) GetContext() map[string]any {
	out := make(map[string]any, len(ee.Context))
	maps.Copy(out, ee.Context)
	return out
}

// Builder provides a fluent interface for constructing enhanced errors.
type Builder struct {
	err       error
	component string
	category  Category
	context   map[string]any
}

// New starts building an enhanced error around err.
func New(err error) *Builder {
	return &Builder{err: err}
}

// Newf starts building an enhanced error from a formatted message.
func Newf(format string, args ...any) *Builder {
	return New(fmt.Errorf(format, args...))
}

// Component records the component the error originated in.
func (b *Builder) Component(component string) *Builder {
	b.component = component
	return b
}

// Category records the error category.
func (b *Builder) Category(category Category) *Builder {
	b.category = category
	return b
}

// Context attaches one key/value pair of diagnostic context.
func (b *Builder) Context(key string, value any) *Builder {
	if b.context == nil {
		b.context = make(map[string]any)
	}
	b.context[key] = value
	return b
}

// Build finalizes the enhanced error.
func (b *Builder) Build() *EnhancedError {
	category := b.category
	if category == "" {
		category = CategoryGeneric
	}
	return &EnhancedError{
		Err:       b.err,
		Component: b.component,
		Category:  category,
		Context:   b.context,
		Timestamp: time.Now(),
	}
}

// HasCategory reports whether the first enhanced error in err's chain
// carries the given category.
func HasCategory(err error, category Category) bool {
	var ee *EnhancedError
	if stderrors.As(err, &ee) {
		return ee.Category == category
	}
	return false
}

// CategoryOf returns the category of the first enhanced error in the
// chain, or CategoryGeneric when none is present.
func CategoryOf(err error) Category {
	var ee *EnhancedError
	if stderrors.As(err, &ee) {
		return ee.Category
	}
	return CategoryGeneric
}

// Std library passthroughs so callers only import this package.

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return stderrors.As(err, target) }

// NewStd returns a plain sentinel error without enhancement.
func NewStd(text string) error { return stderrors.New(text) }
