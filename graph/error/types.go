// Package grapherror carries categorized errors from the visualization engine
// to live-preview clients and logs.
package grapherror

import (
	"time"

	"github.com/teranos/folio/errors"
)

// GraphError is an engine error with a category and a message for the client.
type GraphError struct {
	Err         error                  // Underlying error
	Category    Category               // Main category
	Subcategory string                 // Optional subcategory
	UserMessage string                 // Message shown to the client
	Context     map[string]interface{} // Additional context for debugging
	Timestamp   time.Time              // When the error occurred
}

// Error implements the error interface
func (e *GraphError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMessage
}

// Unwrap returns the underlying error for errors.Is/As compatibility
func (e *GraphError) Unwrap() error {
	return e.Err
}

// New creates a new GraphError with the specified category and messages
func New(category Category, err error, userMsg string) *GraphError {
	return &GraphError{
		Err:         err,
		Category:    category,
		UserMessage: userMsg,
		Context:     make(map[string]interface{}),
		Timestamp:   time.Now(),
	}
}

// Newf creates a new GraphError with a formatted error message
func Newf(category Category, userMsg, format string, args ...interface{}) *GraphError {
	return New(category, errors.Newf(format, args...), userMsg)
}

// Classify maps an engine error to a GraphError. GraphErrors pass through;
// sentinel errors pick their event subcategory.
func Classify(err error) *GraphError {
	var ge *GraphError
	if errors.As(err, &ge) {
		return ge
	}
	switch {
	case errors.Is(err, errors.ErrNotReady):
		return New(CategoryEvent, err, "").WithSubcategory(SubcategoryEventNotReady)
	case errors.IsAny(err, errors.ErrNotFound, errors.ErrInvalidRequest, errors.ErrUnknownAxis, errors.ErrUnknownCategory, errors.ErrClosed):
		return New(CategoryEvent, err, "").WithSubcategory(SubcategoryEventRejected)
	case errors.Is(err, errors.ErrInvalidNode):
		return New(CategoryBuild, err, "").WithSubcategory(SubcategoryBuildGraph)
	default:
		return New(CategoryInternal, err, "")
	}
}

// WithSubcategory adds a subcategory to the error
func (e *GraphError) WithSubcategory(sub string) *GraphError {
	e.Subcategory = sub
	return e
}

// WithContext adds a context key-value pair for debugging
func (e *GraphError) WithContext(key string, value interface{}) *GraphError {
	e.Context[key] = value
	return e
}
