package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory represents the category of error
type ErrorCategory string

const (
	// ErrorCategoryTask represents task registry and sequencing errors
	ErrorCategoryTask ErrorCategory = "TASK"
	// ErrorCategoryLint represents lint gate violations
	ErrorCategoryLint ErrorCategory = "LINT"
	// ErrorCategoryFileSystem represents file system errors
	ErrorCategoryFileSystem ErrorCategory = "FS"
	// ErrorCategoryArchive represents archive writing errors
	ErrorCategoryArchive ErrorCategory = "ARCHIVE"
	// ErrorCategoryTool represents failures of delegated external tools
	ErrorCategoryTool ErrorCategory = "TOOL"
	// ErrorCategoryConfiguration represents manifest and flag errors
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"
)

// BuildError represents a structured error with context and troubleshooting information
type BuildError struct {
	Category        ErrorCategory
	Code            string
	Message         string
	Operation       string
	Context         map[string]interface{}
	Troubleshooting []string
	OriginalError   error
}

// Error implements the error interface
func (e *BuildError) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s-%s: %s", e.Category, e.Code, e.Message))

	if e.Operation != "" {
		sb.WriteString(fmt.Sprintf(" (operation: %s)", e.Operation))
	}

	if e.OriginalError != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.OriginalError))
	}

	return sb.String()
}

// Unwrap returns the original error for error chain compatibility
func (e *BuildError) Unwrap() error {
	return e.OriginalError
}

// NewBuildError creates a new build error with the specified parameters
func NewBuildError(category ErrorCategory, code, message, operation string) *BuildError {
	return &BuildError{
		Category:        category,
		Code:            code,
		Message:         message,
		Operation:       operation,
		Context:         make(map[string]interface{}),
		Troubleshooting: []string{},
	}
}

// WithContext adds context information to the error
func (e *BuildError) WithContext(key string, value interface{}) *BuildError {
	e.Context[key] = value
	return e
}

// WithTroubleshooting adds troubleshooting steps to the error
func (e *BuildError) WithTroubleshooting(steps ...string) *BuildError {
	e.Troubleshooting = append(e.Troubleshooting, steps...)
	return e
}

// WithOriginalError adds the original error to the build error
func (e *BuildError) WithOriginalError(err error) *BuildError {
	e.OriginalError = err
	return e
}

// AsBuildError finds the first BuildError in err's chain.
func AsBuildError(err error) (*BuildError, bool) {
	var be *BuildError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

func hasCode(err error, category ErrorCategory, code string) bool {
	be, ok := AsBuildError(err)
	return ok && be.Category == category && be.Code == code
}
