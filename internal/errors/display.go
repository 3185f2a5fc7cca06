package errors

import (
	"fmt"
	"sort"
	"strings"
)

// DisplayErrorSummary provides a brief summary of the error for logs
func DisplayErrorSummary(err error) string {
	if be, ok := AsBuildError(err); ok {
		return fmt.Sprintf("%s-%s: %s", be.Category, be.Code, be.Message)
	}

	errStr := err.Error()
	if len(errStr) > 100 {
		return errStr[:97] + "..."
	}
	return errStr
}

// FormatForCLI formats an error for command-line display with proper spacing
func FormatForCLI(err error) string {
	be, ok := AsBuildError(err)
	if !ok {
		return fmt.Sprintf("\nError: %v\n", err)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("\nError [%s-%s]\n", be.Category, be.Code))
	sb.WriteString(fmt.Sprintf("  %s\n", be.Message))

	if be.Operation != "" {
		sb.WriteString(fmt.Sprintf("\nFailed Operation: %s\n", be.Operation))
	}

	// Sorted so the output is stable between runs
	if len(be.Context) > 0 {
		keys := make([]string, 0, len(be.Context))
		for k := range be.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("\nDetails:\n")
		for _, key := range keys {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", key, be.Context[key]))
		}
	}

	if len(be.Troubleshooting) > 0 {
		sb.WriteString("\nHow to resolve:\n")
		for i, step := range be.Troubleshooting {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, step))
		}
	}

	if be.OriginalError != nil {
		sb.WriteString(fmt.Sprintf("\nTechnical details: %v\n", be.OriginalError))
	}

	return sb.String()
}

// IsUserError determines if an error is due to user input/configuration
func IsUserError(err error) bool {
	if be, ok := AsBuildError(err); ok {
		return be.Category == ErrorCategoryConfiguration ||
			be.Category == ErrorCategoryLint ||
			(be.Category == ErrorCategoryTask && be.Code == CodeUnknownTask)
	}
	return false
}

// GetErrorCode extracts the error code for reporting
func GetErrorCode(err error) string {
	if be, ok := AsBuildError(err); ok {
		return fmt.Sprintf("%s-%s", be.Category, be.Code)
	}
	return "UNKNOWN"
}
