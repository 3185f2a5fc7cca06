package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"syscall"
)

// Common error codes
const (
	// Task registry and sequencer codes
	CodeUnknownTask   = "001"
	CodeDuplicateTask = "002"
	CodeGraphCycle    = "003"

	CodeLintViolation = "001"

	CodeFileSystem = "001"

	CodeArchiveWrite = "001"

	CodeExternalTool = "001"

	CodeConfigInvalid = "001"
)

// NewUnknownTaskError creates an error for a task name that is not registered
func NewUnknownTaskError(name string) *BuildError {
	return NewBuildError(ErrorCategoryTask, CodeUnknownTask,
		fmt.Sprintf("Task '%s' is not registered", name),
		"Task lookup").
		WithContext("task", name).
		WithTroubleshooting(
			"Run 'sitebuild tasks' to list the available tasks",
			"Check the spelling of the task name, task names are case sensitive",
		)
}

// NewDuplicateTaskError creates an error for strict re-registration of a task
func NewDuplicateTaskError(name string) *BuildError {
	return NewBuildError(ErrorCategoryTask, CodeDuplicateTask,
		fmt.Sprintf("Task '%s' is already registered", name),
		"Task registration").
		WithContext("task", name)
}

// NewGraphCycleError creates an error for a cyclic task dependency graph
func NewGraphCycleError(target string, originalErr error) *BuildError {
	return NewBuildError(ErrorCategoryTask, CodeGraphCycle,
		fmt.Sprintf("Dependencies of task '%s' form a cycle", target),
		"Dependency resolution").
		WithContext("task", target).
		WithOriginalError(originalErr).
		WithTroubleshooting(
			"Run 'sitebuild graph' to inspect the dependency plan",
		)
}

// NewLintViolationError creates an error for a failed lint gate
func NewLintViolationError(count int, files []string) *BuildError {
	return NewBuildError(ErrorCategoryLint, CodeLintViolation,
		fmt.Sprintf("Lint found %d violation(s)", count),
		"Lint check").
		WithContext("files", strings.Join(files, ", ")).
		WithTroubleshooting(
			"Fix the reported violations and re-run the build",
			"Run 'sitebuild run lint:js' to lint without building",
		)
}

// NewFileSystemError creates an error for file system failures inside a step
func NewFileSystemError(path, operation string, originalErr error) *BuildError {
	err := NewBuildError(ErrorCategoryFileSystem, CodeFileSystem,
		fmt.Sprintf("File operation failed on '%s'", path),
		operation).
		WithContext("path", path).
		WithOriginalError(originalErr)

	switch {
	case errors.Is(originalErr, fs.ErrPermission):
		err = err.WithTroubleshooting(
			"Check the permissions of the path and its parent directory",
		)
	case errors.Is(originalErr, fs.ErrNotExist):
		err = err.WithTroubleshooting(
			"Verify the path exists in the source tree",
			"Check the directories configured in the project manifest",
		)
	case errors.Is(originalErr, syscall.ENOSPC):
		err = err.WithTroubleshooting(
			"Free up disk space and re-run the build",
		)
	}
	return err
}

// NewArchiveWriteError creates an error for archive output failures
func NewArchiveWriteError(archivePath string, originalErr error) *BuildError {
	return NewBuildError(ErrorCategoryArchive, CodeArchiveWrite,
		fmt.Sprintf("Failed to write archive '%s'", archivePath),
		"Archive creation").
		WithContext("archive", archivePath).
		WithOriginalError(originalErr).
		WithTroubleshooting(
			"Make sure the archive directory is writable",
			"Re-run 'sitebuild run archive', no partial archive was kept",
		)
}

// NewExternalToolError creates an error for a delegated tool that failed
func NewExternalToolError(tool string, exitCode int, stderr string, originalErr error) *BuildError {
	return NewBuildError(ErrorCategoryTool, CodeExternalTool,
		fmt.Sprintf("External tool '%s' failed with exit code %d", tool, exitCode),
		"External tool invocation").
		WithContext("tool", tool).
		WithContext("stderr", strings.TrimSpace(stderr)).
		WithOriginalError(originalErr).
		WithTroubleshooting(
			fmt.Sprintf("Verify '%s' is installed and on PATH", tool),
			"Check the tool command configured in the project manifest",
		)
}

// NewTransformToolError creates an error for a delegated transformation
// (minifier, image codec) that rejected its input
func NewTransformToolError(tool, source string, originalErr error) *BuildError {
	return NewBuildError(ErrorCategoryTool, CodeExternalTool,
		fmt.Sprintf("Tool '%s' could not process '%s'", tool, source),
		"Asset transformation").
		WithContext("tool", tool).
		WithContext("source", source).
		WithOriginalError(originalErr).
		WithTroubleshooting(
			fmt.Sprintf("Check '%s' for syntax or encoding errors", source),
			"Run 'sitebuild run lint:js' to locate script problems",
		)
}

// NewConfigurationError creates an error for an invalid manifest or flag
func NewConfigurationError(field, message string, originalErr error) *BuildError {
	return NewBuildError(ErrorCategoryConfiguration, CodeConfigInvalid,
		message, "Configuration loading").
		WithContext("field", field).
		WithOriginalError(originalErr).
		WithTroubleshooting(
			"Check the project manifest passed with --manifest",
		)
}

// IsUnknownTask reports whether err is an UnknownTaskError
func IsUnknownTask(err error) bool {
	return hasCode(err, ErrorCategoryTask, CodeUnknownTask)
}

// IsDuplicateTask reports whether err is a DuplicateTaskError
func IsDuplicateTask(err error) bool {
	return hasCode(err, ErrorCategoryTask, CodeDuplicateTask)
}

// IsGraphCycle reports whether err is a GraphCycleError
func IsGraphCycle(err error) bool {
	return hasCode(err, ErrorCategoryTask, CodeGraphCycle)
}

// IsLintViolation reports whether err is a LintViolationError
func IsLintViolation(err error) bool {
	return hasCode(err, ErrorCategoryLint, CodeLintViolation)
}

// IsFileSystem reports whether err is a FileSystemError
func IsFileSystem(err error) bool {
	return hasCode(err, ErrorCategoryFileSystem, CodeFileSystem)
}

// IsArchiveWrite reports whether err is an ArchiveWriteError
func IsArchiveWrite(err error) bool {
	return hasCode(err, ErrorCategoryArchive, CodeArchiveWrite)
}

// IsExternalTool reports whether err is an ExternalToolError
func IsExternalTool(err error) bool {
	return hasCode(err, ErrorCategoryTool, CodeExternalTool)
}

// IsConfiguration reports whether err is a ConfigurationError
func IsConfiguration(err error) bool {
	return hasCode(err, ErrorCategoryConfiguration, CodeConfigInvalid)
}

// GetErrorSeverity returns the severity level of an error
func GetErrorSeverity(err error) string {
	if be, ok := AsBuildError(err); ok {
		switch be.Category {
		case ErrorCategoryConfiguration:
			return "WARNING"
		case ErrorCategoryLint, ErrorCategoryTask:
			return "ERROR"
		case ErrorCategoryArchive, ErrorCategoryFileSystem, ErrorCategoryTool:
			return "CRITICAL"
		default:
			return "ERROR"
		}
	}
	return "ERROR"
}
