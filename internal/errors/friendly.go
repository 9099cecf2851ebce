package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Error classes shared by the store, the filter loader and the query cache.
// Callers match them with errors.Is; concrete errors wrap them with %w.
var (
	// ErrStoreUnavailable means the catalog database could not be opened or queried.
	ErrStoreUnavailable = stderrors.New("catalog store unavailable")
	// ErrConfigMissing means an optional configuration input (the filter file) is absent.
	ErrConfigMissing = stderrors.New("configuration missing")
	// ErrCallerMisuse marks a violated precondition on the consumer side.
	ErrCallerMisuse = stderrors.New("caller misuse")
)

// UserFriendlyError provides actionable error messages for end users
type UserFriendlyError struct {
	Message    string // User-facing message explaining what went wrong
	Suggestion string // Actionable steps to fix the issue
	DocsLink   string // Optional link to documentation
	Details    error  // Original error for debugging/logs
}

func (e *UserFriendlyError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString("How to fix:\n")
		sb.WriteString(e.Suggestion)
	}

	if e.DocsLink != "" {
		sb.WriteString("\n\n")
		sb.WriteString("Documentation: ")
		sb.WriteString(e.DocsLink)
	}

	return sb.String()
}

func (e *UserFriendlyError) Unwrap() error {
	return e.Details
}

// NewFriendlyError creates a user-friendly error
func NewFriendlyError(message, suggestion string) *UserFriendlyError {
	return &UserFriendlyError{
		Message:    message,
		Suggestion: suggestion,
	}
}

// WithDetails adds the underlying error details
func (e *UserFriendlyError) WithDetails(err error) *UserFriendlyError {
	e.Details = err
	return e
}

// WithDocs adds a documentation link
func (e *UserFriendlyError) WithDocs(link string) *UserFriendlyError {
	e.DocsLink = link
	return e
}

// StoreError explains a catalog database failure. The result still matches
// ErrStoreUnavailable when err does.
func StoreError(path string, err error) *UserFriendlyError {
	msg := "Catalog database is unavailable"
	suggestion := "Check general.flashpoint_path in your config and run: wumbo config validate"

	if err != nil {
		errStr := err.Error()

		if strings.Contains(errStr, "locked") || strings.Contains(errStr, "busy") {
			msg = "Catalog database is locked by another process"
			suggestion = "Close the Flashpoint launcher or any updater and try again"
		}

		if strings.Contains(errStr, "not a sqlite") || strings.Contains(errStr, "malformed") || strings.Contains(errStr, "corrupt") {
			msg = "Catalog database is either corrupted or not a SQLite file"
			suggestion = fmt.Sprintf("Re-download or repair the Flashpoint data:\n  %s", path)
		}

		if strings.Contains(errStr, "no such file") {
			msg = fmt.Sprintf("Catalog database not found: %s", path)
			suggestion = "Point general.flashpoint_path at your Flashpoint install\nOr set general.database to the full path of flashpoint.sqlite"
		}
	}

	return &UserFriendlyError{
		Message:    msg,
		Suggestion: suggestion,
		Details:    err,
	}
}

// FiltersMissing is the non-fatal warning shown when no filter file exists.
func FiltersMissing(path string) *UserFriendlyError {
	return &UserFriendlyError{
		Message:    fmt.Sprintf("%s was not found, and as a result the archive will be unfiltered. Use at your own risk.", path),
		Suggestion: "Create the file or set filters.path in your config",
		Details:    ErrConfigMissing,
	}
}

// ConfigError returns configuration-related errors
func ConfigError(field, issue string) *UserFriendlyError {
	return &UserFriendlyError{
		Message:    fmt.Sprintf("Configuration error in field '%s': %s", field, issue),
		Suggestion: "Run 'wumbo config validate' to check your configuration",
		DocsLink:   "https://github.com/wumbolauncher/wumbo#configuration",
	}
}

// PathError returns file/directory path related errors
func PathError(path string, err error) *UserFriendlyError {
	msg := fmt.Sprintf("Path error: %s", path)
	suggestion := "Check that the path exists and you have permission to access it"

	if err != nil {
		errStr := err.Error()

		if strings.Contains(errStr, "permission denied") {
			msg = fmt.Sprintf("Permission denied: %s", path)
			suggestion = fmt.Sprintf("Ensure you have read permission:\n  chmod u+r %s", path)
		}

		if strings.Contains(errStr, "no such file or directory") {
			msg = fmt.Sprintf("File does not exist: %s", path)
			suggestion = "Check the path in your config"
		}

		if strings.Contains(errStr, "executable file not found") {
			msg = fmt.Sprintf("Program not found: %s", path)
			suggestion = "Set general.clifp_path to the CLIFp executable"
		}
	}

	return &UserFriendlyError{
		Message:    msg,
		Suggestion: suggestion,
		Details:    err,
	}
}
