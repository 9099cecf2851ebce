package config

import (
	"fmt"
	"os"
	"strings"

	friendlyerrors "github.com/wumbolauncher/wumbo/internal/errors"
)

// ValidationError represents a detailed config validation error
type ValidationError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Config validation error in '%s': %s", e.Field, e.Message)
}

// ValidateDetailed performs comprehensive validation with friendly error messages
func (c *Config) ValidateDetailed() []ValidationError {
	var errs []ValidationError

	if c.Version != 1 {
		errs = append(errs, ValidationError{
			Field:      "version",
			Value:      c.Version,
			Message:    fmt.Sprintf("Unsupported version: %d", c.Version),
			Suggestion: "Use version: 1",
		})
	}

	dbPath := c.DatabasePath()
	if dbPath == "" {
		errs = append(errs, ValidationError{
			Field:      "general.flashpoint_path",
			Message:    "Required field missing",
			Suggestion: "Set to your Flashpoint install:\n  flashpoint_path: ~/Flashpoint",
		})
	} else if _, err := os.Stat(dbPath); err != nil {
		errs = append(errs, ValidationError{
			Field:      "general.database",
			Value:      dbPath,
			Message:    "Catalog database not found",
			Suggestion: "Check general.flashpoint_path, or set general.database to flashpoint.sqlite",
		})
	}

	if c.General.CLIFpPath != "" {
		if _, err := os.Stat(c.General.CLIFpPath); err != nil {
			errs = append(errs, ValidationError{
				Field:      "general.clifp_path",
				Value:      c.General.CLIFpPath,
				Message:    "CLIFp not found",
				Suggestion: "Playing entries will be unavailable until this points at CLIFp",
			})
		}
	}

	if c.Loader.PageSize < 1 {
		errs = append(errs, ValidationError{
			Field:      "loader.page_size",
			Value:      c.Loader.PageSize,
			Message:    "Must be at least 1",
			Suggestion: "Recommended: 500",
		})
	}

	if c.Loader.PageSize > 50000 {
		errs = append(errs, ValidationError{
			Field:      "loader.page_size",
			Value:      c.Loader.PageSize,
			Message:    "Unusually large page",
			Suggestion: "Large pages delay the first visible rows. Try 200-2000.",
		})
	}

	if !IsLibrary(c.Loader.DefaultLibrary) {
		errs = append(errs, ValidationError{
			Field:      "loader.default_library",
			Value:      c.Loader.DefaultLibrary,
			Message:    "Unknown library",
			Suggestion: "Use one of: " + strings.Join(Libraries, ", "),
		})
	}

	if c.Filters.Path != "" {
		if _, err := os.Stat(c.Filters.Path); err != nil {
			errs = append(errs, ValidationError{
				Field:      "filters.path",
				Value:      c.Filters.Path,
				Message:    "Filter file not found; the archive will be unfiltered",
				Suggestion: "Create the file or point filters.path at an existing filters.json",
			})
		}
	}

	lvl := strings.ToLower(c.Logging.Level)
	validLevels := []string{"", "debug", "info", "warn", "error"}
	found := false
	for _, valid := range validLevels {
		if lvl == valid {
			found = true
			break
		}
	}
	if !found {
		errs = append(errs, ValidationError{
			Field:      "logging.level",
			Value:      c.Logging.Level,
			Message:    "Invalid log level",
			Suggestion: "Use one of: debug, info, warn, error",
		})
	}

	if c.Metrics.PrometheusTextfile.Enabled && c.Metrics.PrometheusTextfile.Path == "" {
		errs = append(errs, ValidationError{
			Field:      "metrics.prometheus_textfile.path",
			Message:    "Required when the textfile exporter is enabled",
			Suggestion: "path: /var/lib/node_exporter/textfile/wumbo.prom",
		})
	}

	if c.UI.RefreshHz > 30 {
		errs = append(errs, ValidationError{
			Field:      "ui.refresh_hz",
			Value:      c.UI.RefreshHz,
			Message:    "Clamped to 30",
			Suggestion: "Recommended: 10",
		})
	}

	return errs
}

// ValidateWithFriendlyErrors returns a user-friendly validation error
func (c *Config) ValidateWithFriendlyErrors() error {
	if err := c.Validate(); err != nil {
		return err
	}

	errs := c.ValidateDetailed()
	if len(errs) == 0 {
		return nil
	}

	var msg strings.Builder
	msg.WriteString("Configuration validation failed:\n\n")

	for i, err := range errs {
		msg.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
		if err.Value != nil {
			msg.WriteString(fmt.Sprintf("   Current value: %v\n", err.Value))
		}
		if err.Suggestion != "" {
			lines := strings.Split(err.Suggestion, "\n")
			for _, line := range lines {
				msg.WriteString(fmt.Sprintf("   → %s\n", line))
			}
		}
		msg.WriteString("\n")
	}

	return friendlyerrors.NewFriendlyError(
		"Config validation failed",
		msg.String(),
	).WithDocs("https://github.com/wumbolauncher/wumbo#configuration")
}
