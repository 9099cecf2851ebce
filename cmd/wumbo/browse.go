package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wumbolauncher/wumbo/internal/config"
	"github.com/wumbolauncher/wumbo/internal/logging"
	"github.com/wumbolauncher/wumbo/internal/metrics"
	"github.com/wumbolauncher/wumbo/internal/tui"
)

func handleBrowse(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)
	cf := addCommonFlags(fs)
	library := fs.String("library", "", "library to open (default: loader.default_library)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// First run: offer the wizard instead of failing on a missing config.
	p := cf.path()
	if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
		b, werr := runWizard(ctx)
		if werr != nil {
			return werr
		}
		if err := writeConfig(p, b); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote config to %s\n", p)
	}
	c, err := config.Load(p)
	if err != nil {
		return err
	}
	if *library != "" {
		if !config.IsLibrary(*library) {
			return fmt.Errorf("unknown library %q", *library)
		}
		c.Loader.DefaultLibrary = *library
	}

	// The alternate screen owns the terminal, so logs go to the log file or nowhere.
	log, closer, err := browseLogger(c, *cf.logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	set, warning, err := loadFilters(c, log)
	if err != nil {
		return err
	}
	db, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	m := tui.New(c, db, tui.Options{
		Version: version,
		Log:     log,
		Metrics: metrics.New(c),
		Filters: set,
		Warning: warning,
	})
	defer m.Close()
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func browseLogger(c *config.Config, level string) (*logging.Logger, io.Closer, error) {
	if level == "" {
		level = c.Logging.Level
	}
	if !c.Logging.File.Enabled || c.Logging.File.Path == "" {
		return logging.Discard(), io.NopCloser(nil), nil
	}
	return logging.OpenFile(c.Logging.File.Path, level, strings.EqualFold(c.Logging.Format, "json"))
}
