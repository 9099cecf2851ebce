package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/wumbolauncher/wumbo/internal/config"
	friendlyerrors "github.com/wumbolauncher/wumbo/internal/errors"
	"github.com/wumbolauncher/wumbo/internal/filters"
	"github.com/wumbolauncher/wumbo/internal/state"
	"github.com/wumbolauncher/wumbo/internal/system"
)

// Check represents a single diagnostic check
type Check struct {
	Name     string
	Run      func(ctx context.Context) CheckResult
	Critical bool // If true, failure means the browser cannot start
}

// CheckResult represents the result of a diagnostic check
type CheckResult struct {
	Passed     bool
	Warning    bool // Passed but with warnings
	Message    string
	Suggestion string
}

var errNoConfig = CheckResult{Passed: false, Message: "Config not loaded"}

func handleDoctor(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	cf := addCommonFlags(fs)
	verbose := fs.Bool("verbose", false, "Show detailed output for each check")
	offline := fs.Bool("offline", false, "Skip the image server check")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfgPath := cf.path()
	var cfg *config.Config
	var cfgErr error
	if cfgPath != "" {
		cfg, cfgErr = config.Load(cfgPath)
	}

	fmt.Fprint(stdout, "Running wumbo diagnostics...\n\n")

	checks := []Check{
		{
			Name:     "Config file exists",
			Critical: true,
			Run: func(ctx context.Context) CheckResult {
				if cfgPath == "" {
					return CheckResult{Message: "No config path specified", Suggestion: "Set WUMBO_CONFIG or use --config flag"}
				}
				if _, err := os.Stat(cfgPath); err != nil {
					return CheckResult{
						Message:    fmt.Sprintf("Config file not found: %s", cfgPath),
						Suggestion: "Run 'wumbo config wizard --out " + cfgPath + "' to create one",
					}
				}
				return CheckResult{Passed: true, Message: fmt.Sprintf("Found: %s", cfgPath)}
			},
		},
		{
			Name:     "Config is valid",
			Critical: true,
			Run: func(ctx context.Context) CheckResult {
				if cfgErr != nil {
					return CheckResult{
						Message:    "Config parsing failed",
						Suggestion: fmt.Sprintf("Fix config errors:\n%v\n\nRun 'wumbo config validate' for details", cfgErr),
					}
				}
				if cfg == nil {
					return errNoConfig
				}
				if err := cfg.ValidateWithFriendlyErrors(); err != nil {
					return CheckResult{Message: "Config has problems", Suggestion: err.Error()}
				}
				return CheckResult{Passed: true, Message: "Valid"}
			},
		},
		{
			Name:     "Catalog database readable",
			Critical: true,
			Run: func(ctx context.Context) CheckResult {
				if cfg == nil {
					return errNoConfig
				}
				path := cfg.DatabasePath()
				if err := state.CheckHeader(path); err != nil {
					fe := friendlyerrors.StoreError(path, err)
					return CheckResult{Message: fe.Message, Suggestion: fe.Suggestion}
				}
				db, err := state.Open(cfg)
				if err != nil {
					fe := friendlyerrors.StoreError(path, err)
					return CheckResult{Message: fe.Message, Suggestion: fe.Suggestion}
				}
				defer db.Close()

				if err := db.CheckIntegrity(ctx); err != nil {
					return CheckResult{Message: err.Error(), Suggestion: "Repair or re-download the Flashpoint data"}
				}
				st, err := db.GetStats(ctx, config.Libraries)
				if err != nil {
					return CheckResult{Message: fmt.Sprintf("Cannot query catalog: %v", err)}
				}
				var counts []string
				for _, lib := range config.Libraries {
					counts = append(counts, fmt.Sprintf("%s %s", humanize.Comma(int64(st.Entries[lib])), lib))
				}
				return CheckResult{Passed: true, Message: fmt.Sprintf("%s, %s (%s)", path, humanize.Bytes(uint64(st.DatabaseSize)), strings.Join(counts, ", "))}
			},
		},
		{
			Name: "Filter file",
			Run: func(ctx context.Context) CheckResult {
				if cfg == nil {
					return errNoConfig
				}
				set, err := filters.Load(cfg.Filters.Path)
				if errors.Is(err, friendlyerrors.ErrConfigMissing) {
					return CheckResult{
						Passed:     true,
						Warning:    true,
						Message:    fmt.Sprintf("Not found: %s (catalog will be unfiltered)", cfg.Filters.Path),
						Suggestion: "Create the file or set filters.path",
					}
				}
				if err != nil {
					return CheckResult{Message: err.Error(), Suggestion: "Fix the filter file; the browser refuses to start with it"}
				}
				return CheckResult{Passed: true, Message: fmt.Sprintf("%d excluded tags", set.Len())}
			},
		},
		{
			Name: "CLIFp",
			Run: func(ctx context.Context) CheckResult {
				if cfg == nil {
					return errNoConfig
				}
				if cfg.General.CLIFpPath == "" {
					return CheckResult{Passed: true, Warning: true, Message: "general.clifp_path not set", Suggestion: "Set it to launch games with 'wumbo play'"}
				}
				info, err := os.Stat(cfg.General.CLIFpPath)
				if err != nil {
					return CheckResult{Passed: true, Warning: true, Message: fmt.Sprintf("Not found: %s", cfg.General.CLIFpPath)}
				}
				if info.IsDir() {
					return CheckResult{Passed: true, Warning: true, Message: fmt.Sprintf("Is a directory: %s", cfg.General.CLIFpPath)}
				}
				return CheckResult{Passed: true, Message: cfg.General.CLIFpPath}
			},
		},
		{
			Name: "Local images",
			Run: func(ctx context.Context) CheckResult {
				if cfg == nil {
					return errNoConfig
				}
				dir := filepath.Join(cfg.General.FlashpointPath, "Data", "Images")
				if info, err := os.Stat(dir); err != nil || !info.IsDir() {
					return CheckResult{Passed: true, Warning: true, Message: fmt.Sprintf("No image directory at %s", dir), Suggestion: "Images will be linked from general.image_server"}
				}
				return CheckResult{Passed: true, Message: dir}
			},
		},
	}
	if !*offline {
		checks = append(checks, Check{
			Name: "Image server reachable",
			Run: func(ctx context.Context) CheckResult {
				if cfg == nil {
					return errNoConfig
				}
				cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
				defer cancel()
				if err := system.CheckHostReachable(cctx, cfg.General.ImageServer); err != nil {
					return CheckResult{Passed: true, Warning: true, Message: "Image server check failed", Suggestion: err.Error()}
				}
				return CheckResult{Passed: true, Message: cfg.General.ImageServer}
			},
		})
	}

	passed, failed, warned := 0, 0, 0
	for _, check := range checks {
		start := time.Now()
		result := check.Run(ctx)
		duration := time.Since(start)

		symbol := "✓"
		switch {
		case !result.Passed:
			symbol = "✗"
			failed++
		case result.Warning:
			symbol = "⚠"
			warned++
			passed++
		default:
			passed++
		}

		fmt.Fprintf(stdout, "%s %s", symbol, check.Name)
		if *verbose {
			fmt.Fprintf(stdout, " (%.2fs)", duration.Seconds())
		}
		fmt.Fprintln(stdout)
		if result.Message != "" {
			fmt.Fprintf(stdout, "  %s\n", result.Message)
		}
		if result.Suggestion != "" {
			for _, line := range strings.Split(result.Suggestion, "\n") {
				fmt.Fprintf(stdout, "  → %s\n", line)
			}
		}
		if *verbose || !result.Passed || result.Warning {
			fmt.Fprintln(stdout)
		}
	}

	fmt.Fprintf(stdout, "\nDiagnostic Summary:\n")
	fmt.Fprintf(stdout, "  Total checks: %d\n", len(checks))
	fmt.Fprintf(stdout, "  Passed:       %d\n", passed)
	fmt.Fprintf(stdout, "  Warnings:     %d\n", warned)
	fmt.Fprintf(stdout, "  Failed:       %d\n", failed)

	if failed > 0 {
		fmt.Fprintln(stdout, "\n⚠ Some checks failed. Please fix the issues above before using wumbo.")
		return fmt.Errorf("%d checks failed", failed)
	}
	if warned > 0 {
		fmt.Fprintln(stdout, "\n⚠ Some checks have warnings. Browsing works but some features may be limited.")
	} else {
		fmt.Fprintln(stdout, "\n✓ All checks passed! wumbo is ready to use.")
	}
	return nil
}
