package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/wumbolauncher/wumbo/internal/config"
	friendlyerrors "github.com/wumbolauncher/wumbo/internal/errors"
	"github.com/wumbolauncher/wumbo/internal/filters"
	"github.com/wumbolauncher/wumbo/internal/logging"
	"github.com/wumbolauncher/wumbo/internal/state"
)

var version = "dev"

// stdout and stderr are swapped out by tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		usage()
		return errors.New("no command provided")
	}

	cmd := args[0]
	switch cmd {
	case "browse", "tui":
		return handleBrowse(ctx, args[1:])
	case "list":
		return handleList(ctx, args[1:])
	case "show":
		return handleShow(ctx, args[1:])
	case "play":
		return handlePlay(ctx, args[1:])
	case "filters":
		return handleFilters(ctx, args[1:])
	case "config":
		return handleConfig(ctx, args[1:])
	case "doctor":
		return handleDoctor(ctx, args[1:])
	case "completion":
		return handleCompletion(ctx, args[1:])
	case "version":
		fmt.Fprintln(stdout, version)
		return nil
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func usage() {
	fmt.Fprintln(stdout, strings.TrimSpace(`wumbo - browse a Flashpoint catalog from the terminal

Usage:
  wumbo <command> [flags]

Commands:
  browse            Open the interactive catalog browser (default library from config)
  list              Stream catalog entries (text or JSON lines)
  show ID           Print the metadata and image locations of one entry
  play ID           Launch an entry with CLIFp
  filters lint      Report excluded tags that match nothing in the catalog
  filters show      Print the excluded tags
  config validate   Validate a YAML config file
  config print      Print the loaded config as JSON
  config wizard     Interactive TUI to generate a YAML config
  doctor            Check the config, catalog and helper programs
  completion        Generate shell completion scripts (bash|zsh|fish)
  version           Print version
  help              Show this help

Flags:
  --config PATH     Path to YAML config file (or WUMBO_CONFIG env var; default: ~/.config/wumbo/config.yml)
  --log-level L     Log level: debug|info|warn|error (default: logging.level)
  --json            JSON output and JSON logs (per command)
`))
}

// commonFlags are accepted by every command that reads the config.
type commonFlags struct {
	cfgPath  *string
	logLevel *string
	jsonOut  *bool
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		cfgPath:  fs.String("config", "", "Path to YAML config file"),
		logLevel: fs.String("log-level", "", "log level"),
		jsonOut:  fs.Bool("json", false, "json output"),
	}
}

func (f *commonFlags) path() string {
	if *f.cfgPath != "" {
		return *f.cfgPath
	}
	return config.DefaultPath()
}

// load reads the config and builds the logger it describes.
func (f *commonFlags) load() (*config.Config, *logging.Logger, error) {
	p := f.path()
	if _, err := os.Stat(p); err != nil {
		return nil, nil, fmt.Errorf("config file not found: %s (run 'wumbo config wizard')", p)
	}
	c, err := config.Load(p)
	if err != nil {
		return nil, nil, err
	}
	level := *f.logLevel
	if level == "" {
		level = c.Logging.Level
	}
	return c, logging.NewWriter(stderr, level, *f.jsonOut || strings.EqualFold(c.Logging.Format, "json")), nil
}

func openCatalog(c *config.Config) (*state.DB, error) {
	db, err := state.Open(c)
	if err != nil {
		return nil, friendlyerrors.StoreError(c.DatabasePath(), err)
	}
	return db, nil
}

// loadFilters warns once when the filter file is absent and carries on
// unfiltered; the warning is also returned for callers that have no visible
// log. Unreadable or malformed files are fatal.
func loadFilters(c *config.Config, log *logging.Logger) (*filters.Set, string, error) {
	set, err := filters.Load(c.Filters.Path)
	if errors.Is(err, friendlyerrors.ErrConfigMissing) {
		warning := err.Error()
		var fe *friendlyerrors.UserFriendlyError
		if errors.As(err, &fe) {
			warning = fe.Message
		}
		log.Warnf("%s", warning)
		return set, warning, nil
	}
	if err != nil {
		return nil, "", err
	}
	log.Debugf("filters: %d excluded tags from %s", set.Len(), c.Filters.Path)
	return set, "", nil
}
