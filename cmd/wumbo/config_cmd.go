package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wumbolauncher/wumbo/internal/config"
	cw "github.com/wumbolauncher/wumbo/internal/tui/configwizard"
	"gopkg.in/yaml.v3"
)

func handleConfig(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("config subcommand required: validate | print | wizard")
	}
	switch sub := args[0]; sub {
	case "validate":
		return configOp(args[1:], func(c *config.Config) error {
			if err := c.ValidateWithFriendlyErrors(); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "config: valid")
			return nil
		})
	case "print":
		return configOp(args[1:], func(c *config.Config) error {
			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(c)
		})
	case "wizard":
		return handleConfigWizard(ctx, args[1:])
	default:
		return fmt.Errorf("unknown config subcommand: %s", sub)
	}
}

func configOp(args []string, fn func(*config.Config) error) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	cf := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	c, _, err := cf.load()
	if err != nil {
		return err
	}
	return fn(c)
}

func handleConfigWizard(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("config wizard", flag.ContinueOnError)
	out := fs.String("out", "", "write YAML to this path instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	b, err := runWizard(ctx)
	if err != nil {
		return err
	}
	if *out == "" {
		_, err := stdout.Write(b)
		return err
	}
	if err := writeConfig(*out, b); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote config to %s\n", *out)
	return nil
}

// runWizard collects a config interactively and returns it as YAML.
func runWizard(ctx context.Context) ([]byte, error) {
	w := cw.New(config.Default())
	m, err := tea.NewProgram(w, tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, err
	}
	wiz, ok := m.(*cw.Wizard)
	if !ok {
		return nil, errors.New("unexpected model type from wizard")
	}
	cfg := wiz.Config()
	if cfg == nil {
		return nil, errors.New("config wizard was cancelled")
	}
	return yaml.Marshal(cfg)
}

func writeConfig(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
