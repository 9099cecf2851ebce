package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/wumbolauncher/wumbo/internal/config"
	"github.com/wumbolauncher/wumbo/internal/filters"
)

func handleFilters(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("filters subcommand required: lint | show")
	}
	switch args[0] {
	case "lint":
		return handleFiltersLint(ctx, args[1:])
	case "show":
		return handleFiltersShow(ctx, args[1:])
	default:
		return fmt.Errorf("unknown filters subcommand: %s", args[0])
	}
}

func handleFiltersShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("filters show", flag.ContinueOnError)
	cf := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	c, log, err := cf.load()
	if err != nil {
		return err
	}
	set, _, err := loadFilters(c, log)
	if err != nil {
		return err
	}
	for _, t := range set.Tags() {
		fmt.Fprintln(stdout, t)
	}
	return nil
}

func handleFiltersLint(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("filters lint", flag.ContinueOnError)
	cf := addCommonFlags(fs)
	library := fs.String("library", "", "only compare against this library")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c, log, err := cf.load()
	if err != nil {
		return err
	}
	set, _, err := loadFilters(c, log)
	if err != nil {
		return err
	}
	db, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	libs := config.Libraries
	if *library != "" {
		if !config.IsLibrary(*library) {
			return fmt.Errorf("unknown library %q", *library)
		}
		libs = []string{*library}
	}
	seen := map[string]struct{}{}
	for _, lib := range libs {
		tags, err := db.ListTags(ctx, lib)
		if err != nil {
			return err
		}
		for _, t := range tags {
			seen[t] = struct{}{}
		}
	}
	known := make([]string, 0, len(seen))
	for t := range seen {
		known = append(known, t)
	}
	sort.Strings(known)

	findings := filters.Lint(set, known)
	for _, f := range findings {
		line := fmt.Sprintf("%q matches no entry", f.Tag)
		if len(f.Suggestions) > 0 {
			line += "; did you mean " + strings.Join(quoteAll(f.Suggestions), ", ") + "?"
		}
		fmt.Fprintln(stdout, line)
	}
	if len(findings) > 0 {
		return fmt.Errorf("%d of %d filter tags match nothing", len(findings), set.Len())
	}
	fmt.Fprintf(stdout, "all %d filter tags occur in the catalog\n", set.Len())
	return nil
}

func quoteAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}
