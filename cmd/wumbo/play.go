package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/wumbolauncher/wumbo/internal/launcher"
	"github.com/wumbolauncher/wumbo/internal/logging"
)

func handlePlay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	cf := addCommonFlags(fs)
	clifp := fs.String("clifp", "", "path to CLIFp (default: general.clifp_path)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: wumbo play [flags] ID")
	}
	c, log, err := cf.load()
	if err != nil {
		return err
	}
	if *clifp == "" {
		*clifp = c.General.CLIFpPath
	}
	db, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	e, err := lookupEntry(ctx, db, fs.Arg(0))
	if err != nil {
		return err
	}
	proc, err := launcher.Play(*clifp, e.ID)
	if err != nil {
		return err
	}
	log.Debugf("CLIFp pid %d", proc.Pid)
	fmt.Fprintf(stdout, "launched %s\n", logging.SanitizeText(e.Title))
	return nil
}
