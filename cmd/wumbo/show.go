package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/wumbolauncher/wumbo/internal/assets"
	"github.com/wumbolauncher/wumbo/internal/launcher"
	"github.com/wumbolauncher/wumbo/internal/state"
)

func handleShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	cf := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: wumbo show [flags] ID")
	}
	c, _, err := cf.load()
	if err != nil {
		return err
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
	imgs, err := assets.Resolve(c.General.FlashpointPath, c.General.ImageServer, e.ID)
	if err != nil {
		imgs = nil
	}
	if *cf.jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"entry": e, "images": imgs})
	}

	fields := []struct{ name, value string }{
		{"ID", e.ID},
		{"Title", e.Title},
		{"Alternate titles", e.AlternateTitles},
		{"Series", e.Series},
		{"Developer", e.Developer},
		{"Publisher", e.Publisher},
		{"Release date", e.ReleaseDate},
		{"Platform", e.Platform},
		{"Version", e.Version},
		{"Library", e.Library},
		{"Play mode", e.PlayMode},
		{"Status", e.Status},
		{"Language", e.Language},
		{"Source", e.Source},
		{"Tags", strings.Join(e.Tags, "; ")},
	}
	for _, f := range fields {
		if f.value != "" {
			fmt.Fprintf(stdout, "%-17s %s\n", f.name+":", f.value)
		}
	}
	for _, img := range imgs {
		fmt.Fprintf(stdout, "%-17s %s\n", string(img.Kind)+":", img.Location())
	}
	if e.Notes != "" {
		fmt.Fprintf(stdout, "\n%s\n", e.Notes)
	}
	if e.OriginalDescription != "" {
		fmt.Fprintf(stdout, "\n%s\n", e.OriginalDescription)
	}
	fmt.Fprintf(stdout, "\n%s: wumbo play %s\n", launcher.Label(e.ActiveDataOnDisk), e.ID)
	return nil
}

func lookupEntry(ctx context.Context, db *state.DB, id string) (*state.Entry, error) {
	e, err := db.GetEntry(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no entry with id %s", id)
	}
	return e, err
}
