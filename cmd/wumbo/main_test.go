package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wumbolauncher/wumbo/internal/config"
	"github.com/wumbolauncher/wumbo/internal/logging"
	"github.com/wumbolauncher/wumbo/internal/state"
)

// setupFlashpoint writes a small Flashpoint tree and a config pointing at it.
func setupFlashpoint(t *testing.T) string {
	t.Helper()
	fp := t.TempDir()
	db, err := state.Create(filepath.Join(fp, "Data", "flashpoint.sqlite"))
	if err != nil {
		t.Fatalf("create catalog: %v", err)
	}
	entries := []state.Entry{
		{ID: "aaaa1111", Title: "Alpha", Developer: "Zed", Publisher: "P1", Library: "arcade", Tags: []string{"Action"}},
		{ID: "bbbb2222", Title: "Bravo", Developer: "Amy", Publisher: "P2", Library: "arcade", Tags: []string{"Puzzle"}},
		{ID: "cccc3333", Title: "Charlie", Developer: "Mid", Library: "arcade", Tags: []string{"Extreme"}},
		{ID: "dddd4444", Title: "Delta", Library: "theatre", Tags: []string{"Comedy"}},
	}
	for _, e := range entries {
		if err := db.InsertEntry(context.Background(), e); err != nil {
			t.Fatal(err)
		}
	}
	_ = db.Close()

	groups := `[{"name":"Extreme","tags":["Extreme","Gore"],"filtered":true},{"name":"Off","tags":["Action"],"filtered":false}]`
	if err := os.WriteFile(filepath.Join(fp, "filters.json"), []byte(groups), 0o644); err != nil {
		t.Fatal(err)
	}

	cfgPath := filepath.Join(fp, "config.yml")
	cfg := strings.Join([]string{
		"version: 1",
		"general:",
		"  flashpoint_path: \"" + fp + "\"",
		"loader:",
		"  page_size: 1",
		"  default_library: arcade",
		"filters:",
		"  path: \"" + filepath.Join(fp, "filters.json") + "\"",
		"logging:",
		"  level: error",
	}, "\n")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

// runCmd runs the CLI with stdout captured.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runCmdLogs(t, args...)
	return out, err
}

// runCmdLogs runs the CLI with stdout and stderr captured separately.
func runCmdLogs(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	oldOut, oldErr := stdout, stderr
	stdout, stderr = &out, &logs
	defer func() { stdout, stderr = oldOut, oldErr }()
	err := run(context.Background(), args)
	return out.String(), logs.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func firstField(rows []string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = strings.SplitN(r, "\t", 2)[0]
	}
	return out
}

func TestRun_Version(t *testing.T) {
	out, err := runCmd(t, "version")
	if err != nil || strings.TrimSpace(out) != version {
		t.Fatalf("version = %q, %v", out, err)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	if _, err := runCmd(t, "bogus"); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("error = %v", err)
	}
	if _, err := runCmd(t); err == nil {
		t.Fatal("expected an error with no command")
	}
}

func TestList(t *testing.T) {
	cfg := setupFlashpoint(t)

	cases := []struct {
		name string
		args []string
		want []string
	}{
		{"default library filtered", nil, []string{"Alpha", "Bravo"}},
		{"other library", []string{"--library", "theatre"}, []string{"Delta"}},
		{"search", []string{"--search", "rav"}, []string{"Bravo"}},
		{"sort developer", []string{"--sort", "developer"}, []string{"Bravo", "Alpha"}},
		{"title descending", []string{"--desc"}, []string{"Bravo", "Alpha"}},
		{"sort publisher descending", []string{"--sort", "pub", "--desc"}, []string{"Bravo", "Alpha"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, err := runCmd(t, append([]string{"list", "--config", cfg}, c.args...)...)
			if err != nil {
				t.Fatalf("list error = %v", err)
			}
			if diff := cmp.Diff(c.want, firstField(lines(out))); diff != "" {
				t.Errorf("titles mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestList_JSONLimit(t *testing.T) {
	cfg := setupFlashpoint(t)
	out, err := runCmd(t, "list", "--config", cfg, "--json", "--limit", "1")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	got := lines(out)
	if len(got) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(got), out)
	}
	var item listItem
	if err := json.Unmarshal([]byte(got[0]), &item); err != nil {
		t.Fatal(err)
	}
	want := listItem{Position: 0, ID: "aaaa1111", Title: "Alpha", Developer: "Zed", Publisher: "P1", Tags: []string{"Action"}}
	if diff := cmp.Diff(want, item); diff != "" {
		t.Errorf("item mismatch (-want +got):\n%s", diff)
	}
}

func TestList_LimitStopsQuietly(t *testing.T) {
	cfg := setupFlashpoint(t)
	fp := filepath.Dir(cfg)
	db, err := state.Create(filepath.Join(fp, "Data", "flashpoint.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 1500; i++ {
		e := state.Entry{ID: fmt.Sprintf("bulk%05d", i), Title: fmt.Sprintf("Bulk %05d", i), Library: "arcade"}
		if err := db.InsertEntry(context.Background(), e); err != nil {
			t.Fatal(err)
		}
	}
	_ = db.Close()
	b, err := os.ReadFile(cfg)
	if err != nil {
		t.Fatal(err)
	}
	b = bytes.Replace(b, []byte("page_size: 1\n"), []byte("page_size: 10\n"), 1)
	b = bytes.Replace(b, []byte("level: error"), []byte("level: debug"), 1)
	if err := os.WriteFile(cfg, b, 0o644); err != nil {
		t.Fatal(err)
	}

	out, logs, err := runCmdLogs(t, "list", "--config", cfg, "--limit", "2")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if diff := cmp.Diff([]string{"Alpha", "Bravo"}, firstField(lines(out))); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
	if strings.Contains(logs, "ERROR") {
		t.Errorf("an intended early stop was logged as an error:\n%s", logs)
	}
}

func TestLoadFiltersReturnsMissingWarning(t *testing.T) {
	c := config.Default()
	c.Filters.Path = filepath.Join(t.TempDir(), "filters.json")
	var logs bytes.Buffer
	set, warning, err := loadFilters(c, logging.NewWriter(&logs, "warn", false))
	if err != nil {
		t.Fatalf("loadFilters() error = %v", err)
	}
	if set.Len() != 0 {
		t.Errorf("set has %d tags, want none", set.Len())
	}
	if !strings.Contains(warning, "will be unfiltered") || strings.Contains(warning, "How to fix") {
		t.Errorf("warning = %q", warning)
	}
	if strings.Count(logs.String(), "WARN") != 1 {
		t.Errorf("want exactly one warning logged, got:\n%s", logs.String())
	}
}

func TestList_BadFlags(t *testing.T) {
	cfg := setupFlashpoint(t)
	if _, err := runCmd(t, "list", "--config", cfg, "--library", "nope"); err == nil {
		t.Error("expected error for unknown library")
	}
	if _, err := runCmd(t, "list", "--config", cfg, "--sort", "rating"); err == nil {
		t.Error("expected error for unknown sort column")
	}
	if _, err := runCmd(t, "list", "--config", filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("expected error for missing config")
	}
}

func TestList_MalformedFiltersIsFatal(t *testing.T) {
	cfg := setupFlashpoint(t)
	if err := os.WriteFile(filepath.Join(filepath.Dir(cfg), "filters.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCmd(t, "list", "--config", cfg); err == nil {
		t.Fatal("expected error for malformed filters file")
	}
}

func TestList_MissingFiltersIsUnfiltered(t *testing.T) {
	cfg := setupFlashpoint(t)
	if err := os.Remove(filepath.Join(filepath.Dir(cfg), "filters.json")); err != nil {
		t.Fatal(err)
	}
	out, err := runCmd(t, "list", "--config", cfg)
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if diff := cmp.Diff([]string{"Alpha", "Bravo", "Charlie"}, firstField(lines(out))); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
}

func TestShow(t *testing.T) {
	cfg := setupFlashpoint(t)
	out, err := runCmd(t, "show", "--config", cfg, "aaaa1111")
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	for _, want := range []string{"Alpha", "Zed", "Action", "Logos:", "wumbo play aaaa1111"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	out, err = runCmd(t, "show", "--config", cfg, "--json", "bbbb2222")
	if err != nil {
		t.Fatalf("show --json error = %v", err)
	}
	var doc struct {
		Entry state.Entry
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Entry.Title != "Bravo" {
		t.Errorf("entry = %+v", doc.Entry)
	}

	if _, err := runCmd(t, "show", "--config", cfg, "zzzz9999"); err == nil || !strings.Contains(err.Error(), "no entry with id") {
		t.Errorf("missing id error = %v", err)
	}
	if _, err := runCmd(t, "show", "--config", cfg); err == nil {
		t.Error("expected usage error without an id")
	}
}

func TestPlay_Errors(t *testing.T) {
	cfg := setupFlashpoint(t)
	if _, err := runCmd(t, "play", "--config", cfg, "zzzz9999"); err == nil {
		t.Error("expected error for unknown id")
	}
	if _, err := runCmd(t, "play", "--config", cfg, "aaaa1111"); err == nil {
		t.Error("expected error without CLIFp")
	}
}

func TestFilters(t *testing.T) {
	cfg := setupFlashpoint(t)
	out, err := runCmd(t, "filters", "show", "--config", cfg)
	if err != nil {
		t.Fatalf("filters show error = %v", err)
	}
	if diff := cmp.Diff([]string{"Extreme", "Gore"}, lines(out)); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}

	out, err = runCmd(t, "filters", "lint", "--config", cfg)
	if err == nil {
		t.Fatal("expected lint to fail on an unused tag")
	}
	if !strings.Contains(out, `"Gore" matches no entry`) || strings.Contains(out, `"Extreme"`) {
		t.Errorf("lint output:\n%s", out)
	}

	if _, err := runCmd(t, "filters", "nope"); err == nil {
		t.Error("expected error for unknown subcommand")
	}
}

func TestConfig(t *testing.T) {
	cfg := setupFlashpoint(t)
	out, err := runCmd(t, "config", "validate", "--config", cfg)
	if err != nil || !strings.Contains(out, "config: valid") {
		t.Fatalf("validate = %q, %v", out, err)
	}

	out, err = runCmd(t, "config", "print", "--config", cfg)
	if err != nil {
		t.Fatalf("print error = %v", err)
	}
	var c config.Config
	if err := json.Unmarshal([]byte(out), &c); err != nil {
		t.Fatal(err)
	}
	if c.Loader.PageSize != 1 || c.Loader.DefaultLibrary != "arcade" {
		t.Errorf("loader = %+v", c.Loader)
	}

	if _, err := runCmd(t, "config"); err == nil {
		t.Error("expected error without subcommand")
	}
}

func TestDoctor_Offline(t *testing.T) {
	cfg := setupFlashpoint(t)
	out, err := runCmd(t, "doctor", "--config", cfg, "--offline")
	if err != nil {
		t.Fatalf("doctor error = %v\n%s", err, out)
	}
	for _, want := range []string{"✓ Catalog database readable", "3 arcade, 1 theatre", "2 excluded tags", "⚠ CLIFp"} {
		if !strings.Contains(out, want) {
			t.Errorf("doctor output missing %q:\n%s", want, out)
		}
	}
}

func TestDoctor_MissingConfig(t *testing.T) {
	out, err := runCmd(t, "doctor", "--config", filepath.Join(t.TempDir(), "missing.yml"), "--offline")
	if err == nil {
		t.Fatal("expected doctor to fail")
	}
	if !strings.Contains(out, "✗ Config file exists") {
		t.Errorf("doctor output:\n%s", out)
	}
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish"} {
		out, err := runCmd(t, "completion", shell)
		if err != nil || !strings.Contains(out, "wumbo") {
			t.Errorf("completion %s = %v", shell, err)
		}
	}
	if _, err := runCmd(t, "completion", "tcsh"); err == nil {
		t.Error("expected error for unknown shell")
	}
}
