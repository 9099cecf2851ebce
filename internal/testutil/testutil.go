package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/wumbolauncher/wumbo/internal/state"
)

// TestCatalog creates a file-backed catalog seeded with entries.
func TestCatalog(t *testing.T, entries ...state.Entry) *state.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "Data", "flashpoint.sqlite")
	db, err := state.Create(path)
	if err != nil {
		t.Fatalf("failed to create test catalog: %v", err)
	}

	ctx := context.Background()
	for _, e := range entries {
		if err := db.InsertEntry(ctx, e); err != nil {
			t.Fatalf("failed to insert %s: %v", e.ID, err)
		}
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test catalog: %v", err)
		}
	})

	return db
}

// GenEntries returns n entries of library titled "Game 00000".."Game n-1",
// so title order equals generation order.
func GenEntries(library string, n int) []state.Entry {
	out := make([]state.Entry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, state.Entry{
			ID:        fmt.Sprintf("%s-%08d", library, i),
			Title:     fmt.Sprintf("Game %05d", i),
			Developer: fmt.Sprintf("Dev %d", i%7),
			Publisher: fmt.Sprintf("Pub %d", i%5),
			Library:   library,
			Tags:      []string{"Action"},
		})
	}
	return out
}

// TempDir creates a temporary directory for testing
func TempDir(t *testing.T) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "wumbo-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	t.Cleanup(func() {
		_ = os.RemoveAll(dir)
	})

	return dir
}

// TempFile creates a temporary file with content
func TempFile(t *testing.T, name, content string) string {
	t.Helper()

	dir := TempDir(t)
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	return path
}
