package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	friendlyerrors "github.com/wumbolauncher/wumbo/internal/errors"
)

func testCatalog(t *testing.T, entries ...Entry) *DB {
	t.Helper()
	db, err := Create(filepath.Join(t.TempDir(), "flashpoint.sqlite"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	for _, e := range entries {
		if err := db.InsertEntry(context.Background(), e); err != nil {
			t.Fatalf("InsertEntry(%s) error = %v", e.ID, err)
		}
	}
	return db
}

// fetchAll pages through a library the way the loader does.
func fetchAll(t *testing.T, db *DB, library, search string, limit int) ([]RawRow, int) {
	t.Helper()
	var all []RawRow
	var cur Cursor
	pages := 0
	for {
		page, err := db.FetchPage(context.Background(), PageQuery{Library: library, Search: search, After: cur, Limit: limit})
		if err != nil {
			t.Fatalf("FetchPage() error = %v", err)
		}
		pages++
		all = append(all, page...)
		if len(page) < limit {
			return all, pages
		}
		cur = After(page[len(page)-1])
	}
}

func titles(rows []RawRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Title
	}
	return out
}

func TestFetchPage_OrderedAndBounded(t *testing.T) {
	db := testCatalog(t,
		Entry{ID: "3", Title: "Cheese Chase", Library: "arcade", Developer: "Dev", Tags: []string{"Puzzle", "Mouse"}},
		Entry{ID: "1", Title: "Alpha", Library: "arcade"},
		Entry{ID: "2", Title: "Bravo", Library: "arcade"},
		Entry{ID: "4", Title: "Animation", Library: "theatre"},
	)

	page, err := db.FetchPage(context.Background(), PageQuery{Library: "arcade", Limit: 2})
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Alpha", "Bravo"}, titles(page)); diff != "" {
		t.Fatalf("first page mismatch (-want +got):\n%s", diff)
	}

	page, err = db.FetchPage(context.Background(), PageQuery{Library: "arcade", After: After(page[1]), Limit: 2})
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if len(page) != 1 || page[0].Title != "Cheese Chase" {
		t.Fatalf("second page = %+v", page)
	}
	if diff := cmp.Diff([]string{"Puzzle", "Mouse"}, page[0].Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchPage_DuplicateTitlesAcrossPages(t *testing.T) {
	var entries []Entry
	for i := 0; i < 7; i++ {
		entries = append(entries, Entry{ID: fmt.Sprintf("dup-%d", i), Title: "Same Title", Library: "arcade"})
	}
	entries = append(entries,
		Entry{ID: "z", Title: "Aardvark", Library: "arcade"},
		Entry{ID: "a", Title: "Zebra", Library: "arcade"},
	)
	db := testCatalog(t, entries...)

	for _, limit := range []int{1, 2, 3, 4, 500} {
		rows, _ := fetchAll(t, db, "arcade", "", limit)
		if len(rows) != len(entries) {
			t.Fatalf("limit %d: got %d rows, want %d", limit, len(rows), len(entries))
		}
		seen := map[string]bool{}
		for _, r := range rows {
			if seen[r.ID] {
				t.Fatalf("limit %d: duplicate id %s", limit, r.ID)
			}
			seen[r.ID] = true
		}
	}
}

func TestFetchPage_EmptyTitleIsNotSkipped(t *testing.T) {
	db := testCatalog(t,
		Entry{ID: "1", Title: "", Library: "arcade"},
		Entry{ID: "2", Title: "B", Library: "arcade"},
	)
	rows, _ := fetchAll(t, db, "arcade", "", 1)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
}

func TestFetchPage_PageCount(t *testing.T) {
	var entries []Entry
	for i := 0; i < 501; i++ {
		entries = append(entries, Entry{ID: fmt.Sprintf("%04d", i), Title: fmt.Sprintf("T%04d", i), Library: "arcade"})
	}
	db := testCatalog(t, entries...)
	rows, pages := fetchAll(t, db, "arcade", "", 500)
	if len(rows) != 501 || pages != 2 {
		t.Fatalf("rows=%d pages=%d, want 501 rows in 2 pages", len(rows), pages)
	}
}

func TestFetchPage_SearchIsLiteral(t *testing.T) {
	db := testCatalog(t,
		Entry{ID: "1", Title: "100% Orange Juice", Library: "arcade"},
		Entry{ID: "2", Title: "1000 Blocks", Library: "arcade"},
		Entry{ID: "3", Title: "snake_case", Library: "arcade"},
		Entry{ID: "4", Title: "snakeXcase", Library: "arcade"},
		Entry{ID: "5", Title: `Back\slash`, Library: "arcade"},
		Entry{ID: "6", Title: "It's a \"Quote\"", Library: "arcade"},
	)

	cases := []struct {
		search string
		want   []string
	}{
		{"100%", []string{"100% Orange Juice"}},
		{"snake_", []string{"snake_case"}},
		{`k\s`, []string{`Back\slash`}},
		{"it's", []string{"It's a \"Quote\""}},
		{`"quote"`, []string{"It's a \"Quote\""}},
		{"ORANGE", []string{"100% Orange Juice"}},
		{"100", []string{"100% Orange Juice", "1000 Blocks"}},
	}
	for _, c := range cases {
		rows, _ := fetchAll(t, db, "arcade", c.search, 10)
		if diff := cmp.Diff(c.want, titles(rows)); diff != "" {
			t.Errorf("search %q mismatch (-want +got):\n%s", c.search, diff)
		}
	}
}

func TestFetchPage_LibraryExactMatch(t *testing.T) {
	db := testCatalog(t,
		Entry{ID: "1", Title: "A", Library: "arcade"},
		Entry{ID: "2", Title: "B", Library: "arcade2"},
	)
	rows, _ := fetchAll(t, db, "arcade", "", 10)
	if len(rows) != 1 || rows[0].ID != "1" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestFetchPage_ClosedStoreIsUnavailable(t *testing.T) {
	db := testCatalog(t)
	_ = db.Close()
	_, err := db.FetchPage(context.Background(), PageQuery{Library: "arcade", Limit: 10})
	if !errors.Is(err, friendlyerrors.ErrStoreUnavailable) {
		t.Fatalf("error = %v, want ErrStoreUnavailable", err)
	}
}

func TestSanitizeSearch(t *testing.T) {
	cases := map[string]string{
		"plain":  "plain",
		"100%":   `100\%`,
		"a_b":    `a\_b`,
		`c:\dir`: `c:\\dir`,
	}
	for in, want := range cases {
		if got := SanitizeSearch(in); got != want {
			t.Errorf("SanitizeSearch(%q)=%q want %q", in, got, want)
		}
	}
}

func TestSplitTags(t *testing.T) {
	got := SplitTags(" Action;Platformer; ;Puzzle ")
	if diff := cmp.Diff([]string{"Action", "Platformer", "Puzzle"}, got); diff != "" {
		t.Errorf("SplitTags mismatch (-want +got):\n%s", diff)
	}
	if got := SplitTags(""); len(got) != 0 {
		t.Errorf("SplitTags(\"\") = %v", got)
	}
}

func TestGetEntry(t *testing.T) {
	want := Entry{
		ID: "abcd1234", Title: "Alpha", AlternateTitles: "A", Developer: "Dev", Publisher: "Pub",
		Source: "example.com", ReleaseDate: "2004", Platform: "Flash", Version: "1.0",
		Tags: []string{"Action", "Arcade"}, Language: "en", PlayMode: "Single Player",
		Status: "Playable", Notes: "n", OriginalDescription: "d", Library: "arcade", ActiveDataOnDisk: true,
	}
	db := testCatalog(t, want)

	got, err := db.GetEntry(context.Background(), "abcd1234")
	if err != nil {
		t.Fatalf("GetEntry() error = %v", err)
	}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}

	if _, err := db.GetEntry(context.Background(), "missing"); err != sql.ErrNoRows {
		t.Errorf("GetEntry(missing) error = %v, want sql.ErrNoRows", err)
	}
}

func TestListTagsAndCount(t *testing.T) {
	db := testCatalog(t,
		Entry{ID: "1", Title: "A", Library: "arcade", Tags: []string{"Action", "Puzzle"}},
		Entry{ID: "2", Title: "B", Library: "arcade", Tags: []string{"Puzzle"}},
		Entry{ID: "3", Title: "C", Library: "theatre", Tags: []string{"Comedy"}},
	)
	tags, err := db.ListTags(context.Background(), "arcade")
	if err != nil {
		t.Fatalf("ListTags() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Action", "Puzzle"}, tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
	n, err := db.CountEntries(context.Background(), "arcade")
	if err != nil || n != 2 {
		t.Errorf("CountEntries() = %d, %v", n, err)
	}
}

func TestOpenPath_ReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flashpoint.sqlite")
	db, err := Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := db.InsertEntry(context.Background(), Entry{ID: "1", Title: "A", Library: "arcade"}); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	ro, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath() error = %v", err)
	}
	defer ro.Close()
	rows, _ := fetchAll(t, ro, "arcade", "", 10)
	if len(rows) != 1 {
		t.Fatalf("got %d rows", len(rows))
	}
	if err := ro.InsertEntry(context.Background(), Entry{ID: "2", Title: "B", Library: "arcade"}); err == nil {
		t.Fatalf("write through read-only handle should fail")
	}
}

func TestCheckHeader(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "bogus.sqlite")
	if err := os.WriteFile(bogus, []byte("definitely not a database"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CheckHeader(bogus); !errors.Is(err, friendlyerrors.ErrStoreUnavailable) {
		t.Errorf("CheckHeader(bogus) = %v", err)
	}
	if err := CheckHeader(filepath.Join(dir, "missing.sqlite")); !errors.Is(err, friendlyerrors.ErrStoreUnavailable) {
		t.Errorf("CheckHeader(missing) = %v", err)
	}
	if _, err := OpenPath(bogus); err == nil {
		t.Errorf("OpenPath(bogus) should fail")
	}
}

func TestIntegrityAndStats(t *testing.T) {
	db := testCatalog(t,
		Entry{ID: "1", Title: "A", Library: "arcade", Tags: []string{"Action", "Puzzle"}},
		Entry{ID: "2", Title: "B", Library: "arcade", Tags: []string{"Puzzle"}},
		Entry{ID: "3", Title: "C", Library: "theatre"},
	)
	if err := db.CheckIntegrity(context.Background()); err != nil {
		t.Fatalf("CheckIntegrity() error = %v", err)
	}
	st, err := db.GetStats(context.Background(), []string{"arcade", "theatre"})
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if st.DatabaseSize <= 0 {
		t.Errorf("DatabaseSize = %d", st.DatabaseSize)
	}
	if diff := cmp.Diff(map[string]int{"arcade": 2, "theatre": 1}, st.Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]int{"arcade": 2, "theatre": 0}, st.Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
}
