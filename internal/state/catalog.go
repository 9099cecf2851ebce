package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	friendlyerrors "github.com/wumbolauncher/wumbo/internal/errors"
)

// RawRow is one game row as it comes off a page, before tag filtering.
type RawRow struct {
	ID        string
	Title     string
	Developer string
	Publisher string
	Tags      []string
}

// Cursor is the exclusive lower bound of the next page. Title alone is not
// unique, so the id breaks ties. The zero Cursor starts before the first row.
type Cursor struct {
	Title string
	ID    string
	Valid bool
}

// After returns the cursor positioned on r.
func After(r RawRow) Cursor { return Cursor{Title: r.Title, ID: r.ID, Valid: true} }

// PageQuery selects one page of a library.
type PageQuery struct {
	Library string
	Search  string // literal, case-insensitive substring of the title
	After   Cursor
	Limit   int
}

const likeEscape = `\`

// SanitizeSearch neutralizes LIKE wildcards so user input matches literally.
func SanitizeSearch(s string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return r.Replace(s)
}

// SplitTags splits a tagsStr value ("Action; Platformer") into trimmed tags.
func SplitTags(s string) []string {
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FetchPage returns at most q.Limit rows of q.Library ordered by (title, id)
// strictly after q.After. A short page means the scan is exhausted.
func (db *DB) FetchPage(ctx context.Context, q PageQuery) ([]RawRow, error) {
	if q.Limit <= 0 {
		return nil, fmt.Errorf("fetch page: limit must be positive, got %d", q.Limit)
	}
	query := `SELECT id, title, COALESCE(developer, ''), COALESCE(publisher, ''), COALESCE(tagsStr, '')
	FROM game
	WHERE library = ?`
	args := []any{q.Library}
	if q.After.Valid {
		query += " AND (title > ? OR (title = ? AND id > ?))"
		args = append(args, q.After.Title, q.After.Title, q.After.ID)
	}
	if q.Search != "" {
		query += ` AND title LIKE ? ESCAPE '\'`
		args = append(args, "%"+SanitizeSearch(q.Search)+"%")
	}
	query += " ORDER BY title, id LIMIT ?"
	args = append(args, q.Limit)

	rows, err := db.SQL.QueryContext(ctx, query, args...)
	if err != nil { return nil, storeErr("fetch page", err) }
	defer rows.Close()
	out := make([]RawRow, 0, q.Limit)
	for rows.Next() {
		var r RawRow
		var tags string
		if err := rows.Scan(&r.ID, &r.Title, &r.Developer, &r.Publisher, &tags); err != nil {
			return nil, storeErr("scan page", err)
		}
		r.Tags = SplitTags(tags)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil { return nil, storeErr("fetch page", err) }
	return out, nil
}

func storeErr(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, friendlyerrors.ErrStoreUnavailable, err)
}

// Entry holds the metadata shown in the detail panel.
type Entry struct {
	ID                  string
	Title               string
	AlternateTitles     string
	Series              string
	Developer           string
	Publisher           string
	Source              string
	ReleaseDate         string
	Platform            string
	Version             string
	Tags                []string
	Language            string
	PlayMode            string
	Status              string
	Notes               string
	OriginalDescription string
	Library             string
	ActiveDataOnDisk    bool
}

// GetEntry loads the full record for id. Unknown ids return sql.ErrNoRows.
func (db *DB) GetEntry(ctx context.Context, id string) (*Entry, error) {
	stmt := `SELECT
		id, title, alternateTitles, series, developer, publisher, source,
		releaseDate, platform, version, tagsStr, language, playMode, status,
		notes, originalDescription, library, activeDataOnDisk
	FROM game WHERE id = ?`

	var e Entry
	var tags string
	var onDisk int
	err := db.SQL.QueryRowContext(ctx, stmt, id).Scan(
		&e.ID, &e.Title, &e.AlternateTitles, &e.Series, &e.Developer, &e.Publisher, &e.Source,
		&e.ReleaseDate, &e.Platform, &e.Version, &tags, &e.Language, &e.PlayMode, &e.Status,
		&e.Notes, &e.OriginalDescription, &e.Library, &onDisk,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, storeErr("get entry", err)
	}
	e.Tags = SplitTags(tags)
	e.ActiveDataOnDisk = onDisk != 0
	return &e, nil
}

// ListTags returns every distinct tag used in library, sorted.
func (db *DB) ListTags(ctx context.Context, library string) ([]string, error) {
	rows, err := db.SQL.QueryContext(ctx, `SELECT DISTINCT tagsStr FROM game WHERE library = ? AND tagsStr != ''`, library)
	if err != nil { return nil, storeErr("list tags", err) }
	defer rows.Close()
	seen := map[string]struct{}{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil { return nil, storeErr("list tags", err) }
		for _, t := range SplitTags(s) {
			seen[t] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil { return nil, storeErr("list tags", err) }
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

// CountEntries counts the rows of library, ignoring tag filters.
func (db *DB) CountEntries(ctx context.Context, library string) (int, error) {
	var n int
	if err := db.SQL.QueryRowContext(ctx, `SELECT COUNT(*) FROM game WHERE library = ?`, library).Scan(&n); err != nil {
		return 0, storeErr("count entries", err)
	}
	return n, nil
}

// InsertEntry writes e into a catalog opened with Create.
func (db *DB) InsertEntry(ctx context.Context, e Entry) error {
	if e.ID == "" {
		return fmt.Errorf("entry id is required")
	}
	onDisk := 0
	if e.ActiveDataOnDisk {
		onDisk = 1
	}
	_, err := db.SQL.ExecContext(ctx, `INSERT INTO game(
		id, title, alternateTitles, series, developer, publisher, source,
		releaseDate, platform, version, tagsStr, language, playMode, status,
		notes, originalDescription, library, activeDataOnDisk
	) VALUES(?,?,?,?,?,?,?, ?,?,?,?,?,?,?, ?,?,?,?)`,
		e.ID, e.Title, e.AlternateTitles, e.Series, e.Developer, e.Publisher, e.Source,
		e.ReleaseDate, e.Platform, e.Version, strings.Join(e.Tags, "; "), e.Language, e.PlayMode, e.Status,
		e.Notes, e.OriginalDescription, e.Library, onDisk,
	)
	return err
}
