package state

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/glebarez/sqlite"
	"github.com/wumbolauncher/wumbo/internal/config"
	friendlyerrors "github.com/wumbolauncher/wumbo/internal/errors"
)

// DB is a handle on the Flashpoint catalog (flashpoint.sqlite).
type DB struct {
	SQL  *sql.DB
	Path string
}

var sqliteMagic = []byte("SQLite format 3\x00")

// Open opens the catalog named by cfg read-only. Missing or non-SQLite files
// fail with ErrStoreUnavailable before the driver ever sees them.
func Open(cfg *config.Config) (*DB, error) {
	if cfg == nil { return nil, errors.New("nil config") }
	path := cfg.DatabasePath()
	if path == "" { return nil, errors.New("general.flashpoint_path required") }
	return OpenPath(path)
}

// OpenPath opens an existing catalog file read-only.
func OpenPath(path string) (*DB, error) {
	if err := CheckHeader(path); err != nil { return nil, err }
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)&_pragma=query_only(1)", path)
	return openDSN(path, dsn)
}

// Create opens path read-write and makes sure the game table exists. It backs
// test fixtures and the demo catalog; the real catalog is never written to.
func Create(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return nil, err }
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := openDSN(path, dsn)
	if err != nil { return nil, err }
	if err := db.InitCatalogTable(); err != nil {
		_ = db.SQL.Close()
		return nil, err
	}
	return db, nil
}

func openDSN(path, dsn string) (*DB, error) {
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil { return nil, fmt.Errorf("open %s: %w: %w", path, friendlyerrors.ErrStoreUnavailable, err) }
	if err := sqldb.Ping(); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("open %s: %w: %w", path, friendlyerrors.ErrStoreUnavailable, err)
	}
	return &DB{SQL: sqldb, Path: path}, nil
}

func (db *DB) Close() error {
	if db == nil || db.SQL == nil { return nil }
	return db.SQL.Close()
}

// CheckHeader verifies that path starts with the SQLite magic string.
func CheckHeader(path string) error {
	f, err := os.Open(path)
	if err != nil { return fmt.Errorf("catalog %s: %w: %w", path, friendlyerrors.ErrStoreUnavailable, err) }
	defer f.Close()
	header := make([]byte, len(sqliteMagic))
	if _, err := io.ReadFull(f, header); err != nil || !bytes.Equal(header, sqliteMagic) {
		return fmt.Errorf("catalog %s: %w: file is not a sqlite database", path, friendlyerrors.ErrStoreUnavailable)
	}
	return nil
}

// InitCatalogTable creates the subset of the Flashpoint game table the browser reads.
func (db *DB) InitCatalogTable() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS game (
			id TEXT PRIMARY KEY NOT NULL,
			title TEXT NOT NULL,
			alternateTitles TEXT NOT NULL DEFAULT '',
			series TEXT NOT NULL DEFAULT '',
			developer TEXT NOT NULL DEFAULT '',
			publisher TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			releaseDate TEXT NOT NULL DEFAULT '',
			platform TEXT NOT NULL DEFAULT '',
			version TEXT NOT NULL DEFAULT '',
			language TEXT NOT NULL DEFAULT '',
			playMode TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			originalDescription TEXT NOT NULL DEFAULT '',
			library TEXT NOT NULL,
			tagsStr TEXT NOT NULL DEFAULT '',
			activeDataOnDisk INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_game_library_title ON game(library, title, id);`,
	}
	for _, s := range stmts {
		if _, err := db.SQL.Exec(s); err != nil { return fmt.Errorf("init catalog schema: %w", err) }
	}
	return nil
}
