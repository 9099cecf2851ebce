package state

import (
	"context"
	"fmt"
)

// CheckIntegrity runs SQLite's quick_check on the catalog. The full
// integrity_check is too slow for a catalog of several hundred thousand rows.
func (db *DB) CheckIntegrity(ctx context.Context) error {
	if db == nil || db.SQL == nil {
		return fmt.Errorf("database not open")
	}

	var result string
	if err := db.SQL.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&result); err != nil {
		return storeErr("integrity check", err)
	}
	if result != "ok" {
		return fmt.Errorf("catalog integrity check failed: %s", result)
	}
	return nil
}

// Stats summarizes the catalog for diagnostics.
type Stats struct {
	DatabaseSize int64 // bytes
	Entries      map[string]int
	Tags         map[string]int
}

// GetStats counts entries and distinct tags per library.
func (db *DB) GetStats(ctx context.Context, libraries []string) (*Stats, error) {
	if db == nil || db.SQL == nil {
		return nil, fmt.Errorf("database not open")
	}

	stats := &Stats{Entries: map[string]int{}, Tags: map[string]int{}}
	var pageCount, pageSize int64
	if err := db.SQL.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return nil, storeErr("page count", err)
	}
	if err := db.SQL.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return nil, storeErr("page size", err)
	}
	stats.DatabaseSize = pageCount * pageSize

	for _, lib := range libraries {
		n, err := db.CountEntries(ctx, lib)
		if err != nil {
			return nil, err
		}
		stats.Entries[lib] = n
		tags, err := db.ListTags(ctx, lib)
		if err != nil {
			return nil, err
		}
		stats.Tags[lib] = len(tags)
	}
	return stats, nil
}
