package repository

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/okian/sideout/internal/domain/model"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const migrationTable = "schema_migrations"

// SQLiteStore persists match event logs in SQLite.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// Open opens (or creates) the SQLite event store and applies embedded
// migrations.
func Open(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// ReplaceEvents writes the full event list for a match inside one
// transaction: delete then insert. Replaying the same list is a no-op in
// effect, which tolerates at-least-once save delivery.
func (s *SQLiteStore) ReplaceEvents(ctx context.Context, matchID string, events []model.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return fmt.Errorf("match id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM match_events WHERE match_id = ?`, matchID); err != nil {
		return fmt.Errorf("clear match events: %w", err)
	}
	for seq, e := range events {
		payload, err := model.Encode(e)
		if err != nil {
			return err
		}
		meta := e.Metadata()
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO match_events (match_id, seq, event_id, kind, payload, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			matchID,
			seq,
			meta.ID,
			model.KindOf(e),
			string(payload),
			meta.At.UTC().UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("insert event %d: %w", seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadEvents returns the stored event list for a match in append order.
func (s *SQLiteStore) LoadEvents(ctx context.Context, matchID string) ([]model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT kind, payload FROM match_events WHERE match_id = ? ORDER BY seq`,
		matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("query match events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.Event
	for rows.Next() {
		var kind, payload string
		if err := rows.Scan(&kind, &payload); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		e, err := model.Decode(kind, []byte(payload))
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}
	if events == nil {
		return nil, fmt.Errorf("load events for %q: %w", matchID, ErrNotFound)
	}
	return events, nil
}

// MatchIDs lists matches with stored events.
func (s *SQLiteStore) MatchIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT DISTINCT match_id FROM match_events ORDER BY match_id`)
	if err != nil {
		return nil, fmt.Errorf("query match ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan match id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match ids: %w", err)
	}
	return ids, nil
}

// applyMigrations executes embedded migrations at most once per file.
func applyMigrations(sqlDB *sql.DB) error {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)

	createSQL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`, migrationTable)
	if _, err := sqlDB.Exec(createSQL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range sqlFiles {
		var count int
		row := sqlDB.QueryRow(fmt.Sprintf(`SELECT COUNT(1) FROM %s WHERE name = ?`, migrationTable), file)
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("check migration %s: %w", file, err)
		}
		if count > 0 {
			continue
		}
		body, err := fs.ReadFile(migrationFS, "migrations/"+file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if _, err := sqlDB.Exec(string(body)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
		_, err = sqlDB.Exec(
			fmt.Sprintf(`INSERT INTO %s (name, applied_at) VALUES (?, ?)`, migrationTable),
			file,
			time.Now().UTC().UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("record migration %s: %w", file, err)
		}
	}
	return nil
}
