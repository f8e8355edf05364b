package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"satlink/internal"
)

type DB struct {
	conn *sql.DB
}

type RefreshRow struct {
	ID        int
	TraceID   string
	Timings   map[string]float64
	Counts    map[string]int
	CreatedAt string
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  source TEXT NOT NULL,
  primaryName TEXT NOT NULL,
  secondaryName TEXT NOT NULL DEFAULT '',
  rawName TEXT NOT NULL DEFAULT '',
  payloadJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_records_primary ON records(primaryName);
CREATE INDEX IF NOT EXISTS idx_records_secondary ON records(secondaryName);

CREATE TABLE IF NOT EXISTS refreshes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	if _, err := d.conn.Exec(schema); err != nil {
		return err
	}
	return d.ensureColumn("records", "rawName", `TEXT NOT NULL DEFAULT ''`)
}

// ensureColumn adds a column that databases created by older builds lack.
func (d *DB) ensureColumn(table, column, decl string) error {
	var n int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err = d.conn.Exec(fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, column, decl))
	return err
}

// ReplaceRecords swaps the whole records table for the given set inside one
// transaction. Each refresh rebuilds everything, so there is nothing to
// upsert against.
func (d *DB) ReplaceRecords(records []internal.Record) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM records`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO records (source, primaryName, secondaryName, rawName, payloadJson)
VALUES (?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		payloadJSON, err := json.Marshal(r.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload for %s: %w", r.Primary, err)
		}
		if _, err := stmt.Exec(string(r.Source), r.Primary, r.Secondary, r.RawName, string(payloadJSON)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListRecords() ([]internal.Record, error) {
	return d.queryRecords(`
SELECT source, primaryName, secondaryName, rawName, payloadJson
FROM records ORDER BY id ASC`)
}

func (d *DB) CountRecordsBySource() (map[string]int, error) {
	rows, err := d.conn.Query(`SELECT source, COUNT(*) FROM records GROUP BY source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, err
		}
		out[source] = n
	}
	return out, rows.Err()
}

func (d *DB) queryRecords(query string, args ...any) ([]internal.Record, error) {
	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Record
	for rows.Next() {
		var r internal.Record
		var source, payloadJSON string
		if err := rows.Scan(&source, &r.Primary, &r.Secondary, &r.RawName, &payloadJSON); err != nil {
			return nil, err
		}
		r.Source = internal.SourceID(source)
		if err := json.Unmarshal([]byte(payloadJSON), &r.Payload); err != nil {
			return nil, fmt.Errorf("decode payload for %s: %w", r.Primary, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) InsertRefresh(traceID string, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO refreshes (traceId, timingsJson, countsJson) VALUES (?, ?, ?)`, traceID, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) LatestRefresh() (*RefreshRow, error) {
	var row RefreshRow
	var timingsJSON, countsJSON string
	err := d.conn.QueryRow(`
SELECT id, traceId, timingsJson, countsJson, createdAt
FROM refreshes ORDER BY id DESC LIMIT 1
`).Scan(&row.ID, &row.TraceID, &timingsJSON, &countsJSON, &row.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(timingsJSON), &row.Timings)
	_ = json.Unmarshal([]byte(countsJSON), &row.Counts)
	return &row, nil
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
