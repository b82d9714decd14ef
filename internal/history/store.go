package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// MaxStatements is the number of statements kept. Older rows are trimmed
// on insert.
const MaxStatements = 1000

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store is the SQLite-backed statement history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer to prevent lock contention
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}

	if err := InitSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// InitSchema creates the history tables if they don't exist.
func InitSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS statements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		statement TEXT NOT NULL,
		kind TEXT NOT NULL,
		result_count INTEGER NOT NULL,
		latency_ms INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	-- Word references (with frequency count)
	CREATE TABLE IF NOT EXISTS word_counts (
		word TEXT PRIMARY KEY,
		count INTEGER NOT NULL DEFAULT 1,
		last_seen TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_word_counts_count ON word_counts(count DESC);

	-- Latency histogram per day
	CREATE TABLE IF NOT EXISTS latency_stats (
		date TEXT NOT NULL,
		bucket TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (date, bucket)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create history schema: %w", err)
	}
	return nil
}

// Record stores one event: the statement row, its word references and
// its latency bucket, in a single transaction.
func (s *Store) Record(e Event) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	stamp := e.Time.UTC().Format(timeLayout)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO statements (statement, kind, result_count, latency_ms, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.Statement, string(e.Kind), e.Results, e.Latency.Milliseconds(), e.Err, stamp); err != nil {
		return fmt.Errorf("insert statement: %w", err)
	}

	if _, err := tx.Exec(`
		DELETE FROM statements
		WHERE id NOT IN (
			SELECT id FROM statements
			ORDER BY id DESC
			LIMIT ?
		)
	`, MaxStatements); err != nil {
		return fmt.Errorf("trim statements: %w", err)
	}

	if len(e.Words) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO word_counts (word, count, last_seen)
			VALUES (?, 1, ?)
			ON CONFLICT(word) DO UPDATE SET
				count = count + 1,
				last_seen = excluded.last_seen
		`)
		if err != nil {
			return fmt.Errorf("prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, w := range e.Words {
			if _, err := stmt.Exec(w, stamp); err != nil {
				return fmt.Errorf("upsert word count: %w", err)
			}
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO latency_stats (date, bucket, count)
		VALUES (?, ?, 1)
		ON CONFLICT(date, bucket) DO UPDATE SET count = count + 1
	`, e.Time.UTC().Format(time.DateOnly), string(LatencyToBucket(e.Latency))); err != nil {
		return fmt.Errorf("insert latency count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Recent returns the latest statements, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	return s.entries(`
		SELECT id, statement, kind, result_count, latency_ms, error, created_at
		FROM statements
		ORDER BY id DESC
		LIMIT ?
	`, limit)
}

// ZeroResults returns the latest statements that matched no pages, newest
// first.
func (s *Store) ZeroResults(limit int) ([]Entry, error) {
	return s.entries(`
		SELECT id, statement, kind, result_count, latency_ms, error, created_at
		FROM statements
		WHERE result_count = 0 AND error = ''
		ORDER BY id DESC
		LIMIT ?
	`, limit)
}

func (s *Store) entries(query string, limit int) ([]Entry, error) {
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("query statements: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var kind, stamp string
		if err := rows.Scan(&e.ID, &e.Statement, &kind, &e.Results, &e.LatencyMS, &e.Err, &stamp); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.Kind = Kind(kind)
		e.Time, _ = time.Parse(timeLayout, stamp)
		out = append(out, e)
	}
	return out, rows.Err()
}

// TopWords returns the most referenced words.
func (s *Store) TopWords(limit int) ([]WordCount, error) {
	rows, err := s.db.Query(`
		SELECT word, count
		FROM word_counts
		ORDER BY count DESC, word ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top words: %w", err)
	}
	defer rows.Close()

	var words []WordCount
	for rows.Next() {
		var wc WordCount
		if err := rows.Scan(&wc.Word, &wc.Count); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		words = append(words, wc)
	}
	return words, rows.Err()
}

// LatencyCounts returns the latency distribution for a date range
// (YYYY-MM-DD, inclusive).
func (s *Store) LatencyCounts(from, to string) (map[LatencyBucket]int64, error) {
	rows, err := s.db.Query(`
		SELECT bucket, SUM(count) as total
		FROM latency_stats
		WHERE date >= ? AND date <= ?
		GROUP BY bucket
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query latency counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[LatencyBucket]int64)
	for rows.Next() {
		var bucket string
		var count int64
		if err := rows.Scan(&bucket, &count); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		counts[LatencyBucket(bucket)] = count
	}
	return counts, rows.Err()
}

// Summary aggregates the stored statements.
func (s *Store) Summary() (Summary, error) {
	var sum Summary
	var first, last sql.NullString
	err := s.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN result_count = 0 AND error = '' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN error != '' THEN 1 ELSE 0 END), 0),
			MIN(created_at),
			MAX(created_at)
		FROM statements
	`).Scan(&sum.Statements, &sum.ZeroResults, &sum.Errors, &first, &last)
	if err != nil {
		return Summary{}, fmt.Errorf("query summary: %w", err)
	}
	if first.Valid {
		sum.FirstSeen, _ = time.Parse(timeLayout, first.String)
	}
	if last.Valid {
		sum.LastSeen, _ = time.Parse(timeLayout, last.String)
	}
	return sum, nil
}

// Clear deletes every recorded row.
func (s *Store) Clear() error {
	for _, table := range []string{"statements", "word_counts", "latency_stats"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
