// Package journal records store actions in SQLite for the history panel.
// The default database lives in memory and is never replayed on startup.
package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"todo/internal/todolist"
)

const memoryDSN = ":memory:"

type Entry struct {
	ID      int64
	Action  string
	TaskIDs []string
	Summary string
	At      time.Time
}

type Journal struct {
	db *sql.DB
}

// Open opens the journal at path. An empty path or ":memory:" keeps it in
// memory for the life of the process.
func Open(path string) (*Journal, error) {
	dsn := memoryDSN
	if path != "" && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, err
		}
		dsn = sqliteDSN(path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// A single connection keeps the in-memory database alive and shared.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	j := &Journal{db: db}
	if err := j.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return j, nil
}

func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

func (j *Journal) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	action TEXT NOT NULL,
	task_ids TEXT NOT NULL DEFAULT '',
	summary TEXT NOT NULL DEFAULT '',
	at TEXT NOT NULL
);`
	_, err := j.db.Exec(ddl)
	return err
}

// Record appends e. A zero At is stamped with the current time.
func (j *Journal) Record(e Entry) error {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := j.db.Exec(`INSERT INTO entries (action, task_ids, summary, at) VALUES (?, ?, ?, ?);`,
		e.Action, strings.Join(e.TaskIDs, ","), e.Summary, at.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record %s: %w", e.Action, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := j.db.Query(`SELECT id, action, task_ids, summary, at FROM entries ORDER BY id DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ids, atStr string
		if err := rows.Scan(&e.ID, &e.Action, &ids, &e.Summary, &atStr); err != nil {
			return nil, err
		}
		if ids != "" {
			e.TaskIDs = strings.Split(ids, ",")
		}
		if at, err := time.Parse(time.RFC3339Nano, atStr); err == nil {
			e.At = at
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// FromChange describes a store change. Titles are looked up in the state
// before the change first so deleted tasks keep their names.
func FromChange(c todolist.Change, at time.Time) Entry {
	ids := c.Action.Targets()
	titles := make([]string, 0, len(ids))
	for _, id := range ids {
		if t, ok := lookup(c.Before, id); ok {
			titles = append(titles, t)
		} else if t, ok := lookup(c.After, id); ok {
			titles = append(titles, t)
		}
	}
	return Entry{
		Action:  c.Action.Kind(),
		TaskIDs: ids,
		Summary: strings.Join(titles, ", "),
		At:      at,
	}
}

func lookup(s todolist.State, id string) (string, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t.Title, true
		}
	}
	return "", false
}

func (j *Journal) Count() (int, error) {
	var n int
	err := j.db.QueryRow(`SELECT COUNT(*) FROM entries;`).Scan(&n)
	return n, err
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
