package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"customsdesk/internal/model"
)

// SessionState is the review snapshot a session saves: the row collection,
// the report metadata form, and the document selection.
type SessionState struct {
	Items []model.Item       `json:"items"`
	Meta  model.ReportMeta   `json:"meta"`
	Docs  model.DocSelection `json:"docs"`
}

// Session is a saved review snapshot plus its bookkeeping.
type Session struct {
	ID        string
	Name      string
	State     SessionState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionInfo is the listing view of a session; state is loaded on demand.
type SessionInfo struct {
	ID        string
	Name      string
	ItemCount int
	UpdatedAt time.Time
}

var ErrSessionNotFound = errors.New("session not found")

// Sessions persists review sessions in a SQLite database under Dir.
type Sessions struct {
	Dir string
}

// OpenSessions places the session database in the config directory.
func OpenSessions() (Sessions, error) {
	dir, err := ConfigDir()
	if err != nil {
		return Sessions{}, err
	}
	return Sessions{Dir: dir}, nil
}

func (s Sessions) dbPath() string {
	return filepath.Join(s.Dir, "sessions.sqlite")
}

func (s Sessions) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.dbPath())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout avoids
	// "database is locked" flakiness when two instances run at once.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		item_count INTEGER NOT NULL,
		json TEXT NOT NULL,
		created_at_unixms INTEGER NOT NULL,
		updated_at_unixms INTEGER NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Save stores a session snapshot. An empty id creates a new session and
// returns its generated id; a known id overwrites that session in place.
func (s Sessions) Save(ctx context.Context, id, name string, state SessionState) (string, error) {
	db, err := s.open(ctx)
	if err != nil {
		return "", err
	}
	defer db.Close()

	raw, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	nowMs := time.Now().UTC().UnixMilli()

	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
		_, err = db.ExecContext(ctx,
			`INSERT INTO sessions(id, name, item_count, json, created_at_unixms, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
			id, name, len(state.Items), string(raw), nowMs, nowMs)
		if err != nil {
			return "", err
		}
		return id, nil
	}

	res, err := db.ExecContext(ctx,
		`UPDATE sessions SET name = ?, item_count = ?, json = ?, updated_at_unixms = ? WHERE id = ?`,
		name, len(state.Items), string(raw), nowMs, id)
	if err != nil {
		return "", err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return "", ErrSessionNotFound
	}
	return id, nil
}

// List returns all sessions, most recently updated first.
func (s Sessions) List(ctx context.Context) ([]SessionInfo, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT id, name, item_count, updated_at_unixms FROM sessions ORDER BY updated_at_unixms DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SessionInfo{}
	for rows.Next() {
		var info SessionInfo
		var updatedMs int64
		if err := rows.Scan(&info.ID, &info.Name, &info.ItemCount, &updatedMs); err != nil {
			return nil, err
		}
		info.UpdatedAt = time.UnixMilli(updatedMs).UTC()
		out = append(out, info)
	}
	return out, rows.Err()
}

// Load fetches one session by id.
func (s Sessions) Load(ctx context.Context, id string) (*Session, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var sess Session
	var raw string
	var createdMs, updatedMs int64
	err = db.QueryRowContext(ctx,
		`SELECT id, name, json, created_at_unixms, updated_at_unixms FROM sessions WHERE id = ?`, id).
		Scan(&sess.ID, &sess.Name, &raw, &createdMs, &updatedMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(raw), &sess.State); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	sess.CreatedAt = time.UnixMilli(createdMs).UTC()
	sess.UpdatedAt = time.UnixMilli(updatedMs).UTC()
	return &sess, nil
}

// Delete removes a session.
func (s Sessions) Delete(ctx context.Context, id string) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
